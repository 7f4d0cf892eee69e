package physics

import (
	"math"
	"math/rand"
	"testing"

	"wakerunner/server/internal/wave"
)

const dt = 1.0 / 60.0

func TestJumpDiveMutualExclusion(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var s State
	for i := 0; i < 5000; i++ {
		switch rng.Intn(3) {
		case 0:
			s.TriggerJump()
		case 1:
			s.TriggerDive()
		default:
			s.Update(dt, 0, rng.Intn(2) == 0)
		}
		if s.Jumping && s.Diving {
			t.Fatalf("jumping and diving both true after %d operations", i+1)
		}
	}
}

func TestJumpFollowsBallisticArc(t *testing.T) {
	var s State
	if !s.TriggerJump() {
		t.Fatalf("expected jump to fire from idle")
	}

	elapsed := 0.0
	prevVel := s.VelocityY
	prevY := 0.0
	rose := false
	for s.Jumping {
		y := s.Update(dt, 0, false)
		elapsed += dt
		if s.Jumping {
			if s.VelocityY >= prevVel {
				t.Fatalf("velocity should decrease every frame: %v -> %v", prevVel, s.VelocityY)
			}
			if y > prevY {
				rose = true
			}
			prevVel = s.VelocityY
			prevY = y
		}
		if elapsed > 5 {
			t.Fatalf("jump never landed")
		}
	}
	if !rose {
		t.Fatalf("jump never gained height")
	}

	closedForm := 2 * JumpVelocity / Gravity
	if math.Abs(elapsed-closedForm) > dt*2 {
		t.Fatalf("time to land %v differs from ballistic %v by more than one frame", elapsed, closedForm)
	}
	if s.Cooldown != CooldownDuration {
		t.Fatalf("landing should arm the cooldown, got %v", s.Cooldown)
	}
}

func TestCooldownBlocksImmediateRejump(t *testing.T) {
	var s State
	s.TriggerJump()
	for s.Jumping {
		s.Update(dt, 0, false)
	}

	if s.TriggerJump() {
		t.Fatalf("jump must not fire while cooling down")
	}

	// Burn the cooldown one frame short, confirm it still blocks.
	frames := int(CooldownDuration/dt) - 1
	for i := 0; i < frames; i++ {
		s.Update(dt, 0, false)
	}
	if s.Cooldown == 0 {
		t.Fatalf("cooldown expired early")
	}
	if s.TriggerJump() {
		t.Fatalf("jump fired before cooldown elapsed")
	}

	for s.Cooldown > 0 {
		s.Update(dt, 0, false)
	}
	if !s.TriggerJump() {
		t.Fatalf("jump should fire once the cooldown is spent")
	}
}

func TestDiveDescendsWhileHeldAndReleasesCleanly(t *testing.T) {
	var s State
	if !s.TriggerDive() {
		t.Fatalf("expected dive to start from idle")
	}

	var deepest float64
	for i := 0; i < 120; i++ {
		y := s.Update(dt, 0, true)
		if y < deepest {
			deepest = y
		}
	}
	if math.Abs(deepest-DiveDepth) > 1e-9 {
		t.Fatalf("held dive should bottom out at %v, reached %v", DiveDepth, deepest)
	}

	for s.Diving {
		s.Update(dt, 0, false)
	}
	if s.DiveProgress != 0 {
		t.Fatalf("released dive should surface fully, progress %v", s.DiveProgress)
	}
	if s.Cooldown != 0 {
		t.Fatalf("dive release must not arm a cooldown, got %v", s.Cooldown)
	}
	if !s.TriggerJump() {
		t.Fatalf("jump should be available immediately after surfacing")
	}
}

func TestJumpPriorityOverDive(t *testing.T) {
	var s State
	s.ApplyLoudness(ActionThreshold+0.1, ActionThreshold+0.1)
	if !s.Jumping || s.Diving {
		t.Fatalf("jump should win when both bands cross the threshold: %+v", s)
	}
}

func TestQuietBandsTriggerNothing(t *testing.T) {
	var s State
	s.ApplyLoudness(ActionThreshold, ActionThreshold)
	if !s.Idle() {
		t.Fatalf("threshold is exclusive, state should stay idle: %+v", s)
	}
}

func TestLandingTracksMovingWaterLevel(t *testing.T) {
	surface := wave.DefaultSurface()
	var s State
	s.TriggerJump()

	elapsed := 0.0
	const boatX = 4.0
	for s.Jumping {
		level := surface.HeightAt(boatX, elapsed)
		y := s.Advance(dt, level, false)
		if !s.Jumping {
			if y != level {
				t.Fatalf("landing must clamp to the current-frame water level: y=%v level=%v", y, level)
			}
		}
		elapsed += dt
		if elapsed > 5 {
			t.Fatalf("jump never landed on moving water")
		}
	}

	// Floating afterwards keeps riding the wave exactly.
	for i := 0; i < 60; i++ {
		level := surface.HeightAt(boatX, elapsed)
		if y := s.Advance(dt, level, false); y != level {
			t.Fatalf("floating boat should sit on the surface: y=%v level=%v", y, level)
		}
		elapsed += dt
	}
}
