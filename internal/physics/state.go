// Package physics drives the boat's vertical motion: floating on the water
// line, ballistic jumps above it, and bounded dives below it. The state
// machine is advanced once per tick by the simulation engine and is the only
// writer of its own fields.
package physics

import "math"

// Mode identifies the boat's current vertical state.
type Mode string

const (
	ModeFloating Mode = "floating"
	ModeJumping  Mode = "jumping"
	ModeDiving   Mode = "diving"
)

// State is the per-race mutable physics record. Jumping and Diving are
// mutually exclusive; both false means the boat floats on the water line.
type State struct {
	VelocityY    float64
	Height       float64 // current offset above the water line while jumping
	Jumping      bool
	Diving       bool
	DiveProgress float64 // 0 surfaced .. 1 fully submerged
	Cooldown     float64 // seconds until the next jump may fire
}

// Mode reports the current state-machine mode.
func (s *State) Mode() Mode {
	switch {
	case s.Jumping:
		return ModeJumping
	case s.Diving:
		return ModeDiving
	default:
		return ModeFloating
	}
}

// Idle reports whether the boat is resting on the surface.
func (s *State) Idle() bool {
	return !s.Jumping && !s.Diving
}

// Reset restores the race-start state.
func (s *State) Reset() {
	*s = State{}
}

// TriggerJump starts a jump when the boat is idle and off cooldown. It
// reports whether the jump fired.
func (s *State) TriggerJump() bool {
	if !s.Idle() || s.Cooldown > 0 {
		return false
	}
	s.Jumping = true
	s.VelocityY = JumpVelocity
	return true
}

// TriggerDive starts a dive when the boat is idle. Dives are hold-style and
// carry no cooldown gate. It reports whether the dive started.
func (s *State) TriggerDive() bool {
	if !s.Idle() {
		return false
	}
	s.Diving = true
	return true
}

// ApplyLoudness maps the two band scores onto triggers. Jump is evaluated
// first and wins when both bands cross the threshold in the same tick; dive
// is only considered otherwise. The same decision point serves keyboard
// edges, so the tie-break holds for every input source.
func (s *State) ApplyLoudness(jumpLoudness, diveLoudness float64) {
	if jumpLoudness > ActionThreshold {
		s.TriggerJump()
	} else if diveLoudness > ActionThreshold {
		s.TriggerDive()
	}
}

// DecayCooldown burns down the jump lockout. The engine calls this at the top
// of every tick, before triggers are evaluated, so a cooldown that expires
// this tick can fire this tick.
func (s *State) DecayCooldown(dt float64) {
	if s.Cooldown <= 0 {
		return
	}
	s.Cooldown -= dt
	if s.Cooldown < 0 {
		s.Cooldown = 0
	}
}

// Advance integrates one tick against the current-frame water level and
// returns the boat's Y position. The water level is a moving reference plane:
// landings compare against the level passed in now, not the level at jump
// start, so a jump stays glued to the surface as waves pass underneath.
func (s *State) Advance(dt, waterLevel float64, diveHeld bool) float64 {
	switch {
	case s.Jumping:
		s.VelocityY -= Gravity * dt
		s.Height += s.VelocityY * dt
		if s.Height <= 0 {
			s.Height = 0
			s.VelocityY = 0
			s.Jumping = false
			s.Cooldown = CooldownDuration
			return waterLevel
		}
		return waterLevel + s.Height

	case s.Diving:
		if diveHeld {
			s.DiveProgress = math.Min(1, s.DiveProgress+DiveSpeed*dt)
		} else {
			s.DiveProgress = math.Max(0, s.DiveProgress-DiveSpeed*dt)
			if s.DiveProgress == 0 {
				s.Diving = false
			}
		}
		return waterLevel + DiveDepth*s.DiveProgress

	default:
		return waterLevel
	}
}

// Update runs one full frame: cooldown decay followed by integration. The
// engine splits the two halves so triggers land between them; Update exists
// for callers that own the whole frame.
func (s *State) Update(dt, waterLevel float64, diveHeld bool) float64 {
	s.DecayCooldown(dt)
	return s.Advance(dt, waterLevel, diveHeld)
}
