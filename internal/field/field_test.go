package field

import (
	"math/rand"
	"testing"

	"wakerunner/server/internal/wave"
)

const testScrollSpeed = 6.0

func newTestField(seed int64) *Field {
	rng := rand.New(rand.NewSource(seed))
	return New(rng, NewRegistry(), wave.DefaultSurface(), testScrollSpeed)
}

// forceSpawns advances the world offset until the field has produced n
// obstacles, returning the kinds in spawn order.
func forceSpawns(t *testing.T, f *Field, n int) []Kind {
	t.Helper()
	kinds := make([]Kind, 0, n)
	offset := testScrollSpeed * (SpawnDelaySeconds + 1)
	for len(kinds) < n {
		if o := f.TrySpawn(offset); o != nil {
			kinds = append(kinds, o.Kind)
		}
		offset += 1.0
		if offset > 1e6 {
			t.Fatalf("spawns stalled after %d of %d", len(kinds), n)
		}
	}
	return kinds
}

func TestNoSpawnDuringGracePeriod(t *testing.T) {
	f := newTestField(1)
	for offset := 0.0; offset <= testScrollSpeed*SpawnDelaySeconds; offset += 0.5 {
		if o := f.TrySpawn(offset); o != nil {
			t.Fatalf("spawned %s at offset %v inside the grace period", o.Kind, offset)
		}
	}
}

func TestSpawnSpacingRespectsMinimumGap(t *testing.T) {
	f := newTestField(2)
	var prev float64
	spawned := 0
	for offset := 0.0; spawned < 50; offset += 0.25 {
		o := f.TrySpawn(offset)
		if o == nil {
			continue
		}
		if spawned > 0 && o.WorldX-prev < MinGap {
			t.Fatalf("gap %v below minimum %v", o.WorldX-prev, MinGap)
		}
		prev = o.WorldX
		spawned++
	}
}

func TestAntiRepeatBoundsConsecutiveKinds(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		f := newTestField(seed)
		kinds := forceSpawns(t, f, 100)
		run := 1
		for i := 1; i < len(kinds); i++ {
			if kinds[i] == kinds[i-1] {
				run++
			} else {
				run = 1
			}
			if run > MaxDuplication {
				t.Fatalf("seed %d: run of %d %s at spawn %d exceeds max %d", seed, run, kinds[i], i, MaxDuplication)
			}
		}
	}
}

func TestUpdateAllDerivesScreenPositions(t *testing.T) {
	f := newTestField(3)
	o := f.TrySpawn(testScrollSpeed*SpawnDelaySeconds + 1)
	if o == nil {
		t.Fatalf("expected a spawn past the grace period")
	}

	worldOffset := o.WorldX - 3.0
	f.UpdateAll(worldOffset, 2.0)
	if o.ScreenX != 3.0 {
		t.Fatalf("screen X should be worldX - worldOffset, got %v", o.ScreenX)
	}

	surface := wave.DefaultSurface()
	if o.Config.FloatsOnWater {
		if o.Y != surface.HeightAt(o.ScreenX, 2.0) {
			t.Fatalf("floating obstacle should ride the wave, got y=%v", o.Y)
		}
		if o.Tilt != surface.TiltAt(o.ScreenX, 2.0) {
			t.Fatalf("floating obstacle tilt should follow the surface, got %v", o.Tilt)
		}
	} else {
		if o.Y != o.Config.BaseY || o.Tilt != 0 {
			t.Fatalf("airborne obstacle should hold its base height: y=%v tilt=%v", o.Y, o.Tilt)
		}
	}
}

func TestRemoveOffScreenCollectsEverything(t *testing.T) {
	f := newTestField(4)
	forceSpawns(t, f, 10)
	if len(f.Obstacles()) != 10 {
		t.Fatalf("expected 10 live obstacles, got %d", len(f.Obstacles()))
	}

	var farthest float64
	for _, o := range f.Obstacles() {
		if o.WorldX > farthest {
			farthest = o.WorldX
		}
	}

	removed := f.RemoveOffScreen(farthest - OffscreenCutoff + 1)
	if len(removed) != 10 {
		t.Fatalf("expected all 10 removed, got %d", len(removed))
	}
	if len(f.Obstacles()) != 0 {
		t.Fatalf("live set should be empty, has %d", len(f.Obstacles()))
	}
}

func TestResetClearsStateAndSpacing(t *testing.T) {
	f := newTestField(5)
	forceSpawns(t, f, 5)
	f.Reset()
	if len(f.Obstacles()) != 0 {
		t.Fatalf("reset should clear live obstacles")
	}
	// After reset the very first eligible offset spawns again: the spacing
	// marker must not survive.
	if o := f.TrySpawn(testScrollSpeed*SpawnDelaySeconds + 1); o == nil {
		t.Fatalf("reset field should spawn immediately past the grace period")
	}
}

func TestCheckCollisionIsDeterministic(t *testing.T) {
	f := newTestField(6)
	o := f.TrySpawn(testScrollSpeed*SpawnDelaySeconds + 1)
	if o == nil {
		t.Fatalf("expected a spawn")
	}
	f.UpdateAll(o.WorldX, 1.0)

	first, hit1 := f.CheckCollision(0, o.Y, 1.4, 1.8)
	second, hit2 := f.CheckCollision(0, o.Y, 1.4, 1.8)
	if hit1 != hit2 || first != second {
		t.Fatalf("identical collision queries disagreed: (%v,%v) vs (%v,%v)", first, hit1, second, hit2)
	}
}

func TestCollisionForgivenessSparesGrazes(t *testing.T) {
	f := newTestField(7)
	f.registry = NewRegistry()
	o := &Obstacle{ID: "o", Kind: KindBuoy, Config: f.registry.Lookup(KindBuoy)}
	f.obstacles = append(f.obstacles, o)
	o.ScreenX = 0
	o.Y = 0

	const boatW, boatH = 1.4, 1.8
	// Visual edges touch here, but the shrunk hitboxes should not.
	grazeX := (boatW + o.Config.Width) / 2 * 0.9
	if _, hit := f.CheckCollision(grazeX, 0, boatW, boatH); hit {
		t.Fatalf("graze at %v should be forgiven", grazeX)
	}
	if _, hit := f.CheckCollision(0, 0, boatW, boatH); !hit {
		t.Fatalf("dead-center overlap must collide")
	}
}

func TestAirborneCollisionBiasesTowardMast(t *testing.T) {
	f := newTestField(8)
	cfg := f.registry.Lookup(KindGullLine)
	o := &Obstacle{ID: "g", Kind: KindGullLine, Config: cfg}
	o.ScreenX = -cfg.HitboxOffsetX // cancel the horizontal correction
	o.Y = cfg.BaseY
	f.obstacles = append(f.obstacles, o)

	const boatW, boatH = 1.4, 1.8
	// Hull center low enough that only the lifted mast hitbox reaches the line.
	boatY := cfg.BaseY - (boatH*HitboxShrink+cfg.Height*HitboxShrink)/2 - boatH*BoatHitboxLift*0.5
	if _, hit := f.CheckCollision(0, boatY, boatW, boatH); !hit {
		t.Fatalf("mast lift should bring the boat into the airborne hitbox")
	}

	// A deep dive pulls even the lifted hitbox clear.
	diveY := boatY - boatH
	if _, hit := f.CheckCollision(0, diveY, boatW, boatH); hit {
		t.Fatalf("diving boat should pass under the airborne obstacle")
	}
}

func TestRegistryFallbackShape(t *testing.T) {
	r := NewRegistry()
	cfg := r.Lookup(Kind("unmodeled"))
	if cfg != fallbackConfig {
		t.Fatalf("unregistered kind should yield the fallback shape, got %+v", cfg)
	}
	var nilRegistry *Registry
	if cfg := nilRegistry.Lookup(KindBuoy); cfg != fallbackConfig {
		t.Fatalf("nil registry should degrade to the fallback shape, got %+v", cfg)
	}
}

func TestKindsOrderIsStable(t *testing.T) {
	r := NewRegistry()
	first := r.Kinds()
	for i := 0; i < 20; i++ {
		again := r.Kinds()
		if len(again) != len(first) {
			t.Fatalf("kind count changed: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("kind order unstable at %d: %v vs %v", j, again, first)
			}
		}
	}
}
