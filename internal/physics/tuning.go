package physics

// Feel constants for the boat. Values are world units (the boat hull is about
// one unit tall) and seconds; they are tuned by play, not derived.
const (
	Gravity          = 30.0 // units per second² pulling a jump back down
	JumpVelocity     = 12.0 // initial upward speed when a jump fires
	DiveSpeed        = 2.4  // dive progress change per second of hold/release
	DiveDepth        = -2.2 // full-dive offset below the surface (negative)
	ActionThreshold  = 0.18 // normalized loudness a band must exceed to fire
	CooldownDuration = 0.35 // lockout after landing before the next jump
)
