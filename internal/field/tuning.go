package field

// Course pacing and collision forgiveness. Distances are world units along
// the scroll axis, times are seconds. The shrink and offset values are feel
// constants carried over from play-testing, not derived quantities.
const (
	SpawnDelaySeconds = 2.5  // grace period at race start before anything spawns
	SpawnDistance     = 28.0 // obstacles materialize this far ahead of the window
	MinGap            = 9.0  // hard floor between consecutive spawns
	GapVariance       = 7.0  // random extra spacing on top of MinGap
	MaxDuplication    = 2    // longest allowed run of one kind
	HistoryCap        = 8    // spawn kinds remembered for the anti-repeat check
	OffscreenCutoff   = -6.0 // screen X behind which obstacles are collected

	HitboxShrink   = 0.7  // both boxes shrink by this factor before testing
	BoatHitboxLift = 0.35 // raises the boat's hitbox toward mast height vs airborne kinds
)
