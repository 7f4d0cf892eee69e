package field

import (
	"fmt"
	"math/rand"

	"wakerunner/server/internal/wave"
)

// Obstacle is one live course entity. WorldX is fixed at spawn time; the
// screen position is derived every tick from the current world offset and
// never stored authoritatively.
type Obstacle struct {
	ID     string  `json:"id"`
	Kind   Kind    `json:"kind"`
	WorldX float64 `json:"-"`
	Config Config  `json:"config"`

	// Derived per tick by UpdateAll.
	ScreenX float64 `json:"x"`
	Y       float64 `json:"y"`
	Tilt    float64 `json:"tilt"`
}

// Field manages the live obstacle set for one run.
type Field struct {
	rng         *rand.Rand
	registry    *Registry
	surface     wave.Surface
	scrollSpeed float64

	obstacles  []*Obstacle
	history    []Kind
	lastSpawnX float64
	hasSpawned bool
	nextID     uint64
}

// New constructs a field. The RNG must be seeded by the caller; the registry
// may be sparse (missing kinds fall back to a default shape).
func New(rng *rand.Rand, registry *Registry, surface wave.Surface, scrollSpeed float64) *Field {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Field{
		rng:         rng,
		registry:    registry,
		surface:     surface,
		scrollSpeed: scrollSpeed,
	}
}

// Obstacles exposes the live set in spawn order. Callers must treat the
// returned slice as read-only; the field repositions entries each tick.
func (f *Field) Obstacles() []*Obstacle {
	return f.obstacles
}

// TrySpawn spawns at most one obstacle ahead of the visible window and
// returns it, or nil when spawn conditions are not met. The start of a run
// gets a grace period, and spacing between spawns is randomized so the course
// never falls into a mechanical rhythm.
func (f *Field) TrySpawn(worldOffset float64) *Obstacle {
	if f.scrollSpeed <= 0 {
		return nil
	}
	if worldOffset/f.scrollSpeed <= SpawnDelaySeconds {
		return nil
	}

	spawnX := worldOffset + SpawnDistance
	if f.hasSpawned {
		gap := MinGap + f.rng.Float64()*GapVariance
		if spawnX-f.lastSpawnX < gap {
			return nil
		}
	}

	kind, ok := f.pickKind()
	if !ok {
		return nil
	}

	f.nextID++
	obstacle := &Obstacle{
		ID:     fmt.Sprintf("obstacle-%d", f.nextID),
		Kind:   kind,
		WorldX: spawnX,
		Config: f.registry.Lookup(kind),
	}
	f.obstacles = append(f.obstacles, obstacle)
	f.lastSpawnX = spawnX
	f.hasSpawned = true
	f.recordKind(kind)
	return obstacle
}

// pickKind draws a kind from the full catalog, excluding the most recent kind
// once its trailing run reaches MaxDuplication so the player never faces a
// run they cannot react to.
func (f *Field) pickKind() (Kind, bool) {
	kinds := f.registry.Kinds()
	if len(kinds) == 0 {
		return "", false
	}

	if run, length := f.trailingRun(); length >= MaxDuplication && len(kinds) > 1 {
		filtered := kinds[:0]
		for _, kind := range kinds {
			if kind != run {
				filtered = append(filtered, kind)
			}
		}
		kinds = filtered
	}

	return kinds[f.rng.Intn(len(kinds))], true
}

// trailingRun reports the most recent kind and how many times it repeats at
// the end of the history.
func (f *Field) trailingRun() (Kind, int) {
	if len(f.history) == 0 {
		return "", 0
	}
	last := f.history[len(f.history)-1]
	length := 0
	for i := len(f.history) - 1; i >= 0 && f.history[i] == last; i-- {
		length++
	}
	return last, length
}

func (f *Field) recordKind(kind Kind) {
	f.history = append(f.history, kind)
	if len(f.history) > HistoryCap {
		f.history = f.history[len(f.history)-HistoryCap:]
	}
}

// UpdateAll re-derives every obstacle's screen position for this tick.
// Floating kinds ride the same wave function as the boat and pick up the
// local surface tilt; airborne kinds hold their configured height.
func (f *Field) UpdateAll(worldOffset, elapsed float64) {
	for _, o := range f.obstacles {
		o.ScreenX = o.WorldX - worldOffset
		if o.Config.FloatsOnWater {
			o.Y = f.surface.HeightAt(o.ScreenX, elapsed)
			o.Tilt = f.surface.TiltAt(o.ScreenX, elapsed)
		} else {
			o.Y = o.Config.BaseY
			o.Tilt = 0
		}
	}
}

// RemoveOffScreen drops obstacles whose screen X has fallen behind the
// trailing cutoff and returns their IDs so the caller can release client-side
// resources.
func (f *Field) RemoveOffScreen(worldOffset float64) []string {
	var removed []string
	kept := f.obstacles[:0]
	for _, o := range f.obstacles {
		if o.WorldX-worldOffset < OffscreenCutoff {
			removed = append(removed, o.ID)
			continue
		}
		kept = append(kept, o)
	}
	for i := len(kept); i < len(f.obstacles); i++ {
		f.obstacles[i] = nil
	}
	f.obstacles = kept
	return removed
}

// Reset clears all live obstacles, the anti-repeat history, and the spacing
// marker. Called at the start of every run.
func (f *Field) Reset() {
	for i := range f.obstacles {
		f.obstacles[i] = nil
	}
	f.obstacles = f.obstacles[:0]
	f.history = f.history[:0]
	f.lastSpawnX = 0
	f.hasSpawned = false
}
