// Package field owns the scrolling obstacle course: spawn scheduling, type
// selection, per-tick screen positioning, collision testing, and cleanup.
// All randomness comes from an injected, deterministically seeded RNG so a
// run is replayable from its seed.
package field

import "sort"

// Kind names an obstacle type.
type Kind string

const (
	// Floating obstacles ride the wave and are cleared by jumping.
	KindBuoy    Kind = "buoy"
	KindLogBoom Kind = "log-boom"
	// Airborne obstacles hang at a fixed height and are cleared by diving.
	KindGullLine Kind = "gull-line"
	KindNetArch  Kind = "net-arch"
)

// Config describes an obstacle type's shape and collision corrections.
// HitboxOffsetX shifts the hitbox off the visual center toward the shape's
// business end; values are tuned by feel.
type Config struct {
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Depth         float64 `json:"depth"`
	BaseY         float64 `json:"baseY"`
	FloatsOnWater bool    `json:"floatsOnWater"`
	HitboxOffsetX float64 `json:"hitboxOffsetX"`
}

// fallbackConfig stands in for any kind missing from the registry: a plain
// floating crate the renderer can always draw. A sparse registry degrades to
// this shape instead of crashing.
var fallbackConfig = Config{
	Width:         1.2,
	Height:        1.2,
	Depth:         1.2,
	FloatsOnWater: true,
}

// Registry maps obstacle kinds to their spawn configs. It replaces load-order
// side effects around shared model assets: the field receives a registry up
// front and never reaches into global state.
type Registry struct {
	configs map[Kind]Config
}

// NewRegistry returns the default obstacle catalog.
func NewRegistry() *Registry {
	r := &Registry{configs: make(map[Kind]Config)}
	r.Register(KindBuoy, Config{Width: 1.0, Height: 1.6, Depth: 1.0, FloatsOnWater: true})
	r.Register(KindLogBoom, Config{Width: 2.6, Height: 0.8, Depth: 1.0, FloatsOnWater: true, HitboxOffsetX: -0.3})
	r.Register(KindGullLine, Config{Width: 2.2, Height: 0.7, Depth: 0.8, BaseY: 1.7})
	r.Register(KindNetArch, Config{Width: 1.8, Height: 1.1, Depth: 1.0, BaseY: 1.4, HitboxOffsetX: 0.2})
	return r
}

// Register adds or replaces a kind's config.
func (r *Registry) Register(kind Kind, cfg Config) {
	if r.configs == nil {
		r.configs = make(map[Kind]Config)
	}
	r.configs[kind] = cfg
}

// Lookup returns the config for kind, or the documented fallback shape when
// the kind was never registered.
func (r *Registry) Lookup(kind Kind) Config {
	if r == nil {
		return fallbackConfig
	}
	if cfg, ok := r.configs[kind]; ok {
		return cfg
	}
	return fallbackConfig
}

// Kinds returns every registered kind in a stable order so RNG draws stay
// reproducible across runs with the same seed.
func (r *Registry) Kinds() []Kind {
	if r == nil || len(r.configs) == 0 {
		return nil
	}
	kinds := make([]Kind, 0, len(r.configs))
	for kind := range r.configs {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
