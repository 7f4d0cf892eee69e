// Package sim runs the authoritative per-session simulation: it drains staged
// input commands once per tick, drives the boat physics and obstacle field in
// a fixed order, and produces immutable snapshots for broadcasting.
package sim

import (
	"math"

	"wakerunner/server/internal/field"
	"wakerunner/server/internal/physics"
	"wakerunner/server/internal/race"
	"wakerunner/server/internal/signal"
	"wakerunner/server/internal/wave"
)

// Mode selects which game a session runs.
type Mode string

const (
	// ModeEndless is the single-boat runner: jump and dive past obstacles.
	ModeEndless Mode = "endless"
	// ModeLanes is the two-lane race: two bands race to a finish line.
	ModeLanes Mode = "lanes"
)

// Status is the session's lifecycle state.
type Status string

const (
	StatusReady    Status = "ready"
	StatusRacing   Status = "racing"
	StatusGameOver Status = "game-over"
	StatusFinished Status = "finished"
)

// Config fixes a session's rules at join time. Band ranges are immutable for
// the duration of a run; a new join carries new bands.
type Config struct {
	Mode       Mode
	Seed       string
	Bands      signal.Bands
	RedBand    signal.FrequencyRange
	BlueBand   signal.FrequencyRange
	NoiseFloor int

	// Registry overrides the obstacle catalog; nil uses the default.
	Registry *field.Registry
}

// EventKind labels the notable transitions an engine reports per tick.
type EventKind string

const (
	EventRaceStarted     EventKind = "race_started"
	EventJumped          EventKind = "jumped"
	EventDove            EventKind = "dove"
	EventObstacleSpawned EventKind = "obstacle_spawned"
	EventCollision       EventKind = "collision"
	EventRaceFinished    EventKind = "race_finished"
)

// Event is one notable transition, surfaced so the hub can log and persist
// without the engine knowing about sinks or stores.
type Event struct {
	Kind         EventKind
	ObstacleID   string
	ObstacleKind field.Kind
	WorldX       float64
	Score        int
	Source       string
	Winner       race.LaneID
	Draw         bool
}

// Engine is the authoritative state for one session. It is not safe for
// concurrent use; the hub serializes all access under its tick.
type Engine struct {
	cfg     Config
	status  Status
	tick    uint64
	elapsed float64

	// Endless-runner state.
	worldOffset float64
	boat        physics.State
	boatY       float64
	boatTilt    float64
	surface     wave.Surface
	field       *field.Field
	score       int

	// Two-lane state.
	race *race.Race

	// Input gathered for the next step. The frame is consumed by exactly one
	// tick; keyboard levels persist until the matching key-up.
	frame       []byte
	jumpKeyDown bool
	jumpEdge    bool
	diveKeyDown bool
	justStarted bool

	events []Event
}

// NewEngine builds a session engine from its join-time config.
func NewEngine(cfg Config) *Engine {
	if cfg.Mode == "" {
		cfg.Mode = ModeEndless
	}
	surface := wave.DefaultSurface()
	e := &Engine{
		cfg:     cfg,
		status:  StatusReady,
		surface: surface,
	}
	switch cfg.Mode {
	case ModeLanes:
		e.race = race.New(cfg.RedBand, cfg.BlueBand, cfg.NoiseFloor)
	default:
		rng := NewDeterministicRNG(cfg.Seed, "field")
		e.field = field.New(rng, cfg.Registry, surface, ScrollSpeed)
	}
	return e
}

// Status reports the session lifecycle state.
func (e *Engine) Status() Status { return e.status }

// Tick reports the number of steps taken.
func (e *Engine) Tick() uint64 { return e.tick }

// Score reports the current derived score.
func (e *Engine) Score() int { return e.score }

// Apply stages a batch of drained commands into the engine's input state.
// This is the single serialized input-collection point: audio and keyboard
// sources are merged here, before the step evaluates triggers, so no listener
// ordering can bypass the state-machine invariants.
func (e *Engine) Apply(cmds []Command) {
	for _, cmd := range cmds {
		switch cmd.Type {
		case CommandStart:
			e.start()
		case CommandAudioFrame:
			if len(cmd.Bins) <= MaxBins {
				e.frame = cmd.Bins
			}
		case CommandKeyDown:
			switch cmd.Key {
			case KeyJump:
				if !e.jumpKeyDown {
					e.jumpKeyDown = true
					e.jumpEdge = true
				}
			case KeyDive:
				e.diveKeyDown = true
			}
		case CommandKeyUp:
			switch cmd.Key {
			case KeyJump:
				e.jumpKeyDown = false
			case KeyDive:
				e.diveKeyDown = false
			}
		}
	}
}

func (e *Engine) start() {
	if e.status == StatusRacing {
		return
	}
	e.status = StatusRacing
	e.elapsed = 0
	e.worldOffset = 0
	e.score = 0
	e.boat.Reset()
	e.boatY = 0
	e.boatTilt = 0
	if e.field != nil {
		e.field.Reset()
	}
	if e.race != nil {
		e.race.Reset()
	}
	e.justStarted = true
	e.events = append(e.events, Event{Kind: EventRaceStarted})
}

// Step advances the session by dt seconds. Within one step the order is
// fixed: cooldown decay, trigger evaluation, state integration, obstacle
// spawn then update, collision check against the post-integration position,
// cleanup. The staged audio frame is consumed whether or not it fired.
func (e *Engine) Step(dt float64) {
	e.tick++
	if e.status != StatusRacing || dt <= 0 {
		e.frame = nil
		e.jumpEdge = false
		return
	}
	if e.justStarted {
		// The tick that consumed the start command presents the pristine
		// world; integration begins on the next tick so the first snapshot
		// after a (re)start always shows offset and score at zero.
		e.justStarted = false
		e.frame = nil
		e.jumpEdge = false
		return
	}
	e.elapsed += dt

	if e.cfg.Mode == ModeLanes {
		e.stepLanes(dt)
	} else {
		e.stepEndless(dt)
	}

	e.frame = nil
	e.jumpEdge = false
}

func (e *Engine) stepLanes(dt float64) {
	e.race.Step(e.frame, dt)
	if e.race.Finished {
		e.status = StatusFinished
		e.events = append(e.events, Event{
			Kind:   EventRaceFinished,
			Winner: e.race.Result.Winner,
			Draw:   e.race.Result.Draw,
		})
	}
}

func (e *Engine) stepEndless(dt float64) {
	e.boat.DecayCooldown(dt)

	jumpLoudness := signal.Average(e.frame, e.cfg.Bands.Jump.Start, e.cfg.Bands.Jump.End, e.cfg.NoiseFloor)
	diveLoudness := signal.Average(e.frame, e.cfg.Bands.Dive.Start, e.cfg.Bands.Dive.End, e.cfg.NoiseFloor)

	wantJump := e.jumpEdge || jumpLoudness > physics.ActionThreshold
	wantDive := e.diveKeyDown || diveLoudness > physics.ActionThreshold

	// Jump first, dive only otherwise; ties always resolve to jump no matter
	// which input source raised them.
	if wantJump {
		if e.boat.TriggerJump() {
			e.events = append(e.events, Event{Kind: EventJumped, Source: triggerSource(e.jumpEdge, jumpLoudness)})
		}
	} else if wantDive {
		if e.boat.TriggerDive() {
			e.events = append(e.events, Event{Kind: EventDove, Source: triggerSource(e.diveKeyDown, diveLoudness)})
		}
	}

	waterLevel := e.surface.HeightAt(BoatScreenX, e.elapsed)
	e.boatY = e.boat.Advance(dt, waterLevel, wantDive)
	if e.boat.Idle() {
		e.boatTilt = e.surface.TiltAt(BoatScreenX, e.elapsed)
	} else {
		e.boatTilt = 0
	}

	e.worldOffset += ScrollSpeed * dt
	if o := e.field.TrySpawn(e.worldOffset); o != nil {
		e.events = append(e.events, Event{
			Kind:         EventObstacleSpawned,
			ObstacleID:   o.ID,
			ObstacleKind: o.Kind,
			WorldX:       o.WorldX,
		})
	}
	e.field.UpdateAll(e.worldOffset, e.elapsed)

	e.score = int(math.Floor(e.worldOffset * ScoreCoefficient))

	if o, hit := e.field.CheckCollision(BoatScreenX, e.boatY, BoatWidth, BoatHeight); hit {
		e.status = StatusGameOver
		e.events = append(e.events, Event{
			Kind:         EventCollision,
			ObstacleID:   o.ID,
			ObstacleKind: o.Kind,
			Score:        e.score,
		})
	}

	e.field.RemoveOffScreen(e.worldOffset)
}

func triggerSource(keyboard bool, loudness float64) string {
	if loudness > physics.ActionThreshold {
		return "audio"
	}
	if keyboard {
		return "keyboard"
	}
	return "audio"
}

// DrainEvents returns and clears the events accumulated since the last call.
func (e *Engine) DrainEvents() []Event {
	if len(e.events) == 0 {
		return nil
	}
	events := e.events
	e.events = nil
	return events
}
