package sim

import (
	"time"

	"wakerunner/server/logging"
)

// LoopConfig tunes the fixed-timestep runner.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	Clock           logging.Clock
}

// TickContext carries per-tick timing into the advancer.
type TickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// TickReport is handed to the AfterTick hook with timing observations.
type TickReport struct {
	TickContext
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
}

// Advancer is the simulation surface the loop drives once per tick.
type Advancer interface {
	Advance(ctx TickContext)
}

// LoopHooks lets the owner observe the loop without subclassing it.
type LoopHooks struct {
	AfterTick func(TickReport)
}

// Loop drives an Advancer at a fixed tick rate. Wall-clock stalls are clamped
// to a bounded catch-up delta so a paused process does not fast-forward the
// world in one giant step.
type Loop struct {
	adv   Advancer
	cfg   LoopConfig
	hooks LoopHooks
}

// NewLoop wraps the advancer with a fixed-timestep runner.
func NewLoop(adv Advancer, cfg LoopConfig, hooks LoopHooks) *Loop {
	if adv == nil {
		return nil
	}
	return &Loop{adv: adv, cfg: cfg, hooks: hooks}
}

// Run drives ticks until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.cfg.TickRate
	if tickRate <= 0 {
		tickRate = 30
	}
	clock := l.cfg.Clock
	if clock == nil {
		clock = logging.SystemClock{}
	}

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	budgetSeconds := 1.0 / float64(tickRate)
	maxDelta := budgetSeconds
	if l.cfg.CatchupMaxTicks > 1 {
		maxDelta = budgetSeconds * float64(l.cfg.CatchupMaxTicks)
	}
	budget := time.Second / time.Duration(tickRate)

	last := clock.Now()
	var tick uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDelta {
				dt = maxDelta
				clamped = true
			}
			last = now
			tick++

			ctx := TickContext{Tick: tick, Now: now, Delta: dt}
			start := clock.Now()
			l.adv.Advance(ctx)

			if l.hooks.AfterTick != nil {
				l.hooks.AfterTick(TickReport{
					TickContext:  ctx,
					Duration:     clock.Now().Sub(start),
					Budget:       budget,
					ClampedDelta: clamped,
				})
			}
		}
	}
}
