// Package race implements the two-lane mode: two frequency bands race two
// boats to a finish line, no jump/dive machinery involved. Each lane feeds
// the band-loudness score straight into a forward accumulator.
package race

import "wakerunner/server/internal/signal"

// LaneID indexes the two competing lanes.
type LaneID int

const (
	LaneRed LaneID = iota
	LaneBlue
)

const (
	// FinishLine is the normalized track length.
	FinishLine = 1.0
	// BaseSpeed is progress per second at full loudness before the lane
	// boost is applied.
	BaseSpeed = 0.16

	// Per-lane calibration. Narrow-band input (whistling) concentrates its
	// energy in a handful of bins while broadband input (humming) spreads
	// thinly across many, so the high band needs extra gain for both lanes
	// to feel equally responsive.
	RedBoost  = 1.0
	BlueBoost = 2.6
)

// Lane is one boat's band assignment and progress. Position is the clamped
// value for display; the unclamped accumulator breaks same-tick finishes.
type Lane struct {
	Band     signal.FrequencyRange
	Boost    float64
	Position float64

	accumulated float64
}

// Result reports how a race ended. Draw is set on an exact accumulator tie,
// in which case Winner falls back to the lower lane index.
type Result struct {
	Winner LaneID
	Draw   bool
}

// Race is the two-lane state for one round.
type Race struct {
	Lanes    [2]Lane
	Finished bool
	Result   Result

	noiseFloor int
}

// New builds a round with the given band assignments.
func New(red, blue signal.FrequencyRange, noiseFloor int) *Race {
	return &Race{
		Lanes: [2]Lane{
			{Band: red, Boost: RedBoost},
			{Band: blue, Boost: BlueBoost},
		},
		noiseFloor: noiseFloor,
	}
}

// Step advances both lanes from one frequency snapshot. A nil sample is a
// silent tick and moves nothing. Once the race is finished further steps are
// no-ops.
func (r *Race) Step(sample []byte, dt float64) {
	if r.Finished || dt <= 0 {
		return
	}

	for i := range r.Lanes {
		lane := &r.Lanes[i]
		loudness := signal.Average(sample, lane.Band.Start, lane.Band.End, r.noiseFloor)
		lane.accumulated += loudness * BaseSpeed * lane.Boost * dt
		lane.Position = lane.accumulated
		if lane.Position > FinishLine {
			lane.Position = FinishLine
		}
	}

	redDone := r.Lanes[LaneRed].accumulated >= FinishLine
	blueDone := r.Lanes[LaneBlue].accumulated >= FinishLine
	if !redDone && !blueDone {
		return
	}

	r.Finished = true
	switch {
	case redDone && !blueDone:
		r.Result = Result{Winner: LaneRed}
	case blueDone && !redDone:
		r.Result = Result{Winner: LaneBlue}
	default:
		// Both crossed in the same tick: the larger unclamped accumulator
		// wins. An exact float tie is declared a draw and reported against
		// the lower lane index so the outcome is stable, never arbitrary.
		redAcc := r.Lanes[LaneRed].accumulated
		blueAcc := r.Lanes[LaneBlue].accumulated
		switch {
		case redAcc > blueAcc:
			r.Result = Result{Winner: LaneRed}
		case blueAcc > redAcc:
			r.Result = Result{Winner: LaneBlue}
		default:
			r.Result = Result{Winner: LaneRed, Draw: true}
		}
	}
}

// Reset returns both lanes to the start line for a rematch, keeping the band
// assignments and calibration.
func (r *Race) Reset() {
	for i := range r.Lanes {
		r.Lanes[i].Position = 0
		r.Lanes[i].accumulated = 0
	}
	r.Finished = false
	r.Result = Result{}
}
