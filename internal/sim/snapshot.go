package sim

import "wakerunner/server/internal/field"

// ObstacleView is the per-tick wire view of one obstacle. Positions are
// screen-space; the client never sees world offsets.
type ObstacleView struct {
	ID            string     `json:"id"`
	Kind          field.Kind `json:"kind"`
	X             float64    `json:"x"`
	Y             float64    `json:"y"`
	Tilt          float64    `json:"tilt"`
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
	FloatsOnWater bool       `json:"floatsOnWater"`
}

// LaneView is the per-tick wire view of one race lane.
type LaneView struct {
	Position float64 `json:"position"`
}

// Snapshot is an immutable per-tick view of a session. The engine copies all
// mutable state into it so the presentation side never shares memory with
// the simulation.
type Snapshot struct {
	Mode       Mode           `json:"mode"`
	Status     Status         `json:"status"`
	Tick       uint64         `json:"tick"`
	Score      int            `json:"score"`
	WaterLevel float64        `json:"waterLevel"`
	BoatY      float64        `json:"boatY"`
	BoatTilt   float64        `json:"boatTilt"`
	BoatMode   string         `json:"boatMode"`
	Obstacles  []ObstacleView `json:"obstacles,omitempty"`
	Lanes      []LaneView     `json:"lanes,omitempty"`
	Winner     int            `json:"winner"`
	Draw       bool           `json:"draw,omitempty"`
}

// Snapshot copies the engine's current presentation state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:   e.cfg.Mode,
		Status: e.status,
		Tick:   e.tick,
		Score:  e.score,
	}

	if e.cfg.Mode == ModeLanes {
		snap.Lanes = make([]LaneView, len(e.race.Lanes))
		for i := range e.race.Lanes {
			snap.Lanes[i] = LaneView{Position: e.race.Lanes[i].Position}
		}
		if e.race.Finished {
			snap.Winner = int(e.race.Result.Winner)
			snap.Draw = e.race.Result.Draw
		}
		return snap
	}

	snap.WaterLevel = e.surface.HeightAt(BoatScreenX, e.elapsed)
	snap.BoatY = e.boatY
	snap.BoatTilt = e.boatTilt
	snap.BoatMode = string(e.boat.Mode())

	live := e.field.Obstacles()
	if len(live) > 0 {
		snap.Obstacles = make([]ObstacleView, len(live))
		for i, o := range live {
			snap.Obstacles[i] = ObstacleView{
				ID:            o.ID,
				Kind:          o.Kind,
				X:             o.ScreenX,
				Y:             o.Y,
				Tilt:          o.Tilt,
				Width:         o.Config.Width,
				Height:        o.Config.Height,
				FloatsOnWater: o.Config.FloatsOnWater,
			}
		}
	}
	return snap
}
