package server

import (
	"strings"

	"wakerunner/server/internal/signal"
	"wakerunner/server/internal/sim"
)

// SessionConfig is the client-supplied configuration captured at join time.
// Band boundaries come from the setup screen's sliders; they are immutable
// for the life of the session. Exported so the schema tool can reflect it.
type SessionConfig struct {
	Mode        string                 `json:"mode"`
	Seed        string                 `json:"seed"`
	DivisionBin int                    `json:"divisionBin,omitempty"`
	NoiseFloor  int                    `json:"noiseFloor,omitempty"`
	JumpBand    *signal.FrequencyRange `json:"jumpBand,omitempty"`
	DiveBand    *signal.FrequencyRange `json:"diveBand,omitempty"`
	RedBand     *signal.FrequencyRange `json:"redBand,omitempty"`
	BlueBand    *signal.FrequencyRange `json:"blueBand,omitempty"`
}

// Default lane bands: red listens low (humming), blue listens high
// (whistling). Calibration lives with the race package.
var (
	defaultRedBand  = signal.FrequencyRange{Start: 20, End: 220}
	defaultBlueBand = signal.FrequencyRange{Start: 400, End: 800}
)

// normalized returns a config with defaults applied and every band clamped
// to the snapshot size. A zero noise floor means "use the default"; the
// setup screen always sends an explicit floor when the player tunes one.
func (cfg SessionConfig) normalized() SessionConfig {
	out := cfg

	out.Mode = strings.TrimSpace(strings.ToLower(out.Mode))
	if out.Mode != string(sim.ModeLanes) {
		out.Mode = string(sim.ModeEndless)
	}

	out.Seed = strings.TrimSpace(out.Seed)
	if out.Seed == "" {
		out.Seed = defaultSeed
	}

	if out.DivisionBin <= 0 || out.DivisionBin > sim.MaxBins {
		out.DivisionBin = sim.DefaultDivisionBin
	}
	if out.NoiseFloor <= 0 || out.NoiseFloor > 254 {
		out.NoiseFloor = sim.DefaultNoiseFloor
	}

	out.JumpBand = clampBand(out.JumpBand)
	out.DiveBand = clampBand(out.DiveBand)
	out.RedBand = clampBand(out.RedBand)
	out.BlueBand = clampBand(out.BlueBand)
	return out
}

func clampBand(band *signal.FrequencyRange) *signal.FrequencyRange {
	if band == nil {
		return nil
	}
	clamped := band.Clamped(sim.MaxBins)
	if clamped.Empty() {
		return nil
	}
	return &clamped
}

// engineConfig maps the normalized wire config onto the simulation config.
func (cfg SessionConfig) engineConfig() sim.Config {
	engineCfg := sim.Config{
		Mode:       sim.Mode(cfg.Mode),
		Seed:       cfg.Seed,
		NoiseFloor: cfg.NoiseFloor,
	}

	bands := signal.SplitAt(cfg.DivisionBin, sim.MaxBins)
	if cfg.JumpBand != nil {
		bands.Jump = *cfg.JumpBand
	}
	if cfg.DiveBand != nil {
		bands.Dive = *cfg.DiveBand
	}
	engineCfg.Bands = bands

	engineCfg.RedBand = defaultRedBand
	if cfg.RedBand != nil {
		engineCfg.RedBand = *cfg.RedBand
	}
	engineCfg.BlueBand = defaultBlueBand
	if cfg.BlueBand != nil {
		engineCfg.BlueBand = *cfg.BlueBand
	}
	return engineCfg
}
