package server

import "time"

const (
	ProtocolVersion = 1

	writeWait = 10 * time.Second

	tickRate        = 30 // simulation ticks per second
	catchupMaxTicks = 4  // largest stall absorbed in one clamped tick

	commandBufferCapacity = 64 // staged commands per session between ticks

	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval

	defaultSeed          = "regatta"
	defaultHighScorePath = "highscore.json"
)

// TickRate reports the simulation tick rate in Hz.
func TickRate() int { return tickRate }

// HeartbeatInterval reports how often clients are expected to ping.
func HeartbeatInterval() time.Duration { return heartbeatInterval }
