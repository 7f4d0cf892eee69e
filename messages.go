package server

import "wakerunner/server/internal/sim"

type joinResponse struct {
	Ver       int           `json:"ver"`
	ID        string        `json:"id"`
	Config    SessionConfig `json:"config"`
	HighScore int           `json:"highScore"`
	TickRate  int           `json:"tickRate"`
}

type stateMessage struct {
	Ver        int          `json:"ver"`
	Type       string       `json:"type"`
	State      sim.Snapshot `json:"state"`
	HighScore  int          `json:"highScore"`
	ServerTime int64        `json:"serverTime"`
}

type diagnosticsSession struct {
	Ver           int    `json:"ver"`
	ID            string `json:"id"`
	Mode          string `json:"mode"`
	Status        string `json:"status"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}
