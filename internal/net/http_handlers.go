// Package net exposes the hub over HTTP and websockets. The browser client
// joins with a POST, then streams frequency snapshots and key events over a
// single socket while the hub pushes state frames back.
package net

import (
	"encoding/json"
	"io"
	"log"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"wakerunner/server"
	"wakerunner/server/internal/sim"
)

// HTTPHandlerConfig wires the handler's collaborators.
type HTTPHandlerConfig struct {
	ClientDir string
	Logger    *log.Logger

	// Telemetry supplies the metrics snapshot for /diagnostics; nil omits it.
	Telemetry func() map[string]uint64
}

// joinRequest is the body of POST /join. Every field is optional; the hub
// fills defaults for anything the setup screen leaves blank.
type joinRequest struct {
	Ver    int                  `json:"ver,omitempty"`
	Config server.SessionConfig `json:"config"`
}

// clientMessage is every frame a client can send over the socket. Bins carry
// the raw frequency snapshot, base64-encoded by encoding/json.
type clientMessage struct {
	Ver     int    `json:"ver,omitempty"`
	Type    string `json:"type"`
	Bins    []byte `json:"bins,omitempty"`
	Key     string `json:"key,omitempty"`
	Pressed bool   `json:"pressed,omitempty"`
	SentAt  int64  `json:"sentAt,omitempty"`
}

type heartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

// NewHTTPHandler builds the full route table for one hub.
func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			Sessions   any    `json:"sessions"`
			TickRate   int    `json:"tickRate"`
			Heartbeat  int64  `json:"heartbeatMillis"`
			HighScore  int    `json:"highScore"`
			Telemetry  any    `json:"telemetry,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Sessions:   hub.DiagnosticsSnapshot(),
			TickRate:   server.TickRate(),
			Heartbeat:  server.HeartbeatInterval().Milliseconds(),
			HighScore:  hub.HighScore(),
		}
		if cfg.Telemetry != nil {
			payload.Telemetry = cfg.Telemetry()
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/highscore", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		payload := struct {
			HighScore int `json:"highScore"`
		}{HighScore: hub.HighScore()}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/join", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		var req joinRequest
		if r.Body != nil {
			defer r.Body.Close()
			decoder := json.NewDecoder(r.Body)
			if err := decoder.Decode(&req); err != nil && err != io.EOF {
				httpError(w, "invalid payload", nethttp.StatusBadRequest)
				return
			}
		}

		join := hub.Join(req.Config)
		data, err := json.Marshal(join)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sessionID := r.URL.Query().Get("id")
		if sessionID == "" {
			httpError(w, "missing id", nethttp.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("upgrade failed for %s: %v", sessionID, err)
			return
		}

		initial, ok := hub.Subscribe(sessionID, conn)
		if !ok {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown session")
			conn.WriteMessage(websocket.CloseMessage, message)
			conn.Close()
			return
		}

		if err := hub.Send(sessionID, initial); err != nil {
			hub.Disconnect(sessionID, "initial_state_failed")
			return
		}

		readLoop(hub, logger, sessionID, conn)
	})

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

// readLoop drains one socket until it errors, staging commands on the hub.
func readLoop(hub *server.Hub, logger *log.Logger, sessionID string, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			hub.Disconnect(sessionID, "read_failed")
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Printf("discarding malformed message from %s: %v", sessionID, err)
			continue
		}

		switch msg.Type {
		case "start":
			hub.EnqueueCommand(sessionID, sim.Command{Type: sim.CommandStart})
		case "audio":
			if len(msg.Bins) == 0 {
				continue
			}
			hub.EnqueueCommand(sessionID, sim.Command{Type: sim.CommandAudioFrame, Bins: msg.Bins})
		case "key":
			key, ok := parseKey(msg.Key)
			if !ok {
				logger.Printf("unknown key %q from %s", msg.Key, sessionID)
				continue
			}
			cmdType := sim.CommandKeyUp
			if msg.Pressed {
				cmdType = sim.CommandKeyDown
			}
			hub.EnqueueCommand(sessionID, sim.Command{Type: cmdType, Key: key})
		case "heartbeat":
			now := time.Now()
			rtt, ok := hub.UpdateHeartbeat(sessionID, now, msg.SentAt)
			if !ok {
				continue
			}

			ack := heartbeatMessage{
				Ver:        server.ProtocolVersion,
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}

			data, err := json.Marshal(ack)
			if err != nil {
				logger.Printf("failed to marshal heartbeat ack for %s: %v", sessionID, err)
				continue
			}
			if err := hub.Send(sessionID, data); err != nil {
				hub.Disconnect(sessionID, "write_failed")
				return
			}
		default:
			logger.Printf("unknown message type %q from %s", msg.Type, sessionID)
		}
	}
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}

func parseKey(raw string) (sim.Key, bool) {
	switch sim.Key(strings.TrimSpace(strings.ToLower(raw))) {
	case sim.KeyJump:
		return sim.KeyJump, true
	case sim.KeyDive:
		return sim.KeyDive, true
	default:
		return "", false
	}
}
