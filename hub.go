// Package server owns the live sessions: it stages client input, drives each
// session's simulation engine once per tick, and broadcasts immutable state
// snapshots back over websockets.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"wakerunner/server/internal/scores"
	"wakerunner/server/internal/sim"
	"wakerunner/server/internal/telemetry"
	"wakerunner/server/logging"
	"wakerunner/server/logging/gameplay"
	"wakerunner/server/logging/lifecycle"
	loggingNetwork "wakerunner/server/logging/network"
	loggingSim "wakerunner/server/logging/simulation"
)

// HubConfig tunes the hub's loop, queues, and persistence.
type HubConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	HighScorePath   string
	Logger          telemetry.Logger
	Metrics         telemetry.Metrics
}

// DefaultHubConfig mirrors production tuning.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		TickRate:        tickRate,
		CatchupMaxTicks: catchupMaxTicks,
		CommandCapacity: commandBufferCapacity,
		HighScorePath:   defaultHighScorePath,
	}
}

// Hub owns every live session and the shared high-score store.
type Hub struct {
	mu       sync.Mutex
	cfg      HubConfig
	sessions map[string]*session
	nextID   atomic.Uint64
	tick     uint64

	scores    *scores.Store
	publisher logging.Publisher
	logger    telemetry.Logger
	metrics   telemetry.Metrics
}

type session struct {
	id            string
	config        SessionConfig
	engine        *sim.Engine
	buffer        *sim.CommandBuffer
	sub           *subscriber
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewHub constructs a hub, loading the persisted high score.
func NewHub(cfg HubConfig, publisher logging.Publisher) (*Hub, error) {
	if cfg.TickRate <= 0 {
		cfg.TickRate = tickRate
	}
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = commandBufferCapacity
	}
	if cfg.HighScorePath == "" {
		cfg.HighScorePath = defaultHighScorePath
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	store, err := scores.Open(cfg.HighScorePath)
	if err != nil {
		return nil, fmt.Errorf("open high score store: %w", err)
	}

	return &Hub{
		cfg:       cfg,
		sessions:  make(map[string]*session),
		scores:    store,
		publisher: publisher,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}, nil
}

// Join registers a new session and returns its join payload.
func (h *Hub) Join(cfg SessionConfig) joinResponse {
	normalized := cfg.normalized()
	id := fmt.Sprintf("session-%d", h.nextID.Add(1))

	s := &session{
		id:            id,
		config:        normalized,
		engine:        sim.NewEngine(normalized.engineConfig()),
		buffer:        sim.NewCommandBuffer(h.cfg.CommandCapacity, h.metrics),
		lastHeartbeat: time.Now(),
	}

	h.mu.Lock()
	h.sessions[id] = s
	tick := h.tick
	h.mu.Unlock()

	lifecycle.SessionJoined(context.Background(), h.publisher, tick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindSession},
		lifecycle.SessionJoinedPayload{Mode: normalized.Mode, Seed: normalized.Seed}, nil)

	return joinResponse{
		Ver:       ProtocolVersion,
		ID:        id,
		Config:    normalized,
		HighScore: h.scores.Best(),
		TickRate:  h.cfg.TickRate,
	}
}

// Subscribe associates a websocket connection with an existing session and
// returns the marshaled initial state payload.
func (h *Hub) Subscribe(sessionID string, conn *websocket.Conn) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return nil, false
	}

	s.lastHeartbeat = time.Now()
	if s.sub != nil {
		s.sub.conn.Close()
	}
	s.sub = &subscriber{conn: conn}

	data, err := json.Marshal(h.stateMessageLocked(s))
	if err != nil {
		h.logger.Printf("failed to marshal initial state for %s: %v", sessionID, err)
		return nil, false
	}
	return data, true
}

// Send writes a payload to the session's subscriber, serialized against the
// broadcast path.
func (h *Hub) Send(sessionID string, data []byte) error {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	var sub *subscriber
	if ok {
		sub = s.sub
	}
	h.mu.Unlock()

	if sub == nil {
		return fmt.Errorf("no subscriber for %s", sessionID)
	}
	return sub.write(data)
}

// Disconnect removes a session and closes its connection.
func (h *Hub) Disconnect(sessionID, reason string) {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if ok {
		delete(h.sessions, sessionID)
	}
	tick := h.tick
	h.mu.Unlock()

	if !ok {
		return
	}
	if s.sub != nil {
		s.sub.conn.Close()
	}
	lifecycle.SessionDisconnected(context.Background(), h.publisher, tick,
		logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
		lifecycle.SessionDisconnectedPayload{Reason: reason}, nil)
}

// EnqueueCommand stages one input command for the session's next tick. It
// reports whether the command was accepted.
func (h *Hub) EnqueueCommand(sessionID string, cmd sim.Command) bool {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	tick := h.tick
	h.mu.Unlock()
	if !ok {
		return false
	}

	cmd.ActorID = sessionID
	if !s.buffer.Push(cmd) {
		loggingNetwork.CommandRejected(context.Background(), h.publisher, tick,
			logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
			loggingNetwork.CommandRejectedPayload{Command: string(cmd.Type), Reason: "queue_full"})
		return false
	}
	return true
}

// UpdateHeartbeat records the most recent heartbeat time and RTT.
func (h *Hub) UpdateHeartbeat(sessionID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return 0, false
	}

	s.lastHeartbeat = receivedAt
	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			s.lastRTT = rtt
		}
	}
	return s.lastRTT, true
}

// HighScore reports the persisted best score.
func (h *Hub) HighScore() int {
	return h.scores.Best()
}

type outboundState struct {
	sessionID string
	sub       *subscriber
	data      []byte
}

// Advance runs one tick for every session. It implements sim.Advancer; the
// loop calls it exactly once per tick so no two ticks ever interleave.
func (h *Hub) Advance(ctx sim.TickContext) {
	now := ctx.Now

	h.mu.Lock()
	h.tick = ctx.Tick

	var stale []string
	outbound := make([]outboundState, 0, len(h.sessions))
	for id, s := range h.sessions {
		if now.Sub(s.lastHeartbeat) > disconnectAfter {
			stale = append(stale, id)
			continue
		}

		s.engine.Apply(s.buffer.Drain())
		s.engine.Step(ctx.Delta)
		h.handleEventsLocked(s, ctx.Tick)

		if s.sub != nil {
			msg := h.stateMessageLocked(s)
			if data, err := json.Marshal(msg); err == nil {
				outbound = append(outbound, outboundState{sessionID: id, sub: s.sub, data: data})
			} else {
				h.logger.Printf("failed to marshal state for %s: %v", id, err)
			}
		}
	}
	h.mu.Unlock()

	for _, id := range stale {
		h.logger.Printf("disconnecting %s due to heartbeat timeout", id)
		h.Disconnect(id, "heartbeat_timeout")
	}

	for _, out := range outbound {
		if err := out.sub.write(out.data); err != nil {
			loggingNetwork.SendFailed(context.Background(), h.publisher, ctx.Tick,
				logging.EntityRef{ID: out.sessionID, Kind: logging.EntityKindSession},
				loggingNetwork.SendFailedPayload{Error: err.Error()})
			h.Disconnect(out.sessionID, "write_failed")
		}
	}
}

// handleEventsLocked publishes the engine's tick events and persists any new
// high score at game over.
func (h *Hub) handleEventsLocked(s *session, tick uint64) {
	events := s.engine.DrainEvents()
	if len(events) == 0 {
		return
	}

	ctx := context.Background()
	actor := logging.EntityRef{ID: s.id, Kind: logging.EntityKindSession}
	for _, event := range events {
		switch event.Kind {
		case sim.EventRaceStarted:
			gameplay.RaceStarted(ctx, h.publisher, tick, actor,
				gameplay.RaceStartedPayload{Mode: s.config.Mode, Seed: s.config.Seed})
		case sim.EventJumped:
			gameplay.ActionTriggered(ctx, h.publisher, tick, actor,
				gameplay.ActionTriggeredPayload{Action: "jump", Source: event.Source})
		case sim.EventDove:
			gameplay.ActionTriggered(ctx, h.publisher, tick, actor,
				gameplay.ActionTriggeredPayload{Action: "dive", Source: event.Source})
		case sim.EventObstacleSpawned:
			gameplay.ObstacleSpawned(ctx, h.publisher, tick, actor,
				logging.EntityRef{ID: event.ObstacleID, Kind: logging.EntityKindObstacle},
				gameplay.ObstacleSpawnedPayload{Kind: string(event.ObstacleKind), WorldX: event.WorldX})
		case sim.EventCollision:
			gameplay.Collision(ctx, h.publisher, tick, actor,
				logging.EntityRef{ID: event.ObstacleID, Kind: logging.EntityKindObstacle},
				gameplay.CollisionPayload{Kind: string(event.ObstacleKind), Score: event.Score})
			h.recordScore(s, tick, event.Score)
		case sim.EventRaceFinished:
			gameplay.RaceFinished(ctx, h.publisher, tick, actor,
				gameplay.RaceFinishedPayload{Winner: int(event.Winner), Draw: event.Draw})
		}
	}
}

func (h *Hub) recordScore(s *session, tick uint64, score int) {
	improved, previous, err := h.scores.Record(score)
	if err != nil {
		h.logger.Printf("failed to persist high score for %s: %v", s.id, err)
		return
	}
	if improved {
		gameplay.HighScore(context.Background(), h.publisher, tick,
			logging.EntityRef{ID: s.id, Kind: logging.EntityKindSession},
			gameplay.HighScorePayload{Score: score, Previous: previous})
	}
}

func (h *Hub) stateMessageLocked(s *session) stateMessage {
	return stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		State:      s.engine.Snapshot(),
		HighScore:  h.scores.Best(),
		ServerTime: time.Now().UnixMilli(),
	}
}

func (sub *subscriber) write(data []byte) error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sub.conn.WriteMessage(websocket.TextMessage, data)
}

// DiagnosticsSnapshot exposes session heartbeat data for the diagnostics
// endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsSession {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions := make([]diagnosticsSession, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, diagnosticsSession{
			Ver:           ProtocolVersion,
			ID:            s.id,
			Mode:          s.config.Mode,
			Status:        string(s.engine.Status()),
			LastHeartbeat: s.lastHeartbeat.UnixMilli(),
			RTTMillis:     s.lastRTT.Milliseconds(),
		})
	}
	return sessions
}

// RunSimulation drives the fixed-rate tick loop until the stop channel
// closes, reporting tick budget overruns through the event log.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	loop := sim.NewLoop(h, sim.LoopConfig{
		TickRate:        h.cfg.TickRate,
		CatchupMaxTicks: h.cfg.CatchupMaxTicks,
	}, sim.LoopHooks{
		AfterTick: func(report sim.TickReport) {
			if report.Duration <= report.Budget {
				return
			}
			loggingSim.TickBudgetOverrun(context.Background(), h.publisher, report.Tick,
				loggingSim.TickBudgetOverrunPayload{
					DurationMillis: report.Duration.Milliseconds(),
					BudgetMillis:   report.Budget.Milliseconds(),
					Ratio:          float64(report.Duration) / float64(report.Budget),
				}, nil)
			if h.metrics != nil {
				h.metrics.Add("hub_tick_budget_overruns_total", 1)
			}
		},
	})
	loop.Run(stop)
}
