package lifecycle

import (
	"context"

	"wakerunner/server/logging"
)

const (
	// EventSessionJoined is emitted when a player opens a session.
	EventSessionJoined logging.EventType = "lifecycle.session_joined"
	// EventSessionDisconnected is emitted when a session ends.
	EventSessionDisconnected logging.EventType = "lifecycle.session_disconnected"
)

// SessionJoinedPayload captures how a new session was configured.
type SessionJoinedPayload struct {
	Mode string `json:"mode"`
	Seed string `json:"seed"`
}

// SessionDisconnectedPayload captures why a session ended.
type SessionDisconnectedPayload struct {
	Reason string `json:"reason"`
}

// SessionJoined publishes a session join event.
func SessionJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SessionJoinedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

// SessionDisconnected publishes a session end event.
func SessionDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SessionDisconnectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionDisconnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}
