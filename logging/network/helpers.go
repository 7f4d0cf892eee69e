package network

import (
	"context"

	"wakerunner/server/logging"
)

const (
	// EventSendFailed is emitted when a state broadcast to a subscriber fails.
	EventSendFailed logging.EventType = "network.send_failed"
	// EventCommandRejected is emitted when a staged command is dropped.
	EventCommandRejected logging.EventType = "network.command_rejected"
)

type SendFailedPayload struct {
	Error string `json:"error"`
}

type CommandRejectedPayload struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// SendFailed publishes a broadcast failure for a session.
func SendFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SendFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSendFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// CommandRejected publishes a command drop caused by backpressure.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandRejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCommandRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}
