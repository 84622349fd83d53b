package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/hisab/internal/events"
)

// emit publishes an event and, when message is set, notifies recipients.
func emit(ctx context.Context, n *events.Notifier, eventType, groupID, actorID string, payload any, message string, recipients ...string) {
	ev, err := events.NewEvent(eventType, groupID, actorID, payload)
	if err != nil {
		slog.Error("Failed to build event", "event", eventType, "error", err)
		return
	}
	if message == "" {
		n.Publish(ctx, ev)
		return
	}
	n.Notify(ctx, ev, message, recipients...)
}
