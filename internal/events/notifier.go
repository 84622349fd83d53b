package events

import (
	"context"
	"log/slog"

	"github.com/mmynk/hisab/internal/metrics"
	"github.com/mmynk/hisab/internal/models"
)

// NotificationWriter is the subset of storage needed to record notifications.
type NotificationWriter interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Notifier records notifications and publishes the matching event.
// Failures are logged and counted but never returned: the ledger change that
// triggered them has already been committed.
type Notifier struct {
	store     NotificationWriter
	publisher Publisher
	metrics   *metrics.Metrics
}

// NewNotifier builds a Notifier. publisher may be nil, meaning Nop.
func NewNotifier(store NotificationWriter, publisher Publisher, m *metrics.Metrics) *Notifier {
	if publisher == nil {
		publisher = Nop{}
	}
	return &Notifier{store: store, publisher: publisher, metrics: m}
}

// Notify stores message for every recipient and publishes ev.
func (n *Notifier) Notify(ctx context.Context, ev Event, message string, recipients ...string) {
	for _, userID := range recipients {
		note := &models.Notification{UserID: userID, Message: message}
		if err := n.store.CreateNotification(ctx, note); err != nil {
			slog.Warn("Failed to store notification",
				"event", ev.Type,
				"user_id", userID,
				"error", err,
			)
		}
	}
	n.Publish(ctx, ev)
}

// Publish hands ev to the publisher without creating notifications.
func (n *Notifier) Publish(ctx context.Context, ev Event) {
	err := n.publisher.Publish(ctx, ev)
	n.metrics.ObserveEvent(ev.Type, err)
	if err != nil {
		slog.Warn("Failed to publish event",
			"event", ev.Type,
			"group_id", ev.GroupID,
			"error", err,
		)
	}
}

// OtherMembers returns the IDs of members other than exclude.
func OtherMembers(members []models.Member, exclude string) []string {
	var ids []string
	for _, m := range members {
		if m.UserID != exclude {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}
