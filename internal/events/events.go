// Package events publishes domain events and records user notifications.
//
// Every ledger change produces an Event. Notifications for the affected users
// are always written to the store; the Event itself is additionally handed
// to a Publisher (AMQP, Kafka or none) for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types. They double as AMQP routing keys.
const (
	TypeGroupCreated        = "group.created"
	TypeMemberJoined        = "group.member_joined"
	TypeMemberRemoved       = "group.member_removed"
	TypeGroupDeleted        = "group.deleted"
	TypeExpenseAdded        = "ledger.expense_added"
	TypeFundAdded           = "ledger.fund_added"
	TypeFundUpdated         = "ledger.fund_updated"
	TypeMealAdded           = "ledger.meal_added"
	TypeMealUpdated         = "ledger.meal_updated"
	TypeReminderSent        = "ledger.reminder_sent"
	TypeMealRequestCreated  = "meal_request.created"
	TypeMealRequestResolved = "meal_request.resolved"
)

// Event describes one change to a group.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	GroupID    string          `json:"group_id"`
	ActorID    string          `json:"actor_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an event with payload encoded as JSON.
func NewEvent(eventType, groupID, actorID string, payload any) (Event, error) {
	ev := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		GroupID:    groupID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
		}
		ev.Payload = data
	}
	return ev, nil
}

// Publisher delivers events to an external system.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }
