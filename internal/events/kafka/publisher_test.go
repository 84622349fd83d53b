package kafka

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/mmynk/hisab/internal/events"
)

func TestMessage(t *testing.T) {
	ev, err := events.NewEvent(events.TypeExpenseAdded, "g1", "u1", map[string]any{"category": "Rent"})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}

	msg, err := message(ev)
	if err != nil {
		t.Fatalf("message() error = %v", err)
	}

	if string(msg.Key) != "g1" {
		t.Errorf("Key = %q, want g1", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != events.TypeExpenseAdded {
		t.Errorf("Headers = %+v", msg.Headers)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if decoded["type"] != events.TypeExpenseAdded {
		t.Errorf("type = %v", decoded["type"])
	}
}

func TestPublisher_Broker(t *testing.T) {
	brokers := os.Getenv("HISAB_TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("HISAB_TEST_KAFKA_BROKERS not set")
	}

	p := NewPublisher(strings.Split(brokers, ","), "hisab-test")
	defer p.Close()

	ev, err := events.NewEvent(events.TypeGroupCreated, "g1", "u1", nil)
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}
