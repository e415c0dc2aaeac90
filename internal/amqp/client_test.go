package amqp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, 1 * time.Second},
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"closed connection", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"amqp closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRecordSyncMessageJSON(t *testing.T) {
	msg := NewRecordSyncMessage(42, "3 Jun 2024")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := RecordSyncMessageFromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 42 || got.Date != "3 Jun 2024" || got.Timestamp.IsZero() {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestRecordSyncMessageFromJSONRejects(t *testing.T) {
	for _, in := range []string{`{invalid`, `{"id":0}`, `{"date":"3 Jun 2024"}`} {
		if _, err := RecordSyncMessageFromJSON([]byte(in)); err == nil {
			t.Errorf("expected error for %s", in)
		}
	}
}

func TestClientPublishWithoutChannel(t *testing.T) {
	c := &Client{exchangeName: "x", queueName: "q"}
	if err := c.publish(context.Background(), []byte("{}")); !errors.Is(err, amqp091.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on empty client: %v", err)
	}
}
