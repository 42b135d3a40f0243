// Package events publishes auth audit events from the gateway.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventLogin          = "login"
	EventLogout         = "logout"
	EventSessionExpired = "session_expired"
)

type AuthEvent struct {
	Event     string    `json:"event"`
	UserID    string    `json:"user_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Sink interface {
	Publish(ctx context.Context, ev AuthEvent) error
	Close() error
}

// Nop is the sink used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, AuthEvent) error { return nil }
func (Nop) Close() error                             { return nil }

// Kafka publishes events to a single topic, keyed by user id so one user's
// events stay ordered.
type Kafka struct {
	w   *kafka.Writer
	log *slog.Logger
}

func NewKafka(brokers []string, topic string, log *slog.Logger) *Kafka {
	if log == nil {
		log = slog.Default()
	}
	return &Kafka{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		log: log.With("component", "kafka.auth_events", "topic", topic),
	}
}

func (k *Kafka) Publish(ctx context.Context, ev AuthEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal auth event: %w", err)
	}
	err = k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.UserID),
		Value: value,
	})
	if err != nil {
		k.log.Error("publish failed", "event", ev.Event, "error", err)
		return fmt.Errorf("publish auth event: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error { return k.w.Close() }
