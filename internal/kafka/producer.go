package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// ReservationEvent is published on every reservation or charge lifecycle
// transition and consumed by the worker for notifications and by external
// reporting collaborators.
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservation_id,omitempty"`
	AreaID        int64     `json:"area_id,omitempty"`
	RequesterID   int64     `json:"requester_id,omitempty"`
	ChargeID      int64     `json:"charge_id,omitempty"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Status        string    `json:"status,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentConfirmation is the provider callback payload delivered on the
// confirmations topic. Delivery is at-least-once with no ordering
// guarantee.
type PaymentConfirmation struct {
	SessionID   string `json:"session_id"`
	Status      string `json:"status"`
	ProviderRef string `json:"provider_reference"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
