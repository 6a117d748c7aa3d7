package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/veliashev/shopcore/internal/core/domain"
	"go.uber.org/zap"
)

// envelope is the wire form of an outbound event. EventID lets
// consumers deduplicate redelivered messages.
type envelope struct {
	EventID     string             `json:"event_id"`
	Type        domain.EventType   `json:"type"`
	WorkspaceID uint64             `json:"workspace_id"`
	OrderNumber domain.OrderNumber `json:"order_number,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
	Payload     any                `json:"payload,omitempty"`
}

// Producer publishes order events to a Kafka topic, keyed by order
// number so one order's events stay in partition order.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		logger: logger.Named("events"),
	}, nil
}

func (p *Producer) Publish(ctx context.Context, event domain.Event) error {
	value, err := json.Marshal(envelope{
		EventID:     uuid.NewString(),
		Type:        event.Type,
		WorkspaceID: event.WorkspaceID,
		OrderNumber: event.OrderNumber,
		OccurredAt:  event.OccurredAt,
		Payload:     event.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: value,
		Time:  event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	p.logger.Debug("event published",
		zap.String("type", string(event.Type)),
		zap.String("order", string(event.OrderNumber)))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
