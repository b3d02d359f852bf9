// Package broker publishes stock-changed events for downstream consumers
// (search indexers, reporting). Publishing is best-effort: it runs after
// commit and never fails or delays the request that produced the event.
package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers []string
	Topic   string
}

// StockChangedEvent mirrors one stock ledger entry.
type StockChangedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	ChangeQty int64     `json:"change_qty"`
	Type      string    `json:"type"`
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(cfg *Config) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			Async:        true,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// PublishStockChanged enqueues one event keyed by product id so per-product
// ordering is preserved within a partition. Safe to call on a nil Producer.
func (p *Producer) PublishStockChanged(ctx context.Context, productID string, changeQty int64, entryType, reference string) error {
	if p == nil {
		return nil
	}

	event := StockChangedEvent{
		EventID:   uuid.New().String(),
		EventType: "stock.changed",
		ProductID: productID,
		ChangeQty: changeQty,
		Type:      entryType,
		Reference: reference,
		Timestamp: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(productID),
		Value: value,
	})
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
