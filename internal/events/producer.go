package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"sales_backend/internal/sales"
)

// Publishing runs on the request path: one attempt, bounded in time.
const (
	publishTimeout     = 2 * time.Second
	publishMaxAttempts = 1
)

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes sale change events to a Kafka topic.
type KafkaProducer struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaProducer creates a producer writing to topic on brokers.
func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  publishMaxAttempts,
		WriteTimeout: publishTimeout,
	}

	return &KafkaProducer{
		writer: writer,
		logger: logger,
	}
}

// Publish writes event keyed by sale id so changes to one sale stay ordered.
func (p *KafkaProducer) Publish(ctx context.Context, event sales.Event) error {
	msg, err := encode(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err))
		return err
	}

	// the request may already be finishing; bound the write on its own
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("event_id", event.EventID),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Event published successfully",
		zap.String("event_id", event.EventID),
		zap.String("type", string(event.Type)),
		zap.Int64("sale_id", event.SaleID))
	return nil
}

func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func encode(event sales.Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.SaleID, 10)),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}, nil
}
