package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"sales_backend/internal/sales"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return errors.New("publish without deadline")
	}
	if time.Until(deadline) > publishTimeout {
		return errors.New("publish deadline too far away")
	}
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testEvent() sales.Event {
	return sales.Event{
		EventID:   "evt-1",
		Type:      sales.EventUpdated,
		SaleID:    42,
		Sale:      &sales.Sale{ID: 42, ProductID: "P1", Date: sales.Date{Year: 2024, Month: 1, Day: 15}, Sales: 99},
		Timestamp: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestKafkaProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, logger: zaptest.NewLogger(t)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Publish(ctx, testEvent()), "a finished request must not cancel the publish")

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, []kafka.Header{
		{Key: "event_type", Value: []byte("sale.updated")},
		{Key: "event_id", Value: []byte("evt-1")},
	}, msg.Headers)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "sale.updated", body["type"])
	assert.Equal(t, map[string]any{"id": float64(42), "product_id": "P1", "date": "2024-01-15", "sales": float64(99)}, body["sale"])
}

func TestKafkaProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := &KafkaProducer{writer: w, logger: zaptest.NewLogger(t)}

	assert.EqualError(t, p.Publish(context.Background(), testEvent()), "leader not available")
}

func TestKafkaProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, logger: zaptest.NewLogger(t)}

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaProducer(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"}, "sale-events", zaptest.NewLogger(t))

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "sale-events", w.Topic)
	assert.Equal(t, 1, w.MaxAttempts, "a down broker must not be retried on the request path")
	assert.LessOrEqual(t, w.WriteTimeout, publishTimeout)
	assert.Less(t, publishTimeout, 5*time.Second, "publishing must finish within the default shutdown window")
	assert.NoError(t, p.Close())
}

var _ sales.Publisher = (*KafkaProducer)(nil)
