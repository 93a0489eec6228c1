package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/mq/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	messages []*kafka.Message
	closed   bool
}

func (f *fakeProducer) Publish(_ context.Context, msg *kafka.Message) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaPublisher("reward-events", fp, logger.NewNoop())

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	err := p.Publish(context.Background(), &Event{
		Type:       TypeMailReceived,
		AccountID:  42,
		OccurredAt: at,
		Payload:    map[string]any{"mails": 2},
	})
	require.NoError(t, err)
	require.Len(t, fp.messages, 1)

	msg := fp.messages[0]
	assert.Equal(t, "reward-events", msg.Topic)
	assert.Equal(t, []byte("42"), msg.Key)
	assert.Equal(t, "mail.received", msg.Headers["event_type"])
	assert.Equal(t, "application/json", msg.Headers["content_type"])
	assert.True(t, msg.Timestamp.Equal(at))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "mail.received", decoded["type"])
	assert.Equal(t, float64(42), decoded["account_id"])

	require.NoError(t, p.Close())
	assert.True(t, fp.closed)
}

func TestKafkaPublisherStampsTime(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaPublisher("t", fp, logger.NewNoop())

	e := &Event{Type: TypeMailSent, AccountID: 1}
	require.NoError(t, p.Publish(context.Background(), e))
	assert.False(t, e.OccurredAt.IsZero())
}

func TestNewDisabled(t *testing.T) {
	p, err := New(&Config{Enabled: false}, logger.NewNoop())
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), &Event{Type: TypeMailSent}))
	assert.NoError(t, p.Close())

	p, err = New(nil, logger.NewNoop())
	require.NoError(t, err)
	assert.NotNil(t, p)
}
