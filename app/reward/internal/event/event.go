// Package event 奖励结算事件的异步通知
package event

import (
	"context"
	"strconv"
	"time"

	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/mq/kafka"
	"github.com/lk2023060901/xdooria-reward/pkg/serializer"
)

// Type 事件类型
type Type string

const (
	TypeGachaPurchased Type = "gacha.purchased"
	TypeMailSent       Type = "mail.sent"
	TypeMailReceived   Type = "mail.received"
	TypeMailCleared    Type = "mail.cleared"
	TypeMailPurged     Type = "mail.purged"
)

// Event 事件
type Event struct {
	Type       Type      `json:"type"`
	AccountID  int64     `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher 事件发布者, 发布失败不影响已提交的结算
type Publisher interface {
	Publish(ctx context.Context, e *Event) error
	Close() error
}

// Config 事件配置
type Config struct {
	Enabled bool          `mapstructure:"enabled"`
	Topic   string        `mapstructure:"topic"`
	Kafka   *kafka.Config `mapstructure:"kafka"`
}

// DefaultConfig 默认关闭
func DefaultConfig() *Config {
	return &Config{
		Topic: "reward-events",
		Kafka: kafka.DefaultConfig(),
	}
}

type messagePublisher interface {
	Publish(ctx context.Context, msg *kafka.Message) error
	Close() error
}

// KafkaPublisher 以账号 ID 为分区键写入 Kafka
type KafkaPublisher struct {
	producer messagePublisher
	topic    string
	codec    serializer.Serializer
	logger   logger.Logger
}

// NewKafkaPublisher 创建 Kafka 发布者
func NewKafkaPublisher(topic string, producer messagePublisher, l logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		codec:    serializer.NewJSON(),
		logger:   l.Named("event.kafka"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	value, err := p.codec.Serialize(e)
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, &kafka.Message{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(e.AccountID, 10)),
		Value: value,
		Headers: map[string]string{
			"event_type":   string(e.Type),
			"content_type": p.codec.ContentType(),
		},
		Timestamp: e.OccurredAt,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher 事件关闭时使用
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, *Event) error { return nil }

func (noopPublisher) Close() error { return nil }

// New 按配置创建发布者
func New(cfg *Config, l logger.Logger) (Publisher, error) {
	if cfg == nil || !cfg.Enabled {
		return NewNoopPublisher(), nil
	}
	producer, err := kafka.NewProducer(cfg.Kafka,
		kafka.WithLogger(l),
		kafka.WithMiddleware(
			kafka.RecoveryMiddleware(l),
			kafka.LoggingMiddleware(l),
			kafka.HeaderMiddleware(map[string]string{"source": "xdooria-reward"}),
		),
	)
	if err != nil {
		return nil, err
	}
	return NewKafkaPublisher(cfg.Topic, producer, l), nil
}
