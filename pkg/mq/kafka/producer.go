package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/xdooria-reward/pkg/config"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer Kafka 生产者, 主题由每条消息指定
type Producer struct {
	config      *Config
	logger      logger.Logger
	writer      messageWriter
	middlewares []ProducerMiddleware

	produced  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64

	closed atomic.Bool
}

// Option 生产者选项
type Option func(*Producer)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(p *Producer) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMiddleware 添加生产者中间件, 按添加顺序由外向内执行
func WithMiddleware(mw ...ProducerMiddleware) Option {
	return func(p *Producer) {
		p.middlewares = append(p.middlewares, mw...)
	}
}

func withWriter(w messageWriter) Option {
	return func(p *Producer) { p.writer = w }
}

// NewProducer 创建生产者, 不主动连接 broker
func NewProducer(cfg *Config, opts ...Option) (*Producer, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	p := &Producer{
		config: merged,
		logger: logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.writer == nil {
		p.writer = p.newWriter()
	}
	return p, nil
}

func (p *Producer) newWriter() *kafka.Writer {
	cfg := p.config.Producer
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.config.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		MaxAttempts:            cfg.MaxRetries + 1,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Async:                  cfg.Async,
		Compression:            parseCompression(cfg.Compression),
		AllowAutoTopicCreation: true,
	}
	if cfg.Async {
		w.Completion = func(msgs []kafka.Message, err error) {
			if err != nil {
				p.failed.Add(int64(len(msgs)))
				p.logger.Error("async publish failed", "count", len(msgs), "error", err)
			}
		}
	}
	if s := p.config.SASL; s != nil && s.Username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: s.Username, Password: s.Password},
		}
	}
	return w
}

// Publish 发布单条消息
func (p *Producer) Publish(ctx context.Context, msg *Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg.Topic == "" {
		return ErrEmptyTopic
	}
	p.produced.Add(1)

	publish := PublishFunc(p.write)
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		mw, next := p.middlewares[i], publish
		publish = func(ctx context.Context, msg *Message) error {
			return mw(ctx, msg, next)
		}
	}

	if err := publish(ctx, msg); err != nil {
		p.failed.Add(1)
		return err
	}
	p.succeeded.Add(1)
	return nil
}

func (p *Producer) write(ctx context.Context, msg *Message) error {
	km := kafka.Message{
		Topic: msg.Topic,
		Key:   msg.Key,
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	if km.Time.IsZero() {
		km.Time = time.Now()
	}
	for k, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return p.writer.WriteMessages(ctx, km)
}

// Stats 返回统计信息
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		MessagesProduced:  p.produced.Load(),
		MessagesSucceeded: p.succeeded.Load(),
		MessagesFailed:    p.failed.Load(),
	}
}

// Close 刷新缓冲并关闭
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0
	}
}
