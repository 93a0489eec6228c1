package kafka

import (
	"context"
	"time"

	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// LoggingMiddleware 生产者日志中间件
func LoggingMiddleware(log logger.Logger) ProducerMiddleware {
	return func(ctx context.Context, msg *Message, next PublishFunc) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			log.ErrorContext(ctx, "message publish failed",
				"topic", msg.Topic,
				"key", string(msg.Key),
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}
		log.DebugContext(ctx, "message published",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"duration", time.Since(start),
		)
		return nil
	}
}

// RecoveryMiddleware 将 panic 转为 ErrProducerPanic
func RecoveryMiddleware(log logger.Logger) ProducerMiddleware {
	return func(ctx context.Context, msg *Message, next PublishFunc) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("producer panic recovered",
					"topic", msg.Topic,
					"panic", r,
				)
				err = ErrProducerPanic
			}
		}()
		return next(ctx, msg)
	}
}

// HeaderMiddleware 为每条消息补充固定消息头, 已存在的键不覆盖
func HeaderMiddleware(headers map[string]string) ProducerMiddleware {
	return func(ctx context.Context, msg *Message, next PublishFunc) error {
		if msg.Headers == nil {
			msg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			if _, ok := msg.Headers[k]; !ok {
				msg.Headers[k] = v
			}
		}
		return next(ctx, msg)
	}
}
