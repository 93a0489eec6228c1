package logger

import (
	"context"

	"go.uber.org/zap"
)

// ContextFieldExtractor 从 context 提取日志字段
type ContextFieldExtractor func(ctx context.Context) []zap.Field

// DefaultContextExtractor 提取通过 ContextWithFields 挂载的字段
func DefaultContextExtractor(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]zap.Field)
	return fields
}

type fieldsKey struct{}

// ContextWithFields 在 context 上追加日志字段 (如 request_id, account_id)
func ContextWithFields(ctx context.Context, keysAndValues ...interface{}) context.Context {
	add := toZapFields(keysAndValues...)
	if len(add) == 0 {
		return ctx
	}
	prev := DefaultContextExtractor(ctx)
	fields := make([]zap.Field, 0, len(prev)+len(add))
	fields = append(fields, prev...)
	fields = append(fields, add...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}
