package logger

import "context"

var _ Logger = (*NoopLogger)(nil)

// NoopLogger 空日志记录器, 用作组件的默认 Logger 或测试
type NoopLogger struct{}

func NewNoop() *NoopLogger { return &NoopLogger{} }

func (l *NoopLogger) Debug(string, ...interface{}) {}
func (l *NoopLogger) Info(string, ...interface{}) {}
func (l *NoopLogger) Warn(string, ...interface{}) {}
func (l *NoopLogger) Error(string, ...interface{}) {}

func (l *NoopLogger) DebugContext(context.Context, string, ...interface{}) {}
func (l *NoopLogger) InfoContext(context.Context, string, ...interface{}) {}
func (l *NoopLogger) WarnContext(context.Context, string, ...interface{}) {}
func (l *NoopLogger) ErrorContext(context.Context, string, ...interface{}) {}

func (l *NoopLogger) Named(string) Logger { return l }
func (l *NoopLogger) WithFields(...interface{}) Logger { return l }
func (l *NoopLogger) Sync() error { return nil }
