package logger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "nil config uses default", config: nil},
		{name: "json console", config: &Config{Level: DebugLevel, Format: JSONFormat, EnableConsole: true}},
		{name: "file without path", config: &Config{EnableFile: true}, wantErr: ErrInvalidOutputPath},
		{name: "unknown level", config: &Config{Level: "verbose"}, wantErr: ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || l == nil {
				t.Fatalf("New() = %v, %v", l, err)
			}
		})
	}
}

func TestNewWithFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{EnableFile: true, OutputPath: path, Format: JSONFormat})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("hello", "k", 1)
	_ = l.Sync()
}

func TestSetLevel(t *testing.T) {
	l, err := New(&Config{Level: InfoLevel})
	if err != nil {
		t.Fatal(err)
	}
	if l.zl.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be disabled at info level")
	}
	if err := l.SetLevel(DebugLevel); err != nil {
		t.Fatal(err)
	}
	if !l.Named("child").(*BaseLogger).zl.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("derived logger should follow the atomic level")
	}
	if err := l.SetLevel("loud"); !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("SetLevel() error = %v", err)
	}
}

func TestToZapFields(t *testing.T) {
	fields := toZapFields("a", 1, zap.String("b", "x"), "err", errors.New("boom"), "dangling")
	if len(fields) != 4 {
		t.Fatalf("got %d fields, want 4", len(fields))
	}
	if fields[0].Key != "a" || fields[1].Key != "b" || fields[2].Key != "err" || fields[3].Key != "!BADKEY" {
		t.Fatalf("unexpected keys: %+v", fields)
	}
	if toZapFields() != nil {
		t.Fatal("empty input should give nil")
	}
}

func newObserved(t *testing.T, hooks ...Hook) (*BaseLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	var c zapcore.Core = core
	if len(hooks) > 0 {
		c = NewHookedCore(core, hooks...)
	}
	return &BaseLogger{
		zl:               zap.New(c),
		level:            zap.NewAtomicLevelAt(zapcore.DebugLevel),
		config:           DefaultConfig(),
		globalFields:     map[string]interface{}{},
		contextExtractor: DefaultContextExtractor,
	}, logs
}

func TestContextFields(t *testing.T) {
	l, logs := newObserved(t)

	ctx := ContextWithFields(context.Background(), "request_id", "r-1")
	ctx = ContextWithFields(ctx, "account_id", int64(7))
	l.InfoContext(ctx, "pull", "count", 10)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	m := entries[0].ContextMap()
	if m["request_id"] != "r-1" || m["account_id"] != int64(7) || m["count"] != int64(10) {
		t.Fatalf("unexpected context map: %v", m)
	}
}

func TestSensitiveDataHook(t *testing.T) {
	l, logs := newObserved(t, SensitiveDataHook([]string{"session_key"}))
	l.Info("auth", "session_key", "secret", "account_id", 1)

	m := logs.All()[0].ContextMap()
	if m["session_key"] != "***REDACTED***" {
		t.Fatalf("session_key not redacted: %v", m["session_key"])
	}
	if m["account_id"] != int64(1) {
		t.Fatalf("account_id changed: %v", m["account_id"])
	}
}

func TestNoopAndDefault(t *testing.T) {
	var l Logger = NewNoop()
	l.Named("x").WithFields("a", 1).Info("ignored")
	if err := l.Sync(); err != nil {
		t.Fatal(err)
	}

	SetDefault(l)
	if Default() != l {
		t.Fatal("Default() should return the logger passed to SetDefault")
	}
	SetDefault(nil)
	if Default() == nil {
		t.Fatal("Default() should lazily create a logger")
	}
}
