package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeServer struct {
	name    string
	rec     *recorder
	stopErr error
}

func (s *fakeServer) Start() error {
	s.rec.add("start:" + s.name)
	return nil
}

func (s *fakeServer) Stop(context.Context) error {
	s.rec.add("stop:" + s.name)
	return s.stopErr
}

func newTestApp() *BaseApp {
	return NewBaseApp(WithLogger(logger.NewNoop()), WithName("test"), WithStopTimeout(time.Second))
}

func TestRunAndStop(t *testing.T) {
	rec := &recorder{}
	a := newTestApp()
	a.Bind(&Components{
		Servers: []Server{&fakeServer{name: "http", rec: rec}},
		Closers: []Closer{
			CloserFunc(func() error { rec.add("close:db"); return nil }),
			CloserFunc(func() error { rec.add("close:redis"); return nil }),
		},
	})

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	require.Eventually(t, func() bool {
		return len(rec.list()) > 0
	}, time.Second, 10*time.Millisecond)
	a.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, []string{"start:http", "stop:http", "close:redis", "close:db"}, rec.list())
	assert.ErrorIs(t, a.Run(), ErrAppAlreadyRunning)
	assert.NoError(t, a.Shutdown(), "second shutdown is a no-op")
}

func TestShutdownCollectsErrors(t *testing.T) {
	rec := &recorder{}
	stopErr := errors.New("stop failed")
	closeErr := errors.New("close failed")

	a := newTestApp()
	a.AppendServer(&fakeServer{name: "s", rec: rec, stopErr: stopErr})
	a.AppendCloser(CloserFunc(func() error { return closeErr }))

	err := a.Shutdown()
	assert.ErrorIs(t, err, stopErr)
	assert.ErrorIs(t, err, closeErr)
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "/a.yaml", ResolveConfigPath("/a.yaml", "/b.yaml", "/bin"))
	assert.Equal(t, "/b.yaml", ResolveConfigPath("", "/b.yaml", "/bin"))
	assert.Equal(t, "/bin/configs/config.yaml", ResolveConfigPath("", "", "/bin"))
}
