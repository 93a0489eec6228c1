package job

import (
	"context"
	"testing"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/event"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/service"
	"github.com/lk2023060901/xdooria-reward/pkg/config"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMailService(t *testing.T) (*service.MailService, *repository.MemoryStore) {
	t.Helper()
	l := logger.NewNoop()

	idx, err := gamedata.Load(&gamedata.Config{DataDir: "../gamedata/testdata"}, l)
	require.NoError(t, err)

	store := repository.NewMemoryStore(l)
	require.NoError(t, store.CreateAccount(context.Background(), &model.Account{ServerID: 1}))

	parcels := service.NewParcelService(idx, service.DefaultGachaConfig(), l)
	return service.NewMailService(service.DefaultMailConfig(), idx, store, parcels, event.NewNoopPublisher(), nil, l), store
}

func sendMail(t *testing.T, mail *service.MailService, expireAt time.Time) {
	t.Helper()
	_, err := mail.SendSystemMail(context.Background(), 1, &service.MailTemplate{
		Sender:   "Schale",
		Parcels:  []model.Parcel{{Type: model.ParcelTypeCurrency, ID: 1, Amount: 10}},
		ExpireAt: &expireAt,
	})
	require.NoError(t, err)
}

func TestMailJanitorRun(t *testing.T) {
	mail, store := newMailService(t)
	sendMail(t, mail, time.Now().Add(-time.Hour))
	sendMail(t, mail, time.Now().Add(time.Hour))

	j := NewMailJanitor(nil, mail, logger.NewNoop())
	require.NoError(t, j.Run(context.Background()))

	n, err := store.CountUnreceived(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMailJanitorRegister(t *testing.T) {
	mail, store := newMailService(t)
	sendMail(t, mail, time.Now().Add(-time.Hour))

	s, err := scheduler.New(&scheduler.Config{PoolSize: 1, JobTimeout: time.Second}, logger.NewNoop())
	require.NoError(t, err)
	defer s.Stop(context.Background())

	j := NewMailJanitor(&MailJanitorConfig{Enabled: true, Spec: "@every 1h", RunOnStart: true}, mail, logger.NewNoop())
	require.NoError(t, j.Register(s))

	assert.Eventually(t, func() bool {
		n, err := store.CountUnreceived(context.Background(), 1)
		return err == nil && n == 0
	}, time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, j.Register(s), scheduler.ErrDuplicateJob)
}

func TestMailJanitorDisabled(t *testing.T) {
	mail, _ := newMailService(t)

	s, err := scheduler.New(nil, logger.NewNoop())
	require.NoError(t, err)
	defer s.Stop(context.Background())

	j := NewMailJanitor(&MailJanitorConfig{Spec: "@every 1h"}, mail, logger.NewNoop())
	require.NoError(t, j.Register(s))
	assert.False(t, s.RunNow(MailJanitorName))
}

func TestMailJanitorConfigMerge(t *testing.T) {
	off, err := config.MergeConfig(DefaultMailJanitorConfig(), &MailJanitorConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, off.Enabled)
	assert.Equal(t, "@every 10m", off.Spec)

	on, err := config.MergeConfig(DefaultMailJanitorConfig(), &MailJanitorConfig{Enabled: true, RunOnStart: true})
	require.NoError(t, err)
	assert.True(t, on.Enabled)
	assert.True(t, on.RunOnStart)
	assert.Equal(t, "@every 10m", on.Spec)

	mail, _ := newMailService(t)
	s, err := scheduler.New(nil, logger.NewNoop())
	require.NoError(t, err)
	defer s.Stop(context.Background())

	require.NoError(t, NewMailJanitor(off, mail, logger.NewNoop()).Register(s))
	assert.False(t, s.RunNow(MailJanitorName))
}
