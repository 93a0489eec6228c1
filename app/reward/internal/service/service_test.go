package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/event"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gacha"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/stretchr/testify/require"
)

const testAccountID int64 = 1

// constRNG 抽取随机数固定为 draw, 池内选择总是取第一个
type constRNG struct {
	draw int64
}

func (r constRNG) Int64N(n int64) int64 {
	if n == 1000 {
		return r.draw
	}
	return 0
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type harness struct {
	index      *gamedata.Index
	store      *repository.MemoryStore
	guarantees repository.GuaranteeStore
	parcels    *ParcelService
	gacha      *GachaService
	shop       *ShopService
	mail       *MailService
	events     *recordingPublisher
	account    *model.Account
}

func newHarness(t *testing.T, rng gacha.RNG) *harness {
	t.Helper()
	l := logger.NewNoop()

	idx, err := gamedata.Load(&gamedata.Config{DataDir: "../gamedata/testdata"}, l)
	require.NoError(t, err)

	store := repository.NewMemoryStore(l)
	account := &model.Account{ServerID: testAccountID, Nickname: "sensei"}
	require.NoError(t, store.CreateAccount(context.Background(), account))

	cfg := DefaultGachaConfig()
	guarantees := repository.NewMemoryGuaranteeStore()
	events := &recordingPublisher{}
	parcels := NewParcelService(idx, cfg, l)

	return &harness{
		index:      idx,
		store:      store,
		guarantees: guarantees,
		parcels:    parcels,
		gacha:      NewGachaService(cfg, idx, gacha.NewEngine(idx, rng, l), store, guarantees, parcels, events, nil, l),
		shop:       NewShopService(idx, l),
		mail:       NewMailService(DefaultMailConfig(), idx, store, parcels, events, nil, l),
		events:     events,
		account:    account,
	}
}

func (h *harness) addAccount(t *testing.T, id int64) *model.Account {
	t.Helper()
	acc := &model.Account{ServerID: id}
	require.NoError(t, h.store.CreateAccount(context.Background(), acc))
	return acc
}

func (h *harness) grant(t *testing.T, parcels ...model.Parcel) {
	t.Helper()
	err := h.store.InAccountTx(context.Background(), h.account.ServerID, func(ctx context.Context, l repository.Ledger) error {
		_, err := h.parcels.Resolve(ctx, l, parcels, ModeGrant)
		return err
	})
	require.NoError(t, err)
}

func (h *harness) balance(t *testing.T, currencyID int64) int64 {
	t.Helper()
	var n int64
	err := h.store.InAccountTx(context.Background(), h.account.ServerID, func(ctx context.Context, l repository.Ledger) error {
		cur, err := l.Currency(ctx)
		if err != nil {
			return err
		}
		n = cur.Balances[currencyID]
		return nil
	})
	require.NoError(t, err)
	return n
}

func (h *harness) stack(t *testing.T, pt model.ParcelType, id int64) int64 {
	t.Helper()
	items, err := h.store.Items(context.Background(), h.account.ServerID, pt)
	require.NoError(t, err)
	for _, it := range items {
		if it.UniqueID == id {
			return it.StackCount
		}
	}
	return 0
}

func currency(id, amount int64) model.Parcel {
	return model.Parcel{Type: model.ParcelTypeCurrency, ID: id, Amount: amount}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
