package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/idgen"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

type itemKey struct {
	accountID  int64
	parcelType model.ParcelType
	uniqueID   int64
}

type memoryState struct {
	accounts   map[int64]*model.Account
	currencies map[int64]*model.AccountCurrency
	items      map[itemKey]*model.ItemDB
	characters map[int64][]*model.CharacterDB
	mails      map[int64]*model.MailDB
}

func newMemoryState() *memoryState {
	return &memoryState{
		accounts:   make(map[int64]*model.Account),
		currencies: make(map[int64]*model.AccountCurrency),
		items:      make(map[itemKey]*model.ItemDB),
		characters: make(map[int64][]*model.CharacterDB),
		mails:      make(map[int64]*model.MailDB),
	}
}

// clone 深拷贝, 用于回滚
func (s *memoryState) clone() *memoryState {
	out := newMemoryState()
	for k, v := range s.accounts {
		acc := *v
		out.accounts[k] = &acc
	}
	for k, v := range s.currencies {
		out.currencies[k] = v.Clone()
	}
	for k, v := range s.items {
		item := *v
		out.items[k] = &item
	}
	for k, v := range s.characters {
		chars := make([]*model.CharacterDB, len(v))
		for i, c := range v {
			cc := *c
			chars[i] = &cc
		}
		out.characters[k] = chars
	}
	for k, v := range s.mails {
		out.mails[k] = v.Clone()
	}
	return out
}

// MemoryStore 内存账本, 单进程本地运行与测试使用
// 全局互斥锁串行化所有事务, fn 出错时恢复事务前快照
type MemoryStore struct {
	mu     sync.Mutex
	state  *memoryState
	ids    *idgen.Sequence
	logger logger.Logger
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore 创建内存账本
func NewMemoryStore(l logger.Logger) *MemoryStore {
	return &MemoryStore{
		state:  newMemoryState(),
		ids:    idgen.NewSequence(0),
		logger: l.Named("repository.memory"),
	}
}

func (s *MemoryStore) InAccountTx(ctx context.Context, accountID int64, fn func(ctx context.Context, l Ledger) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.accounts[accountID]; !ok {
		return errcode.DataNotFound("account %d not found", accountID)
	}

	snapshot := s.state.clone()
	committed := false
	defer func() {
		if !committed {
			s.state = snapshot
		}
	}()

	if err := fn(ctx, &memoryLedger{store: s, accountID: accountID}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *MemoryStore) Account(_ context.Context, accountID int64) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.state.accounts[accountID]
	if !ok {
		return nil, errcode.DataNotFound("account %d not found", accountID)
	}
	out := *acc
	return &out, nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, acc *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.accounts[acc.ServerID]; ok {
		return errcode.InvalidArgument("account %d already exists", acc.ServerID)
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}
	stored := *acc
	s.state.accounts[acc.ServerID] = &stored
	return nil
}

func (s *MemoryStore) Characters(_ context.Context, accountID int64) ([]*model.CharacterDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chars := s.state.characters[accountID]
	out := make([]*model.CharacterDB, len(chars))
	for i, c := range chars {
		cc := *c
		out[i] = &cc
	}
	return out, nil
}

func (s *MemoryStore) Items(_ context.Context, accountID int64, t model.ParcelType) ([]*model.ItemDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.ItemDB
	for k, v := range s.state.items {
		if k.accountID == accountID && k.parcelType == t {
			item := *v
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueID < out[j].UniqueID })
	return out, nil
}

func (s *MemoryStore) ListMails(_ context.Context, accountID int64, received bool) ([]*model.MailDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.MailDB
	for _, m := range s.state.mails {
		if m.AccountID == accountID && m.Received() == received {
			out = append(out, m.Clone())
		}
	}
	sortMails(out)
	return out, nil
}

func (s *MemoryStore) CountUnreceived(_ context.Context, accountID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, m := range s.state.mails {
		if m.AccountID == accountID && !m.Received() {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) PurgeExpiredMails(_ context.Context, now time.Time) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := make(map[int64]int64)
	for id, m := range s.state.mails {
		if m.Expired(now) {
			purged[m.AccountID]++
			delete(s.state.mails, id)
		}
	}
	return purged, nil
}

func (s *MemoryStore) Close() error { return nil }

func sortMails(mails []*model.MailDB) {
	sort.Slice(mails, func(i, j int) bool { return mails[i].ServerID < mails[j].ServerID })
}

// memoryLedger 调用方已持有 store.mu
type memoryLedger struct {
	store     *MemoryStore
	accountID int64
}

func (l *memoryLedger) AccountID() int64 { return l.accountID }

func (l *memoryLedger) NextID() (int64, error) { return l.store.ids.NextID() }

func (l *memoryLedger) Currency(_ context.Context) (*model.AccountCurrency, error) {
	cur, ok := l.store.state.currencies[l.accountID]
	if !ok {
		return model.NewAccountCurrency(l.accountID), nil
	}
	return cur.Clone(), nil
}

func (l *memoryLedger) SetCurrency(_ context.Context, currencyID, amount int64) error {
	cur, ok := l.store.state.currencies[l.accountID]
	if !ok {
		cur = model.NewAccountCurrency(l.accountID)
		l.store.state.currencies[l.accountID] = cur
	}
	cur.Balances[currencyID] = amount
	cur.UpdatedAt = time.Now()
	return nil
}

func (l *memoryLedger) Item(_ context.Context, t model.ParcelType, uniqueID int64) (*model.ItemDB, error) {
	item, ok := l.store.state.items[itemKey{l.accountID, t, uniqueID}]
	if !ok {
		return nil, nil
	}
	out := *item
	return &out, nil
}

func (l *memoryLedger) SaveItem(_ context.Context, item *model.ItemDB) error {
	stored := *item
	l.store.state.items[itemKey{item.AccountID, item.ParcelType, item.UniqueID}] = &stored
	return nil
}

func (l *memoryLedger) HasCharacter(_ context.Context, uniqueID int64) (bool, error) {
	for _, c := range l.store.state.characters[l.accountID] {
		if c.UniqueID == uniqueID {
			return true, nil
		}
	}
	return false, nil
}

func (l *memoryLedger) AddCharacter(_ context.Context, c *model.CharacterDB) error {
	for _, owned := range l.store.state.characters[c.AccountID] {
		if owned.UniqueID == c.UniqueID {
			return errcode.Invariant("character %d already owned by account %d", c.UniqueID, c.AccountID)
		}
	}
	stored := *c
	l.store.state.characters[c.AccountID] = append(l.store.state.characters[c.AccountID], &stored)
	return nil
}

func (l *memoryLedger) UnreceivedMails(_ context.Context, ids []int64) ([]*model.MailDB, error) {
	var out []*model.MailDB
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m, ok := l.store.state.mails[id]
		if ok && m.AccountID == l.accountID && !m.Received() {
			out = append(out, m.Clone())
		}
	}
	sortMails(out)
	return out, nil
}

func (l *memoryLedger) StampReceipt(_ context.Context, ids []int64, at time.Time) error {
	for _, id := range ids {
		m, ok := l.store.state.mails[id]
		if ok && m.AccountID == l.accountID && !m.Received() {
			t := at
			m.ReceiptDate = &t
		}
	}
	return nil
}

func (l *memoryLedger) InsertMail(_ context.Context, m *model.MailDB) error {
	if _, ok := l.store.state.mails[m.ServerID]; ok {
		return errcode.Invariant("mail %d already exists", m.ServerID)
	}
	l.store.state.mails[m.ServerID] = m.Clone()
	return nil
}

func (l *memoryLedger) DeleteUnreceived(_ context.Context) (int64, error) {
	var n int64
	for id, m := range l.store.state.mails {
		if m.AccountID == l.accountID && !m.Received() {
			delete(l.store.state.mails, id)
			n++
		}
	}
	return n, nil
}
