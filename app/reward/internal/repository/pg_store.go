package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/dao"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-reward/pkg/database/redis"
	"github.com/lk2023060901/xdooria-reward/pkg/idgen"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// PGStore PostgreSQL 账本, 账号事务由 redis 锁 + 行锁串行化
type PGStore struct {
	db           *postgres.Client
	rdb          *redis.Client
	ids          idgen.Generator
	cfg          *Config
	accountDAO   *dao.AccountDAO
	currencyDAO  *dao.CurrencyDAO
	itemDAO      *dao.ItemDAO
	characterDAO *dao.CharacterDAO
	mailDAO      *dao.MailDAO
	cacheDAO     *dao.CacheDAO
	logger       logger.Logger
}

var _ Store = (*PGStore)(nil)

// DAOs PGStore 依赖的数据访问对象
type DAOs struct {
	Account   *dao.AccountDAO
	Currency  *dao.CurrencyDAO
	Item      *dao.ItemDAO
	Character *dao.CharacterDAO
	Mail      *dao.MailDAO
	Cache     *dao.CacheDAO
}

// NewPGStore 创建 PostgreSQL 账本
func NewPGStore(cfg *Config, db *postgres.Client, rdb *redis.Client, ids idgen.Generator, daos *DAOs, l logger.Logger) *PGStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &PGStore{
		db:           db,
		rdb:          rdb,
		ids:          ids,
		cfg:          cfg,
		accountDAO:   daos.Account,
		currencyDAO:  daos.Currency,
		itemDAO:      daos.Item,
		characterDAO: daos.Character,
		mailDAO:      daos.Mail,
		cacheDAO:     daos.Cache,
		logger:       l.Named("repository.pg"),
	}
}

// InAccountTx 加账号锁后在数据库事务中执行 fn
func (s *PGStore) InAccountTx(ctx context.Context, accountID int64, fn func(ctx context.Context, l Ledger) error) error {
	opts := redis.LockOptions{
		TTL:           s.cfg.LockTTL,
		RetryInterval: s.cfg.LockRetryInterval,
		MaxRetries:    s.cfg.LockMaxRetries,
		OnUnlockError: func(key string, err error) {
			s.logger.Warn("failed to release account lock", "key", key, "error", err)
		},
	}

	return s.rdb.WithLock(ctx, dao.AccountLockKey(accountID), opts, func() error {
		var mailTouched bool
		err := s.db.WithTx(ctx, func(tx postgres.Tx) error {
			if err := s.accountDAO.LockForUpdate(ctx, tx, accountID); err != nil {
				if errors.Is(err, postgres.ErrNoRows) {
					return errcode.DataNotFound("account %d not found", accountID)
				}
				return err
			}

			l := &pgLedger{store: s, tx: tx, accountID: accountID}
			if err := fn(ctx, l); err != nil {
				return err
			}
			mailTouched = l.mailTouched
			return nil
		})
		if err != nil {
			return err
		}

		// 提交后再失效缓存
		if mailTouched {
			if err := s.cacheDAO.InvalidateUnreadCount(ctx, accountID); err != nil {
				s.logger.Warn("failed to invalidate unread cache", "account_id", accountID, "error", err)
			}
		}
		return nil
	})
}

func (s *PGStore) Account(ctx context.Context, accountID int64) (*model.Account, error) {
	acc, err := s.accountDAO.Get(ctx, s.db, accountID)
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, errcode.DataNotFound("account %d not found", accountID)
		}
		return nil, err
	}
	return acc, nil
}

func (s *PGStore) CreateAccount(ctx context.Context, acc *model.Account) error {
	return s.accountDAO.Create(ctx, s.db, acc)
}

func (s *PGStore) Characters(ctx context.Context, accountID int64) ([]*model.CharacterDB, error) {
	return s.characterDAO.List(ctx, s.db, accountID)
}

func (s *PGStore) Items(ctx context.Context, accountID int64, t model.ParcelType) ([]*model.ItemDB, error) {
	return s.itemDAO.List(ctx, s.db, accountID, t)
}

func (s *PGStore) ListMails(ctx context.Context, accountID int64, received bool) ([]*model.MailDB, error) {
	return s.mailDAO.List(ctx, s.db, accountID, received)
}

// CountUnreceived 优先读缓存, 未命中时查库并回写
func (s *PGStore) CountUnreceived(ctx context.Context, accountID int64) (int64, error) {
	// 1. 读缓存
	n, ok, err := s.cacheDAO.GetUnreadCount(ctx, accountID)
	if err != nil {
		s.logger.Warn("failed to get unread count from cache, fallback to db",
			"account_id", accountID,
			"error", err,
		)
	} else if ok {
		return n, nil
	}

	// 2. 查库前记录缓存代数
	gen, genErr := s.cacheDAO.UnreadGeneration(ctx, accountID)
	n, err = s.mailDAO.CountUnreceived(ctx, s.db, accountID)
	if err != nil {
		return 0, err
	}
	if genErr != nil {
		s.logger.Warn("failed to get unread generation, skip cache fill",
			"account_id", accountID,
			"error", genErr,
		)
		return n, nil
	}

	// 3. 代数未变时回写缓存
	written, err := s.cacheDAO.SetUnreadCount(ctx, accountID, n, gen)
	if err != nil {
		s.logger.Warn("failed to set unread count cache",
			"account_id", accountID,
			"error", err,
		)
	} else if !written {
		s.logger.Debug("unread count changed during fill, cache skipped", "account_id", accountID)
	}
	return n, nil
}

func (s *PGStore) PurgeExpiredMails(ctx context.Context, now time.Time) (map[int64]int64, error) {
	accountIDs, err := s.mailDAO.DeleteExpired(ctx, s.db, now)
	if err != nil {
		return nil, err
	}

	purged := make(map[int64]int64)
	for _, id := range accountIDs {
		purged[id]++
	}
	if len(purged) > 0 {
		keys := make([]int64, 0, len(purged))
		for id := range purged {
			keys = append(keys, id)
		}
		if err := s.cacheDAO.InvalidateUnreadCount(ctx, keys...); err != nil {
			s.logger.Warn("failed to invalidate unread cache after purge", "accounts", len(keys), "error", err)
		}
	}
	return purged, nil
}

// Close 数据库与 redis 客户端由外部管理
func (s *PGStore) Close() error { return nil }

// pgLedger 绑定到单个事务
type pgLedger struct {
	store       *PGStore
	tx          postgres.Tx
	accountID   int64
	mailTouched bool
}

func (l *pgLedger) AccountID() int64 { return l.accountID }

func (l *pgLedger) NextID() (int64, error) { return l.store.ids.NextID() }

func (l *pgLedger) Currency(ctx context.Context) (*model.AccountCurrency, error) {
	return l.store.currencyDAO.Get(ctx, l.tx, l.accountID)
}

func (l *pgLedger) SetCurrency(ctx context.Context, currencyID, amount int64) error {
	return l.store.currencyDAO.Set(ctx, l.tx, l.accountID, currencyID, amount, time.Now())
}

func (l *pgLedger) Item(ctx context.Context, t model.ParcelType, uniqueID int64) (*model.ItemDB, error) {
	return l.store.itemDAO.Get(ctx, l.tx, l.accountID, t, uniqueID)
}

func (l *pgLedger) SaveItem(ctx context.Context, item *model.ItemDB) error {
	return l.store.itemDAO.Save(ctx, l.tx, item)
}

func (l *pgLedger) HasCharacter(ctx context.Context, uniqueID int64) (bool, error) {
	return l.store.characterDAO.Exists(ctx, l.tx, l.accountID, uniqueID)
}

func (l *pgLedger) AddCharacter(ctx context.Context, c *model.CharacterDB) error {
	return l.store.characterDAO.Insert(ctx, l.tx, c)
}

func (l *pgLedger) UnreceivedMails(ctx context.Context, ids []int64) ([]*model.MailDB, error) {
	return l.store.mailDAO.SelectUnreceivedForUpdate(ctx, l.tx, l.accountID, ids)
}

func (l *pgLedger) StampReceipt(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	l.mailTouched = true
	_, err := l.store.mailDAO.StampReceipt(ctx, l.tx, l.accountID, ids, at)
	return err
}

func (l *pgLedger) InsertMail(ctx context.Context, m *model.MailDB) error {
	l.mailTouched = true
	return l.store.mailDAO.Insert(ctx, l.tx, m)
}

func (l *pgLedger) DeleteUnreceived(ctx context.Context) (int64, error) {
	l.mailTouched = true
	return l.store.mailDAO.DeleteUnreceived(ctx, l.tx, l.accountID)
}
