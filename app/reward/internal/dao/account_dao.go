package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/metrics"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// AccountDAO 账号数据访问对象
type AccountDAO struct {
	logger  logger.Logger
	metrics *metrics.RewardMetrics
}

func NewAccountDAO(l logger.Logger, m *metrics.RewardMetrics) *AccountDAO {
	return &AccountDAO{
		logger:  l.Named("dao.account"),
		metrics: m,
	}
}

// Get 获取账号, 不存在返回 postgres.ErrNoRows
func (d *AccountDAO) Get(ctx context.Context, q postgres.Querier, accountID int64) (acc *model.Account, err error) {
	defer observe(d.metrics, "account.select", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Select("server_id", "nickname", "role", "time_offset_seconds", "created_at").
		From("accounts").
		Where(squirrel.Eq{"server_id": accountID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	acc, err = postgres.Get[model.Account](ctx, q, query, args...)
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// LockForUpdate 锁定账号行, 串行化同一账号的事务
func (d *AccountDAO) LockForUpdate(ctx context.Context, tx postgres.Tx, accountID int64) (err error) {
	defer observe(d.metrics, "account.lock", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Select("server_id").
		From("accounts").
		Where(squirrel.Eq{"server_id": accountID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return err
	}

	if _, err = postgres.Scalar[int64](ctx, tx, query, args...); err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return err
		}
		return fmt.Errorf("failed to lock account: %w", err)
	}
	return nil
}

// Create 创建账号
func (d *AccountDAO) Create(ctx context.Context, q postgres.Querier, acc *model.Account) (err error) {
	defer observe(d.metrics, "account.insert", time.Now(), &err)

	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}
	query, args, err := postgres.QueryBuilder.
		Insert("accounts").
		Columns("server_id", "nickname", "role", "time_offset_seconds", "created_at").
		Values(acc.ServerID, acc.Nickname, acc.Role, acc.TimeOffsetSeconds, acc.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err = q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}
