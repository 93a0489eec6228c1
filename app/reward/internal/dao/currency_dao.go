package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/metrics"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// CurrencyDAO 货币余额数据访问对象
type CurrencyDAO struct {
	logger  logger.Logger
	metrics *metrics.RewardMetrics
}

func NewCurrencyDAO(l logger.Logger, m *metrics.RewardMetrics) *CurrencyDAO {
	return &CurrencyDAO{
		logger:  l.Named("dao.currency"),
		metrics: m,
	}
}

type currencyRow struct {
	CurrencyID int64     `db:"currency_id"`
	Amount     int64     `db:"amount"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Get 获取账号全部货币余额
func (d *CurrencyDAO) Get(ctx context.Context, q postgres.Querier, accountID int64) (cur *model.AccountCurrency, err error) {
	defer observe(d.metrics, "currency.select", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Select("currency_id", "amount", "updated_at").
		From("account_currencies").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("currency_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := postgres.Select[currencyRow](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get account currency: %w", err)
	}

	cur = model.NewAccountCurrency(accountID)
	for _, r := range rows {
		cur.Balances[r.CurrencyID] = r.Amount
		if r.UpdatedAt.After(cur.UpdatedAt) {
			cur.UpdatedAt = r.UpdatedAt
		}
	}
	return cur, nil
}

// Set 写入单个货币余额 (Upsert)
func (d *CurrencyDAO) Set(ctx context.Context, q postgres.Querier, accountID, currencyID, amount int64, now time.Time) (err error) {
	defer observe(d.metrics, "currency.upsert", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Insert("account_currencies").
		Columns("account_id", "currency_id", "amount", "updated_at").
		Values(accountID, currencyID, amount, now).
		Suffix("ON CONFLICT (account_id, currency_id) DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return err
	}

	if _, err = q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save account currency: %w", err)
	}
	return nil
}
