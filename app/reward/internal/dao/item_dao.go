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

// ItemDAO 堆叠资源 (道具/装备/家具) 数据访问对象
type ItemDAO struct {
	logger  logger.Logger
	metrics *metrics.RewardMetrics
}

func NewItemDAO(l logger.Logger, m *metrics.RewardMetrics) *ItemDAO {
	return &ItemDAO{
		logger:  l.Named("dao.item"),
		metrics: m,
	}
}

type itemRow struct {
	ServerID   int64 `db:"server_id"`
	AccountID  int64 `db:"account_id"`
	ParcelType int32 `db:"parcel_type"`
	UniqueID   int64 `db:"unique_id"`
	StackCount int64 `db:"stack_count"`
}

func (r *itemRow) toModel() *model.ItemDB {
	return &model.ItemDB{
		ServerID:   r.ServerID,
		AccountID:  r.AccountID,
		ParcelType: model.ParcelType(r.ParcelType),
		UniqueID:   r.UniqueID,
		StackCount: r.StackCount,
	}
}

// Get 获取单行, 不存在返回 nil
func (d *ItemDAO) Get(ctx context.Context, q postgres.Querier, accountID int64, t model.ParcelType, uniqueID int64) (item *model.ItemDB, err error) {
	defer observe(d.metrics, "item.select", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Select("server_id", "account_id", "parcel_type", "unique_id", "stack_count").
		From("account_items").
		Where(squirrel.Eq{"account_id": accountID, "parcel_type": int32(t), "unique_id": uniqueID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	row, err := postgres.Get[itemRow](ctx, q, query, args...)
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			err = nil
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return row.toModel(), nil
}

// List 获取账号指定类型的全部行
func (d *ItemDAO) List(ctx context.Context, q postgres.Querier, accountID int64, t model.ParcelType) (items []*model.ItemDB, err error) {
	defer observe(d.metrics, "item.list", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Select("server_id", "account_id", "parcel_type", "unique_id", "stack_count").
		From("account_items").
		Where(squirrel.Eq{"account_id": accountID, "parcel_type": int32(t)}).
		OrderBy("unique_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := postgres.Select[itemRow](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	items = make([]*model.ItemDB, len(rows))
	for i, r := range rows {
		items[i] = r.toModel()
	}
	return items, nil
}

// Save 写入堆叠数量 (Upsert)
func (d *ItemDAO) Save(ctx context.Context, q postgres.Querier, item *model.ItemDB) (err error) {
	defer observe(d.metrics, "item.upsert", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Insert("account_items").
		Columns("server_id", "account_id", "parcel_type", "unique_id", "stack_count", "updated_at").
		Values(item.ServerID, item.AccountID, int32(item.ParcelType), item.UniqueID, item.StackCount, time.Now()).
		Suffix("ON CONFLICT (account_id, parcel_type, unique_id) DO UPDATE SET stack_count = EXCLUDED.stack_count, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return err
	}

	if _, err = q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}
