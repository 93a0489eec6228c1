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

// CharacterDAO 角色数据访问对象
type CharacterDAO struct {
	logger  logger.Logger
	metrics *metrics.RewardMetrics
}

func NewCharacterDAO(l logger.Logger, m *metrics.RewardMetrics) *CharacterDAO {
	return &CharacterDAO{
		logger:  l.Named("dao.character"),
		metrics: m,
	}
}

// Exists 账号是否已拥有角色
func (d *CharacterDAO) Exists(ctx context.Context, q postgres.Querier, accountID, uniqueID int64) (ok bool, err error) {
	defer observe(d.metrics, "character.exists", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Select("COUNT(*)").
		From("account_characters").
		Where(squirrel.Eq{"account_id": accountID, "unique_id": uniqueID}).
		ToSql()
	if err != nil {
		return false, err
	}

	n, err := postgres.Scalar[int64](ctx, q, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check character: %w", err)
	}
	return n > 0, nil
}

// List 账号全部角色
func (d *CharacterDAO) List(ctx context.Context, q postgres.Querier, accountID int64) (chars []*model.CharacterDB, err error) {
	defer observe(d.metrics, "character.list", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Select("server_id", "account_id", "unique_id", "star_grade", "level", "created_at").
		From("account_characters").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("created_at", "server_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	chars, err = postgres.Select[model.CharacterDB](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return chars, nil
}

// Insert 新增角色
func (d *CharacterDAO) Insert(ctx context.Context, q postgres.Querier, c *model.CharacterDB) (err error) {
	defer observe(d.metrics, "character.insert", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Insert("account_characters").
		Columns("server_id", "account_id", "unique_id", "star_grade", "level", "created_at").
		Values(c.ServerID, c.AccountID, c.UniqueID, c.StarGrade, c.Level, c.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err = q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert character: %w", err)
	}
	return nil
}
