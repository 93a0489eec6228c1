package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/metrics"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

var mailColumns = []string{
	"server_id", "account_id", "type", "sender", "comment",
	"parcel_infos", "send_date", "expire_date", "receipt_date",
}

// MailDAO 邮件数据访问对象
type MailDAO struct {
	logger  logger.Logger
	metrics *metrics.RewardMetrics
}

func NewMailDAO(l logger.Logger, m *metrics.RewardMetrics) *MailDAO {
	return &MailDAO{
		logger:  l.Named("dao.mail"),
		metrics: m,
	}
}

type mailRow struct {
	ServerID    int64      `db:"server_id"`
	AccountID   int64      `db:"account_id"`
	Type        int32      `db:"type"`
	Sender      string     `db:"sender"`
	Comment     string     `db:"comment"`
	ParcelInfos []byte     `db:"parcel_infos"`
	SendDate    time.Time  `db:"send_date"`
	ExpireDate  *time.Time `db:"expire_date"`
	ReceiptDate *time.Time `db:"receipt_date"`
}

func (r *mailRow) toModel() (*model.MailDB, error) {
	m := &model.MailDB{
		ServerID:    r.ServerID,
		AccountID:   r.AccountID,
		Type:        model.MailType(r.Type),
		Sender:      r.Sender,
		Comment:     r.Comment,
		SendDate:    r.SendDate,
		ExpireDate:  r.ExpireDate,
		ReceiptDate: r.ReceiptDate,
	}
	if len(r.ParcelInfos) > 0 {
		if err := json.Unmarshal(r.ParcelInfos, &m.ParcelInfos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mail %d parcels: %w", r.ServerID, err)
		}
	}
	return m, nil
}

func (d *MailDAO) selectMails(ctx context.Context, q postgres.Querier, sb squirrel.SelectBuilder) ([]*model.MailDB, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := postgres.Select[mailRow](ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	mails := make([]*model.MailDB, 0, len(rows))
	for _, r := range rows {
		m, err := r.toModel()
		if err != nil {
			return nil, err
		}
		mails = append(mails, m)
	}
	return mails, nil
}

// Insert 新增邮件
func (d *MailDAO) Insert(ctx context.Context, q postgres.Querier, m *model.MailDB) (err error) {
	defer observe(d.metrics, "mail.insert", time.Now(), &err)

	parcels, err := json.Marshal(m.ParcelInfos)
	if err != nil {
		return fmt.Errorf("failed to marshal mail parcels: %w", err)
	}

	query, args, err := postgres.QueryBuilder.
		Insert("mails").
		Columns(mailColumns...).
		Values(m.ServerID, m.AccountID, int32(m.Type), m.Sender, m.Comment,
			parcels, m.SendDate, m.ExpireDate, m.ReceiptDate).
		ToSql()
	if err != nil {
		return err
	}

	if _, err = q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert mail: %w", err)
	}
	return nil
}

// List 按领取状态列出账号邮件
func (d *MailDAO) List(ctx context.Context, q postgres.Querier, accountID int64, received bool) (mails []*model.MailDB, err error) {
	defer observe(d.metrics, "mail.list", time.Now(), &err)

	where := squirrel.And{squirrel.Eq{"account_id": accountID}}
	if received {
		where = append(where, squirrel.NotEq{"receipt_date": nil})
	} else {
		where = append(where, squirrel.Eq{"receipt_date": nil})
	}

	mails, err = d.selectMails(ctx, q, postgres.QueryBuilder.
		Select(mailColumns...).
		From("mails").
		Where(where).
		OrderBy("server_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to list mails: %w", err)
	}
	return mails, nil
}

// SelectUnreceivedForUpdate 锁定账号指定 ID 中未领取的邮件
func (d *MailDAO) SelectUnreceivedForUpdate(ctx context.Context, tx postgres.Tx, accountID int64, ids []int64) (mails []*model.MailDB, err error) {
	defer observe(d.metrics, "mail.select_unreceived", time.Now(), &err)

	if len(ids) == 0 {
		return nil, nil
	}
	mails, err = d.selectMails(ctx, tx, postgres.QueryBuilder.
		Select(mailColumns...).
		From("mails").
		Where(squirrel.Eq{"account_id": accountID, "server_id": ids, "receipt_date": nil}).
		OrderBy("server_id").
		Suffix("FOR UPDATE"))
	if err != nil {
		return nil, fmt.Errorf("failed to select unreceived mails: %w", err)
	}
	return mails, nil
}

// StampReceipt 写入领取时间, 已领取的邮件不受影响
func (d *MailDAO) StampReceipt(ctx context.Context, q postgres.Querier, accountID int64, ids []int64, at time.Time) (n int64, err error) {
	defer observe(d.metrics, "mail.stamp", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Update("mails").
		Set("receipt_date", at).
		Where(squirrel.Eq{"account_id": accountID, "server_id": ids, "receipt_date": nil}).
		ToSql()
	if err != nil {
		return 0, err
	}

	n, err = q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to stamp mails: %w", err)
	}
	return n, nil
}

// CountUnreceived 未领取邮件数
func (d *MailDAO) CountUnreceived(ctx context.Context, q postgres.Querier, accountID int64) (n int64, err error) {
	defer observe(d.metrics, "mail.count", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Select("COUNT(*)").
		From("mails").
		Where(squirrel.Eq{"account_id": accountID, "receipt_date": nil}).
		ToSql()
	if err != nil {
		return 0, err
	}

	n, err = postgres.Scalar[int64](ctx, q, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count mails: %w", err)
	}
	return n, nil
}

// DeleteUnreceived 删除账号全部未领取邮件
func (d *MailDAO) DeleteUnreceived(ctx context.Context, q postgres.Querier, accountID int64) (n int64, err error) {
	defer observe(d.metrics, "mail.delete_unreceived", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Delete("mails").
		Where(squirrel.Eq{"account_id": accountID, "receipt_date": nil}).
		ToSql()
	if err != nil {
		return 0, err
	}

	n, err = q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete mails: %w", err)
	}
	return n, nil
}

// DeleteExpired 删除已过期且未领取的邮件, 返回受影响的账号 ID
func (d *MailDAO) DeleteExpired(ctx context.Context, q postgres.Querier, now time.Time) (accountIDs []int64, err error) {
	defer observe(d.metrics, "mail.delete_expired", time.Now(), &err)

	query, args, err := postgres.QueryBuilder.
		Delete("mails").
		Where(squirrel.And{
			squirrel.Eq{"receipt_date": nil},
			squirrel.NotEq{"expire_date": nil},
			squirrel.LtOrEq{"expire_date": now},
		}).
		Suffix("RETURNING account_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired mails: %w", err)
	}
	accountIDs, err = pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect purged accounts: %w", err)
	}
	return accountIDs, nil
}
