package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/event"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/metrics"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

// ReceiveResult 领取结果, MailServerIDs 原样返回请求中的 ID
type ReceiveResult struct {
	MailServerIDs []int64               `json:"mail_server_ids"`
	ParcelResult  *model.ParcelResultDB `json:"parcel_result"`
}

// MailTemplate 系统邮件内容
type MailTemplate struct {
	Sender  string
	Comment string
	Parcels []model.Parcel
	// ExpireAt 为空时使用默认有效期
	ExpireAt *time.Time
}

// MailService 邮件与奖励领取
type MailService struct {
	cfg       *MailConfig
	index     *gamedata.Index
	store     repository.Store
	parcels   *ParcelService
	publisher event.Publisher
	metrics   *metrics.RewardMetrics
	logger    logger.Logger
	now       func() time.Time
}

func NewMailService(
	cfg *MailConfig,
	index *gamedata.Index,
	store repository.Store,
	parcels *ParcelService,
	publisher event.Publisher,
	m *metrics.RewardMetrics,
	l logger.Logger,
) *MailService {
	if cfg == nil {
		cfg = DefaultMailConfig()
	}
	return &MailService{
		cfg:       cfg,
		index:     index,
		store:     store,
		parcels:   parcels,
		publisher: publisher,
		metrics:   m,
		logger:    l.Named("service.mail"),
		now:       time.Now,
	}
}

// Check 未领取邮件数
func (s *MailService) Check(ctx context.Context, account *model.Account) (int64, error) {
	return s.store.CountUnreceived(ctx, account.ServerID)
}

// List isRead 为 true 时返回已领取邮件, 否则返回未领取邮件
func (s *MailService) List(ctx context.Context, account *model.Account, isRead bool) ([]*model.MailDB, error) {
	return s.store.ListMails(ctx, account.ServerID, isRead)
}

// Receive 领取邮件, 已领取或不属于该账号的 ID 被忽略, 重复调用不会重复发放
func (s *MailService) Receive(ctx context.Context, account *model.Account, ids []int64) (*ReceiveResult, error) {
	var (
		result   *model.ParcelResultDB
		received int
	)

	err := s.store.InAccountTx(ctx, account.ServerID, func(ctx context.Context, l repository.Ledger) error {
		// 1. 服务端重新筛选未领取邮件
		mails, err := l.UnreceivedMails(ctx, ids)
		if err != nil {
			return err
		}

		// 2. 展开系统邮件附件, 按邮件顺序再按附件顺序
		var parcels []model.Parcel
		stamp := make([]int64, 0, len(mails))
		for _, m := range mails {
			stamp = append(stamp, m.ServerID)
			if m.Type == model.MailTypeSystem {
				parcels = append(parcels, m.ParcelInfos...)
			}
		}

		// 3. 写入领取时间并发放, 同一事务提交
		if err := l.StampReceipt(ctx, stamp, s.now()); err != nil {
			return err
		}
		result, err = s.parcels.Resolve(ctx, l, parcels, ModeGrant)
		if err != nil {
			return err
		}
		received = len(mails)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if received > 0 {
		s.metrics.RecordMailReceived(received)
		s.logger.InfoContext(ctx, "mail received",
			"account_id", account.ServerID,
			"mails", received,
			"parcels", len(result.Parcels),
		)
		s.publish(ctx, &event.Event{
			Type:      event.TypeMailReceived,
			AccountID: account.ServerID,
			Payload:   result.Parcels,
		})
	}

	return &ReceiveResult{
		MailServerIDs: ids,
		ParcelResult:  result,
	}, nil
}

// SendSystemMail 向账号发送一封系统邮件
func (s *MailService) SendSystemMail(ctx context.Context, accountID int64, tpl *MailTemplate) (*model.MailDB, error) {
	if err := s.validate(tpl); err != nil {
		return nil, err
	}

	var mail *model.MailDB
	err := s.store.InAccountTx(ctx, accountID, func(ctx context.Context, l repository.Ledger) error {
		var err error
		mail, err = s.newMail(l, tpl)
		if err != nil {
			return err
		}
		return l.InsertMail(ctx, mail)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordMailSent(model.MailTypeSystem.String(), 1)
	s.logger.InfoContext(ctx, "system mail sent",
		"account_id", accountID,
		"mail_id", mail.ServerID,
		"parcels", len(mail.ParcelInfos),
	)
	s.publish(ctx, &event.Event{
		Type:      event.TypeMailSent,
		AccountID: accountID,
		Payload:   mail,
	})
	return mail, nil
}

// Broadcast 向多个账号发送同一封系统邮件, 返回成功数量与合并后的错误
func (s *MailService) Broadcast(ctx context.Context, accountIDs []int64, tpl *MailTemplate) (int, error) {
	if err := s.validate(tpl); err != nil {
		return 0, err
	}
	if len(accountIDs) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(s.cfg.BroadcastWorkers)
	if err != nil {
		return 0, fmt.Errorf("failed to create broadcast pool: %w", err)
	}
	defer pool.Release()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sent int
		errs []error
	)
	for _, id := range accountIDs {
		accountID := id
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			_, err := s.SendSystemMail(ctx, accountID, tpl)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("account %d: %w", accountID, err))
				return
			}
			sent++
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("account %d: %w", accountID, submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()

	s.logger.InfoContext(ctx, "mail broadcast finished",
		"targets", len(accountIDs),
		"sent", sent,
		"failed", len(errs),
	)
	return sent, errors.Join(errs...)
}

// ClearUnread 删除账号的全部未领取邮件
func (s *MailService) ClearUnread(ctx context.Context, accountID int64) (int64, error) {
	var n int64
	err := s.store.InAccountTx(ctx, accountID, func(ctx context.Context, l repository.Ledger) error {
		var err error
		n, err = l.DeleteUnreceived(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.logger.InfoContext(ctx, "unread mail cleared", "account_id", accountID, "count", n)
		s.publish(ctx, &event.Event{
			Type:      event.TypeMailCleared,
			AccountID: accountID,
			Payload:   map[string]int64{"count": n},
		})
	}
	return n, nil
}

// PurgeExpired 删除已过期的未领取邮件
func (s *MailService) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := s.store.PurgeExpiredMails(ctx, s.now())
	if err != nil {
		return 0, err
	}

	var total int64
	for accountID, n := range purged {
		total += n
		s.publish(ctx, &event.Event{
			Type:      event.TypeMailPurged,
			AccountID: accountID,
			Payload:   map[string]int64{"count": n},
		})
	}
	s.metrics.RecordMailPurged(total)
	if total > 0 {
		s.logger.InfoContext(ctx, "expired mail purged", "accounts", len(purged), "count", total)
	}
	return total, nil
}

func (s *MailService) validate(tpl *MailTemplate) error {
	if tpl == nil || len(tpl.Parcels) == 0 {
		return errcode.InvalidArgument("mail has no parcels")
	}
	for _, p := range tpl.Parcels {
		if p.Amount <= 0 {
			return errcode.InvalidArgument("parcel %s: amount must be positive", p)
		}
		if !s.index.Exists(p.Type, p.ID) {
			return errcode.DataNotFound("%s %d not found", p.Type, p.ID)
		}
	}
	return nil
}

func (s *MailService) newMail(l repository.Ledger, tpl *MailTemplate) (*model.MailDB, error) {
	id, err := l.NextID()
	if err != nil {
		return nil, err
	}
	now := s.now()
	expire := tpl.ExpireAt
	if expire == nil && s.cfg.DefaultExpire > 0 {
		t := now.Add(s.cfg.DefaultExpire)
		expire = &t
	}
	return &model.MailDB{
		ServerID:    id,
		AccountID:   l.AccountID(),
		Type:        model.MailTypeSystem,
		Sender:      tpl.Sender,
		Comment:     tpl.Comment,
		ParcelInfos: append([]model.Parcel(nil), tpl.Parcels...),
		SendDate:    now,
		ExpireDate:  expire,
	}, nil
}

func (s *MailService) publish(ctx context.Context, e *event.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", e.Type, "error", err)
	}
}
