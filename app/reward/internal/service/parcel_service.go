// Package service 奖励结算业务: 资源解析、招募、商店与邮件
package service

import (
	"context"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// Mode 解析方向
type Mode int

const (
	ModeConsume Mode = iota
	ModeGrant
)

func (m Mode) String() string {
	if m == ModeConsume {
		return "consume"
	}
	return "grant"
}

// ParcelService 资源解析器, 在账号事务内对账本加减资源
type ParcelService struct {
	index  *gamedata.Index
	cfg    *GachaConfig
	logger logger.Logger
	now    func() time.Time
}

func NewParcelService(index *gamedata.Index, cfg *GachaConfig, l logger.Logger) *ParcelService {
	if cfg == nil {
		cfg = DefaultGachaConfig()
	}
	return &ParcelService{
		index:  index,
		cfg:    cfg,
		logger: l.Named("service.parcel"),
		now:    time.Now,
	}
}

// Resolve 依次应用 parcels, 返回变更后的状态与货币快照
func (s *ParcelService) Resolve(ctx context.Context, l repository.Ledger, parcels []model.Parcel, mode Mode) (*model.ParcelResultDB, error) {
	result := model.NewParcelResultDB()
	if err := s.ResolveInto(ctx, l, parcels, mode, result); err != nil {
		return nil, err
	}
	if err := s.Snapshot(ctx, l, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveInto 将变更累加到已有结果中
func (s *ParcelService) ResolveInto(ctx context.Context, l repository.Ledger, parcels []model.Parcel, mode Mode, result *model.ParcelResultDB) error {
	for _, p := range parcels {
		if p.Amount <= 0 {
			return errcode.InvalidArgument("parcel %s: amount must be positive", p)
		}

		var err error
		switch p.Type {
		case model.ParcelTypeCurrency:
			err = s.applyCurrency(ctx, l, p, mode)
		case model.ParcelTypeItem, model.ParcelTypeEquipment, model.ParcelTypeFurniture:
			err = s.applyStack(ctx, l, p, mode, result)
		case model.ParcelTypeCharacter:
			err = s.applyCharacter(ctx, l, p, mode, result)
		default:
			err = errcode.InvalidArgument("parcel %s: unsupported type", p)
		}
		if err != nil {
			return err
		}
		result.Parcels = append(result.Parcels, p)
	}
	return nil
}

// Snapshot 写入当前货币余额
func (s *ParcelService) Snapshot(ctx context.Context, l repository.Ledger, result *model.ParcelResultDB) error {
	cur, err := l.Currency(ctx)
	if err != nil {
		return err
	}
	result.AccountCurrency = cur
	return nil
}

func (s *ParcelService) applyCurrency(ctx context.Context, l repository.Ledger, p model.Parcel, mode Mode) error {
	if mode == ModeGrant {
		if _, ok := s.index.Currency(p.ID); !ok {
			return errcode.DataNotFound("currency %d not found", p.ID)
		}
	}

	cur, err := l.Currency(ctx)
	if err != nil {
		return err
	}
	balance := cur.Balances[p.ID]

	if mode == ModeConsume {
		if balance < p.Amount {
			return errcode.Insufficient("currency %d: have %d, need %d", p.ID, balance, p.Amount)
		}
		return l.SetCurrency(ctx, p.ID, balance-p.Amount)
	}
	return l.SetCurrency(ctx, p.ID, balance+p.Amount)
}

func (s *ParcelService) applyStack(ctx context.Context, l repository.Ledger, p model.Parcel, mode Mode, result *model.ParcelResultDB) error {
	if mode == ModeGrant {
		if !s.index.Exists(p.Type, p.ID) {
			return errcode.DataNotFound("%s %d not found", p.Type, p.ID)
		}
		_, err := s.AddStack(ctx, l, p.Type, p.ID, p.Amount, result)
		return err
	}

	item, err := l.Item(ctx, p.Type, p.ID)
	if err != nil {
		return err
	}
	if item == nil || item.StackCount < p.Amount {
		var have int64
		if item != nil {
			have = item.StackCount
		}
		return errcode.Insufficient("%s %d: have %d, need %d", p.Type, p.ID, have, p.Amount)
	}
	item.StackCount -= p.Amount
	if err := l.SaveItem(ctx, item); err != nil {
		return err
	}
	result.TouchItem(item)
	return nil
}

// AddStack 增加堆叠数量, 行不存在时创建
func (s *ParcelService) AddStack(ctx context.Context, l repository.Ledger, t model.ParcelType, id, amount int64, result *model.ParcelResultDB) (*model.ItemDB, error) {
	item, err := l.Item(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		serverID, err := l.NextID()
		if err != nil {
			return nil, err
		}
		item = &model.ItemDB{
			ServerID:   serverID,
			AccountID:  l.AccountID(),
			ParcelType: t,
			UniqueID:   id,
		}
	}
	item.StackCount += amount
	if err := l.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	result.TouchItem(item)
	return item, nil
}

func (s *ParcelService) applyCharacter(ctx context.Context, l repository.Ledger, p model.Parcel, mode Mode, result *model.ParcelResultDB) error {
	if mode == ModeConsume {
		return errcode.Invariant("parcel %s: characters cannot be consumed", p)
	}
	char, ok := s.index.Character(p.ID)
	if !ok {
		return errcode.DataNotFound("character %d not found", p.ID)
	}
	for i := int64(0); i < p.Amount; i++ {
		if _, err := s.GrantCharacter(ctx, l, char, result); err != nil {
			return err
		}
	}
	return nil
}

// GrantCharacter 未拥有时创建角色, 已拥有时转换为神名文字
func (s *ParcelService) GrantCharacter(ctx context.Context, l repository.Ledger, char *gamedata.CharacterExcel, result *model.ParcelResultDB) (*model.GachaResult, error) {
	owned, err := l.HasCharacter(ctx, char.ID)
	if err != nil {
		return nil, err
	}

	if owned {
		if char.SecretStoneItemID == 0 {
			s.logger.WarnContext(ctx, "duplicate character has no secret stone",
				"account_id", l.AccountID(),
				"character_id", char.ID,
			)
			return &model.GachaResult{}, nil
		}
		stone, err := s.AddStack(ctx, l, model.ParcelTypeItem, char.SecretStoneItemID, s.cfg.DuplicateStoneAmount, result)
		if err != nil {
			return nil, err
		}
		converted := *stone
		result.DuplicateToStone = append(result.DuplicateToStone, &converted)
		return &model.GachaResult{Stone: &converted}, nil
	}

	serverID, err := l.NextID()
	if err != nil {
		return nil, err
	}
	starGrade := char.DefaultStarGrade
	if starGrade < 1 {
		starGrade = 1
	}
	c := &model.CharacterDB{
		ServerID:  serverID,
		AccountID: l.AccountID(),
		UniqueID:  char.ID,
		StarGrade: starGrade,
		Level:     1,
		CreatedAt: s.now(),
	}
	if err := l.AddCharacter(ctx, c); err != nil {
		return nil, err
	}
	result.Characters = append(result.Characters, c)
	return &model.GachaResult{Character: c}, nil
}

// ResultAdder 绑定到当前事务的招募结果落地器
func (s *ParcelService) ResultAdder(l repository.Ledger, result *model.ParcelResultDB) func(ctx context.Context, char *gamedata.CharacterExcel) (*model.GachaResult, error) {
	return func(ctx context.Context, char *gamedata.CharacterExcel) (*model.GachaResult, error) {
		return s.GrantCharacter(ctx, l, char, result)
	}
}
