package repository

import (
	"context"
	"sync"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/dao"
)

// GuaranteeStore 账号一次性指定角色, 0 表示未设置
type GuaranteeStore interface {
	Set(ctx context.Context, accountID, characterID int64) error
	Peek(ctx context.Context, accountID int64) (int64, error)
	// Take 读取并清除
	Take(ctx context.Context, accountID int64) (int64, error)
	Clear(ctx context.Context, accountID int64) error
}

type redisGuaranteeStore struct {
	cache *dao.CacheDAO
}

// NewRedisGuaranteeStore 基于 redis 的指定角色存储
func NewRedisGuaranteeStore(cache *dao.CacheDAO) GuaranteeStore {
	return &redisGuaranteeStore{cache: cache}
}

func (s *redisGuaranteeStore) Set(ctx context.Context, accountID, characterID int64) error {
	return s.cache.SetGuarantee(ctx, accountID, characterID)
}

func (s *redisGuaranteeStore) Peek(ctx context.Context, accountID int64) (int64, error) {
	return s.cache.PeekGuarantee(ctx, accountID)
}

func (s *redisGuaranteeStore) Take(ctx context.Context, accountID int64) (int64, error) {
	return s.cache.TakeGuarantee(ctx, accountID)
}

func (s *redisGuaranteeStore) Clear(ctx context.Context, accountID int64) error {
	return s.cache.ClearGuarantee(ctx, accountID)
}

type memoryGuaranteeStore struct {
	mu sync.Mutex
	m  map[int64]int64
}

// NewMemoryGuaranteeStore 进程内指定角色存储
func NewMemoryGuaranteeStore() GuaranteeStore {
	return &memoryGuaranteeStore{m: make(map[int64]int64)}
}

func (s *memoryGuaranteeStore) Set(_ context.Context, accountID, characterID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[accountID] = characterID
	return nil
}

func (s *memoryGuaranteeStore) Peek(_ context.Context, accountID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[accountID], nil
}

func (s *memoryGuaranteeStore) Take(_ context.Context, accountID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.m[accountID]
	delete(s.m, accountID)
	return id, nil
}

func (s *memoryGuaranteeStore) Clear(_ context.Context, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, accountID)
	return nil
}
