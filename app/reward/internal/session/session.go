// Package session 会话密钥校验与账号解析
package session

import (
	"context"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/lk2023060901/xdooria-reward/pkg/cache/lru"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/security"
)

const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// Config 会话配置
type Config struct {
	JWT *security.JWTConfig `mapstructure:"jwt"`
	// AccountCacheSize 账号缓存容量
	AccountCacheSize int           `mapstructure:"account_cache_size"`
	AccountCacheTTL  time.Duration `mapstructure:"account_cache_ttl"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		JWT:              security.DefaultJWTConfig(),
		AccountCacheSize: 10000,
		AccountCacheTTL:  30 * time.Second,
	}
}

// Session 已认证的会话
type Session struct {
	Account *model.Account
	Claims  *security.Claims
}

// Authenticator 会话校验
type Authenticator struct {
	jwt      *security.JWTManager
	store    repository.Store
	accounts *lru.LRU[int64, *model.Account]
	logger   logger.Logger
}

// NewAuthenticator 创建会话校验器
func NewAuthenticator(cfg *Config, store repository.Store, l logger.Logger) (*Authenticator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	jwtManager, err := security.NewJWTManager(cfg.JWT)
	if err != nil {
		return nil, err
	}
	return &Authenticator{
		jwt:   jwtManager,
		store: store,
		accounts: lru.New[int64, *model.Account](&lru.Config{
			MaxSize:         cfg.AccountCacheSize,
			DefaultTTL:      cfg.AccountCacheTTL,
			CleanupInterval: time.Minute,
		}),
		logger: l.Named("session"),
	}, nil
}

// Authenticate 校验会话密钥并加载账号
func (a *Authenticator) Authenticate(ctx context.Context, sessionKey string) (*Session, error) {
	claims, err := a.jwt.ValidateToken(sessionKey)
	if err != nil {
		return nil, errcode.AuthFailed(err)
	}
	accountID, err := claims.AccountID()
	if err != nil {
		return nil, errcode.AuthFailed(err)
	}

	acc, err := a.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Session{Account: acc, Claims: claims}, nil
}

// GetAuthenticatedAccount 会话密钥对应的账号
func (a *Authenticator) GetAuthenticatedAccount(ctx context.Context, sessionKey string) (*model.Account, error) {
	s, err := a.Authenticate(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return s.Account, nil
}

// IssueToken 签发会话密钥, ttl <= 0 时使用默认过期时间
func (a *Authenticator) IssueToken(accountID int64, role string, ttl time.Duration) (string, error) {
	return a.jwt.GenerateToken(accountID, role, ttl)
}

// Forget 删除账号缓存
func (a *Authenticator) Forget(accountID int64) {
	a.accounts.Delete(accountID)
}

// Close 停止缓存清理
func (a *Authenticator) Close() error {
	return a.accounts.Close()
}

func (a *Authenticator) account(ctx context.Context, accountID int64) (*model.Account, error) {
	if acc, ok := a.accounts.Get(accountID); ok {
		out := *acc
		return &out, nil
	}

	acc, err := a.store.Account(ctx, accountID)
	if err != nil {
		if errcode.Is(err, errcode.ErrDataNotFound) {
			a.logger.WarnContext(ctx, "session for unknown account", "account_id", accountID)
			return nil, errcode.AuthFailed(err)
		}
		return nil, err
	}
	a.accounts.Set(accountID, acc)

	out := *acc
	return &out, nil
}
