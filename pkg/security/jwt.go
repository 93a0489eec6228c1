package security

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lk2023060901/xdooria-reward/pkg/config"
)

// JWTConfig JWT 配置, 仅支持 HMAC 算法
type JWTConfig struct {
	// SecretKey 签名密钥
	SecretKey string `mapstructure:"secret_key" json:"secret_key"`

	// Algorithm HS256, HS384, HS512 (默认 HS256)
	Algorithm string `mapstructure:"algorithm" json:"algorithm"`

	// ExpiresIn Token 过期时间 (默认 24 小时)
	ExpiresIn time.Duration `mapstructure:"expires_in" json:"expires_in"`

	Issuer string `mapstructure:"issuer" json:"issuer"`

	// TokenPrefix 默认 "Bearer "
	TokenPrefix string `mapstructure:"token_prefix" json:"token_prefix"`
}

// DefaultJWTConfig 返回默认 JWT 配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Algorithm:   "HS256",
		ExpiresIn:   24 * time.Hour,
		TokenPrefix: "Bearer ",
	}
}

// Claims 会话 Claims, Subject 为账号 ID
type Claims struct {
	jwt.RegisteredClaims

	// Role 会话角色, 如 player、admin
	Role string `json:"role,omitempty"`
}

// AccountID 解析 Subject 中的账号 ID
func (c *Claims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrTokenInvalid, c.Subject)
	}
	return id, nil
}

// JWTManager JWT 签发与校验
type JWTManager struct {
	config *JWTConfig
	method jwt.SigningMethod
	now    func() time.Time
}

// NewJWTManager 创建 JWT 管理器
func NewJWTManager(cfg *JWTConfig) (*JWTManager, error) {
	merged, err := config.MergeConfig(DefaultJWTConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if merged.SecretKey == "" {
		return nil, ErrSecretKeyEmpty
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(merged.Algorithm) {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %s", ErrAlgorithmInvalid, merged.Algorithm)
	}

	return &JWTManager{config: merged, method: method, now: time.Now}, nil
}

// GenerateToken 为账号签发 Token, ttl <= 0 时使用配置的过期时间
func (m *JWTManager) GenerateToken(accountID int64, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.config.ExpiresIn
	}
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(m.method, claims).SignedString([]byte(m.config.SecretKey))
}

// ValidateToken 校验 Token 并返回 Claims, 可带前缀
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, m.config.TokenPrefix))
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	opts := []jwt.ParserOption{jwt.WithTimeFunc(m.now)}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != m.method.Alg() {
			return nil, ErrAlgorithmMismatch
		}
		return []byte(m.config.SecretKey), nil
	}, opts...)
	if err != nil {
		return nil, wrapError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func wrapError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotValidYet
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, ErrAlgorithmMismatch):
		return ErrAlgorithmMismatch
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}

type contextKey struct{}

// SetClaimsToContext 将 Claims 存入 context
func SetClaimsToContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// GetClaimsFromContext 从 context 获取 Claims
func GetClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}
