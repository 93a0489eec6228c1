// Package handler 奖励服务 HTTP 接口
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/command"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/service"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/session"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/security"
	"github.com/lk2023060901/xdooria-reward/pkg/sentry"
	"github.com/lk2023060901/xdooria-reward/pkg/web"
	weberrors "github.com/lk2023060901/xdooria-reward/pkg/web/errors"
	"github.com/lk2023060901/xdooria-reward/pkg/web/middleware"
)

const sessionContextKey = "reward.session"

// Handler 路由与接口实现
type Handler struct {
	auth       *session.Authenticator
	mail       *service.MailService
	shop       *service.ShopService
	gacha      *service.GachaService
	dispatcher *command.Dispatcher
	limiter    *middleware.RateLimiter
	reporter   *sentry.Client
	logger     logger.Logger
}

// NewHandler 创建处理器, limiter 与 reporter 可为 nil
func NewHandler(
	auth *session.Authenticator,
	mail *service.MailService,
	shop *service.ShopService,
	gacha *service.GachaService,
	dispatcher *command.Dispatcher,
	limiter *middleware.RateLimiter,
	reporter *sentry.Client,
	l logger.Logger,
) *Handler {
	return &Handler{
		auth:       auth,
		mail:       mail,
		shop:       shop,
		gacha:      gacha,
		dispatcher: dispatcher,
		limiter:    limiter,
		reporter:   reporter,
		logger:     l.Named("handler"),
	}
}

// Register 注册路由
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1", h.Authenticate)
	if h.limiter != nil {
		api.Use(h.limiter.Handler(keyByAccount))
	}
	{
		api.POST("/mail/check", h.MailCheck)
		api.POST("/mail/list", h.MailList)
		api.POST("/mail/receive", h.MailReceive)
		api.POST("/shop/list", h.ShopList)
		api.POST("/shop/buy_gacha", h.BuyGacha)
	}

	admin := api.Group("/admin", middleware.RequireRole(session.RoleAdmin))
	{
		admin.POST("/command", h.AdminCommand)
	}
}

// Health 存活检查
func (h *Handler) Health(c *gin.Context) {
	web.Success(c, gin.H{"status": "ok"})
}

// Authenticate 校验 Authorization 头中的会话密钥
func (h *Handler) Authenticate(c *gin.Context) {
	s, err := h.auth.Authenticate(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(sessionContextKey, s)
	c.Request = c.Request.WithContext(security.SetClaimsToContext(c.Request.Context(), s.Claims))
	c.Next()
}

func keyByAccount(c *gin.Context) string {
	s, ok := sessionFrom(c)
	if !ok {
		return ""
	}
	return "account:" + strconv.FormatInt(s.Account.ServerID, 10)
}

func sessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

func accountFrom(c *gin.Context) *model.Account {
	s, _ := sessionFrom(c)
	return s.Account
}

// fail 按错误分类写入响应, 内部错误上报 Sentry
func (h *Handler) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	code := errorCode(err)
	if code != weberrors.CodeInternalError {
		h.logger.WarnContext(ctx, "request rejected", "path", c.FullPath(), "code", code, "error", err)
		web.Fail(c, code, err.Error())
		return
	}

	h.logger.ErrorContext(ctx, "request failed", "path", c.FullPath(), "error", err)
	h.reporter.CaptureError(err, map[string]string{
		"path":       c.FullPath(),
		"request_id": middleware.GetRequestID(c),
	})
	web.Fail(c, code, "internal error")
}

func errorCode(err error) int {
	switch errcode.Kind(err) {
	case errcode.ErrDataNotFound:
		return weberrors.CodeNotFound
	case errcode.ErrInsufficientResources:
		return weberrors.CodeConflict
	case errcode.ErrAuthenticationFailed:
		return weberrors.CodeUnAuthorized
	case errcode.ErrInvalidArgument:
		return weberrors.CodeInvalidParams
	default:
		return weberrors.CodeInternalError
	}
}
