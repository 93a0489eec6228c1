package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/command"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/event"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gacha"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/service"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/session"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/security"
	"github.com/lk2023060901/xdooria-reward/pkg/web"
	weberrors "github.com/lk2023060901/xdooria-reward/pkg/web/errors"
	"github.com/lk2023060901/xdooria-reward/pkg/web/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	playerID int64 = 1
	adminID  int64 = 2
)

// maxRNG 抽取随机数恒为 999, 池内选择取第一个
type maxRNG struct{}

func (maxRNG) Int64N(n int64) int64 {
	if n == 1000 {
		return 999
	}
	return 0
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	TraceID string          `json:"trace_id"`
}

type testServer struct {
	router *gin.Engine
	auth   *session.Authenticator
	mail   *service.MailService
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	l := logger.NewNoop()

	idx, err := gamedata.Load(&gamedata.Config{DataDir: "../gamedata/testdata"}, l)
	require.NoError(t, err)

	store := repository.NewMemoryStore(l)
	require.NoError(t, store.CreateAccount(context.Background(), &model.Account{ServerID: playerID, Nickname: "sensei"}))
	require.NoError(t, store.CreateAccount(context.Background(), &model.Account{ServerID: adminID, Nickname: "arona"}))

	auth, err := session.NewAuthenticator(&session.Config{
		JWT:              &security.JWTConfig{SecretKey: "handler-secret"},
		AccountCacheSize: 16,
		AccountCacheTTL:  time.Minute,
	}, store, l)
	require.NoError(t, err)
	t.Cleanup(func() { _ = auth.Close() })

	cfg := service.DefaultGachaConfig()
	parcels := service.NewParcelService(idx, cfg, l)
	publisher := event.NewNoopPublisher()
	mail := service.NewMailService(service.DefaultMailConfig(), idx, store, parcels, publisher, nil, l)
	gachaSvc := service.NewGachaService(cfg, idx, gacha.NewEngine(idx, maxRNG{}, l), store,
		repository.NewMemoryGuaranteeStore(), parcels, publisher, nil, l)

	s, err := web.NewServer(&web.Config{Mode: gin.TestMode}, l, nil)
	require.NoError(t, err)

	h := NewHandler(auth, mail, service.NewShopService(idx, l), gachaSvc,
		command.NewDispatcher(idx, mail, gachaSvc, l), limiter, nil, l)
	h.Register(s.Router())

	return &testServer{router: s.Router(), auth: auth, mail: mail}
}

func (s *testServer) token(t *testing.T, accountID int64, role string) string {
	t.Helper()
	token, err := s.auth.IssueToken(accountID, role, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) post(t *testing.T, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (s *testServer) sendMail(t *testing.T, accountID int64, parcels ...model.Parcel) *model.MailDB {
	t.Helper()
	m, err := s.mail.SendSystemMail(context.Background(), accountID, &service.MailTemplate{
		Sender:  "Schale",
		Comment: "test",
		Parcels: parcels,
	})
	require.NoError(t, err)
	return m
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticationRequired(t *testing.T) {
	s := newTestServer(t, nil)

	w, resp := s.post(t, "/api/v1/mail/check", "", struct{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, weberrors.CodeUnAuthorized, resp.Code)

	w, _ = s.post(t, "/api/v1/mail/check", "not-a-jwt", struct{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 账号不存在
	w, resp = s.post(t, "/api/v1/mail/check", s.token(t, 999, session.RolePlayer), struct{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, weberrors.CodeUnAuthorized, resp.Code)
}

func TestMailFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, playerID, session.RolePlayer)

	m1 := s.sendMail(t, playerID, model.Parcel{Type: model.ParcelTypeCurrency, ID: 4, Amount: 100})
	m2 := s.sendMail(t, playerID, model.Parcel{Type: model.ParcelTypeCurrency, ID: 4, Amount: 100})

	w, resp := s.post(t, "/api/v1/mail/check", token, struct{}{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, string(resp.Data))

	_, resp = s.post(t, "/api/v1/mail/list", token, MailListRequest{IsReadMail: false})
	var list MailListResponse
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, 2, list.Count)

	ids := []int64{m1.ServerID, m2.ServerID}
	w, resp = s.post(t, "/api/v1/mail/receive", token, MailReceiveRequest{MailServerIDs: ids})
	require.Equal(t, http.StatusOK, w.Code)
	var received service.ReceiveResult
	require.NoError(t, json.Unmarshal(resp.Data, &received))
	assert.Equal(t, ids, received.MailServerIDs)
	require.NotNil(t, received.ParcelResult.AccountCurrency)
	assert.Equal(t, int64(200), received.ParcelResult.AccountCurrency.Balances[4])

	// 重复领取不再发放
	_, resp = s.post(t, "/api/v1/mail/receive", token, MailReceiveRequest{MailServerIDs: ids})
	require.NoError(t, json.Unmarshal(resp.Data, &received))
	assert.Empty(t, received.ParcelResult.Parcels)

	_, resp = s.post(t, "/api/v1/mail/list", token, MailListRequest{IsReadMail: true})
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, 2, list.Count)
}

func TestMailReceiveRequiresIDs(t *testing.T) {
	s := newTestServer(t, nil)

	w, resp := s.post(t, "/api/v1/mail/receive", s.token(t, playerID, session.RolePlayer), struct{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, weberrors.CodeInvalidParams, resp.Code)
}

func TestShopList(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, playerID, session.RolePlayer)

	w, resp := s.post(t, "/api/v1/shop/list", token, ShopListRequest{CategoryList: []string{"general", "Raid"}})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		ShopInfos []*model.ShopInfoDB `json:"shop_infos"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	require.Len(t, body.ShopInfos, 1)
	assert.Equal(t, model.ShopCategoryGeneral, body.ShopInfos[0].Category)
	assert.NotEmpty(t, body.ShopInfos[0].ShopProductList)

	w, resp = s.post(t, "/api/v1/shop/list", token, ShopListRequest{CategoryList: []string{"Casino"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, weberrors.CodeInvalidParams, resp.Code)
}

func TestBuyGacha(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, playerID, session.RolePlayer)
	req := BuyGachaRequest{ShopUniqueID: 100, GoodsID: 500}

	w, resp := s.post(t, "/api/v1/shop/buy_gacha", token, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, weberrors.CodeConflict, resp.Code)

	// 未给出消耗
	w, resp = s.post(t, "/api/v1/shop/buy_gacha", token, BuyGachaRequest{ShopUniqueID: 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, weberrors.CodeInvalidParams, resp.Code)

	s.sendMail(t, playerID, model.Parcel{Type: model.ParcelTypeCurrency, ID: 4, Amount: 1200})
	mails, err := s.mail.List(context.Background(), &model.Account{ServerID: playerID}, false)
	require.NoError(t, err)
	_, err = s.mail.Receive(context.Background(), &model.Account{ServerID: playerID}, []int64{mails[0].ServerID})
	require.NoError(t, err)

	w, resp = s.post(t, "/api/v1/shop/buy_gacha", token, req)
	require.Equal(t, http.StatusOK, w.Code)
	var res service.BuyGachaResult
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, int64(10), res.PullCount)
	assert.Len(t, res.GachaResults, 10)
	assert.Zero(t, res.AccountCurrency.Balances[4])
}

func TestAdminCommand(t *testing.T) {
	s := newTestServer(t, nil)
	body := AdminCommandRequest{AccountID: playerID, Line: "/mail 1 500"}

	w, resp := s.post(t, "/api/v1/admin/command", s.token(t, playerID, session.RolePlayer), body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, weberrors.CodeForbidden, resp.Code)

	admin := s.token(t, adminID, session.RoleAdmin)
	w, resp = s.post(t, "/api/v1/admin/command", admin, body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"lines":["Sent 500x Currency (ID: 1) via mail!","Please check your mailbox."]}`, string(resp.Data))

	n, err := s.mail.Check(context.Background(), &model.Account{ServerID: playerID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// 目标账号不存在
	w, _ = s.post(t, "/api/v1/admin/command", admin, AdminCommandRequest{AccountID: 404, Line: "/mail 1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(&middleware.RateLimitConfig{
		RequestsPerSecond: 0.001,
		Burst:             1,
		MaxLimiters:       16,
		LimiterTTL:        time.Minute,
	}, logger.NewNoop())
	t.Cleanup(func() { _ = limiter.Close() })

	s := newTestServer(t, limiter)
	token := s.token(t, playerID, session.RolePlayer)

	w, _ := s.post(t, "/api/v1/mail/check", token, struct{}{})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.post(t, "/api/v1/mail/check", token, struct{}{})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 限流按账号区分
	w, _ = s.post(t, "/api/v1/mail/check", s.token(t, adminID, session.RoleAdmin), struct{}{})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, weberrors.CodeNotFound, errorCode(errcode.DataNotFound("x")))
	assert.Equal(t, weberrors.CodeConflict, errorCode(errcode.Insufficient("x")))
	assert.Equal(t, weberrors.CodeUnAuthorized, errorCode(errcode.AuthFailed(security.ErrTokenExpired)))
	assert.Equal(t, weberrors.CodeUnAuthorized, errorCode(errcode.AuthFailed(errcode.DataNotFound("account %d not found", 999))))
	assert.Equal(t, weberrors.CodeInvalidParams, errorCode(errcode.InvalidArgument("x")))
	assert.Equal(t, weberrors.CodeInternalError, errorCode(errcode.Invariant("x")))
	assert.Equal(t, weberrors.CodeInternalError, errorCode(context.Canceled))
}
