package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/prometheus"
	"github.com/lk2023060901/xdooria-reward/pkg/security"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestRecovery(t *testing.T) {
	var reported any
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.NewNoop(), func(_ *gin.Context, rec any) {
		reported = rec
	}))
	r.GET("/panic", func(*gin.Context) {
		panic("boom")
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "50000")
	assert.Equal(t, "boom", reported)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerSecond: 0.001,
		Burst:             2,
		MaxLimiters:       10,
	}, logger.NewNoop())
	defer rl.Close()

	r := gin.New()
	r.Use(rl.Handler(KeyByIP))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestMetrics(t *testing.T) {
	client, err := prometheus.New(&prometheus.Config{Namespace: "test"}, logger.NewNoop())
	require.NoError(t, err)

	h, err := Metrics(client)
	require.NoError(t, err)

	r := gin.New()
	r.Use(h)
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(r, httptest.NewRequest(http.MethodGet, "/ping/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/ping/2", nil))

	count, err := testutil.GatherAndCount(client.Registry(), "test_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = Metrics(client)
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Role"); role != "" {
			claims := &security.Claims{Role: role}
			c.Request = c.Request.WithContext(security.SetClaimsToContext(c.Request.Context(), claims))
		}
		c.Next()
	}, RequireRole("admin"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Role", "player")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Role", "admin")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}
