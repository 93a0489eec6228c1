package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/web/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name" binding:"required"`
	Count int    `json:"count" binding:"min=1"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(&Config{Mode: gin.TestMode}, logger.NewNoop(), nil)
	require.NoError(t, err)

	s.Router().POST("/echo", func(c *gin.Context) {
		var req echoRequest
		if !BindJSON(c, &req) {
			return
		}
		Success(c, req)
	})
	s.Router().GET("/missing", func(c *gin.Context) {
		Fail(c, errors.CodeNotFound, "not found")
	})
	return s
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccessAndBind(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"a","count":2}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, errors.CodeOK, resp.Code)
	assert.NotEmpty(t, resp.TraceID)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"count":0}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.CodeInvalidParams, decode(t, w).Code)
}

func TestFail(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.Equal(t, errors.CodeNotFound, resp.Code)
	assert.Equal(t, "not found", resp.Message)
}

func TestStartStop(t *testing.T) {
	s, err := NewServer(&Config{Mode: gin.TestMode}, logger.NewNoop(), nil)
	require.NoError(t, err)
	s.Router().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	s.config.Port = 0
	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrServerAlreadyStarted)

	resp, err := http.Get("http://" + s.Addr() + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
}

func TestCodeToStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, errors.CodeToStatus(errors.CodeOK))
	assert.Equal(t, http.StatusConflict, errors.CodeToStatus(errors.CodeConflict))
	assert.Equal(t, http.StatusBadRequest, errors.CodeToStatus(errors.CodeInvalidParams))
	assert.Equal(t, http.StatusInternalServerError, errors.CodeToStatus(errors.CodeInternalError))
}
