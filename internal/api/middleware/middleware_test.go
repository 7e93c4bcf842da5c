package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule-board/backend/config"
	"schedule-board/backend/pkg/jwt"
	"schedule-board/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Fakes ──

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func newManager(ttl time.Duration) *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		Issuer:         "schedule-board",
		AccessTokenTTL: ttl,
	})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func code(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

// ── JWTAuth ──

func TestJWTAuth(t *testing.T) {
	mgr := newManager(time.Hour)
	token, err := mgr.GenerateAccessToken("u1", "member")
	require.NoError(t, err)
	claims, err := mgr.ParseToken(token)
	require.NoError(t, err)

	revocations := &fakeRevocations{revoked: map[string]bool{}}
	r := gin.New()
	r.GET("/me", JWTAuth(mgr, revocations), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})

	req := func(header string) *http.Request {
		rq := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			rq.Header.Set("Authorization", header)
		}
		return rq
	}

	w := serve(r, req("Bearer "+token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = serve(r, req(""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeUnauthorized, code(t, w))

	w = serve(r, req("Token "+token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, req("Bearer not-a-jwt"))
	assert.Equal(t, response.CodeUnauthorized, code(t, w))

	revocations.revoked[claims.ID] = true
	w = serve(r, req("Bearer "+token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeTokenRevoked, code(t, w))

	// 吊销名单不可用时放行
	revocations.err = errors.New("redis down")
	revocations.revoked = map[string]bool{}
	w = serve(r, req("Bearer "+token))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_Expired(t *testing.T) {
	mgr := newManager(time.Millisecond)
	token, err := mgr.GenerateAccessToken("u1", "member")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	rq := httptest.NewRequest(http.MethodGet, "/me", nil)
	rq.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, rq)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeTokenExpired, code(t, w))
}

// ── RateLimit ──

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	r := gin.New()
	r.GET("/x", RateLimit(limiter, 10, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.CodeTooManyRequests, code(t, w))
	require.Len(t, limiter.keys, 1)
	assert.Contains(t, limiter.keys[0], ":/x")

	limiter.allowed = true
	w = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	limiter.allowed, limiter.err = false, errors.New("redis down")
	w = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_NilLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(nil, 10, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

// ── RequestID / CORS / SecurityHeaders ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	rq := httptest.NewRequest(http.MethodGet, "/x", nil)
	rq.Header.Set("X-Request-ID", "trace-1")
	w = serve(r, rq)
	assert.Equal(t, "trace-1", w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://board.example.com/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rq := httptest.NewRequest(http.MethodOptions, "/x", nil)
	rq.Header.Set("Origin", "https://board.example.com")
	rq.Header.Set("Access-Control-Request-Method", "GET")
	w := serve(r, rq)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://board.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	rq = httptest.NewRequest(http.MethodGet, "/x", nil)
	rq.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, rq)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
