package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newProtectedRouter(issuer *auth.Issuer, staffOnly bool) *gin.Engine {
	log := quietLogger()
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(issuer, log)}
	if staffOnly {
		handlers = append(handlers, RequireStaff(log))
	}
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "is_staff": p.IsStaff})
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Minute, time.Hour)
	access, err := issuer.IssueAccess(42, false)
	require.NoError(t, err)
	refresh, _, err := issuer.IssueRefresh(42)
	require.NoError(t, err)
	expired, err := auth.NewIssuer("secret", -time.Minute, time.Hour).IssueAccess(42, false)
	require.NoError(t, err)
	forged, err := auth.NewIssuer("other-secret", time.Minute, time.Hour).IssueAccess(42, true)
	require.NoError(t, err)

	r := newProtectedRouter(issuer, false)
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + access, http.StatusOK},
		{"lowercase scheme", "bearer " + access, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"foreign signature", "Bearer " + forged, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":42,"is_staff":false}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"Status":"Fail"`)
			}
		})
	}
}

func TestRequireStaff(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Minute, time.Hour)
	customer, err := issuer.IssueAccess(7, false)
	require.NoError(t, err)
	staff, err := issuer.IssueAccess(1, true)
	require.NoError(t, err)
	r := newProtectedRouter(issuer, true)

	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+customer).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+staff).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
}

func TestRequestIDIsAssignedOrEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(quietLogger()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(1, 2, time.Minute)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "buckets are per IP")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"))

	now = now.Add(2 * time.Minute)
	limiter.Allow("10.0.0.3")
	assert.Len(t, limiter.visitors, 1)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(NewIPRateLimiter(0.001, 1, time.Minute), quietLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}
