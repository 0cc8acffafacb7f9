package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/authz"
	"tasktracker/internal/config"
)

var jwtCfg = config.JWTConfig{Secret: "test-secret", TTL: time.Hour}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(jwtCfg))
	r.GET("/me", func(c *gin.Context) {
		userID, roleID, _ := Identity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role_id": roleID})
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()
	userToken, err := IssueToken(jwtCfg, 3, authz.RoleUser, time.Now())
	require.NoError(t, err)
	adminToken, err := IssueToken(jwtCfg, 1, authz.RoleAdmin, time.Now())
	require.NoError(t, err)
	expired, err := IssueToken(jwtCfg, 3, authz.RoleUser, time.Now().Add(-3*time.Hour))
	require.NoError(t, err)
	forged, err := IssueToken(config.JWTConfig{Secret: "other", TTL: time.Hour}, 3, authz.RoleAdmin, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"public path", "/healthz", "", http.StatusOK},
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic " + userToken, http.StatusUnauthorized},
		{"valid bearer", "/me", "Bearer " + userToken, http.StatusOK},
		{"query token", "/me?token=" + userToken, "", http.StatusOK},
		{"expired", "/me", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "/me", "Bearer " + forged, http.StatusUnauthorized},
		{"user on admin route", "/admin", "Bearer " + userToken, http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer " + adminToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(r, tt.path, tt.auth).Code)
		})
	}
}

func TestIdentityFromToken(t *testing.T) {
	token, err := IssueToken(jwtCfg, 42, authz.RoleUser, time.Now())
	require.NoError(t, err)

	claims, err := ParseToken([]byte(jwtCfg.Secret), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, authz.RoleUser, claims.RoleID)

	rec := do(newRouter(), "/me", "Bearer "+token)
	assert.JSONEq(t, `{"user_id":42,"role_id":10}`, rec.Body.String())
}

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggingMiddleware(NewLogger(config.LogConfig{Level: "error"})), CustomRecovery(NewLogger(config.LogConfig{Level: "error"})))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rec := do(r, "/ok", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), rec.Body.String())

	assert.Equal(t, http.StatusInternalServerError, do(r, "/boom", "").Code)
}
