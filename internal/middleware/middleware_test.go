package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/pkg/auth"
	"github.com/jwalitptl/clinic-console/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	minted := w.Header().Get(HeaderXRequestID)
	assert.NotEmpty(t, minted)
	assert.Equal(t, minted, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(HeaderXRequestID))
}

func TestAuthenticate(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", time.Hour)
	token, err := jwtSvc.GenerateAccessToken(auth.Subject{UserID: 7, Username: "li", RoleID: 2})
	require.NoError(t, err)
	foreign, err := auth.NewJWTService("other-secret", time.Hour).GenerateAccessToken(auth.Subject{UserID: 7, RoleID: 2})
	require.NoError(t, err)

	r := gin.New()
	r.Use(NewAuthMiddleware(jwtSvc).Authenticate())
	r.GET("/me", func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c), "username": claims.Username, "roleId": c.GetInt(ContextRoleID)})
	})

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing", "", "missing authorization header"},
		{"wrong scheme", "Basic " + token, "invalid authorization format"},
		{"garbage", "Bearer not-a-jwt", "invalid token"},
		{"wrong key", "Bearer " + foreign, "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			env := decode(t, w)
			assert.Equal(t, 401, env.Code)
			assert.Equal(t, tt.message, env.Message)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":7,"username":"li","roleId":2}`, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(RateLimiterConfig{RPS: 0.001, Burst: 1}).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate limit exceeded", decode(t, w).Message)
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(RateLimiterConfig{}).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"too long"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "request body exceeds 8 bytes", decode(t, w).Message)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))).Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.Nop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 500, decode(t, w).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	restricted := gin.New()
	restricted.Use(CORS(CORSConfig{AllowOrigins: []string{"http://clinic.local"}}))
	restricted.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(restricted, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://clinic.local")
	w = serve(restricted, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://clinic.local", w.Header().Get("Access-Control-Allow-Origin"))
}
