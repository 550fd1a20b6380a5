package auth

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
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-console/internal/middleware"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/pkg/auth"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
	"github.com/jwalitptl/clinic-console/pkg/security"
)

func newTestEngine(t *testing.T) (*gin.Engine, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("doc123")
	require.NoError(t, err)
	users := NewUsers([]Account{
		{UserID: 2, Username: "doctor", PasswordHash: hash, RealName: "Dr. Zhang", RoleID: RoleIDs["doctor"]},
		{UserID: 2, Username: "doctor001", PasswordHash: hash, RealName: "Dr. Li", RoleID: RoleIDs["doctor"]},
	})
	jwtSvc := auth.NewJWTService("secret", time.Hour)
	h := NewHandler(users, hasher, jwtSvc, nil)

	r := gin.New()
	h.RegisterRoutes(r.Group(""))
	protected := r.Group("")
	protected.Use(middleware.NewAuthMiddleware(jwtSvc).Authenticate())
	h.RegisterProtectedRoutes(protected)
	return r, jwtSvc
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) httputil.Envelope[T] {
	t.Helper()
	var env httputil.Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestLogin(t *testing.T) {
	r, jwtSvc := newTestEngine(t)

	w := do(r, http.MethodPost, "/auth/login", `{"username":" doctor ","password":"doc123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode[normalize.BackendLogin](t, w)
	assert.Equal(t, "bearer", env.Data.TokenType)
	assert.Equal(t, int64(3600), env.Data.ExpiresIn)
	require.NotNil(t, env.Data.User.RoleID)
	assert.Equal(t, 2, *env.Data.User.RoleID)

	claims, err := jwtSvc.ValidateToken(env.Data.AccessToken)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
	assert.Equal(t, "doctor", claims.Username)
}

func TestLoginFailures(t *testing.T) {
	r, _ := newTestEngine(t)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"username":"doctor","password":"nope"}`, 401},
		{"unknown user", `{"username":"ghost","password":"doc123"}`, 401},
		{"malformed body", `{"username":`, 400},
		{"missing password", `{"username":"doctor"}`, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/auth/login", tt.body, "")
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.code, decode[interface{}](t, w).Code)
		})
	}
	w := do(r, http.MethodPost, "/auth/login", `{"username":"doctor","password":"nope"}`, "")
	assert.Equal(t, "invalid username or password", decode[interface{}](t, w).Message)
}

func TestRegisterAssignsPatientRole(t *testing.T) {
	r, _ := newTestEngine(t)

	w := do(r, http.MethodPost, "/auth/register", `{"username":"wang","password":"secret1","realName":"Wang Wei"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode[normalize.BackendAuthUser](t, w)
	assert.Equal(t, int64(3), env.Data.UserID)
	assert.Equal(t, "Wang Wei", env.Data.RealName)
	require.NotNil(t, env.Data.RoleID)
	assert.Equal(t, 3, *env.Data.RoleID)

	w = do(r, http.MethodPost, "/auth/register", `{"username":"wang","password":"secret1"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username already exists", decode[interface{}](t, w).Message)

	w = do(r, http.MethodPost, "/auth/register", `{"username":"li","password":"123"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/auth/login", `{"username":"wang","password":"secret1"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMe(t *testing.T) {
	r, jwtSvc := newTestEngine(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/auth/me", "", "").Code)

	token, err := jwtSvc.GenerateAccessToken(auth.Subject{UserID: 2, Username: "doctor001", RoleID: 2})
	require.NoError(t, err)
	w := do(r, http.MethodGet, "/auth/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "doctor", decode[normalize.BackendAuthUser](t, w).Data.Username)

	token, err = jwtSvc.GenerateAccessToken(auth.Subject{UserID: 42, RoleID: 3})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/auth/me", "", token).Code)
}
