package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/security"
)

func newPasswordAuthenticator(t *testing.T) *PasswordAuthenticator {
	t.Helper()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	users, err := HashDevUsers(hasher, DefaultDevUsers())
	require.NoError(t, err)
	return NewPasswordAuthenticator(hasher, users)
}

func TestPasswordLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage(0)
	s := New(storage)
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.SignIn(ctx, newPasswordAuthenticator(t), model.LoginRequest{Username: "doctor", Password: "doc123"}))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, model.RoleDoctor, s.Role())
	assert.Equal(t, "dev-doctor-token", s.Token())
	assert.Equal(t, int64(2), s.UserID())

	token, ok, err := storage.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dev-doctor-token", token)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
	_, ok, _ = storage.Get(ctx, TokenKey)
	assert.False(t, ok)
	_, ok, _ = storage.Get(ctx, RoleKey)
	assert.False(t, ok)
}

func TestPasswordLoginRejectsBadCredentials(t *testing.T) {
	a := newPasswordAuthenticator(t)
	for _, req := range []model.LoginRequest{
		{Username: "doctor", Password: "wrong"},
		{Username: "ghost", Password: "doc123"},
	} {
		_, err := a.Authenticate(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	}
}

type roleFailingStorage struct {
	*MemoryStorage
}

func (s roleFailingStorage) Set(ctx context.Context, key, value string) error {
	if key == RoleKey {
		return errors.New("disk full")
	}
	return s.MemoryStorage.Set(ctx, key, value)
}

func TestLoginRollsBackTokenWhenRoleNotSaved(t *testing.T) {
	ctx := context.Background()
	storage := roleFailingStorage{NewMemoryStorage(0)}
	s := New(storage)

	err := s.Login(ctx, Payload{Token: "new", Role: model.RoleDoctor})
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
	_, ok, err := storage.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, storage.MemoryStorage.Set(ctx, TokenKey, "old"))
	restored, err := Restore(ctx, storage)
	require.NoError(t, err)
	require.Error(t, restored.Login(ctx, Payload{Token: "new", Role: model.RoleDoctor}))
	token, ok, err := storage.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "old", token)
	assert.Equal(t, "old", restored.Token())
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage(0)

	empty, err := Restore(ctx, storage)
	require.NoError(t, err)
	assert.False(t, empty.IsAuthenticated())

	jwtSvc := auth.NewJWTService("secret", time.Hour)
	token, err := jwtSvc.GenerateAccessToken(auth.Subject{UserID: 4, Username: "wang", RoleID: 3})
	require.NoError(t, err)
	require.NoError(t, storage.Set(ctx, TokenKey, token))
	require.NoError(t, storage.Set(ctx, RoleKey, string(model.RolePatient)))

	s, err := Restore(ctx, storage)
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, model.RolePatient, s.Role())
	assert.Equal(t, int64(4), s.UserID())
}

func TestRefreshKeepsRole(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	require.NoError(t, s.Login(ctx, Payload{Token: "a", Role: model.RoleAdmin, User: model.User{ID: 1}}))
	require.NoError(t, s.Refresh(ctx, "b"))
	assert.Equal(t, "b", s.Token())
	assert.Equal(t, model.RoleAdmin, s.Role())
	assert.Error(t, s.Refresh(ctx, ""))
}

type fakeAPI struct {
	login normalize.BackendLogin
	err   error
}

func (f fakeAPI) Login(context.Context, model.LoginRequest) (normalize.BackendLogin, error) {
	return f.login, f.err
}

func (f fakeAPI) Register(_ context.Context, req model.RegisterRequest) (model.RegisteredUser, error) {
	if f.err != nil {
		return model.RegisteredUser{}, f.err
	}
	return model.RegisteredUser{UserID: 9, Username: req.Username, RoleID: 3}, nil
}

func intPtr(v int) *int { return &v }

func TestAPIAuthenticatorRoles(t *testing.T) {
	ctx := context.Background()
	jwtSvc := auth.NewJWTService("secret", time.Hour)
	tokenRole3, err := jwtSvc.GenerateAccessToken(auth.Subject{UserID: 4, Username: "wang", RoleID: 3})
	require.NoError(t, err)

	tests := []struct {
		name    string
		login   normalize.BackendLogin
		roles   RoleTable
		want    model.Role
		wantErr error
	}{
		{
			name:  "role from user",
			login: normalize.BackendLogin{AccessToken: "opaque", User: normalize.BackendAuthUser{UserID: 2, Username: "doc", RoleID: intPtr(2)}},
			want:  model.RoleDoctor,
		},
		{
			name:  "role from token claim",
			login: normalize.BackendLogin{AccessToken: tokenRole3, User: normalize.BackendAuthUser{UserID: 4, Username: "wang"}},
			roles: DefaultRoleTable().Merge(map[int]model.Role{3: model.RolePatient}),
			want:  model.RolePatient,
		},
		{
			name:    "unmapped role",
			login:   normalize.BackendLogin{AccessToken: tokenRole3, User: normalize.BackendAuthUser{UserID: 4, RoleID: intPtr(3)}},
			wantErr: model.ErrUnknownRole,
		},
		{
			name:    "no role anywhere",
			login:   normalize.BackendLogin{AccessToken: "opaque", User: normalize.BackendAuthUser{UserID: 4}},
			wantErr: auth.ErrInvalidToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewAPIAuthenticator(fakeAPI{login: tt.login}, tt.roles).Authenticate(ctx, model.LoginRequest{Username: "u", Password: "p"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Role)
			assert.Equal(t, tt.login.AccessToken, p.Token)
		})
	}
}

func TestAPIAuthenticatorSurfacesBackendMessage(t *testing.T) {
	a := NewAPIAuthenticator(fakeAPI{err: apperrors.FromEnvelope(401, "invalid username or password")}, nil)

	_, err := a.Authenticate(context.Background(), model.LoginRequest{Username: "u", Password: "p"})
	require.Error(t, err)
	assert.Equal(t, "login failed: invalid username or password", err.Error())
	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))

	_, err = a.Register(context.Background(), model.RegisterRequest{Username: "u", Password: "secret1"})
	assert.Equal(t, "registration failed: invalid username or password", err.Error())
}

func TestRedisStorage(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	storage, err := NewRedisStorageFromClient(client, RedisConfig{Prefix: "console:", TTL: time.Hour, Passphrase: "pepper"})
	require.NoError(t, err)

	s := New(storage)
	require.NoError(t, s.Login(ctx, Payload{Token: "tok", Role: model.RoleNurse}))

	raw, err := mr.Get("console:" + TokenKey)
	require.NoError(t, err)
	assert.NotEqual(t, "tok", raw)
	assert.Equal(t, time.Hour, mr.TTL("console:"+TokenKey))

	restored, err := Restore(ctx, storage)
	require.NoError(t, err)
	assert.Equal(t, "tok", restored.Token())
	assert.Equal(t, model.RoleNurse, restored.Role())

	require.NoError(t, restored.Logout(ctx))
	assert.False(t, mr.Exists("console:"+TokenKey))
	assert.False(t, mr.Exists("console:"+RoleKey))
}

func TestNewRedisStorageConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	storage, err := NewRedisStorage(context.Background(), RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, storage.Set(context.Background(), "k", "v"))
	v, ok, err := storage.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
