package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/pkg/auth"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/security"
)

// Authenticator turns credentials into a session payload. Failures are
// returned as errors with a readable message, never as envelopes.
type Authenticator interface {
	Authenticate(ctx context.Context, req model.LoginRequest) (Payload, error)
}

// RoleTable maps backend role ids to console roles.
type RoleTable map[int]model.Role

// DefaultRoleTable holds the ids every deployment agrees on. Patient and
// nurse ids differ between backends and must be configured.
func DefaultRoleTable() RoleTable {
	return RoleTable{1: model.RoleAdmin, 2: model.RoleDoctor}
}

// Merge returns a copy of t overlaid with extra.
func (t RoleTable) Merge(extra map[int]model.Role) RoleTable {
	out := make(RoleTable, len(t)+len(extra))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (t RoleTable) Resolve(id int) (model.Role, error) {
	role, ok := t[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", model.ErrUnknownRole, id)
	}
	return role, nil
}

// LocalUser is one entry of the offline credential table.
type LocalUser struct {
	Username     string
	PasswordHash string
	Role         model.Role
	User         model.User
}

// PasswordAuthenticator checks credentials against a fixed table and never
// touches the network.
type PasswordAuthenticator struct {
	users  map[string]LocalUser
	hasher security.PasswordHasher
}

func NewPasswordAuthenticator(hasher security.PasswordHasher, users []LocalUser) *PasswordAuthenticator {
	a := &PasswordAuthenticator{users: make(map[string]LocalUser, len(users)), hasher: hasher}
	for _, u := range users {
		a.users[u.Username] = u
	}
	return a
}

// Authenticate issues a "dev-<username>-token" on a match.
func (a *PasswordAuthenticator) Authenticate(_ context.Context, req model.LoginRequest) (Payload, error) {
	u, ok := a.users[strings.TrimSpace(req.Username)]
	if !ok {
		return Payload{}, model.ErrInvalidCredentials
	}
	if err := a.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		return Payload{}, model.ErrInvalidCredentials
	}
	return Payload{
		Token: "dev-" + u.Username + "-token",
		Role:  u.Role,
		User:  u.User,
	}, nil
}

// DevUser is a plaintext credential hashed into the table at startup.
type DevUser struct {
	Username string
	Password string
	Role     model.Role
	User     model.User
}

// DefaultDevUsers is the demo account set.
func DefaultDevUsers() []DevUser {
	return []DevUser{
		{"admin", "admin123", model.RoleAdmin, model.User{ID: 1, Name: "Administrator"}},
		{"doctor", "doc123", model.RoleDoctor, model.User{ID: 2, Name: "Dr. Zhang"}},
		{"nurse", "nurse123", model.RoleNurse, model.User{ID: 3, Name: "Nurse Li"}},
		{"patient", "patient123", model.RolePatient, model.User{ID: 4, Name: "Patient Wang"}},
		{"admin@omms", "admin123", model.RoleAdmin, model.User{ID: 1, Name: "System Administrator"}},
		{"doctor001", "omms123", model.RoleDoctor, model.User{ID: 2, Name: "Dr. Li"}},
		{"nurse001", "omms123", model.RoleNurse, model.User{ID: 3, Name: "Nurse Wang"}},
		{"patient001", "omms123", model.RolePatient, model.User{ID: 4, Name: "Patient Zhang"}},
	}
}

// HashDevUsers hashes every password with hasher.
func HashDevUsers(hasher security.PasswordHasher, users []DevUser) ([]LocalUser, error) {
	out := make([]LocalUser, 0, len(users))
	for _, u := range users {
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", u.Username, err)
		}
		out = append(out, LocalUser{Username: u.Username, PasswordHash: hash, Role: u.Role, User: u.User})
	}
	return out, nil
}

// AuthAPI is the slice of the backend the API strategies need.
type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (normalize.BackendLogin, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.RegisteredUser, error)
}

// APIAuthenticator signs in against the backend.
type APIAuthenticator struct {
	api   AuthAPI
	roles RoleTable
}

func NewAPIAuthenticator(api AuthAPI, roles RoleTable) *APIAuthenticator {
	if roles == nil {
		roles = DefaultRoleTable()
	}
	return &APIAuthenticator{api: api, roles: roles}
}

// Authenticate maps user.roleId through the role table, falling back to the
// roleId claim of the access token when the user object omits it.
func (a *APIAuthenticator) Authenticate(ctx context.Context, req model.LoginRequest) (Payload, error) {
	res, err := a.api.Login(ctx, req)
	if err != nil {
		return Payload{}, authError("login failed", err)
	}
	if res.AccessToken == "" {
		return Payload{}, stderrors.New("login failed: backend returned no token")
	}

	var roleID int
	if res.User.RoleID != nil {
		roleID = *res.User.RoleID
	} else if roleID, err = auth.RoleIDFromToken(res.AccessToken); err != nil {
		return Payload{}, fmt.Errorf("login failed: %w", err)
	}
	role, err := a.roles.Resolve(roleID)
	if err != nil {
		return Payload{}, fmt.Errorf("login failed: %w", err)
	}
	return Payload{Token: res.AccessToken, Role: role, User: normalize.User(res.User)}, nil
}

// Register creates an account on the backend. It does not sign in.
func (a *APIAuthenticator) Register(ctx context.Context, req model.RegisterRequest) (model.RegisteredUser, error) {
	u, err := a.api.Register(ctx, req)
	if err != nil {
		return model.RegisteredUser{}, authError("registration failed", err)
	}
	return u, nil
}

// AuthError reports a rejected login or registration with the backend's
// message and without transport detail.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return e.Op + ": " + errors.MessageOf(e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func authError(op string, err error) error {
	return &AuthError{Op: op, Err: err}
}
