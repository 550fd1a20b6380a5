// Package session keeps who is signed in to the console and hands their
// credentials to the remote provider.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/pkg/auth"
)

// Payload is what every authentication strategy produces.
type Payload struct {
	Token string
	Role  model.Role
	User  model.User
}

// Store is the signed-in session. All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	role    model.Role
	user    model.User
}

var _ repository.Credentials = (*Store)(nil)

// New returns an unauthenticated session persisting to storage. A nil
// storage keeps the session in memory only.
func New(storage Storage) *Store {
	if storage == nil {
		storage = NewMemoryStorage(0)
	}
	return &Store{storage: storage}
}

// Restore rebuilds the session from storage. A missing token yields an
// unauthenticated session, not an error. The user is recovered from the
// token's subject when the token is a JWT.
func Restore(ctx context.Context, storage Storage) (*Store, error) {
	s := New(storage)
	token, ok, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if !ok || token == "" {
		return s, nil
	}
	role, _, err := s.storage.Get(ctx, RoleKey)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	s.token = token
	s.role = model.Role(role)
	s.user = userFromToken(token)
	return s, nil
}

func userFromToken(token string) model.User {
	claims, err := auth.ParseUnverified(token)
	if err != nil {
		return model.User{}
	}
	id, err := claims.UserID()
	if err != nil {
		return model.User{}
	}
	return model.User{ID: id, Name: claims.Username}
}

// Login replaces the whole session with p and persists token and role.
func (s *Store) Login(ctx context.Context, p Payload) error {
	if p.Token == "" {
		return fmt.Errorf("failed to log in: empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(ctx, TokenKey, p.Token); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if p.Role != "" {
		if err := s.storage.Set(ctx, RoleKey, string(p.Role)); err != nil {
			return s.rollbackToken(ctx, err)
		}
	} else if err := s.storage.Delete(ctx, RoleKey); err != nil {
		return s.rollbackToken(ctx, err)
	}
	s.token, s.role, s.user = p.Token, p.Role, p.User
	return nil
}

// rollbackToken restores the stored token of the in-memory session after a
// half-written Login. Callers hold s.mu.
func (s *Store) rollbackToken(ctx context.Context, cause error) error {
	var err error
	if s.token != "" {
		err = s.storage.Set(ctx, TokenKey, s.token)
	} else {
		err = s.storage.Delete(ctx, TokenKey)
	}
	if err != nil {
		return fmt.Errorf("failed to persist session: %w (rollback: %v)", cause, err)
	}
	return fmt.Errorf("failed to persist session: %w", cause)
}

// Refresh swaps in a new access token, keeping role and user.
func (s *Store) Refresh(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("failed to refresh session: empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.token = token
	return nil
}

// Logout clears the session and its persisted keys. The in-memory session
// is cleared even when storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.role, s.user = "", "", model.User{}
	if err := s.storage.Delete(ctx, TokenKey, RoleKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Role() model.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Store) User() model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) UserID() int64 {
	return s.User().ID
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// SignIn authenticates req with a and logs the result in.
func (s *Store) SignIn(ctx context.Context, a Authenticator, req model.LoginRequest) error {
	p, err := a.Authenticate(ctx, req)
	if err != nil {
		return err
	}
	return s.Login(ctx, p)
}
