package auth

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-console/internal/handler"
	"github.com/jwalitptl/clinic-console/internal/middleware"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/pkg/auth"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/security"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

// RoleIDs are the numeric role ids the backend stores.
var RoleIDs = map[model.Role]int{
	model.RoleAdmin:   1,
	model.RoleDoctor:  2,
	model.RolePatient: 3,
	model.RoleNurse:   4,
}

// Self-registered accounts are patients.
const registerRoleID = 3

type Account struct {
	UserID       int64
	Username     string
	PasswordHash string
	Email        string
	Phone        string
	RealName     string
	RoleID       int
}

func (a Account) wire() normalize.BackendAuthUser {
	role := a.RoleID
	return normalize.BackendAuthUser{UserID: a.UserID, Username: a.Username, RealName: a.RealName, RoleID: &role}
}

// Users is the emulator's account table. Several usernames may share one
// user id; ByID then returns the alphabetically first.
type Users struct {
	mu     sync.RWMutex
	byName map[string]Account
	nextID int64
}

func NewUsers(accounts []Account) *Users {
	u := &Users{byName: make(map[string]Account, len(accounts)), nextID: 1}
	for _, a := range accounts {
		u.byName[a.Username] = a
		if a.UserID >= u.nextID {
			u.nextID = a.UserID + 1
		}
	}
	return u
}

func (u *Users) Lookup(username string) (Account, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	a, ok := u.byName[username]
	return a, ok
}

func (u *Users) ByID(id int64) (Account, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	var (
		found Account
		ok    bool
	)
	for _, a := range u.byName {
		if a.UserID == id && (!ok || a.Username < found.Username) {
			found, ok = a, true
		}
	}
	return found, ok
}

// Add assigns the next user id and stores a.
func (u *Users) Add(a Account) (Account, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byName[a.Username]; ok {
		return Account{}, errors.BadRequest("username already exists", nil)
	}
	a.UserID = u.nextID
	u.nextID++
	u.byName[a.Username] = a
	return a, nil
}

type Handler struct {
	users  *Users
	hasher security.PasswordHasher
	jwt    auth.JWTService
	valid  validator.Validator
}

func NewHandler(users *Users, hasher security.PasswordHasher, jwt auth.JWTService, v validator.Validator) *Handler {
	if v == nil {
		v = validator.New()
	}
	return &Handler{users: users, hasher: hasher, jwt: jwt, valid: v}
}

// RegisterRoutes mounts the unauthenticated endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	a := r.Group("/auth")
	{
		a.POST("/login", h.Login)
		a.POST("/register", h.Register)
	}
}

// RegisterProtectedRoutes mounts the endpoints that need a token.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.Me)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}

	acct, ok := h.users.Lookup(req.Username)
	if !ok || h.hasher.Compare(acct.PasswordHash, req.Password) != nil {
		err := errors.Unauthorized(model.ErrInvalidCredentials)
		err.Message = model.ErrInvalidCredentials.Error()
		handler.Fail(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(auth.Subject{UserID: acct.UserID, Username: acct.Username, RoleID: acct.RoleID})
	if err != nil {
		handler.Fail(c, errors.Internal(err))
		return
	}
	handler.Respond(c, normalize.BackendLogin{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.jwt.TTL().Seconds()),
		User:        acct.wire(),
	}, nil)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}
	req = normalize.RegisterPayload(req)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		handler.Fail(c, errors.Internal(err))
		return
	}
	acct, err := h.users.Add(Account{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		Phone:        req.Phone,
		RealName:     req.RealName,
		RoleID:       registerRoleID,
	})
	handler.Respond(c, acct.wire(), err)
}

func (h *Handler) Me(c *gin.Context) {
	acct, ok := h.users.ByID(middleware.GetUserID(c))
	if !ok {
		handler.Fail(c, errors.NotFound("user", nil))
		return
	}
	handler.Respond(c, acct.wire(), nil)
}
