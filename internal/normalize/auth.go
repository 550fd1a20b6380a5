package normalize

import (
	"strings"

	"github.com/jwalitptl/clinic-console/internal/model"
)

type BackendAuthUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	RealName string `json:"realName"`
	RoleID   *int   `json:"roleId,omitempty"`
}

type BackendLogin struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType,omitempty"`
	ExpiresIn   int64           `json:"expiresIn,omitempty"`
	User        BackendAuthUser `json:"user"`
}

// User picks the display name the console shows for a signed-in account.
func User(u BackendAuthUser) model.User {
	return model.User{ID: u.UserID, Name: firstNonEmpty(u.RealName, u.Username)}
}

func LoginPayload(req model.LoginRequest) model.LoginRequest {
	return model.LoginRequest{Username: strings.TrimSpace(req.Username), Password: req.Password}
}

func RegisterPayload(req model.RegisterRequest) model.RegisterRequest {
	return model.RegisterRequest{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		RealName: strings.TrimSpace(req.RealName),
	}
}

func RegisteredUser(u BackendAuthUser) model.RegisteredUser {
	return model.RegisteredUser{
		UserID:   u.UserID,
		Username: u.Username,
		RealName: u.RealName,
		RoleID:   deref(u.RoleID),
	}
}
