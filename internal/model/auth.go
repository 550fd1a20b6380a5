package model

import "errors"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RoleNurse   Role = "nurse"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RolePatient:
		return true
	}
	return false
}

// User is the signed-in identity kept by the session.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	RealName string `json:"realName,omitempty"`
}

// RegisteredUser is what a successful registration returns.
type RegisteredUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	RealName string `json:"realName"`
	RoleID   int    `json:"roleId"`
}

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownRole        = errors.New("unknown role id")
)
