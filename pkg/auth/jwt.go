package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingRole  = errors.New("token carries no role id")
)

// Claims is the access token body the clinic backend issues: the user id in
// "sub" plus the username and numeric role id.
type Claims struct {
	Username string `json:"username,omitempty"`
	RoleID   *int   `json:"roleId,omitempty"`
	jwt.RegisteredClaims
}

// UserID decodes the subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, c.Subject)
	}
	return id, nil
}

// Subject is whoever a token is issued for.
type Subject struct {
	UserID   int64
	Username string
	RoleID   int
}

type JWTService interface {
	GenerateAccessToken(sub Subject) (string, error)
	ValidateToken(token string) (*Claims, error)
	TTL() time.Duration
}

type jwtService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService signs HS256 tokens with secret. A non-positive ttl means
// one hour.
func NewJWTService(secret string, ttl time.Duration) JWTService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &jwtService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *jwtService) TTL() time.Duration { return s.ttl }

func (s *jwtService) GenerateAccessToken(sub Subject) (string, error) {
	now := s.now()
	role := sub.RoleID
	claims := Claims{
		Username: sub.Username,
		RoleID:   &role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(sub.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *jwtService) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// ParseUnverified reads the claims without checking the signature. The
// console uses it only to recover the role id from a token the backend
// just handed it.
func ParseUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// RoleIDFromToken is ParseUnverified narrowed to the role id.
func RoleIDFromToken(token string) (int, error) {
	claims, err := ParseUnverified(token)
	if err != nil {
		return 0, err
	}
	if claims.RoleID == nil {
		return 0, ErrMissingRole
	}
	return *claims.RoleID, nil
}
