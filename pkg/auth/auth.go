package auth

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const (
	XUserIDHeader   = "X-User-Id"
	XUserRoleHeader = "X-User-Role"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

var (
	ErrNoCaller    = errors.New("caller is not authenticated")
	ErrUnknownRole = errors.New("unknown role")
)

// ParseRole accepts only the canonical role names.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	}
	return "", errors.Wrapf(ErrUnknownRole, "%q", s)
}

// Caller is the authenticated identity every service call is made on behalf of.
type Caller struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c Caller) Owns(userID string) bool {
	return c.UserID != "" && c.UserID == userID
}

type Config struct {
	JWTKey string `envconfig:"JWT_KEY"`
}

type Claims struct {
	Profile struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	} `json:"profile"`
	jwt.RegisteredClaims
}

type callerKey struct{}

func SetAuthContext(ctx context.Context, userID string, role Role) context.Context {
	return context.WithValue(ctx, callerKey{}, Caller{UserID: userID, Role: role})
}

func GetCaller(ctx context.Context) (Caller, error) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || caller.UserID == "" {
		return Caller{}, ErrNoCaller
	}
	return caller, nil
}
