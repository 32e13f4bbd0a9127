package service

import (
	"context"
	"errors"

	"success-mcp/internal/config"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("invalid username or password")

// AuthService checks operator logins for the HTTP transport against the
// bcrypt hashes in configuration.
type AuthService struct{ operators []config.Operator }

func NewAuthService(operators []config.Operator) *AuthService {
	return &AuthService{operators: operators}
}

func (s *AuthService) Login(_ context.Context, username, password string) (*config.Operator, error) {
	for i := range s.operators {
		op := &s.operators[i]
		if op.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
			return nil, ErrBadCredentials
		}
		return op, nil
	}
	return nil, ErrBadCredentials
}
