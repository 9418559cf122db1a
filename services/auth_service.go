package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AuthService checks the shared editor password. Viewing is public; only
// editing needs a token.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) error
}

type LoginInput struct {
	Password string `json:"password"`
}

type authService struct {
	passwordHash []byte
}

func NewAuthService(passwordHash string) AuthService {
	return &authService{passwordHash: []byte(passwordHash)}
}

func (s *authService) Login(ctx context.Context, input LoginInput) error {
	if input.Password == "" {
		return ErrAuthInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrAuthInvalidCredentials
		}
		return fmt.Errorf("ошибка проверки пароля: %w", err)
	}
	return nil
}
