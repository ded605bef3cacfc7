package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quizlive/engine/internal/auth/jwt"
)

// ErrInvalidCredentials covers both unknown email and wrong password,
// so login failures don't leak which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service resolves bearer tokens to host identities and mints tokens
// at login. The session engine trusts this resolution and additionally
// checks quiz ownership itself.
type Service struct {
	hosts  HostStore
	tokens *jwt.Manager
	logger zerolog.Logger
}

// NewService creates the auth service.
func NewService(hosts HostStore, tokens *jwt.Manager, logger zerolog.Logger) *Service {
	return &Service{
		hosts:  hosts,
		tokens: tokens,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// Login verifies credentials and returns a signed bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	host, err := s.hosts.GetHostByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrHostNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup host: %w", err)
	}

	if err := VerifyPassword(host.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(host.ID, host.DisplayName)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().Str("host_id", host.ID.String()).Msg("host logged in")
	return token, nil
}

// Resolve validates a bearer token and returns the host claims.
func (s *Service) Resolve(tokenString string) (*jwt.Claims, error) {
	return s.tokens.Validate(tokenString)
}
