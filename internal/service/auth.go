package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/jobpost-server/internal/auth"
)

// LoginInput is the body of POST /jwt. The client authenticates the user
// with its identity provider and hands over the email it got back; the server
// only turns that claim into a signed session.
type LoginInput struct {
	Email string `json:"email" validate:"required,email"`
}

// AuthService issues session tokens.
//
// WHAT THIS SERVICE DOES NOT DO:
//   - It does NOT set cookies (that's the handler's job, an HTTP concern)
//   - It does NOT keep sessions; a token is valid until it expires
type AuthService struct {
	tokens   *auth.TokenService
	validate *Validator
	logger   *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(tokens *auth.TokenService, validate *Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		tokens:   tokens,
		validate: validate,
		logger:   logger,
	}
}

// Login validates the claimed email and returns a session token for it.
//
// The email is kept exactly as sent (only surrounding spaces are trimmed).
// The identity guard compares it byte for byte against route emails the
// client builds from the same value.
func (s *AuthService) Login(in LoginInput) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(auth.Identity{Email: in.Email})
	if err != nil {
		return "", fmt.Errorf("service/auth: issuing token: %w", err)
	}

	s.logger.Info("session issued", slog.String("email", in.Email))
	return token, nil
}
