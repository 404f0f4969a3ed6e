// Package auth issues and verifies session tokens and guards per-user routes.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. The web client signs the user in (the identity provider lives client-side)
//     and POSTs {"email": "..."} to /jwt
//  2. The server signs a JWT carrying that email and stores it in the HttpOnly
//     "token" cookie (see cookie.go)
//  3. On protected routes RequireAuth reads the cookie, verifies the JWT and
//     puts the Identity in the request context
//  4. Handlers pull the Identity out once and hand it to services, which
//     compare it with the email in the route (Guard)
//
// There is no session table: possession of a valid token is the only authority.
// Logout clears the cookie; otherwise a token lives until it expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long an issued session token stays valid. There is no
// refresh flow, so the user signs in again after this.
const SessionTTL = 10 * 24 * time.Hour

const issuer = "jobpost-server"

// ErrInvalidToken is returned (wrapped) for every verification failure:
// bad signature, wrong algorithm, wrong issuer, expired, or missing email.
var ErrInvalidToken = errors.New("auth: invalid token")

// Identity is the authenticated principal. It is derived only from verified
// token claims, never from the database.
type Identity struct {
	Email string
}

// claims is the JWT payload. Email is duplicated into "sub" so standard JWT
// tooling can show who a token belongs to.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService handles JWT creation and validation with a single HMAC secret.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock replaces time.Now for both signing and verification.
// Tests use it to move past the expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: ACCESS_TOKEN_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, opts ...Option) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	s := &TokenService{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a session token for id with the fixed SessionTTL.
func (s *TokenService) Issue(id Identity) (string, error) {
	return s.IssueWithTTL(id, SessionTTL)
}

// IssueWithTTL signs a token with a custom lifetime.
func (s *TokenService) IssueWithTTL(id Identity, ttl time.Duration) (string, error) {
	if id.Email == "" {
		return "", errors.New("auth: identity has no email")
	}

	now := s.now()
	c := claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and checks a token and returns the Identity it carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid
//   - Algorithm is HS256 (prevents "alg: none" and key-confusion attacks)
//   - Issuer matches
//   - "exp" is present and in the future according to s.now
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	if c.Email == "" {
		return Identity{}, fmt.Errorf("%w: token has no email", ErrInvalidToken)
	}

	return Identity{Email: c.Email}, nil
}
