package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sakif/jobpost-server/internal/apperror"
	"github.com/sakif/jobpost-server/internal/auth"
	"github.com/sakif/jobpost-server/internal/service"
)

// AuthHandler issues and clears the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin  → POST /jwt: turn {"email": ...} into a signed "token" cookie
//   - HandleLogout → GET /logout: expire the cookie
//
// COOKIE ATTRIBUTES:
// The web client runs on a different origin in production, so the cookie
// must be SameSite=None (and therefore Secure) to be sent on cross-site
// fetches. In development both sides are on localhost and SameSite=Strict
// works over plain HTTP. The production flag picks between the two.
type AuthHandler struct {
	auth       *service.AuthService
	production bool
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *service.AuthService, production bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:       svc,
		production: production,
		logger:     logger,
	}
}

// HandleLogin issues a session token for the posted email.
//
// HTTP: POST /jwt
// REQUEST BODY: {"email": "a@x.com"}
// RESPONSE: {"success": true} plus Set-Cookie: token=...; HttpOnly
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.auth.Login(in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, token, h.production)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleLogout clears the session cookie. There is no server-side session
// to destroy; a copied token stays valid until it expires.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.production)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// identity returns the caller set by auth.RequireAuth. Routes that use it are
// always mounted behind the middleware; the error is for a miswired router.
func identity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, apperror.Unauthorized("unauthorized access")
	}
	return id, nil
}

// emailParam returns the {email} path segment decoded. Clients that escape
// "@" as %40 make the router match on the raw path, so the param arrives
// still percent-encoded.
func emailParam(r *http.Request) (string, error) {
	email, err := url.PathUnescape(r.PathValue("email"))
	if err != nil {
		return "", apperror.ValidationFailed("email", "email in path is not valid")
	}
	return email, nil
}
