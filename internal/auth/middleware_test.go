package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/jobpost-server/internal/apperror"
)

// countingHandler records how many times the protected handler ran and which
// identity it saw.
type countingHandler struct {
	calls int
	seen  Identity
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	h.seen, _ = IdentityFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

// headerCountingRecorder fails the test if WriteHeader is called twice,
// which would mean two responses for one request.
type headerCountingRecorder struct {
	*httptest.ResponseRecorder
	writes int
}

func (r *headerCountingRecorder) WriteHeader(code int) {
	r.writes++
	r.ResponseRecorder.WriteHeader(code)
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	valid, err := ts.Issue(Identity{Email: "a@x.com"})
	require.NoError(t, err)
	expired, err := ts.IssueWithTTL(Identity{Email: "a@x.com"}, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name      string
		cookie    *http.Cookie
		wantCode  int
		wantCalls int
	}{
		{name: "no cookie", cookie: nil, wantCode: http.StatusUnauthorized, wantCalls: 0},
		{name: "empty cookie", cookie: &http.Cookie{Name: CookieName, Value: ""}, wantCode: http.StatusUnauthorized, wantCalls: 0},
		{name: "garbage token", cookie: &http.Cookie{Name: CookieName, Value: "garbage"}, wantCode: http.StatusUnauthorized, wantCalls: 0},
		{name: "expired token", cookie: &http.Cookie{Name: CookieName, Value: expired}, wantCode: http.StatusUnauthorized, wantCalls: 0},
		{name: "token in wrong cookie", cookie: &http.Cookie{Name: "jwt", Value: valid}, wantCode: http.StatusUnauthorized, wantCalls: 0},
		{name: "valid token", cookie: &http.Cookie{Name: CookieName, Value: valid}, wantCode: http.StatusOK, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &countingHandler{}
			h := RequireAuth(ts)(next)

			req := httptest.NewRequest(http.MethodGet, "/jobs/a@x.com", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := &headerCountingRecorder{ResponseRecorder: httptest.NewRecorder()}

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCalls, next.calls)
			assert.Equal(t, 1, rec.writes, "exactly one response must be written")
			if tt.wantCode == http.StatusUnauthorized {
				assert.JSONEq(t, unauthorizedBody, rec.Body.String())
			}
		})
	}
}

func TestRequireAuth_SetsIdentity(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Issue(Identity{Email: "a@x.com"})
	require.NoError(t, err)

	next := &countingHandler{}
	req := httptest.NewRequest(http.MethodGet, "/my-bids/a@x.com", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	RequireAuth(ts)(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "a@x.com", next.seen.Email)
}

func TestIdentityFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := IdentityFromContext(req.Context())
	assert.False(t, ok)
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		email   string
		wantErr bool
	}{
		{name: "same email", id: Identity{Email: "a@x.com"}, email: "a@x.com"},
		{name: "different email", id: Identity{Email: "a@x.com"}, email: "b@x.com", wantErr: true},
		{name: "case differs", id: Identity{Email: "a@x.com"}, email: "A@x.com", wantErr: true},
		{name: "trailing space", id: Identity{Email: "a@x.com"}, email: "a@x.com ", wantErr: true},
		{name: "anonymous", id: Identity{}, email: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Guard(tt.id, tt.email)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, apperror.ErrForbidden), "error = %v, want ErrForbidden", err)
		})
	}
}

func TestSessionCookie(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SetSessionCookie(rec, "tok", false)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, CookieName, c.Name)
		assert.Equal(t, "tok", c.Value)
		assert.True(t, c.HttpOnly)
		assert.False(t, c.Secure)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.Zero(t, c.MaxAge)
	})

	t.Run("production", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SetSessionCookie(rec, "tok", true)

		c := rec.Result().Cookies()[0]
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	})

	t.Run("clear", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ClearSessionCookie(rec, true)

		c := rec.Result().Cookies()[0]
		assert.Equal(t, CookieName, c.Name)
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
		assert.True(t, c.Secure)
	})
}
