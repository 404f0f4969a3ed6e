package auth

import "net/http"

// CookieName is the cookie that carries the session token.
const CookieName = "token"

// SetSessionCookie stores the token in an HttpOnly cookie.
//
// No MaxAge/Expires is set: the cookie lives for the browser session or until
// /logout, while the token inside expires on its own after SessionTTL.
//
// SameSite depends on the deployment. In production the web client is served
// from another origin, so the cookie has to be SameSite=None, which browsers
// only accept together with Secure. In development everything is on localhost
// and Strict is fine.
func SetSessionCookie(w http.ResponseWriter, token string, production bool) {
	c := sessionCookie(production)
	c.Value = token
	http.SetCookie(w, c)
}

// ClearSessionCookie expires the session cookie immediately.
// The attributes must match the ones used when setting it or browsers keep it.
func ClearSessionCookie(w http.ResponseWriter, production bool) {
	c := sessionCookie(production)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func sessionCookie(production bool) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
