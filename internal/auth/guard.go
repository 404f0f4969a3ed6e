package auth

import "github.com/sakif/jobpost-server/internal/apperror"

// Guard checks that the authenticated identity is the owner named in a route,
// e.g. GET /my-bids/{email}.
//
// The comparison is an exact string match. Emails are not lower-cased or
// trimmed: the token carries the email exactly as the client sent it at login
// and the client builds route URLs from the same value.
//
// Call it before any repository access so a mismatch never reaches the store.
func Guard(id Identity, email string) error {
	if id.Email == "" || id.Email != email {
		return apperror.Forbidden("forbidden access")
	}
	return nil
}
