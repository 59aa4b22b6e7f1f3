package handlers

import (
	"net/http"
	"strings"
)

// Sessions verifies bearer tokens against the signed-in user.
type Sessions interface {
	Verify(token string) (string, error)
	CurrentUser() string
}

// ActiveUser reports whose data the store currently holds.
type ActiveUser interface {
	UserID() string
}

// RequireSession rejects requests whose bearer token is missing, invalid or
// issued to someone other than the signed-in user. The store must hold the
// same user's data, so a request never reads or writes another user's records
// while a session switch is still in flight.
func RequireSession(sessions Sessions, data ActiveUser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "Authorization required")
				return
			}
			userID, err := sessions.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if current := sessions.CurrentUser(); current == "" || current != userID || data.UserID() != userID {
				writeError(w, http.StatusUnauthorized, "Session is not active")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
