package httphandler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	stateCookieName = "hastrava_oauth_state"
	stateLifetime   = 10 * time.Minute
)

// issueState sets a fresh OAuth state cookie and returns its value. SameSite
// must be Lax so the cookie survives the top-level redirect back from Strava.
func issueState(w http.ResponseWriter, r *http.Request) string {
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return state
}

// validateState checks that the state query parameter matches the cookie,
// then clears the cookie so a state is usable once.
func validateState(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	state := r.URL.Query().Get("state")
	return state != "" && subtle.ConstantTimeCompare([]byte(state), []byte(cookie.Value)) == 1
}
