package admin

import (
	"crypto/subtle"
	"net/http"
)

// Credentials configures the two admin gates: Basic Auth for the
// console UI and a shared-secret token (header or cookie) for the API
// it calls. All comparisons are constant time.
type Credentials struct {
	Username string
	Password string
	APIToken string
}

func (c Credentials) configured() bool {
	return (c.Username != "" && c.Password != "") || c.APIToken != ""
}

// Middleware rejects requests that present neither valid Basic Auth
// credentials nor the shared-secret token. Missing server-side
// configuration is a soft-failure JSON 500, not an open door.
func Middleware(creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !creds.configured() {
				writeJSON(w, http.StatusInternalServerError, errResponse("admin credentials not configured"))
				return
			}
			if tokenOK(r, creds.APIToken) || basicOK(r, creds) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			writeJSON(w, http.StatusUnauthorized, errResponse("unauthorized"))
		})
	}
}

func tokenOK(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	presented := r.Header.Get("X-Admin-Token")
	if presented == "" {
		if c, err := r.Cookie("admin_token"); err == nil {
			presented = c.Value
		}
	}
	return constantTimeEqual(presented, token)
}

func basicOK(r *http.Request, creds Credentials) bool {
	if creds.Username == "" || creds.Password == "" {
		return false
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	return constantTimeEqual(user, creds.Username) && constantTimeEqual(pass, creds.Password)
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
