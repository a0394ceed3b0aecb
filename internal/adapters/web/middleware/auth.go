package middleware

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuth holds the credentials accepted by BasicAuthMiddleware.
type BasicAuth struct {
	Username     string
	PasswordHash string // bcrypt
}

// Enabled reports whether a password hash is configured.
func (a BasicAuth) Enabled() bool {
	return a.PasswordHash != ""
}

func (a BasicAuth) verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
	return userOK && passOK
}

// BasicAuthMiddleware requires HTTP basic credentials matching auth. It is
// a pass-through when no hash is configured.
func BasicAuthMiddleware(auth BasicAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !auth.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || !auth.verify(username, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="wsniff"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HashPassword returns a bcrypt hash suitable for BasicAuth.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
