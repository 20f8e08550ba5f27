package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/genpass/genpass-go/internal/crypto"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// SessionAuth returns middleware that validates a Bearer session token from
// the Authorization header.
func SessionAuth(secret string) func(http.Handler) http.Handler {
	return sessionAuth(secret, false)
}

// SessionAuthQuery is SessionAuth for websocket routes. Browsers cannot set
// headers on websocket handshakes, so a "token" query parameter is accepted
// when no Authorization header is present.
func SessionAuthQuery(secret string) func(http.Handler) http.Handler {
	return sessionAuth(secret, true)
}

func sessionAuth(secret string, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if allowQuery {
				token = r.URL.Query().Get("token")
			}

			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				bearer, found := strings.CutPrefix(authHeader, "Bearer ")
				if !found || bearer == "" {
					writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
					return
				}
				token = bearer
			}

			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			claims, err := crypto.ValidateToken(token, secret)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithSessionID(r.Context(), claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSessionID returns a copy of ctx carrying the session ID.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the authenticated session ID from the request context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
