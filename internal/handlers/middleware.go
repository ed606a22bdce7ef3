package handlers

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const callerIDKey ctxKey = "callerID"

// CallerID returns the authenticated user id stored by RequireAuth, or
// an empty string when the request was not authenticated.
func CallerID(ctx context.Context) string {
	if id, ok := ctx.Value(callerIDKey).(string); ok {
		return id
	}
	return ""
}

// withCallerID stores the authenticated user id on the context. Exposed
// within the package so tests can simulate authenticated requests.
func withCallerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerIDKey, id)
}

// RequireAuth verifies the bearer token before any protected handler
// runs and makes the caller id available through CallerID.
func RequireAuth(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
				return
			}

			callerID, err := verifier.Verify(ctx, token)
			if err != nil {
				respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
				return
			}

			next.ServeHTTP(w, r.WithContext(withCallerID(ctx, callerID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
