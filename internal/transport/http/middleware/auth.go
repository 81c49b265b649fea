package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"moments_api/internal/httputil"
	"moments_api/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ViewerKey is the context key for the resolved request viewer
	ViewerKey contextKey = "viewer"
)

// TokenParser validates an access token and returns its user id.
type TokenParser interface {
	ParseAccessToken(token string) (int64, error)
}

// Authenticate resolves the viewer of every request.
// Checks Authorization header first (for mobile), then falls back to cookie (for web).
// Requests without a token continue as the anonymous viewer; a token that is
// present but invalid or expired is rejected with 401.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), model.Anonymous)))
				return
			}

			userID, err := parser.ParseAccessToken(tokenString)
			if err != nil {
				if errors.Is(err, model.ErrAccessTokenExpired) {
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Access token has expired")
					return
				}
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
				return
			}

			ctx := WithViewer(r.Context(), model.NewViewer(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	// Expected format: "Bearer <token>"
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// WithViewer stores the viewer in the context.
func WithViewer(ctx context.Context, viewer model.Viewer) context.Context {
	return context.WithValue(ctx, ViewerKey, viewer)
}

// ViewerFromContext returns the request viewer, or the anonymous viewer when
// the request did not pass through Authenticate.
func ViewerFromContext(ctx context.Context) model.Viewer {
	viewer, ok := ctx.Value(ViewerKey).(model.Viewer)
	if !ok {
		return model.Anonymous
	}
	return viewer
}
