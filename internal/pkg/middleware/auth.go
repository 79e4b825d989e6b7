package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gamma-omg/tenwords/internal/pkg/httpx"
	"github.com/gamma-omg/tenwords/internal/pkg/router"
	"github.com/gamma-omg/tenwords/internal/pkg/serr"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

var userIDKey ctxKey

var errUnauthenticated = errors.New("unauthenticated")

// Auth verifies an HS256 JWT from the Authorization header (raw or with a
// "Bearer " prefix) and stores its subject as the caller's user id.
func Auth(key any) router.Middleware {
	return func(next http.Handler) http.Handler {
		return authMiddleware(next, key)
	}
}

func authMiddleware(next http.Handler, key any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken := strings.TrimSpace(r.Header.Get("Authorization"))
		rawToken = strings.TrimSpace(strings.TrimPrefix(rawToken, "Bearer "))
		if rawToken == "" {
			unauthorized(w, r, errUnauthenticated)
			return
		}

		token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil {
			slog.Debug("failed to parse jwt", "error", err, "remote_addr", r.RemoteAddr)
			unauthorized(w, r, err)
			return
		}
		if !token.Valid {
			unauthorized(w, r, errUnauthenticated)
			return
		}

		uid, err := token.Claims.GetSubject()
		if err != nil || uid == "" {
			unauthorized(w, r, errUnauthenticated)
			return
		}

		ctx := WithUserID(r.Context(), uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusUnauthorized, "Unauthorized"))
}

// WithUserID returns a copy of ctx carrying uid as the authenticated user.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}
