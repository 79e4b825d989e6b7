package middleware

import (
	"fmt"
	"net/http"

	"github.com/gamma-omg/tenwords/internal/pkg/httpx"
	"github.com/gamma-omg/tenwords/internal/pkg/router"
	"github.com/gamma-omg/tenwords/internal/pkg/serr"
)

// Recover turns a handler panic into a logged 500 response.
func Recover() router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusInternalServerError, "Internal Server Error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
