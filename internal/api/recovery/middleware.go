// Package recovery keeps a panicking handler from killing the process.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/wardroom/messbook/internal/api/respond"
	"github.com/wardroom/messbook/internal/model"
)

// Middleware intercepts panics from downstream handlers, logs details, and
// answers with the standard error envelope.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("url", r.URL.String()).
					Str("remote", r.RemoteAddr).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				respond.WriteError(w, http.StatusInternalServerError, model.KindStorageIO, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
