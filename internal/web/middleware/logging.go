package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/chefgenie/internal/middleware"
)

const staticPrefix = "/static/"

// Logging logs page, fragment and stream requests. Static assets are
// only logged when the logger has debug enabled.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	logged := middleware.Logging(logger)

	return func(next http.Handler) http.Handler {
		withLog := logged(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, staticPrefix) && !logger.Enabled(r.Context(), slog.LevelDebug) {
				next.ServeHTTP(w, r)
				return
			}
			withLog.ServeHTTP(w, r)
		})
	}
}
