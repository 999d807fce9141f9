package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/chefgenie/internal/middleware"
	"github.com/mcoot/chefgenie/internal/web/templates/layout"
)

// Recovery renders an error page when a handler panics. htmx does not swap
// 5xx bodies, so fragment requests are sent back to the play page instead.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = layout.Problem("Something went wrong",
		"The genie tripped over a pot. Please try again.").Render(r.Context(), w)
}
