package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/chefgenie/internal/api/apierr"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/services/system"
	"github.com/mcoot/chefgenie/internal/web/middleware"
	"github.com/mcoot/chefgenie/internal/web/templates/pages"
)

// OwnerHandler serves the owner dashboard
type OwnerHandler struct {
	authService *auth.Service
	reporter    *system.Reporter
	logger      *slog.Logger
}

// NewOwnerHandler creates a new OwnerHandler
func NewOwnerHandler(authService *auth.Service, reporter *system.Reporter, logger *slog.Logger) *OwnerHandler {
	return &OwnerHandler{
		authService: authService,
		reporter:    reporter,
		logger:      logger,
	}
}

// Dashboard lists users, filtered by q, together with the system report
func (h *OwnerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		users []model.User
		err   error
	)
	if query != "" {
		users, err = h.authService.SearchUsers(ctx, query)
	} else {
		users, err = h.authService.GetAllUsers(ctx)
	}
	if err != nil {
		h.logger.Error("failed to load users", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	report, err := h.reporter.Report(ctx)
	if err != nil {
		h.logger.Warn("system report unavailable", slog.Any("error", err))
		report = nil
	}

	render(w, r, http.StatusOK, pages.Owner(pages.OwnerData{
		PageData: pageData(r, "Owner"),
		Users:    users,
		Query:    query,
		Report:   report,
	}))
}

// Ban sets or clears a user's banned flag
func (h *OwnerHandler) Ban(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	banned := r.FormValue("banned") == "true"

	if err := h.authService.BanUser(r.Context(), username, banned); err != nil {
		middleware.SetFlash(w, middleware.FlashError, apierr.Message(err))
		http.Redirect(w, r, "/owner", http.StatusSeeOther)
		return
	}

	action := "unbanned"
	if banned {
		action = "banned"
	}
	middleware.SetFlash(w, middleware.FlashSuccess, username+" "+action)
	http.Redirect(w, r, "/owner", http.StatusSeeOther)
}
