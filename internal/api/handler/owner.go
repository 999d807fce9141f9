package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/chefgenie/internal/api/request"
	"github.com/mcoot/chefgenie/internal/api/response"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/services/system"
)

// OwnerHandler handles the owner's administration endpoints
type OwnerHandler struct {
	authService *auth.Service
	reporter    *system.Reporter
}

// NewOwnerHandler creates a new owner handler
func NewOwnerHandler(authService *auth.Service, reporter *system.Reporter) *OwnerHandler {
	return &OwnerHandler{
		authService: authService,
		reporter:    reporter,
	}
}

// Users handles GET /api/v1/owner/users?q=. A query searches non-owner users.
func (h *OwnerHandler) Users(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		users []model.User
		err   error
	)
	if query != "" {
		users, err = h.authService.SearchUsers(r.Context(), query)
	} else {
		users, err = h.authService.GetAllUsers(r.Context())
	}
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.UsersFromModel(users))
}

// Ban handles POST /api/v1/owner/users/{username}/ban
func (h *OwnerHandler) Ban(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req request.BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.authService.BanUser(r.Context(), username, req.Banned); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Report handles GET /api/v1/owner/report
func (h *OwnerHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reporter.Report(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, report)
}
