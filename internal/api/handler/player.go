package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mcoot/chefgenie/internal/api/middleware"
	"github.com/mcoot/chefgenie/internal/api/request"
	"github.com/mcoot/chefgenie/internal/api/response"
	"github.com/mcoot/chefgenie/internal/services/auth"
)

const defaultLeaderboardLimit = 20

// PlayerHandler handles client and account endpoints
type PlayerHandler struct {
	authService *auth.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service) *PlayerHandler {
	return &PlayerHandler{
		authService: authService,
	}
}

// CreateClient handles POST /api/v1/clients
func (h *PlayerHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	client := h.authService.NewClient()
	response.Created(w, response.Client{ClientToken: string(client)})
}

// Signup handles POST /api/v1/players/signup
func (h *PlayerHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	user, err := h.authService.Signup(r.Context(), middleware.GetClient(r.Context()), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.MeFromModel(user))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}

	user, err := h.authService.Login(r.Context(), middleware.GetClient(r.Context()), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.MeFromModel(user))
}

// Logout handles POST /api/v1/players/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.GetClient(r.Context())); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/players/me. Anonymous clients get logged_in=false.
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	response.OK(w, response.MeFromModel(middleware.GetUser(r.Context())))
}

// ChangePassword handles POST /api/v1/players/me/password
func (h *PlayerHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.authService.ChangePassword(r.Context(), user.Username, req.OldPassword, req.NewPassword); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Delete handles DELETE /api/v1/players/me
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.MustGetUser(ctx)

	var req request.DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.authService.DeleteAccount(ctx, middleware.GetClient(ctx), user.Username, req.Password); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Leaderboard handles GET /api/v1/leaderboard?limit=N
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative number"))
			return
		}
		limit = n
	}

	users, err := h.authService.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.UsersFromModel(users))
}
