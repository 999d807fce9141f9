package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/chefgenie/internal/api/apierr"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/web/middleware"
	"github.com/mcoot/chefgenie/internal/web/templates/pages"
)

// AuthHandler handles login, signup and account pages
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// LoginPage renders the login form
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, pages.Login(pages.CredentialsData{
		PageData: pageData(r, "Login"),
		Next:     r.URL.Query().Get("next"),
	}))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	user, err := h.authService.Login(r.Context(), middleware.GetClient(r.Context()), username, password)
	if err != nil {
		render(w, r, apierr.Status(err), pages.Login(pages.CredentialsData{
			PageData: pageData(r, "Login"),
			Username: username,
			Error:    apierr.Message(err),
			Next:     next,
		}))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Welcome back, "+user.Username+"!")
	redirectBack(w, r, next)
}

// SignupPage renders the signup form
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, pages.Signup(pages.CredentialsData{PageData: pageData(r, "Sign up")}))
}

// Signup handles signup form submission
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := h.authService.Signup(r.Context(), middleware.GetClient(r.Context()), username, password)
	if err != nil {
		render(w, r, apierr.Status(err), pages.Signup(pages.CredentialsData{
			PageData: pageData(r, "Sign up"),
			Username: username,
			Error:    apierr.Message(err),
		}))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Welcome, "+user.Username+"!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the client's session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.GetClient(r.Context())); err != nil {
		h.logger.Error("logout failed", slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, "Could not log out")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	middleware.SetFlash(w, middleware.FlashInfo, "Logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AccountPage renders the account settings
func (h *AuthHandler) AccountPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, pages.Account(pages.AccountData{PageData: pageData(r, "Account")}))
}

// ChangePassword handles the password change form
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	err := h.authService.ChangePassword(r.Context(), user.Username, r.FormValue("old_password"), r.FormValue("new_password"))
	if err != nil {
		render(w, r, apierr.Status(err), pages.Account(pages.AccountData{
			PageData: pageData(r, "Account"),
			Error:    apierr.Message(err),
		}))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Password updated successfully.")
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

// DeleteAccount handles the account deletion form
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	err := h.authService.DeleteAccount(ctx, middleware.GetClient(ctx), user.Username, r.FormValue("password"))
	if err != nil {
		render(w, r, apierr.Status(err), pages.Account(pages.AccountData{
			PageData: pageData(r, "Account"),
			Error:    apierr.Message(err),
		}))
		return
	}

	middleware.SetFlash(w, middleware.FlashInfo, "Account deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
