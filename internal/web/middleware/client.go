package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mcoot/chefgenie/internal/dependencies/idgen"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/auth"
)

type contextKey string

const (
	clientContextKey contextKey = "client"
	userContextKey   contextKey = "user"

	// ClientCookieName holds the browser's client token
	ClientCookieName = "client"
	clientCookieAge  = 365 * 24 * 60 * 60
)

// GetClient returns the client the request belongs to
func GetClient(ctx context.Context) model.ClientID {
	client, _ := ctx.Value(clientContextKey).(model.ClientID)
	return client
}

// GetUser returns the logged-in user, or nil
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// WithClient returns ctx carrying client and user
func WithClient(ctx context.Context, client model.ClientID, user *model.User) context.Context {
	ctx = context.WithValue(ctx, clientContextKey, client)
	return context.WithValue(ctx, userContextKey, user)
}

// Client identifies the browser by its client cookie, issuing a new token
// when the cookie is missing or malformed, and loads the logged-in user.
func Client(authService *auth.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientFromCookie(r)
			if client == "" {
				client = authService.NewClient()
				http.SetCookie(w, &http.Cookie{
					Name:     ClientCookieName,
					Value:    string(client),
					Path:     "/",
					MaxAge:   clientCookieAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			user, err := authService.CurrentSession(r.Context(), client)
			if err != nil {
				logger.Warn("could not load session",
					slog.String("client", string(client)),
					slog.Any("error", err))
				user = nil
			}

			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), client, user)))
		})
	}
}

func clientFromCookie(r *http.Request) model.ClientID {
	cookie, err := r.Cookie(ClientCookieName)
	if err != nil || !idgen.Valid(cookie.Value) {
		return ""
	}
	return model.ClientID(cookie.Value)
}

// RequireUser redirects anonymous clients to the login page
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) == nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOwner sends everyone but the owner back home
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil || !user.IsOwner() {
			SetFlash(w, FlashError, "Owner privileges required")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
