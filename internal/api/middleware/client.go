package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/chefgenie/internal/api/apierr"
	"github.com/mcoot/chefgenie/internal/dependencies/idgen"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/auth"
)

type contextKey string

const (
	clientContextKey contextKey = "client"
	userContextKey   contextKey = "user"
)

// Client requires a client token and loads the user logged in on it, if any
func Client(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if !idgen.Valid(token) {
				apierr.WriteError(w, model.ErrInvalidClient)
				return
			}
			client := model.ClientID(token)

			user, err := authService.CurrentSession(r.Context(), client)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), clientContextKey, client)
			if user != nil {
				ctx = context.WithValue(ctx, userContextKey, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests whose client is not logged in
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) == nil {
			apierr.WriteError(w, model.ErrNotLoggedIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOwner rejects requests whose client is not logged in as the owner
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil {
			apierr.WriteError(w, model.ErrNotLoggedIn)
			return
		}
		if !user.IsOwner() {
			apierr.WriteError(w, model.ErrNotOwner)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken reads the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetClient returns the client from the request context
func GetClient(ctx context.Context) model.ClientID {
	client, _ := ctx.Value(clientContextKey).(model.ClientID)
	return client
}

// GetUser returns the logged-in user from the request context, or nil
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// MustGetUser returns the logged-in user or panics
func MustGetUser(ctx context.Context) *model.User {
	user := GetUser(ctx)
	if user == nil {
		panic("no user in context - RequireUser not applied?")
	}
	return user
}
