package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/mcoot/chefgenie/internal/web/templates/layout"
)

// FlashKind selects the notice's styling
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

const (
	flashCookieName = "flash"
	flashContextKey = contextKey("flash")
	flashMaxAge     = 60
)

type flashCookie struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

// GetFlash returns the notice carried over from the previous response, if any
func GetFlash(ctx context.Context) *layout.FlashMessage {
	flash, _ := ctx.Value(flashContextKey).(*layout.FlashMessage)
	return flash
}

// SetFlash queues a notice for the page the browser loads next
func SetFlash(w http.ResponseWriter, kind FlashKind, message string) {
	data, err := json.Marshal(flashCookie{Kind: kind, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, flashCookieWith(base64.RawURLEncoding.EncodeToString(data), flashMaxAge))
}

// Flash moves a queued notice into the request context and clears the cookie
func Flash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(flashCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			http.SetCookie(w, flashCookieWith("", -1))
			ctx := context.WithValue(r.Context(), flashContextKey, decodeFlash(cookie.Value))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func flashCookieWith(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// decodeFlash returns nil for a tampered or stale cookie
func decodeFlash(value string) *layout.FlashMessage {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var f flashCookie
	if err := json.Unmarshal(data, &f); err != nil || f.Message == "" {
		return nil
	}
	switch f.Kind {
	case FlashSuccess, FlashError, FlashInfo:
	default:
		f.Kind = FlashInfo
	}
	return &layout.FlashMessage{Type: string(f.Kind), Message: f.Message}
}
