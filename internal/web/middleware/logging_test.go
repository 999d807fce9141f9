package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveLogged(level slog.Level, path string) string {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	return buf.String()
}

func TestLogging_StaticAssetsOnlyAtDebug(t *testing.T) {
	assert.Empty(t, serveLogged(slog.LevelInfo, "/static/style.css"))
	assert.Contains(t, serveLogged(slog.LevelDebug, "/static/style.css"), `"path":"/static/style.css"`)
}

func TestLogging_PagesAlwaysLogged(t *testing.T) {
	assert.Contains(t, serveLogged(slog.LevelInfo, "/"), `"path":"/"`)
}
