package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/chefgenie/internal/testutil"
)

func panicking() http.Handler {
	return Recovery(testutil.NopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("pot dropped")
	}))
}

func TestRecovery_RendersProblemPage(t *testing.T) {
	rec := httptest.NewRecorder()
	panicking().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "The genie tripped over a pot")
	assert.Contains(t, rec.Body.String(), `<a href="/">Back to the game</a>`)
}

func TestRecovery_HTMXRedirectsHome(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/game/answer", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	panicking().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	assert.Empty(t, rec.Body.String())
}
