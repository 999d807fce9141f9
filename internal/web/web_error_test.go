package web_test

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chefgenie/internal/factory"
	"github.com/mcoot/chefgenie/internal/testutil"
	"github.com/mcoot/chefgenie/internal/web"
)

func TestFlashMessageShownOnce(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/signup", url.Values{"username": {"chef1"}, "password": {"abc"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash", "Welcome, chef1!")

	// The cookie was cleared, so the next page has no flash
	rr = ts.get("/")
	doc = parseHTML(rr.Body)
	assertNotContainsElement(t, doc, ".flash")
}

func TestFlashMessageEscapesSpecialCharacters(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAsOwner()

	// Unknown users are ignored, but the name still round-trips through the cookie
	rr := ts.post("/owner/ban", url.Values{"username": {`a "quoted"; name`}, "banned": {"true"}})
	rr = ts.followRedirect(rr)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", `a "quoted"; name banned`)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/no-such-page")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHTMLIsEscaped(t *testing.T) {
	ts := newWebTestServer(t)
	ts.visit()

	ts.app.Model.QueueQuestion("<script>alert(1)</script>", "Yes", "No")
	rr := ts.postHTMX("/game/start", nil)

	assert.NotContains(t, rr.Body.String(), "<script>alert(1)</script>")
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#current-text", "<script>alert(1)</script>")
}

func TestStaticFileServing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644))

	app := factory.NewTestApp()
	t.Cleanup(app.Cleanup)
	router := web.NewRouter(web.RouterConfig{
		Logger:         testutil.NopLogger(),
		AuthService:    app.AuthService,
		GameController: app.GameController,
		AudioManager:   app.AudioManager,
		Knowledge:      app.Knowledge,
		Reporter:       app.Reporter,
		HubManager:     app.HubManager,
		Broadcaster:    app.Broadcaster,
		StaticDir:      dir,
	})
	ts := &webTestServer{t: t, handler: router, app: app, cookies: newCookieJar()}

	rr := ts.get("/static/style.css")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "body{}", rr.Body.String())

	// Without a bridge the websocket route is absent
	rr = ts.get("/embed/ws")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
