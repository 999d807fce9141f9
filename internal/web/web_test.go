package web_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chefgenie/internal/factory"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/testutil"
	"github.com/mcoot/chefgenie/internal/web"
	"github.com/mcoot/chefgenie/internal/web/middleware"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

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
		Bridge:         app.Bridge,
		StaticDir:      "", // No static files in tests
	})

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil, false)
}

// post makes a POST request with form data (non-HTMX)
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, false)
}

// postHTMX makes a POST request with form data as an HTMX request
func (ts *webTestServer) postHTMX(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, true)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar keeps the cookies a browser on the site would hold.
// Every request in these tests is treated as same-origin.
type cookieJar struct {
	jar  *cookiejar.Jar
	site *url.URL
}

func newCookieJar() *cookieJar {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}
	return &cookieJar{jar: jar, site: &url.URL{Scheme: "http", Host: "chefgenie.test", Path: "/"}}
}

// addTo attaches the held cookies to req
func (j *cookieJar) addTo(req *http.Request) {
	for _, c := range j.jar.Cookies(j.site) {
		req.AddCookie(c)
	}
}

// extract stores Set-Cookie headers, honouring deletions
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	j.jar.SetCookies(j.site, rr.Result().Cookies())
}

// set plants a cookie as if the server had issued it
func (j *cookieJar) set(name, value string) {
	j.jar.SetCookies(j.site, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

func (j *cookieJar) value(name string) string {
	for _, c := range j.jar.Cookies(j.site) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// client returns the client token the server issued, if any
func (j *cookieJar) client() model.ClientID {
	return model.ClientID(j.value(middleware.ClientCookieName))
}

// Helper functions for common test operations

// signup creates an account through the form and follows the redirect
func (ts *webTestServer) signup(username, password string) {
	ts.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	rr := ts.post("/signup", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after signup")
	ts.followRedirect(rr)
}

// login submits the login form and follows the redirect
func (ts *webTestServer) login(username, password string) {
	ts.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	rr := ts.post("/login", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after login")
	ts.followRedirect(rr)
}

// loginAsOwner logs in with the seeded owner account
func (ts *webTestServer) loginAsOwner() {
	ts.t.Helper()
	ts.login(model.OwnerUsername, model.OwnerPassword)
}

// visit makes a GET request so the client cookie gets issued
func (ts *webTestServer) visit() model.ClientID {
	ts.t.Helper()
	rr := ts.get("/")
	require.Equal(ts.t, http.StatusOK, rr.Code)
	client := ts.cookies.client()
	require.NotEmpty(ts.t, client, "Expected client cookie to be issued")
	return client
}

// gameView fetches the play page and returns the game fragment in it
func (ts *webTestServer) gameView() *goquery.Selection {
	ts.t.Helper()
	rr := ts.get("/")
	require.Equal(ts.t, http.StatusOK, rr.Code)
	game := parseHTML(rr.Body).Find(".game")
	require.Equal(ts.t, 1, game.Length(), "Expected one game view on the page")
	return game
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
