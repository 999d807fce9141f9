package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/web/middleware"
)

func TestHomePage(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#game.state-start")
	assertContainsElement(t, doc, "form.start")
	assertContainsElement(t, doc, `a[href="/login"]`)
	assertContainsElement(t, doc, "#audio-controls")
	assertNotContainsElement(t, doc, "form.restart")
}

func TestHomePageIssuesClientCookie(t *testing.T) {
	ts := newWebTestServer(t)

	client := ts.visit()

	// The same client is kept on later requests
	ts.get("/")
	assert.Equal(t, client, ts.cookies.client())
}

func TestInvalidClientCookieIsReplaced(t *testing.T) {
	ts := newWebTestServer(t)
	ts.cookies.set(middleware.ClientCookieName, "not-a-token")

	rr := ts.get("/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEqual(t, model.ClientID("not-a-token"), ts.cookies.client())
	assert.NotEmpty(t, ts.cookies.client())
}

func TestSignup(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"username": {"chef1"}, "password": {"abc"}}
	rr := ts.post("/signup", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "Welcome, chef1!")
	assertContainsText(t, doc, "nav a.user", "chef1")
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		status   int
		message  string
	}{
		{"short username", "ab", "abc", http.StatusBadRequest, "Username too short."},
		{"weak password", "chef1", "ab", http.StatusBadRequest, "Password too weak."},
		{"taken username", "owner", "abc", http.StatusConflict, "Username already exists."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newWebTestServer(t)

			form := url.Values{"username": {tt.username}, "password": {tt.password}}
			rr := ts.post("/signup", form)
			assert.Equal(t, tt.status, rr.Code)

			doc := parseHTML(rr.Body)
			assertContainsText(t, doc, ".error", tt.message)
			// The username is kept in the form
			val, _ := doc.Find(`input[name="username"]`).Attr("value")
			assert.Equal(t, tt.username, val)
		})
	}
}

func TestLogin(t *testing.T) {
	ts := newWebTestServer(t)
	_, err := ts.app.AuthService.Signup(t.Context(), "", "chef1", "abc")
	require.NoError(t, err)

	form := url.Values{"username": {"chef1"}, "password": {"abc"}}
	rr := ts.post("/login", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "Welcome back, chef1!")
	assertContainsText(t, doc, "nav a.user", "chef1")
}

func TestLoginErrors(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		status   int
		message  string
	}{
		{"unknown account", "ghost", "abc", http.StatusNotFound, "Account not found. Please sign up."},
		{"wrong password", "Owner", "nope", http.StatusUnauthorized, "Incorrect password."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newWebTestServer(t)

			form := url.Values{"username": {tt.username}, "password": {tt.password}}
			rr := ts.post("/login", form)
			assert.Equal(t, tt.status, rr.Code)

			doc := parseHTML(rr.Body)
			assertContainsText(t, doc, ".error", tt.message)
		})
	}
}

func TestLoginBannedAccount(t *testing.T) {
	ts := newWebTestServer(t)
	_, err := ts.app.AuthService.Signup(t.Context(), "", "chef1", "abc")
	require.NoError(t, err)
	require.NoError(t, ts.app.AuthService.BanUser(t.Context(), "chef1", true))

	form := url.Values{"username": {"chef1"}, "password": {"abc"}}
	rr := ts.post("/login", form)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".error", "BANNED")
}

func TestLoginRedirectsToNext(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"username": {"Owner"}, "password": {"123"}, "next": {"/owner"}}
	rr := ts.post("/login", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/owner", rr.Header().Get("Location"))
}

func TestLoginIgnoresOffsiteNext(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"username": {"Owner"}, "password": {"123"}, "next": {"https://evil.example/"}}
	rr := ts.post("/login", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("chef1", "abc")

	rr := ts.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-info", "Logged out")
	assertNotContainsElement(t, doc, "nav a.user")
	assertContainsElement(t, doc, `a[href="/login"]`)
}

func TestSessionPersistence(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("chef1", "abc")

	for range 3 {
		rr := ts.get("/")
		require.Equal(t, http.StatusOK, rr.Code)
		doc := parseHTML(rr.Body)
		assertContainsText(t, doc, "nav a.user", "chef1")
	}
}

func TestBannedSessionIsDropped(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("chef1", "abc")

	require.NoError(t, ts.app.AuthService.BanUser(t.Context(), "chef1", true))

	rr := ts.get("/")
	doc := parseHTML(rr.Body)
	assertNotContainsElement(t, doc, "nav a.user")
}

func TestLoginAndSignupPages(t *testing.T) {
	ts := newWebTestServer(t)

	for _, path := range []string{"/login", "/signup"} {
		rr := ts.get(path)
		assert.Equal(t, http.StatusOK, rr.Code, path)

		doc := parseHTML(rr.Body)
		assertContainsElement(t, doc, `form[action="`+path+`"]`)
		assertContainsElement(t, doc, `input[name="username"]`)
		assertContainsElement(t, doc, `input[name="password"]`)
	}
}

func TestLoginPageRedirectsWhenLoggedIn(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("chef1", "abc")

	rr := ts.get("/login")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestAccountRequiresLogin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/account")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/login?next=")
}

func TestAccountPage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("chef1", "abc")

	rr := ts.get("/account")
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, `form[action="/account/password"]`)
	assertContainsElement(t, doc, `form[action="/account/delete"]`)
}

func TestOwnerAccountHasNoDeleteForm(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAsOwner()

	rr := ts.get("/account")
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertNotContainsElement(t, doc, `form[action="/account/delete"]`)
}

func TestChangePassword(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("chef1", "abc")

	form := url.Values{"old_password": {"abc"}, "new_password": {"xyz"}}
	rr := ts.post("/account/password", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "Password updated successfully.")

	// Only the new password works afterwards
	_, err := ts.app.AuthService.Login(t.Context(), "", "chef1", "abc")
	assert.ErrorIs(t, err, model.ErrIncorrectPassword)
	_, err = ts.app.AuthService.Login(t.Context(), "", "chef1", "xyz")
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("chef1", "abc")

	form := url.Values{"old_password": {"nope"}, "new_password": {"xyz"}}
	rr := ts.post("/account/password", form)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".error", "Incorrect current password.")
}

func TestDeleteAccount(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("chef1", "abc")

	rr := ts.post("/account/delete", url.Values{"password": {"abc"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertNotContainsElement(t, doc, "nav a.user")

	_, err := ts.app.AuthService.Login(t.Context(), "", "chef1", "abc")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}
