package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chefgenie/internal/api"
	"github.com/mcoot/chefgenie/internal/factory"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/testutil"
	"github.com/mcoot/chefgenie/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "chefgenie-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/chefgenie")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

// another returns a runner for a second client sharing the same binary
func (r *cliRunner) another(t *testing.T) *cliRunner {
	return &cliRunner{
		binaryPath: r.binaryPath,
		serverURL:  r.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) args(args []string) []string {
	return append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	cmd := exec.Command(r.binaryPath, r.args(args)...)
	cmd.Env = cliEnv()
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// runFor runs a long-lived command until d elapses
func (r *cliRunner) runFor(d time.Duration, args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binaryPath, r.args(args)...)
	cmd.Env = cliEnv()
	output, _ := cmd.CombinedOutput()
	return string(output)
}

func (r *cliRunner) token(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(r.tokenFile)
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}

// cliEnv strips settings that would override the flags
func cliEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "CHEFGENIE_") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "CHEFGENIE_CONFIG="+os.DevNull)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.TestApp
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()

	// The genie is scripted so rounds are deterministic
	app := factory.NewTestApp()
	logger := testutil.NopLogger()
	projectRoot := findProjectRoot(t)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		AudioManager:   app.AudioManager,
		Knowledge:      app.Knowledge,
		Reporter:       app.Reporter,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		AudioManager:   app.AudioManager,
		Knowledge:      app.Knowledge,
		Reporter:       app.Reporter,
		HubManager:     app.HubManager,
		Broadcaster:    app.Broadcaster,
		Bridge:         app.Bridge,
		StaticDir:      filepath.Join(projectRoot, "internal/web/static"),
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	cfg := api.DefaultServerConfig()
	cfg.ShutdownTimeout = 5 * time.Second
	server := api.NewServer(mux, cfg, logger)

	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			_ = server.Shutdown(context.Background())
			app.Cleanup()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type userResponse struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	Score       int    `json:"score"`
	GamesPlayed int    `json:"games_played"`
	IsBanned    bool   `json:"is_banned"`
}

type meResponse struct {
	LoggedIn bool          `json:"logged_in"`
	User     *userResponse `json:"user"`
}

type gameResponse struct {
	State         string   `json:"state"`
	CurrentText   string   `json:"current_text"`
	Options       []string `json:"options"`
	QuestionCount int      `json:"question_count"`
	CanUndo       bool     `json:"can_undo"`
	Guess         string   `json:"guess"`
	RealAnswer    string   `json:"real_answer"`
	Scores        struct {
		User int `json:"user"`
		AI   int `json:"ai"`
	} `json:"scores"`
}

type audioResponse struct {
	Volume int    `json:"volume"`
	Muted  bool   `json:"muted"`
	Track  string `json:"track"`
}

type matchResponse struct {
	Matched bool   `json:"matched"`
	Dish    string `json:"dish"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "ok", decode[healthResponse](t, output).Status)
}

func TestCLI_PlayerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Signup issues and saves a client token first
	output, err := cli.run("player", "signup", "--user", "alice", "--pass", "pw1")
	require.NoError(t, err, "output: %s", output)
	me := decode[meResponse](t, output)
	require.True(t, me.LoggedIn)
	assert.Equal(t, "alice", me.User.Username)
	assert.NotEmpty(t, cli.token(t))

	output, err = cli.run("player", "me")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "alice", decode[meResponse](t, output).User.Username)

	output, err = cli.run("player", "password", "--old", "pw1", "--new", "pw2")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "Password updated", decode[messageResponse](t, output).Message)

	output, err = cli.run("player", "logout")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("player", "me")
	require.NoError(t, err, "output: %s", output)
	assert.False(t, decode[meResponse](t, output).LoggedIn)

	output, err = cli.run("player", "login", "--user", "alice", "--pass", "pw2")
	require.NoError(t, err, "output: %s", output)
	assert.True(t, decode[meResponse](t, output).LoggedIn)

	output, err = cli.run("leaderboard")
	require.NoError(t, err, "output: %s", output)
	users := decode[[]userResponse](t, output)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	output, err = cli.run("player", "delete", "--pass", "pw2")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "Account deleted", decode[messageResponse](t, output).Message)
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("game", "get")
	require.NoError(t, err, "output: %s", output)
	game := decode[gameResponse](t, output)
	assert.Equal(t, string(model.GameStateStart), game.State)

	ts.app.Model.QueueQuestion("Is it a dessert?", "Yes", "No")
	output, err = cli.run("game", "start")
	require.NoError(t, err, "output: %s", output)
	game = decode[gameResponse](t, output)
	assert.Equal(t, string(model.GameStatePlaying), game.State)
	assert.Equal(t, "Is it a dessert?", game.CurrentText)
	assert.Equal(t, []string{"Yes", "No"}, game.Options)

	ts.app.Model.QueueQuestion("Does it contain coffee?", "Yes", "No")
	output, err = cli.run("game", "answer", "Yes")
	require.NoError(t, err, "output: %s", output)
	game = decode[gameResponse](t, output)
	assert.Equal(t, 2, game.QuestionCount)
	assert.True(t, game.CanUndo)

	ts.app.Model.QueueGuess("Affogato")
	output, err = cli.run("game", "answer", "--free", "yes, and mascarpone")
	require.NoError(t, err, "output: %s", output)
	game = decode[gameResponse](t, output)
	assert.Equal(t, string(model.GameStateWon), game.State)
	assert.Equal(t, "Affogato", game.Guess)

	output, err = cli.run("game", "verify", "no")
	require.NoError(t, err, "output: %s", output)
	game = decode[gameResponse](t, output)
	assert.Equal(t, string(model.GameStateReveal), game.State)
	assert.Equal(t, 1, game.Scores.User)

	ts.app.Model.QueueReaction("Tiramisu! So close.", "confused")
	output, err = cli.run("game", "reveal", "tiramisu")
	require.NoError(t, err, "output: %s", output)
	game = decode[gameResponse](t, output)
	assert.Equal(t, string(model.GameStateLost), game.State)
	assert.Equal(t, "tiramisu", game.RealAnswer)

	output, err = cli.run("game", "restart")
	require.NoError(t, err, "output: %s", output)
	game = decode[gameResponse](t, output)
	assert.Equal(t, string(model.GameStateStart), game.State)
	assert.Equal(t, 1, game.Scores.User)
}

func TestCLI_GameErrors(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("game", "undo")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_TRANSITION")

	output, err = cli.run("game", "verify", "maybe")
	assert.Error(t, err)
	assert.Contains(t, output, "yes or no")
}

func TestCLI_ClientsAreSeparate(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	alice := newCLIRunner(t, ts.addr)
	bob := alice.another(t)

	output, err := alice.run("game", "start")
	require.NoError(t, err, "output: %s", output)

	output, err = bob.run("game", "get")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, string(model.GameStateStart), decode[gameResponse](t, output).State)
	assert.NotEqual(t, alice.token(t), bob.token(t))
}

func TestCLI_AudioAndDishes(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("audio")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("audio", "volume", "35")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, 35, decode[audioResponse](t, output).Volume)

	output, err = cli.run("audio", "mute", "on")
	require.NoError(t, err, "output: %s", output)
	assert.True(t, decode[audioResponse](t, output).Muted)

	output, err = cli.run("audio", "music", "polka")
	assert.Error(t, err)
	assert.Contains(t, output, "UNKNOWN_TRACK")

	output, err = cli.run("match", "a", "slice", "of", "tiramisu")
	require.NoError(t, err, "output: %s", output)
	match := decode[matchResponse](t, output)
	assert.True(t, match.Matched)
	assert.Equal(t, "Tiramisu", match.Dish)

	output, err = cli.run("dishes", "tiramisu")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "Tiramisu")
}

func TestCLI_OwnerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	owner := newCLIRunner(t, ts.addr)
	player := owner.another(t)

	output, err := player.run("player", "signup", "--user", "alice", "--pass", "pw1")
	require.NoError(t, err, "output: %s", output)

	// Regular players are refused
	output, err = player.run("owner", "users")
	assert.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")

	output, err = owner.run("player", "login", "--user", model.OwnerUsername, "--pass", "123")
	require.NoError(t, err, "output: %s", output)

	output, err = owner.run("owner", "users", "-q", "ali")
	require.NoError(t, err, "output: %s", output)
	users := decode[[]userResponse](t, output)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	output, err = owner.run("owner", "ban", "alice")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "alice banned", decode[messageResponse](t, output).Message)

	// The ban drops alice's session
	output, err = player.run("player", "me")
	require.NoError(t, err, "output: %s", output)
	assert.False(t, decode[meResponse](t, output).LoggedIn)

	output, err = owner.run("owner", "report")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, `"storage": "memory"`)
}

func TestCLI_EventStream(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)
	_, err := cli.run("client", "new")
	require.NoError(t, err)

	output := cli.runFor(time.Second, "events", "--json")

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.GreaterOrEqual(t, len(lines), 2, "output: %s", output)

	var first struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "connected", first.Event)
	assert.Contains(t, output, "game-update")
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// No client token yet
	output, err := cli.run("player", "me")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_CLIENT")

	output, err = cli.run("player", "login", "--user", "nobody", "--pass", "pw1")
	assert.Error(t, err)
	assert.Contains(t, output, "Account not found")
}
