package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/storage"
	"github.com/mcoot/chefgenie/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app     *TestApp
	updates *testutil.UpdateRecorder
	ctx     context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.updates = &testutil.UpdateRecorder{}
	s.app.GameController.AddNotifier(s.updates)
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.app.Cleanup()
}

// Test: a logged-in player beats the genie and reveals the dish
func (s *IntegrationSuite) TestPlayerBeatsGenie() {
	client := s.app.AuthService.NewClient()

	// Step 1: Sign up, which also logs the client in
	user, err := s.app.AuthService.Signup(s.ctx, client, "chef1", "abc")
	s.Require().NoError(err)
	s.Equal(0, user.Score)

	// Step 2: Start and answer one question
	s.app.Model.QueueQuestion("Is it sweet?", "Yes", "No")
	g, err := s.app.GameController.Start(s.ctx, client)
	s.Require().NoError(err)
	s.Equal(model.GameStatePlaying, g.State)

	s.app.Model.QueueGuess("Gulab Jamun")
	g, err = s.app.GameController.Answer(s.ctx, client, "Yes")
	s.Require().NoError(err)
	s.Equal(model.GameStateWon, g.State)
	s.Equal("Gulab Jamun", g.Guess)

	// Step 3: The guess was wrong
	g, err = s.app.GameController.Verify(s.ctx, client, false)
	s.Require().NoError(err)
	s.Equal(model.GameStateReveal, g.State)
	s.Equal(model.Scores{User: 1, AI: 0}, g.Scores)

	// Step 4: Reveal the real dish
	s.app.Model.QueueReaction("Ah, tiramisu! Next time.", "confused")
	g, err = s.app.GameController.Reveal(s.ctx, client, "tiramisu")
	s.Require().NoError(err)
	s.Equal(model.GameStateLost, g.State)
	s.Equal("tiramisu", g.RealAnswer)
	s.NotEmpty(g.MatchedDish)

	// The user record and the client's scores are both persisted
	fresh, err := s.app.AuthService.CurrentSession(s.ctx, client)
	s.Require().NoError(err)
	s.Require().NotNil(fresh)
	s.Equal(1, fresh.Score)
	s.Equal(1, fresh.GamesPlayed)

	var scores model.Scores
	s.Require().NoError(storage.GetJSON(s.ctx, s.app.Storage, storage.ScoresKey(client), &scores))
	s.Equal(model.Scores{User: 1, AI: 0}, scores)

	// Every transition reached the notifiers
	last, ok := s.updates.Last()
	s.Require().True(ok)
	s.Equal(model.GameStateLost, last.GameState)
}

// Test: the genie wins and the anonymous player's scores survive a restart
func (s *IntegrationSuite) TestGenieWinsAndScoresSurviveRestart() {
	client := s.app.AuthService.NewClient()

	s.app.Model.QueueGuess("Paneer Tikka")
	_, err := s.app.GameController.Start(s.ctx, client)
	s.Require().NoError(err)

	g, err := s.app.GameController.Verify(s.ctx, client, true)
	s.Require().NoError(err)
	s.Equal(model.GameStateLost, g.State)
	s.Equal(model.Scores{User: 0, AI: 1}, g.Scores)

	g = s.app.GameController.Restart(s.ctx, client)
	s.Equal(model.GameStateStart, g.State)
	s.Equal(model.Scores{User: 0, AI: 1}, g.Scores)
}

// Test: the owner report reflects what the services hold
func (s *IntegrationSuite) TestReportSeesUsersAndGames() {
	a := s.app.AuthService.NewClient()
	b := s.app.AuthService.NewClient()
	_, err := s.app.AuthService.Signup(s.ctx, a, "alice", "pw1")
	s.Require().NoError(err)
	s.app.GameController.Snapshot(s.ctx, a)
	s.app.GameController.Snapshot(s.ctx, b)

	report, err := s.app.Reporter.Report(s.ctx)
	s.Require().NoError(err)

	s.Equal(StorageTypeMemory, report.Storage)
	s.Equal(2, report.Users) // owner + alice
	s.Equal(2, report.ActiveGames)
}

// Test: releasing an idle client stops its audio engine but keeps the game
func (s *IntegrationSuite) TestReleaseClient() {
	client := s.app.AuthService.NewClient()
	s.app.Model.QueueQuestion("Is it sweet?", "Yes", "No")
	_, err := s.app.GameController.Start(s.ctx, client)
	s.Require().NoError(err)
	s.Equal(1, s.app.AudioManager.Len())

	s.app.ReleaseClient(client)

	s.Equal(0, s.app.AudioManager.Len())
	s.Equal(model.GameStatePlaying, s.app.GameController.Snapshot(s.ctx, client).State)
}

// Test: released clients' games are evicted once idle, connected ones stay
func (s *IntegrationSuite) TestEvictIdleGames() {
	var released []model.ClientID
	for range 100 {
		client := s.app.AuthService.NewClient()
		s.app.GameController.Snapshot(s.ctx, client)
		s.app.ReleaseClient(client)
		released = append(released, client)
	}
	watching := s.app.AuthService.NewClient()
	s.app.GameController.Snapshot(s.ctx, watching)
	s.app.HubManager.GetOrCreateHub(watching)
	s.Require().Equal(101, s.app.GameController.ActiveGames())

	s.Empty(s.app.EvictIdleGames(30*time.Minute), "nothing is idle yet")

	s.app.MockClock.Advance(31 * time.Minute)
	evicted := s.app.EvictIdleGames(30 * time.Minute)

	s.ElementsMatch(released, evicted)
	s.Equal(1, s.app.GameController.ActiveGames())
	s.True(s.app.Connected(watching))
	s.app.HubManager.RemoveHub(watching)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("expected an error without a model")
	}

	app := NewTestApp()
	defer app.Cleanup()

	_, err = New(Config{Model: app.Model, StorageType: "postgres"})
	if err == nil {
		t.Error("expected an error for an unknown storage type")
	}
	_, err = New(Config{Model: app.Model, StorageType: StorageTypeRedis})
	if err == nil {
		t.Error("expected an error for redis without RedisConfig")
	}
}

func TestNewWithSQLite(t *testing.T) {
	test := NewTestApp()
	defer test.Cleanup()

	app, err := New(Config{
		Model:       test.Model,
		StorageType: StorageTypeSQLite,
		SQLitePath:  t.TempDir() + "/chefgenie.db",
		AuthConfig:  auth.Config{BcryptCost: bcrypt.MinCost},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	if _, err := app.AuthService.Signup(context.Background(), app.AuthService.NewClient(), "chef1", "abc"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	report, err := app.Reporter.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.StorageStats == nil || report.StorageStats.Keys == 0 {
		t.Errorf("sqlite stats missing from report: %+v", report.StorageStats)
	}
}
