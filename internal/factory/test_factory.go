package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chefgenie/internal/dependencies/mocks"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/storage/memory"
	"github.com/mcoot/chefgenie/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
	Model     *mocks.ScriptedModel
	Memory    *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()
	model := mocks.NewScriptedModel()

	app := newWithDependencies(
		store,
		StorageTypeMemory,
		mockClock,
		mockIDs,
		model,
		auth.Config{BcryptCost: bcrypt.MinCost},
		nil,
		testutil.NopLogger(),
	)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
		Model:     model,
		Memory:    store,
	}
}

// Cleanup releases held model replies and stops audio engines
func (t *TestApp) Cleanup() {
	t.Model.Release()
	_ = t.App.Close()
}
