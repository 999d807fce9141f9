package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/chefgenie/internal/dependencies/idgen"
)

// MockIDs is a mock implementation of Generator for testing
type MockIDs struct {
	mu sync.Mutex

	// Results is a queue of IDs to return from NewID
	Results []string
	index   int
	counter int
}

// Ensure MockIDs implements Generator
var _ idgen.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued ID. Once the queue is drained it returns
// deterministic UUID-shaped values.
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index < len(g.Results) {
		result := g.Results[g.index]
		g.index++
		return result
	}
	g.counter++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", g.counter)
}

// Queue adds values to the result queue
func (g *MockIDs) Queue(values ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Results = append(g.Results, values...)
}
