package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
)

// MockNarrator is a mock implementation of engine.Narrator for testing
type MockNarrator struct {
	OutcomeFunc func(ctx context.Context, mile int, choice script.Choice) (string, error)

	// Track calls for testing
	OutcomeCalls []OutcomeCall

	mu sync.Mutex // protects all fields above
}

type OutcomeCall struct {
	Mile   int
	Choice script.Choice
}

var _ engine.Narrator = (*MockNarrator)(nil)

// NewMockNarrator creates a new mock narrator
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{
		OutcomeCalls: make([]OutcomeCall, 0),
	}
}

// Outcome records the call and returns the primed result. OutcomeFunc runs
// without the lock held so it may block.
func (m *MockNarrator) Outcome(ctx context.Context, mile int, choice script.Choice) (string, error) {
	m.mu.Lock()
	m.OutcomeCalls = append(m.OutcomeCalls, OutcomeCall{Mile: mile, Choice: choice})
	fn := m.OutcomeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, mile, choice)
	}

	// Default behavior - a recognisable narration
	return "Mock narration: " + choice.OutcomeText, nil
}

// SetOutcomeError sets up the mock to fail every narration
func (m *MockNarrator) SetOutcomeError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutcomeFunc = func(ctx context.Context, mile int, choice script.Choice) (string, error) {
		return "", err
	}
}

// SetOutcomeResponse sets up the mock to return text for every narration
func (m *MockNarrator) SetOutcomeResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutcomeFunc = func(ctx context.Context, mile int, choice script.Choice) (string, error) {
		return text, nil
	}
}

// Reset clears all call tracking
func (m *MockNarrator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutcomeCalls = make([]OutcomeCall, 0)
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockNarrator) GetCalls() []OutcomeCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]OutcomeCall, len(m.OutcomeCalls))
	copy(calls, m.OutcomeCalls)
	return calls
}
