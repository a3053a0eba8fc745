package services

import "context"

// Pinger is a backing service whose reachability the health endpoint reports.
type Pinger interface {
	// Ping tests the connection
	Ping(ctx context.Context) error
}

// MockPinger is a mock implementation of Pinger for testing
type MockPinger struct {
	PingFunc func(ctx context.Context) error

	// Track calls for testing
	PingCalls int
}

// Ping mocks a connection check
func (m *MockPinger) Ping(ctx context.Context) error {
	m.PingCalls++

	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}

	// Default behavior - success
	return nil
}
