package runner

import (
	"context"
	"sync"

	"isoresample/internal/models"
)

// MockRunner records invocations instead of executing them
type MockRunner struct {
	mu sync.Mutex

	// Calls records every invocation passed to Run
	Calls []models.Invocation

	// Result is returned from Run. A nil Result yields exit status 0.
	Result *models.Result

	// Err is returned from Run when set
	Err error
}

// NewMockRunner creates a MockRunner that reports the given exit code
func NewMockRunner(exitCode int) *MockRunner {
	return &MockRunner{Result: &models.Result{ExitCode: exitCode}}
}

// Run records inv and returns the configured result
func (m *MockRunner) Run(ctx context.Context, inv models.Invocation) (*models.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, inv)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return &models.Result{}, nil
	}
	res := *m.Result
	return &res, nil
}

// Called reports whether Run was invoked at least once
func (m *MockRunner) Called() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls) > 0
}
