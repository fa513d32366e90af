package mocks

import (
	"context"
	"sync"

	"github.com/grovetools/statusbar/command"
)

// Runner implements command.Runner for testing. Output returns the scripted
// Stdout and Err; every call is recorded.
type Runner struct {
	mu sync.Mutex

	// Stdout is returned by Output when Err is nil.
	Stdout string
	// Err is returned by Output.
	Err error
	// SpawnErr is returned by Spawn.
	SpawnErr error

	// OutputCalls and SpawnCalls record every invocation in order.
	OutputCalls []command.Shell
	SpawnCalls  []command.Shell
}

// NewRunner creates a runner that prints stdout.
func NewRunner(stdout string) *Runner {
	return &Runner{Stdout: stdout}
}

// Set replaces the scripted result for the next Output calls.
func (m *Runner) Set(stdout string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stdout = stdout
	m.Err = err
}

// Output records the call and returns the scripted result.
func (m *Runner) Output(ctx context.Context, sh command.Shell) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutputCalls = append(m.OutputCalls, sh)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Stdout, nil
}

// Spawn records the call and returns SpawnErr.
func (m *Runner) Spawn(sh command.Shell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SpawnCalls = append(m.SpawnCalls, sh)
	return m.SpawnErr
}

// Outputs returns the number of Output calls so far.
func (m *Runner) Outputs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.OutputCalls)
}

// Spawns returns the number of Spawn calls so far.
func (m *Runner) Spawns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SpawnCalls)
}

// Compile-time check that Runner implements command.Runner.
var _ command.Runner = (*Runner)(nil)
