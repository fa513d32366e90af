package command

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/statusbar/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellValidate(t *testing.T) {
	tests := []struct {
		name    string
		shell   Shell
		wantErr bool
	}{
		{"plain script", Shell{Script: "pamac checkupdates -q"}, false},
		{"with env", Shell{Script: "true", Env: map[string]string{"LC_ALL": "C"}}, false},
		{"empty script", Shell{Script: "  "}, true},
		{"nul byte", Shell{Script: "echo \x00"}, true},
		{"bad env key", Shell{Script: "true", Env: map[string]string{"A=B": "x"}}, true},
		{"empty env key", Shell{Script: "true", Env: map[string]string{"": "x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shell.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShellString(t *testing.T) {
	sh := Shell{Script: "pamac checkupdates -q", Env: map[string]string{"LC_ALL": "C"}}
	assert.Equal(t, "LC_ALL=C pamac checkupdates -q", sh.String())
	assert.Equal(t, "true", Shell{Script: "true"}.String())
}

func TestOutputCapturesStdout(t *testing.T) {
	r := NewShellRunner()
	out, err := r.Output(context.Background(), Shell{Script: "printf 'a\\nb\\n'; echo ignored >&2"})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", out)
}

func TestOutputPinsEnvironment(t *testing.T) {
	t.Setenv("LC_ALL", "de_DE.UTF-8")
	r := NewShellRunner()
	out, err := r.Output(context.Background(), Shell{
		Script: "printf '%s' \"$LC_ALL\"",
		Env:    map[string]string{"LC_ALL": "C"},
	})
	require.NoError(t, err)
	assert.Equal(t, "C", out)
}

func TestOutputIgnoresExitStatus(t *testing.T) {
	r := NewShellRunner()
	out, err := r.Output(context.Background(), Shell{Script: "printf 'pkg\\n'; exit 3"})
	require.NoError(t, err)
	assert.Equal(t, "pkg\n", out)
}

func TestOutputRejectsInvalidUTF8(t *testing.T) {
	r := NewShellRunner()
	_, err := r.Output(context.Background(), Shell{Script: "printf '\\377\\376'"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeOutputDecode), "got %v", err)
}

func TestOutputLaunchFailure(t *testing.T) {
	r := NewShellRunner(WithShell(filepath.Join(t.TempDir(), "missing-sh")))
	_, err := r.Output(context.Background(), Shell{Script: "true"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandLaunch), "got %v", err)
}

func TestOutputCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewShellRunner()
	_, err := r.Output(ctx, Shell{Script: "sleep 5"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandLaunch))
}

func TestSpawnDoesNotWait(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	r := NewShellRunner()

	start := time.Now()
	err := r.Spawn(Shell{Script: "touch '" + marker + "'; sleep 2"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	require.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSpawnLaunchFailure(t *testing.T) {
	r := NewShellRunner(WithShell(filepath.Join(t.TempDir(), "missing-sh")))
	err := r.Spawn(Shell{Script: "true"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandLaunch))
}

// recordingExecutor launches through RealExecutor and keeps every argv.
type recordingExecutor struct {
	RealExecutor
	mu    sync.Mutex
	calls [][]string
	cmds  []*exec.Cmd
}

func (e *recordingExecutor) record(cmd *exec.Cmd, name string, args []string) *exec.Cmd {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, append([]string{name}, args...))
	e.cmds = append(e.cmds, cmd)
	return cmd
}

func (e *recordingExecutor) Command(name string, args ...string) *exec.Cmd {
	return e.record(e.RealExecutor.Command(name, args...), name, args)
}

func (e *recordingExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return e.record(e.RealExecutor.CommandContext(ctx, name, args...), name, args)
}

func TestRunnerLaunchesThroughExecutor(t *testing.T) {
	rec := &recordingExecutor{}
	r := NewShellRunner(WithExecutor(rec))

	out, err := r.Output(context.Background(), Shell{Script: "echo 3"})
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	require.NoError(t, r.Spawn(Shell{Script: "true"}))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.calls, 2)
	assert.Equal(t, []string{"sh", "-c", "echo 3"}, rec.calls[0])
	assert.Equal(t, []string{"sh", "-c", "true"}, rec.calls[1])
	require.NotNil(t, rec.cmds[1].SysProcAttr)
	assert.True(t, rec.cmds[1].SysProcAttr.Setpgid)
}
