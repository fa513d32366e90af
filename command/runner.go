package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"syscall"
	"unicode/utf8"

	"github.com/grovetools/statusbar/errors"
)

// DefaultShell is the interpreter used for every script.
const DefaultShell = "sh"

// ShellRunner is the production Runner. It applies no timeout of its own;
// callers that want one pass a deadline on the context.
type ShellRunner struct {
	shell    string
	executor Executor
}

// Option configures a ShellRunner.
type Option func(*ShellRunner)

// WithShell overrides the interpreter binary.
func WithShell(path string) Option {
	return func(r *ShellRunner) {
		r.shell = path
	}
}

// WithExecutor overrides how processes are created.
func WithExecutor(e Executor) Option {
	return func(r *ShellRunner) {
		r.executor = e
	}
}

// NewShellRunner creates a ShellRunner using `sh` and the RealExecutor.
func NewShellRunner(opts ...Option) *ShellRunner {
	r := &ShellRunner{
		shell:    DefaultShell,
		executor: &RealExecutor{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Output runs sh -c <script> and returns stdout as text. A non-zero exit is
// not an error: whatever the script printed is returned. Failing to start the
// shell, a cancelled context, or stdout that is not UTF-8 are errors.
func (r *ShellRunner) Output(ctx context.Context, sh Shell) (string, error) {
	if err := sh.Validate(); err != nil {
		return "", errors.CommandLaunch(sh.Script, err)
	}

	cmd := r.executor.CommandContext(ctx, r.shell, "-c", sh.Script)
	cmd.Env = sh.environ()
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) {
			return "", errors.CommandLaunch(sh.Script, err)
		}
		if ctx.Err() != nil {
			return "", errors.CommandLaunch(sh.Script, ctx.Err())
		}
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", errors.OutputDecode(sh.Script)
	}
	return stdout.String(), nil
}

// Spawn starts sh -c <script> in its own process group with no captured
// output and reaps it in the background.
func (r *ShellRunner) Spawn(sh Shell) error {
	if err := sh.Validate(); err != nil {
		return errors.CommandLaunch(sh.Script, err)
	}

	cmd := r.executor.Command(r.shell, "-c", sh.Script)
	cmd.Env = sh.environ()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return errors.CommandLaunch(sh.Script, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

var _ Runner = (*ShellRunner)(nil)
