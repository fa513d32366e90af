package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Shell is a script handed to the shell with `-c`, plus environment
// variables that override the inherited process environment.
type Shell struct {
	Script string
	Env    map[string]string
}

// Runner executes shell scripts on behalf of blocks. It never retries.
type Runner interface {
	// Output runs the script to completion and returns its standard output.
	// Standard error and the exit status are not inspected.
	Output(ctx context.Context, sh Shell) (string, error)

	// Spawn starts the script detached and returns without waiting for it.
	Spawn(sh Shell) error
}

// Validate rejects scripts that cannot be handed to a shell.
func (s Shell) Validate() error {
	if strings.TrimSpace(s.Script) == "" {
		return fmt.Errorf("shell script cannot be empty")
	}
	if strings.ContainsRune(s.Script, 0) {
		return fmt.Errorf("shell script contains a NUL byte")
	}
	for key := range s.Env {
		if key == "" || strings.ContainsAny(key, "=\x00") {
			return fmt.Errorf("invalid environment variable name: %q", key)
		}
	}
	return nil
}

// String renders the script with its overrides the way a user would type it.
func (s Shell) String() string {
	if len(s.Env) == 0 {
		return s.Script
	}
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s ", k, s.Env[k])
	}
	b.WriteString(s.Script)
	return b.String()
}

// environ returns the inherited environment with the overrides appended.
// exec.Cmd keeps the last value for duplicate keys.
func (s Shell) environ() []string {
	env := os.Environ()
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+s.Env[k])
	}
	return env
}
