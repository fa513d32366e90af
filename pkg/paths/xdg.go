// Package paths resolves where statusbar keeps its files.
//
// Resolution order:
// 1. STATUSBAR_HOME (portable root) → $STATUSBAR_HOME/{config,state,run}
// 2. XDG env vars → $XDG_*_HOME/statusbar
// 3. Platform defaults → ~/.config/statusbar, ~/.local/state/statusbar
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	appName = "statusbar"
	homeEnv = "STATUSBAR_HOME"
)

// base returns $STATUSBAR_HOME/<portable>, $<xdgEnv>/statusbar or
// ~/<fallback>/statusbar, in that order.
func base(portable, xdgEnv string, fallback ...string) string {
	if home := os.Getenv(homeEnv); home != "" {
		return filepath.Join(home, portable)
	}
	if dir := os.Getenv(xdgEnv); dir != "" {
		return filepath.Join(dir, appName)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	parts := append([]string{homeDir}, fallback...)
	return filepath.Join(append(parts, appName)...)
}

// ConfigDir returns the directory searched for config.toml / config.yml.
func ConfigDir() string {
	return base("config", "XDG_CONFIG_HOME", ".config")
}

// StateDir returns the directory for the pid file and logs.
func StateDir() string {
	return base("state", "XDG_STATE_HOME", ".local", "state")
}

// RuntimeDir returns the directory for the daemon socket.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir (macOS).
func RuntimeDir() string {
	if home := os.Getenv(homeEnv); home != "" {
		return filepath.Join(home, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return StateDir()
}

// LogDir holds one log file per component and day.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// LogFile returns the log file of component for the day of t.
func LogFile(component string, t time.Time) string {
	return filepath.Join(LogDir(), fmt.Sprintf("%s-%s.log", component, t.Format("2006-01-02")))
}

// SocketPath returns the path to the daemon unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "statusbard.sock")
}

// PidFilePath returns the path to the daemon PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "statusbard.pid")
}

// EnsureDirs creates every statusbar directory that does not exist yet.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), LogDir(), RuntimeDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
