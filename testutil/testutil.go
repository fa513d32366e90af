// Package testutil holds helpers shared by package tests.
package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireCommand skips the test if name is not on PATH.
func RequireCommand(t *testing.T, name string) {
	t.Helper()

	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

// SetHome points every statusbar directory at a fresh temporary root and
// clears variables that would leak the developer's own setup into a test.
func SetHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("STATUSBAR_HOME", home)
	t.Setenv("STATUSBAR_CONFIG", "")
	t.Setenv("STATUSBAR_THEME", "")
	t.Setenv("STATUSBAR_LOG_LEVEL", "")
	return home
}

// WriteConfig writes content to dir/name and returns the path.
func WriteConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// FakeCommand installs an executable shell script called name in a
// temporary directory placed first on PATH.
func FakeCommand(t *testing.T, name, body string) string {
	t.Helper()
	RequireCommand(t, "sh")

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return path
}

// RandomString generates a random string of the specified length
func RandomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}
