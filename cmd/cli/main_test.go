package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A settings file with a syntax error is guaranteed to make app.NewApp
	// panic during the loading phase.
	invalidHCL := `
		USE_VORBIS =
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "settings.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0o600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"-cache-dir", filepath.Join(tempDir, "cache"), filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "critical startup error"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_UndeclaredOverride(t *testing.T) {
	t.Parallel()

	// An override for a setting no port declares is a fatal startup error.
	tempDir := t.TempDir()
	args := []string{"-cache-dir", filepath.Join(tempDir, "cache"), "-s", "USE_NONSENSE=1"}
	out := &bytes.Buffer{}

	err := run(out, args)
	require.Error(t, err)
	require.Contains(t, err.Error(), "critical startup error")
	require.Contains(t, err.Error(), "USE_NONSENSE")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	args := []string{"-h"}
	out := &bytes.Buffer{}

	err := run(out, args)
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	err := run(out, args)
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ListPorts(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	args := []string{"-cache-dir", filepath.Join(tempDir, "cache"), "-list", "-s", "USE_BZIP2=1", "-log-level", "error"}
	out := &bytes.Buffer{}

	err := run(out, args)
	require.NoError(t, err)

	output := out.String()
	require.Contains(t, output, "* bzip2 (USE_BZIP2=1; BSD license)")
	require.Contains(t, output, "  vorbis (USE_VORBIS=1; zlib license)")
}
