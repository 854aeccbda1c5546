package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Empty(t, cfg.ConfigPath)
	assert.Equal(t, ".portsmith-cache", cfg.CacheDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.List)
}

func TestParse_PositionalConfigPath(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, _, err := Parse([]string{"settings.hcl"}, out)
	require.NoError(t, err)
	assert.Equal(t, "settings.hcl", cfg.ConfigPath)
}

func TestParse_ConfigFlagWinsOverPositional(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, _, err := Parse([]string{"-config", "a.hcl", "b.hcl"}, out)
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.ConfigPath)
}

func TestParse_RepeatedOverrides(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, _, err := Parse([]string{"-s", "USE_VORBIS=1", "-s", "USE_GIFLIB=1"}, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"USE_VORBIS=1", "USE_GIFLIB=1"}, cfg.Overrides)
}

func TestParse_MalformedOverride(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"-s", "USE_VORBIS"}, out)
	require.Error(t, err)

	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "expected KEY=VALUE")
}

func TestParse_InvalidLogFormat(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"-log-format", "xml"}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-format")
}

func TestParse_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"-log-level", "verbose"}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-level")
}

func TestParse_ListAndClear(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, _, err := Parse([]string{"-list"}, out)
	require.NoError(t, err)
	assert.True(t, cfg.List)

	cfg, _, err = Parse([]string{"-clear", "vorbis"}, out)
	require.NoError(t, err)
	assert.Equal(t, "vorbis", cfg.ClearPort)
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, shouldExit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_UnknownFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"--not-a-flag"}, out)
	require.Error(t, err)

	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}
