package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("/* c */"), 0o644))
	}
}

func TestCollectSources_ExplicitList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcs, err := collectSources(Job{
		Port:      "bzip2",
		SourceDir: dir,
		Srcs:      []string{"huffman.c", "blocksort.c"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "blocksort.c"),
		filepath.Join(dir, "huffman.c"),
	}, srcs, "explicit sources are trusted as-is but ordered deterministically")
}

func TestCollectSources_ScansDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSources(t, dir, "dgif_lib.c", "egif_lib.c", "gif_lib.h")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tests"), 0o755))

	srcs, err := collectSources(Job{Port: "giflib", SourceDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "dgif_lib.c"),
		filepath.Join(dir, "egif_lib.c"),
	}, srcs, "only .c files directly under the source dir are compiled")
}

func TestCollectSources_AppliesExcludes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSources(t, dir, "analysis.c", "psytune.c", "barkmel.c", "tone.c", "misc.c", "synthesis.c")

	srcs, err := collectSources(Job{
		Port:         "vorbis",
		SourceDir:    dir,
		ExcludeFiles: []string{"psytune", "barkmel", "tone", "misc"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "analysis.c"),
		filepath.Join(dir, "synthesis.c"),
	}, srcs)
}

func TestCollectSources_MissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := collectSources(Job{Port: "ghost", SourceDir: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `port "ghost"`)
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := &Error{Port: "bzip2", Command: "cc -c blocksort.c", ExitCode: 1, Output: "blocksort.c:1: error\n"}
	assert.Contains(t, err.Error(), `port "bzip2"`)
	assert.Contains(t, err.Error(), "exited with code 1")
	assert.Contains(t, err.Error(), "blocksort.c:1: error")
}
