package vorbis_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/portsmith/internal/cache"
	"github.com/vk/portsmith/internal/registry"
	"github.com/vk/portsmith/internal/settings"
	"github.com/vk/portsmith/internal/testutil"
	"github.com/vk/portsmith/ports/ogg"
	"github.com/vk/portsmith/ports/vorbis"
)

func newStore(t *testing.T) *settings.Store {
	t.Helper()
	s := settings.New()
	ogg.New().DeclareSettings(s)
	vorbis.New().DeclareSettings(s)
	return s
}

func TestNeeded(t *testing.T) {
	t.Parallel()

	p := vorbis.New()
	s := newStore(t)

	needed, err := p.Needed(s)
	require.NoError(t, err)
	assert.False(t, needed, "vorbis is off by default")

	require.NoError(t, s.Set("USE_VORBIS", cty.True))
	needed, err = p.Needed(s)
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestDependencies(t *testing.T) {
	t.Parallel()

	deps, err := vorbis.New().Dependencies(newStore(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"ogg"}, deps)
}

func TestProcessDependencies_EnablesOgg(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	require.NoError(t, vorbis.New().ProcessDependencies(s))

	enabled, err := s.Bool(ogg.FlagName)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "vorbis (USE_VORBIS=1; zlib license)", vorbis.New().Describe())
}

func TestExtraLinkArgs(t *testing.T) {
	t.Parallel()

	args, err := vorbis.New().ExtraLinkArgs(newStore(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"-lm"}, args)
}

func TestResolve_BuildsLibAndInstallsHeaders(t *testing.T) {
	t.Parallel()

	fetcher := &testutil.StubFetcher{Dir: t.TempDir()}
	compiler := &testutil.StubCompiler{}
	env := &registry.Env{
		Fetcher:  fetcher,
		Cache:    cache.New(t.TempDir()),
		Compiler: compiler,
	}

	srcRoot := filepath.Join(fetcher.Dir, "vorbis", "Vorbis-version_1")
	require.NoError(t, os.MkdirAll(filepath.Join(srcRoot, "include", "vorbis"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(srcRoot, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "include", "vorbis", "codec.h"), []byte("/* h */"), 0o644))

	p := vorbis.New()
	artifacts, err := p.Resolve(context.Background(), env)
	require.NoError(t, err)

	require.Len(t, artifacts, 1)
	assert.Equal(t, cache.Key{Name: "vorbis", Version: "version_1"}, artifacts[0].Key)
	assert.Contains(t, artifacts[0].Path, "libvorbis.a")
	assert.FileExists(t, artifacts[0].Path)

	require.Equal(t, 1, compiler.JobCount())
	job := compiler.Jobs[0]
	assert.Equal(t, filepath.Join(srcRoot, "lib"), job.SourceDir)
	assert.Equal(t, []string{"psytune", "barkmel", "tone", "misc"}, job.ExcludeFiles)
	assert.Contains(t, job.Flags, "-DUSE_OGG=1")

	assert.FileExists(t, filepath.Join(env.Cache.IncludeRoot(), "vorbis", "codec.h"))

	// A second resolve reuses the cache without compiling again.
	_, err = p.Resolve(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 1, compiler.JobCount())

	// Clearing forces the next resolve to rebuild.
	require.NoError(t, p.Clear(context.Background(), env))
	_, err = p.Resolve(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.JobCount())
}
