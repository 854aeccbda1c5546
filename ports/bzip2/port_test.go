package bzip2_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/portsmith/internal/cache"
	"github.com/vk/portsmith/internal/registry"
	"github.com/vk/portsmith/internal/settings"
	"github.com/vk/portsmith/internal/testutil"
	"github.com/vk/portsmith/ports/bzip2"
)

func TestResolve_CompilesExplicitSourceList(t *testing.T) {
	t.Parallel()

	fetcher := &testutil.StubFetcher{Dir: t.TempDir()}
	compiler := &testutil.StubCompiler{}
	env := &registry.Env{
		Fetcher:  fetcher,
		Cache:    cache.New(t.TempDir()),
		Compiler: compiler,
	}

	p := bzip2.New()
	artifacts, err := p.Resolve(context.Background(), env)
	require.NoError(t, err)

	require.Len(t, artifacts, 1)
	assert.Contains(t, artifacts[0].Path, "libbz2.a")

	require.Equal(t, 1, compiler.JobCount())
	job := compiler.Jobs[0]
	assert.Contains(t, job.Srcs, "blocksort.c")
	assert.Contains(t, job.Srcs, "huffman.c")
	assert.Len(t, job.Srcs, 7, "the bzip2 library builds exactly its seven sources")
}

func TestManifestBasics(t *testing.T) {
	t.Parallel()

	p := bzip2.New()
	s := settings.New()
	p.DeclareSettings(s)

	assert.Equal(t, "bzip2", p.Name())
	assert.Equal(t, "1.0.6", p.Version())
	assert.Equal(t, "bzip2 (USE_BZIP2=1; BSD license)", p.Describe())

	deps, err := p.Dependencies(s)
	require.NoError(t, err)
	assert.Empty(t, deps)

	args, err := p.ExtraLinkArgs(s)
	require.NoError(t, err)
	assert.Empty(t, args)
}
