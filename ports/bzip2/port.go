// Package bzip2 ports the bzip2 compression library.
package bzip2

import (
	"context"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/portsmith/internal/build"
	"github.com/vk/portsmith/internal/cache"
	"github.com/vk/portsmith/internal/registry"
	"github.com/vk/portsmith/internal/settings"
)

const (
	version = "1.0.6"
	sha512  = "512cbfde5144067f677496452f3335e9368fd5d7564899cb49e77847b9ae7dca598218276637cbf5ec524523be1e8ace4ad36a148ef7f4badf3f6d5a002a4bb2"

	flagName = "USE_BZIP2"
	libName  = "libbz2.a"
)

// srcs is the explicit source list; the bzip2 tree also ships standalone
// tool sources that must not go into the library.
var srcs = []string{
	"blocksort.c", "compress.c", "decompress.c", "huffman.c",
	"randtable.c", "bzlib.c", "crctable.c",
}

// Port implements the registry.Port manifest for bzip2.
type Port struct {
	registry.Base
}

// New returns the bzip2 port manifest.
func New() *Port { return &Port{} }

// Name implements registry.Port.
func (p *Port) Name() string { return "bzip2" }

// Version implements registry.Port.
func (p *Port) Version() string { return version }

// DeclareSettings implements registry.Port.
func (p *Port) DeclareSettings(s *settings.Store) {
	s.Declare(flagName, cty.False)
}

// Needed implements registry.Port.
func (p *Port) Needed(s *settings.Store) (bool, error) {
	return s.Bool(flagName)
}

// Resolve fetches and builds libbz2.a, reusing the cache when possible.
func (p *Port) Resolve(ctx context.Context, env *registry.Env) ([]cache.Artifact, error) {
	url := "https://github.com/emscripten-ports/bzip2/archive/" + version + ".zip"
	src, err := env.Fetcher.Fetch(ctx, url, "bzip2/bzip2-"+version, digest.Digest("sha512:"+sha512))
	if err != nil {
		return nil, err
	}

	key := cache.Key{Name: p.Name(), Version: version}
	artifact, err := env.Cache.GetOrBuild(ctx, key, libName, func(ctx context.Context, out string) error {
		if err := env.Cache.InstallHeaders(src); err != nil {
			return fmt.Errorf("failed to install bzip2 headers: %w", err)
		}
		return env.Compiler.Compile(ctx, build.Job{
			Port:        p.Name(),
			SourceDir:   src,
			Srcs:        srcs,
			IncludeDirs: []string{env.Cache.IncludeRoot()},
			Output:      out,
		})
	})
	if err != nil {
		return nil, err
	}
	return []cache.Artifact{artifact}, nil
}

// Clear implements registry.Port.
func (p *Port) Clear(ctx context.Context, env *registry.Env) error {
	return env.Cache.Erase(ctx, cache.Key{Name: p.Name(), Version: version})
}

// Describe implements registry.Port.
func (p *Port) Describe() string {
	return "bzip2 (USE_BZIP2=1; BSD license)"
}
