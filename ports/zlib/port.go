// Package zlib ports the zlib compression library.
package zlib

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
	version = "1.2.13"
	sha256  = "b3a24de97a8fdbc835b9833169501030b8977031bcb54b3b3ac13740f846ab30"

	flagName = "USE_ZLIB"
	libName  = "libz.a"
)

// srcs is the library source list; the zlib tree also carries contrib/ and
// example sources.
var srcs = []string{
	"adler32.c", "compress.c", "crc32.c", "deflate.c", "gzclose.c",
	"gzlib.c", "gzread.c", "gzwrite.c", "infback.c", "inffast.c",
	"inflate.c", "inftrees.c", "trees.c", "uncompr.c", "zutil.c",
}

// Port implements the registry.Port manifest for zlib.
type Port struct {
	registry.Base
}

// New returns the zlib port manifest.
func New() *Port { return &Port{} }

// Name implements registry.Port.
func (p *Port) Name() string { return "zlib" }

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

// Resolve fetches and builds libz.a, reusing the cache when possible.
func (p *Port) Resolve(ctx context.Context, env *registry.Env) ([]cache.Artifact, error) {
	url := fmt.Sprintf("https://zlib.net/zlib-%s.tar.gz", version)
	src, err := env.Fetcher.Fetch(ctx, url, "zlib/zlib-"+version, digest.Digest("sha256:"+sha256))
	if err != nil {
		return nil, err
	}

	key := cache.Key{Name: p.Name(), Version: version}
	artifact, err := env.Cache.GetOrBuild(ctx, key, libName, func(ctx context.Context, out string) error {
		if err := env.Cache.InstallHeaders(src); err != nil {
			return fmt.Errorf("failed to install zlib headers: %w", err)
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
	return "zlib (USE_ZLIB=1; zlib license)"
}
