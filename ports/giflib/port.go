// Package giflib ports the giflib GIF codec.
package giflib

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
	version = "5.2.1"
	sha512  = "4550e53c21cb1191a4581e363fc9d0610da53f7898ca8320f0d3ef6711e76bdda2609c2df15dc94c45e28bff8de441f1227ec2da7ea827cb3c0405af4faa4736"

	flagName = "USE_GIFLIB"
	libName  = "libgif.a"
)

// Port implements the registry.Port manifest for giflib.
type Port struct {
	registry.Base
}

// New returns the giflib port manifest.
func New() *Port { return &Port{} }

// Name implements registry.Port.
func (p *Port) Name() string { return "giflib" }

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

// Resolve fetches and builds libgif.a, reusing the cache when possible.
// giflib builds the whole source directory; its headers live at the source
// root.
func (p *Port) Resolve(ctx context.Context, env *registry.Env) ([]cache.Artifact, error) {
	url := fmt.Sprintf("https://storage.googleapis.com/webassembly/emscripten-ports/giflib-%s.tar.gz", version)
	src, err := env.Fetcher.Fetch(ctx, url, "giflib/giflib-"+version, digest.Digest("sha512:"+sha512))
	if err != nil {
		return nil, err
	}

	key := cache.Key{Name: p.Name(), Version: version}
	artifact, err := env.Cache.GetOrBuild(ctx, key, libName, func(ctx context.Context, out string) error {
		if err := env.Cache.InstallHeaders(src); err != nil {
			return fmt.Errorf("failed to install giflib headers: %w", err)
		}
		return env.Compiler.Compile(ctx, build.Job{
			Port:        p.Name(),
			SourceDir:   src,
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
	return "giflib (USE_GIFLIB=1; MIT license)"
}
