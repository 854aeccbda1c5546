// Package vorbis ports the libvorbis audio codec. It depends on the ogg port
// and enables it for any configuration that requests vorbis.
package vorbis

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/portsmith/internal/build"
	"github.com/vk/portsmith/internal/cache"
	"github.com/vk/portsmith/internal/registry"
	"github.com/vk/portsmith/internal/settings"
	"github.com/vk/portsmith/ports/ogg"
)

const (
	tag    = "version_1"
	sha512 = "99bee75beb662f8520bbb18ad6dbf8590d30eb3a7360899f0ac4764ca72fe8013da37c9df21e525f9d2dc5632827d4b4cea558cbc938e7fbed0c41a29a7a2dc5"

	flagName = "USE_VORBIS"
	libName  = "libvorbis.a"
)

// excludeFiles drops the psychoacoustic tuning and tone-generation tools that
// ship next to the library sources.
var excludeFiles = []string{"psytune", "barkmel", "tone", "misc"}

// Port implements the registry.Port manifest for vorbis.
type Port struct {
	registry.Base
}

// New returns the vorbis port manifest.
func New() *Port { return &Port{} }

// Name implements registry.Port.
func (p *Port) Name() string { return "vorbis" }

// Version implements registry.Port.
func (p *Port) Version() string { return tag }

// DeclareSettings implements registry.Port.
func (p *Port) DeclareSettings(s *settings.Store) {
	s.Declare(flagName, cty.False)
}

// Needed implements registry.Port.
func (p *Port) Needed(s *settings.Store) (bool, error) {
	return s.Bool(flagName)
}

// Dependencies implements registry.Port.
func (p *Port) Dependencies(*settings.Store) ([]string, error) {
	return []string{"ogg"}, nil
}

// ProcessDependencies turns on the ogg flag before ogg's own predicates run,
// so a configuration that only asks for vorbis still builds ogg.
func (p *Port) ProcessDependencies(s *settings.Store) error {
	return s.Set(ogg.FlagName, cty.True)
}

// Resolve fetches and builds libvorbis.a, reusing the cache when possible.
func (p *Port) Resolve(ctx context.Context, env *registry.Env) ([]cache.Artifact, error) {
	url := "https://github.com/emscripten-ports/vorbis/archive/" + tag + ".zip"
	src, err := env.Fetcher.Fetch(ctx, url, "vorbis/Vorbis-"+tag, digest.Digest("sha512:"+sha512))
	if err != nil {
		return nil, err
	}

	key := cache.Key{Name: p.Name(), Version: tag}
	artifact, err := env.Cache.GetOrBuild(ctx, key, libName, func(ctx context.Context, out string) error {
		if err := env.Cache.InstallHeaderDir(filepath.Join(src, "include", "vorbis")); err != nil {
			return fmt.Errorf("failed to install vorbis headers: %w", err)
		}
		return env.Compiler.Compile(ctx, build.Job{
			Port:         p.Name(),
			SourceDir:    filepath.Join(src, "lib"),
			ExcludeFiles: excludeFiles,
			IncludeDirs:  []string{filepath.Join(src, "include"), env.Cache.IncludeRoot()},
			Flags:        []string{"-DUSE_OGG=1"},
			Output:       out,
		})
	})
	if err != nil {
		return nil, err
	}
	return []cache.Artifact{artifact}, nil
}

// Clear implements registry.Port.
func (p *Port) Clear(ctx context.Context, env *registry.Env) error {
	return env.Cache.Erase(ctx, cache.Key{Name: p.Name(), Version: tag})
}

// Describe implements registry.Port.
func (p *Port) Describe() string {
	return "vorbis (USE_VORBIS=1; zlib license)"
}

// ExtraLinkArgs implements registry.Port; the codec uses libm.
func (p *Port) ExtraLinkArgs(*settings.Store) ([]string, error) {
	return []string{"-lm"}, nil
}
