// Package ogg ports the libogg container-format library.
package ogg

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
)

const (
	tag    = "version_1"
	sha512 = "929e8d6003c06ae09593021b83323c8f1f54532b67b8ba189f4aedce52c25dc182bac474de5392c46ad5b0dea5a24928e4ede1492d52f4dd5cd58eea9be4dba7"

	// FlagName is the setting that requests this port. Dependent ports
	// (vorbis) write it during dependency processing.
	FlagName = "USE_OGG"

	libName = "libogg.a"
)

// Port implements the registry.Port manifest for ogg.
type Port struct {
	registry.Base
}

// New returns the ogg port manifest.
func New() *Port { return &Port{} }

// Name implements registry.Port.
func (p *Port) Name() string { return "ogg" }

// Version implements registry.Port.
func (p *Port) Version() string { return tag }

// DeclareSettings implements registry.Port.
func (p *Port) DeclareSettings(s *settings.Store) {
	s.Declare(FlagName, cty.False)
}

// Needed implements registry.Port.
func (p *Port) Needed(s *settings.Store) (bool, error) {
	return s.Bool(FlagName)
}

// Resolve fetches and builds libogg.a, reusing the cache when possible. The
// public headers live under include/ogg and are installed as a subdirectory
// so consumers include <ogg/ogg.h>.
func (p *Port) Resolve(ctx context.Context, env *registry.Env) ([]cache.Artifact, error) {
	url := "https://github.com/emscripten-ports/ogg/archive/" + tag + ".zip"
	src, err := env.Fetcher.Fetch(ctx, url, "ogg/Ogg-"+tag, digest.Digest("sha512:"+sha512))
	if err != nil {
		return nil, err
	}

	key := cache.Key{Name: p.Name(), Version: tag}
	artifact, err := env.Cache.GetOrBuild(ctx, key, libName, func(ctx context.Context, out string) error {
		if err := env.Cache.InstallHeaderDir(filepath.Join(src, "include", "ogg")); err != nil {
			return fmt.Errorf("failed to install ogg headers: %w", err)
		}
		return env.Compiler.Compile(ctx, build.Job{
			Port:        p.Name(),
			SourceDir:   filepath.Join(src, "src"),
			IncludeDirs: []string{filepath.Join(src, "include"), env.Cache.IncludeRoot()},
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
	return env.Cache.Erase(ctx, cache.Key{Name: p.Name(), Version: tag})
}

// Describe implements registry.Port.
func (p *Port) Describe() string {
	return "ogg (USE_OGG=1; BSD license)"
}
