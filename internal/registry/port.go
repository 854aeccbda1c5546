package registry

import (
	"context"

	"github.com/vk/portsmith/internal/build"
	"github.com/vk/portsmith/internal/cache"
	"github.com/vk/portsmith/internal/fetch"
	"github.com/vk/portsmith/internal/settings"
)

// Env bundles the collaborators a port needs to resolve itself: the archive
// fetcher, the artifact cache, and the compiler. It is shared by every port
// in a resolution pass.
type Env struct {
	Fetcher  fetch.Fetcher
	Cache    *cache.Cache
	Compiler build.Compiler
}

// Port is the fixed operation set every port manifest implements. Optional
// hooks have no-op defaults via Base, so the registry and driver treat all
// ports uniformly.
type Port interface {
	// Name is the port's unique identifier within the registry.
	Name() string

	// Version is the upstream tag or version, half of the cache key.
	Version() string

	// DeclareSettings registers the configuration keys this port reads or
	// writes, with their defaults.
	DeclareSettings(s *settings.Store)

	// Needed reports whether the active configuration requests this port.
	// It is a pure predicate: no I/O, no writes.
	Needed(s *settings.Store) (bool, error)

	// Dependencies returns the names of ports that must be resolved before
	// this one. The result may depend on the configuration.
	Dependencies(s *settings.Store) ([]string, error)

	// ProcessDependencies writes any configuration flags this port's
	// dependencies rely on. The registry calls it as soon as the port joins
	// the needed closure, before any later predicate reads the store.
	ProcessDependencies(s *settings.Store) error

	// Resolve fetches, verifies, and builds (or reuses) this port's library,
	// returning its artifact handles.
	Resolve(ctx context.Context, env *Env) ([]cache.Artifact, error)

	// Clear erases this port's cached artifact so the next Resolve rebuilds.
	Clear(ctx context.Context, env *Env) error

	// Describe returns a one-line human-readable summary: name, enabling
	// flag, license.
	Describe() string

	// ExtraLinkArgs returns flags the consumer must pass at link time.
	ExtraLinkArgs(s *settings.Store) ([]string, error)
}

// Base provides no-op defaults for the optional Port hooks. Ports embed it
// and override only what they need.
type Base struct{}

// Dependencies returns no dependencies.
func (Base) Dependencies(*settings.Store) ([]string, error) { return nil, nil }

// ProcessDependencies writes nothing.
func (Base) ProcessDependencies(*settings.Store) error { return nil }

// ExtraLinkArgs returns no link flags.
func (Base) ExtraLinkArgs(*settings.Store) ([]string, error) { return nil, nil }

// DeclareSettings declares nothing.
func (Base) DeclareSettings(*settings.Store) {}
