package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/portsmith/internal/cache"
	"github.com/vk/portsmith/internal/registry"
	"github.com/vk/portsmith/internal/settings"
)

// Recorder captures the order in which fake ports were resolved or cleared
// during a test.
type Recorder struct {
	mu       sync.Mutex
	Resolved []string
	Cleared  []string
}

func (r *Recorder) recordResolve(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Resolved = append(r.Resolved, name)
}

func (r *Recorder) recordClear(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Cleared = append(r.Cleared, name)
}

// FakePort is a configurable registry.Port for registry and driver tests.
// Zero-value hooks behave like no-ops.
type FakePort struct {
	registry.Base

	PortName    string
	PortVersion string

	// Flag is the enabling setting, declared with a false default. A port
	// with no flag is never independently needed.
	Flag string
	// Deps are the dependency port names.
	Deps []string
	// SetsFlags lists settings turned on by ProcessDependencies.
	SetsFlags []string
	// Links are the port's extra link args.
	Links []string
	// ResolveErr makes Resolve fail.
	ResolveErr error
	// Rec, when set, records resolve/clear calls.
	Rec *Recorder
}

// Name implements registry.Port.
func (p *FakePort) Name() string { return p.PortName }

// Version implements registry.Port.
func (p *FakePort) Version() string {
	if p.PortVersion == "" {
		return "0.0.1"
	}
	return p.PortVersion
}

// DeclareSettings implements registry.Port.
func (p *FakePort) DeclareSettings(s *settings.Store) {
	if p.Flag != "" {
		s.Declare(p.Flag, cty.False)
	}
}

// Needed implements registry.Port.
func (p *FakePort) Needed(s *settings.Store) (bool, error) {
	if p.Flag == "" {
		return false, nil
	}
	return s.Bool(p.Flag)
}

// Dependencies implements registry.Port.
func (p *FakePort) Dependencies(*settings.Store) ([]string, error) {
	return p.Deps, nil
}

// ProcessDependencies implements registry.Port.
func (p *FakePort) ProcessDependencies(s *settings.Store) error {
	for _, flag := range p.SetsFlags {
		if err := s.Set(flag, cty.True); err != nil {
			return err
		}
	}
	return nil
}

// Resolve implements registry.Port.
func (p *FakePort) Resolve(ctx context.Context, env *registry.Env) ([]cache.Artifact, error) {
	if p.Rec != nil {
		p.Rec.recordResolve(p.PortName)
	}
	if p.ResolveErr != nil {
		return nil, p.ResolveErr
	}
	key := cache.Key{Name: p.PortName, Version: p.Version()}
	return []cache.Artifact{{Key: key, Path: "/fake/lib/" + key.String() + ".a"}}, nil
}

// Clear implements registry.Port.
func (p *FakePort) Clear(ctx context.Context, env *registry.Env) error {
	if p.Rec != nil {
		p.Rec.recordClear(p.PortName)
	}
	return nil
}

// Describe implements registry.Port.
func (p *FakePort) Describe() string {
	return fmt.Sprintf("%s (%s=1; test license)", p.PortName, p.Flag)
}

// ExtraLinkArgs implements registry.Port.
func (p *FakePort) ExtraLinkArgs(*settings.Store) ([]string, error) {
	return p.Links, nil
}
