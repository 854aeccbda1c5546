// Package driver walks a resolved port sequence and turns it into built
// artifacts. Resolution is strictly sequential: a port's dependency
// processing may have written configuration flags that a later port's
// predicates and build read, so no two ports ever resolve concurrently
// against the same settings store or cache.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/portsmith/internal/build"
	"github.com/vk/portsmith/internal/cache"
	"github.com/vk/portsmith/internal/ctxlog"
	"github.com/vk/portsmith/internal/fetch"
	"github.com/vk/portsmith/internal/registry"
	"github.com/vk/portsmith/internal/settings"
)

// Result aggregates the outcome of one resolution pass: the ordered artifact
// handles for the link step, the extra link flags the active ports
// contribute, and their human-readable summaries.
type Result struct {
	Artifacts []cache.Artifact
	LinkArgs  []string
	Summary   []string
}

// Run resolves every needed port in dependency order. The first failure
// aborts the pass; a half-built dependency graph has no useful partial state,
// so nothing is retried or skipped.
func Run(ctx context.Context, reg *registry.Registry, s *settings.Store, env *registry.Env) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	ports, err := reg.ResolveNeeded(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("port resolution failed: %w", err)
	}
	if len(ports) == 0 {
		logger.Info("No ports enabled, nothing to build.")
		return &Result{}, nil
	}

	result := &Result{}
	for _, p := range ports {
		logger.Info("Resolving port.", "name", p.Name(), "version", p.Version())

		artifacts, err := p.Resolve(ctx, env)
		if err != nil {
			return nil, fmt.Errorf("port %q: %s stage failed: %w", p.Name(), stageOf(err), err)
		}
		result.Artifacts = append(result.Artifacts, artifacts...)

		linkArgs, err := p.ExtraLinkArgs(s)
		if err != nil {
			return nil, fmt.Errorf("port %q: failed to compute link args: %w", p.Name(), err)
		}
		result.LinkArgs = append(result.LinkArgs, linkArgs...)
		result.Summary = append(result.Summary, p.Describe())
	}

	logger.Info("All ports resolved.", "ports", len(ports), "artifacts", len(result.Artifacts))
	return result, nil
}

// stageOf classifies a resolve failure for the user-facing error message.
func stageOf(err error) string {
	var integrity *fetch.IntegrityError
	if errors.As(err, &integrity) {
		return "fetch"
	}
	var buildErr *build.Error
	if errors.As(err, &buildErr) {
		return "build"
	}
	return "resolve"
}
