package app

import (
	"context"
	"fmt"

	"github.com/vk/portsmith/internal/ctxlog"
	"github.com/vk/portsmith/internal/driver"
)

// Run executes the requested action: listing ports, clearing one port's
// cached artifact, or the default resolve-and-build pass.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	switch {
	case a.config.List:
		return a.listPorts(ctx)
	case a.config.ClearPort != "":
		return a.clearPort(ctx, a.config.ClearPort)
	}
	return a.buildPorts(ctx)
}

// listPorts prints every registered port's one-line summary, marking the ones
// the active configuration enables.
func (a *App) listPorts(ctx context.Context) error {
	for _, p := range a.registry.Ports() {
		needed, err := p.Needed(a.store)
		if err != nil {
			return fmt.Errorf("port %q: %w", p.Name(), err)
		}
		marker := " "
		if needed {
			marker = "*"
		}
		fmt.Fprintf(a.outW, "%s %s\n", marker, p.Describe())
	}
	return nil
}

// clearPort erases one port's cached artifact, forcing a rebuild on the next run.
func (a *App) clearPort(ctx context.Context, name string) error {
	p, ok := a.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("cannot clear unknown port %q", name)
	}
	if err := p.Clear(ctx, a.env); err != nil {
		return fmt.Errorf("failed to clear port %q: %w", name, err)
	}
	fmt.Fprintf(a.outW, "cleared cached artifact for port %s-%s\n", p.Name(), p.Version())
	return nil
}

// buildPorts runs the full resolution pass and reports the artifacts and link
// flags the consumer needs.
func (a *App) buildPorts(ctx context.Context) error {
	result, err := driver.Run(ctx, a.registry, a.store, a.env)
	if err != nil {
		return err
	}

	for _, line := range result.Summary {
		fmt.Fprintf(a.outW, "port enabled: %s\n", line)
	}
	for _, artifact := range result.Artifacts {
		fmt.Fprintf(a.outW, "artifact: %s\n", artifact.Path)
	}
	if len(result.LinkArgs) > 0 {
		fmt.Fprintf(a.outW, "extra link args: %v\n", result.LinkArgs)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
