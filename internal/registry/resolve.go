package registry

import (
	"context"
	"fmt"

	"github.com/vk/portsmith/internal/ctxlog"
	"github.com/vk/portsmith/internal/settings"
)

// ResolveNeeded computes the minimal closure of ports the configuration
// requires and returns it in topological order: every dependency precedes its
// dependents, and ties among independent ports break by registration order so
// the same configuration always resolves to the same sequence.
//
// A port joining the closure has its ProcessDependencies hook run
// immediately, whether it was requested directly or pulled in transitively,
// so the flags it writes are visible to every predicate evaluated afterwards.
func (r *Registry) ResolveNeeded(ctx context.Context, s *settings.Store) ([]Port, error) {
	logger := ctxlog.FromContext(ctx)

	closure := make(map[string]bool)
	deps := make(map[string][]string)

	var add func(name, declaredBy string) error
	add = func(name, declaredBy string) error {
		if closure[name] {
			return nil
		}
		p, ok := r.ports[name]
		if !ok {
			return &UnknownPortError{Port: name, DeclaredBy: declaredBy}
		}
		closure[name] = true

		if err := p.ProcessDependencies(s); err != nil {
			return fmt.Errorf("port %q: failed to process dependencies: %w", name, err)
		}
		names, err := p.Dependencies(s)
		if err != nil {
			return fmt.Errorf("port %q: failed to evaluate dependencies: %w", name, err)
		}
		deps[name] = names

		for _, dep := range names {
			if err := add(dep, name); err != nil {
				return err
			}
		}
		return nil
	}

	// Flags written while one port joins the closure may enable another port
	// registered earlier in the sweep, so repeat until stable.
	for {
		changed := false
		for _, name := range r.order {
			if closure[name] {
				continue
			}
			needed, err := r.ports[name].Needed(s)
			if err != nil {
				return nil, fmt.Errorf("port %q: %w", name, err)
			}
			if !needed {
				continue
			}
			if err := add(name, ""); err != nil {
				return nil, err
			}
			changed = true
		}
		if !changed {
			break
		}
	}

	ordered, err := r.topoSort(closure, deps)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(ordered))
	for i, p := range ordered {
		names[i] = p.Name()
	}
	logger.Debug("Port resolution complete.", "count", len(ordered), "order", names)
	return ordered, nil
}

// topoSort orders the closure with Kahn's algorithm. The next ready port is
// always the earliest-registered one, which makes the order deterministic.
func (r *Registry) topoSort(closure map[string]bool, deps map[string][]string) ([]Port, error) {
	indegree := make(map[string]int, len(closure))
	for name := range closure {
		indegree[name] = len(deps[name])
	}

	done := make(map[string]bool, len(closure))
	ordered := make([]Port, 0, len(closure))

	for len(ordered) < len(closure) {
		picked := ""
		for _, name := range r.order {
			if closure[name] && !done[name] && indegree[name] == 0 {
				picked = name
				break
			}
		}
		if picked == "" {
			return nil, &DependencyCycleError{Cycle: r.findCycle(closure, done, deps)}
		}

		done[picked] = true
		ordered = append(ordered, r.ports[picked])

		for name := range closure {
			if done[name] {
				continue
			}
			for _, dep := range deps[name] {
				if dep == picked {
					indegree[name]--
				}
			}
		}
	}
	return ordered, nil
}

// findCycle names one cycle among the unfinished closure members using a
// depth-first search with temporary and permanent marks.
func (r *Registry) findCycle(closure, done map[string]bool, deps map[string][]string) []string {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var stack []string

	var visit func(name string) []string
	visit = func(name string) []string {
		if permanent[name] {
			return nil
		}
		if temporary[name] {
			// Trim the stack down to the first occurrence of name to report
			// only the loop itself.
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			return append(append([]string{}, stack[start:]...), name)
		}

		temporary[name] = true
		stack = append(stack, name)
		for _, dep := range deps[name] {
			if !closure[dep] {
				continue
			}
			if cycle := visit(dep); cycle != nil {
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		delete(temporary, name)
		permanent[name] = true
		return nil
	}

	for _, name := range r.order {
		if closure[name] && !done[name] {
			if cycle := visit(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
