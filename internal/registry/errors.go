package registry

import (
	"fmt"
	"strings"
)

// UnknownPortError reports a manifest that declares a dependency on a port
// not present in the registry.
type UnknownPortError struct {
	Port       string
	DeclaredBy string
}

// Error implements the error interface for UnknownPortError.
func (e *UnknownPortError) Error() string {
	if e.DeclaredBy == "" {
		return fmt.Sprintf("unknown port %q", e.Port)
	}
	return fmt.Sprintf("port %q declares a dependency on unknown port %q", e.DeclaredBy, e.Port)
}

// DependencyCycleError reports a cycle in the port dependency graph. Cycle
// holds the ports involved, in dependency order, with the first repeated at
// the end.
type DependencyCycleError struct {
	Cycle []string
}

// Error implements the error interface for DependencyCycleError.
func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle among ports: %s", strings.Join(e.Cycle, " -> "))
}
