// Package registry owns the full set of port manifests and decides which of
// them a given configuration needs.
//
// Each port registers itself once at startup under a globally unique name.
// ResolveNeeded then computes the closure of requested ports plus their
// transitive dependencies, runs dependency flag propagation in discovery
// order, and returns a deterministic topological ordering for the driver to
// resolve. A dependency cycle or a reference to an unregistered port fails
// the whole pass before anything is fetched or built.
package registry
