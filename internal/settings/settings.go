// Package settings holds the shared build configuration read by every port's
// enabling predicate and written by dependency processing. It replaces the
// ambient-global pattern with an explicit store passed by reference: writes
// made while a dependency is processed are visible to every port resolved
// after it.
package settings

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ConfigError reports access to a configuration key that was never declared.
type ConfigError struct {
	Key string
	Op  string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("settings: %s of undeclared key %q", e.Op, e.Key)
}

// Store is the mutable set of typed configuration flags. Every key must be
// declared with a default before it can be read or written. All methods are
// safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	vals map[string]cty.Value
	defs map[string]cty.Value
}

// New creates an empty Store with no declared keys.
func New() *Store {
	return &Store{
		vals: make(map[string]cty.Value),
		defs: make(map[string]cty.Value),
	}
}

// Declare registers a key with its default value. Declaring the same key
// twice is a programmer error and panics, mirroring duplicate handler
// registration elsewhere.
func (s *Store) Declare(key string, def cty.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.defs[key]; exists {
		panic(fmt.Sprintf("settings: key %q already declared", key))
	}
	s.defs[key] = def
	s.vals[key] = def
}

// Declared reports whether the key has been declared.
func (s *Store) Declared(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.defs[key]
	return ok
}

// Set assigns a value to a declared key. The value is converted to the type
// of the key's default, so a port setting a boolean flag cannot silently turn
// it into a string.
func (s *Store) Set(key string, v cty.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.defs[key]
	if !ok {
		return &ConfigError{Key: key, Op: "write"}
	}

	converted, err := convert.Convert(v, def.Type())
	if err != nil {
		return fmt.Errorf("settings: cannot assign %s value to key %q (%s): %w",
			v.Type().FriendlyName(), key, def.Type().FriendlyName(), err)
	}
	s.vals[key] = converted
	return nil
}

// Get returns the raw value of a declared key.
func (s *Store) Get(key string) (cty.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vals[key]
	if !ok {
		return cty.NilVal, &ConfigError{Key: key, Op: "read"}
	}
	return v, nil
}

// Bool reads a key as a boolean.
func (s *Store) Bool(key string) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	converted, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("settings: key %q is not a bool: %w", key, err)
	}
	return converted.True(), nil
}

// String reads a key as a string.
func (s *Store) String(key string) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return "", err
	}
	converted, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("settings: key %q is not a string: %w", key, err)
	}
	return converted.AsString(), nil
}

// Values returns a snapshot copy of every declared key and its current value.
// The copy is safe to hand to an HCL evaluation context.
func (s *Store) Values() map[string]cty.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]cty.Value, len(s.vals))
	for k, v := range s.vals {
		out[k] = v
	}
	return out
}

// Keys returns all declared keys in lexical order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.defs))
	for k := range s.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyOverride parses a single KEY=VALUE override, as passed on the command
// line, and assigns it. The raw value is coerced from its textual form into
// the key's declared type ("1" and "true" both satisfy a boolean flag).
func (s *Store) ApplyOverride(raw string) error {
	key, val, found := strings.Cut(raw, "=")
	if !found || key == "" {
		return fmt.Errorf("settings: malformed override %q, expected KEY=VALUE", raw)
	}
	return s.Set(key, parseScalar(val))
}

// parseScalar turns a command-line literal into the loosest matching cty
// value; Set then converts it to the declared type.
func parseScalar(val string) cty.Value {
	switch strings.ToLower(val) {
	case "true":
		return cty.True
	case "false":
		return cty.False
	case "1":
		return cty.True
	case "0":
		return cty.False
	}
	return cty.StringVal(val)
}
