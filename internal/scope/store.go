// Package scope provides a partitioned key/value store for per-test resource
// handles. Values are namespaced by a composite key of (fixture identity,
// test identity) so concurrently running tests never observe each other's
// state. The store is the only channel between the fixture's lifecycle hooks
// and its parameter resolution; neither side needs to know how the other
// produced or consumes a handle.
package scope

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNotFound indicates that no value has been stored under the requested
// namespace and name. During a test run this means resolution ran before the
// pre-test hook populated the scope, or after teardown dropped it.
var ErrNotFound = errors.New("no value stored in test scope")

// Key identifies one test invocation's namespace. Fixture is an identifier
// unique to the owning fixture instance; Test is the test name as reported
// by the runner. Two keys are the same namespace iff both fields match.
type Key struct {
	Fixture string
	Test    string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Fixture, k.Test)
}

// Store is a concurrency-safe mapping from Key to a set of named values.
// Entries written under one key are invisible to operations under any other
// key. Repeated reads of the same entry return the identical stored value.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]map[string]any
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[Key]map[string]any)}
}

// Put stores value under (key, name), replacing any previous value with the
// same name in the same namespace.
func (s *Store) Put(key Key, name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.entries[key]
	if !ok {
		ns = make(map[string]any)
		s.entries[key] = ns
	}
	ns[name] = value
}

// Lookup returns the value stored under (key, name), reporting whether one
// exists.
func (s *Store) Lookup(key Key, name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	v, ok := ns[name]
	return v, ok
}

// Drop removes every value stored under key. Subsequent lookups for that
// namespace fail until something is stored again.
func (s *Store) Drop(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Get retrieves the value stored under (key, name) and asserts it to T.
// It returns ErrNotFound when nothing is stored and an error naming both
// types on a mismatch; it never fabricates a zero value for a missing entry.
func Get[T any](s *Store, key Key, name string) (T, error) {
	var zero T

	v, ok := s.Lookup(key, name)
	if !ok {
		return zero, fmt.Errorf("%w: %q in namespace %s", ErrNotFound, name, key)
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("value %q in namespace %s has type %T, want %s", name, key, v, reflect.TypeFor[T]())
	}
	return typed, nil
}
