// Package identity provides an identity map: at most one in-memory instance
// per primary key.
//
// A Map is owned by whoever creates it and is handed to the repositories
// that should share it. It is not safe for concurrent use, callers that
// share one across goroutines need to serialize access themselves.
package identity

import (
	"cmp"
	"maps"
	"slices"
)

type Map[K cmp.Ordered, V any] struct {
	entries map[K]V
}

func NewMap[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{entries: make(map[K]V)}
}

// Get returns the instance registered under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Put registers v under key, replacing whatever was there.
func (m *Map[K, V]) Put(key K, v V) {
	if m.entries == nil {
		m.entries = make(map[K]V)
	}

	m.entries[key] = v
}

// Delete removes key and reports whether it was registered.
func (m *Map[K, V]) Delete(key K) bool {
	_, ok := m.entries[key]
	delete(m.entries, key)

	return ok
}

func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// Keys returns the registered keys in ascending order.
func (m *Map[K, V]) Keys() []K {
	return slices.Sorted(maps.Keys(m.entries))
}

// Clear drops every entry, it's the end of a session.
func (m *Map[K, V]) Clear() {
	clear(m.entries)
}
