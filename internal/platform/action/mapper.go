package action

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Mapper holds named actions that a repository runs as pre-hooks before it
// talks to storage. Production code registers the defaults, tests swap in
// their own version of a single action without having to stub the rest.
type Mapper struct {
	actions map[string]any
}

func (m *Mapper) Add(name string, fn any) *Mapper {
	if m.actions == nil {
		m.actions = make(map[string]any)
	}

	m.actions[name] = fn

	return m
}

func (m *Mapper) Get(name string) (any, error) {
	v, ok := m.actions[name]
	if !ok {
		return nil, errors.New("no action found for: " + name)
	}

	return v, nil
}

func (m *Mapper) All() []string {
	return slices.Collect(maps.Keys(m.actions))
}

// Lookup fetches the named action and asserts it to the function type T.
func Lookup[T any](m *Mapper, name string) (T, error) {
	var zero T

	v, err := m.Get(name)
	if err != nil {
		return zero, err
	}

	fn, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("action %q has type %T, expected %T", name, v, zero)
	}

	return fn, nil
}
