package source

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor is a function that creates a new Source instance.
type Constructor func() Source

var (
	mu       sync.RWMutex
	registry = map[string]Constructor{}
)

// Register adds a source constructor under the given kind.
func Register(kind string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = ctor
}

// Get returns the source constructor for the given kind.
func Get(kind string) (Constructor, error) {
	mu.RLock()
	defer mu.RUnlock()
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown source kind: %s", kind)
	}
	return ctor, nil
}

// Kinds returns the sorted names of all registered sources.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
