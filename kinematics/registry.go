package kinematics

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	registryMu sync.RWMutex
	registry   = map[Topology]Constructor{}
)

// Register registers a topology constructor. Registering the same topology twice panics.
func Register(topology Topology, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, old := registry[topology]; old {
		panic(errors.Errorf("trying to register two models with same topology %s", topology))
	}
	if constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for topology %s", topology))
	}
	registry[topology] = constructor
}

// New constructs a model of the given topology.
func New(topology Topology, lengths []float64, logger Logger) (Model, error) {
	registryMu.RLock()
	constructor, ok := registry[topology]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("no model registered for topology %q, have %v", topology, RegisteredTopologies())
	}
	return constructor(lengths, logger)
}

// RegisteredTopologies returns every registered topology, sorted.
func RegisteredTopologies() []Topology {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Topology, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// deregister is used by tests to keep the global registry clean.
func deregister(topology Topology) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, topology)
}
