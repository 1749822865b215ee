package layer

import (
	"slices"
	"sync"

	"github.com/dshills/modernconfig/internal/config/loader"
)

// Manager holds the settings layers in ascending priority and answers
// lookups against them.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer
	merged map[string]any // nil until Merge runs after a change
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) index(name string) int {
	return slices.IndexFunc(m.layers, func(l *Layer) bool { return l.Name == name })
}

// AddLayer inserts l after every layer of equal or lower priority. A layer
// already registered under l.Name is replaced.
func (m *Manager) AddLayer(l *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(l.Name); i >= 0 {
		m.layers = slices.Delete(m.layers, i, i+1)
	}
	at := len(m.layers)
	for i, existing := range m.layers {
		if existing.Priority > l.Priority {
			at = i
			break
		}
	}
	m.layers = slices.Insert(m.layers, at, l)
	m.merged = nil
}

// RemoveLayer drops the named layer and reports whether it existed.
func (m *Manager) RemoveLayer(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(name)
	if i < 0 {
		return false
	}
	m.layers = slices.Delete(m.layers, i, i+1)
	m.merged = nil
	return true
}

// Layer returns the named layer, or nil.
func (m *Manager) Layer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.index(name); i >= 0 {
		return m.layers[i]
	}
	return nil
}

// Layers returns the layers, lowest priority first.
func (m *Manager) Layers() []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.layers)
}

// Merge flattens the stack into one settings map in which higher layers
// win. The caller owns the returned map.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.merged == nil {
		out := make(map[string]any)
		for _, l := range m.layers {
			out = loader.DeepMerge(out, cloneMap(l.Data))
		}
		m.merged = out
	}
	return cloneMap(m.merged)
}

// Get looks path up from the top of the stack down and returns the first
// value found with its layer.
func (m *Manager) Get(path string) (any, *Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range slices.Backward(m.layers) {
		if v, ok := loader.Lookup(l.Data, path); ok {
			return v, l, true
		}
	}
	return nil, nil, false
}

// WhichLayer names the layer supplying path, or "" when none does.
func (m *Manager) WhichLayer(path string) string {
	if _, l, ok := m.Get(path); ok {
		return l.Name
	}
	return ""
}
