package toolsystem

import "sync"

// Registry holds the tools exposed to the realtime model. It is built once
// at configuration time and shared read-only across live sessions.
type Registry interface {
	// Register adds a tool. Registering the same name again replaces the
	// previous tool deterministically; the original schema position is kept.
	Register(t Tool)
	Lookup(name string) (Tool, bool)
	// Schemas returns the wire projections in registration order.
	Schemas() []ToolSchema
	Len() int
}

type memoryRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{
		tools: make(map[string]Tool),
	}
}

// Register implements Registry.
func (m *memoryRegistry) Register(t Tool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tools[t.Name]; !exists {
		m.order = append(m.order, t.Name)
	}
	m.tools[t.Name] = t
}

// Lookup implements Registry.
func (m *memoryRegistry) Lookup(name string) (Tool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tool, exist := m.tools[name]
	return tool, exist
}

// Schemas implements Registry.
func (m *memoryRegistry) Schemas() []ToolSchema {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ToolSchema, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.tools[name].Schema())
	}
	return out
}

// Len implements Registry.
func (m *memoryRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tools)
}
