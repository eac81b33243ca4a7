package ecs

// Registry tracks every component store so entity destruction can sweep all
// of them without the caller enumerating store fields by hand.
type Registry struct {
	stores []Removable
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make([]Removable, 0, 16)}
}

// Register adds a store. Call once per store at world construction.
func (r *Registry) Register(s Removable) {
	r.stores = append(r.stores, s)
}

// RemoveAll strips every registered component from the entity.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}
