package ecs

import "sort"

// Removable is the common interface every component store satisfies so the
// registry can clear all components of a destroyed entity.
type Removable interface {
	Remove(id EntityID)
}

// PtrComponentStore is a typed map store for ECS components.
// No reflect, no interface{} — pure generics.
//
// Iteration always runs in ascending EntityID order. IDs are monotonic, so
// that is creation order, and every walk over a table replays identically
// between runs with the same seed.
type PtrComponentStore[T any] struct {
	data map[EntityID]*T
	ids  []EntityID // sorted ascending, mirrors data's keys
}

// NewPtrComponentStore creates an empty store.
func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		data: make(map[EntityID]*T, 256),
		ids:  make([]EntityID, 0, 256),
	}
}

// Set adds or replaces the component for an entity.
func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		i := sort.Search(len(s.ids), func(i int) bool { return s.ids[i] >= id })
		s.ids = append(s.ids, 0)
		copy(s.ids[i+1:], s.ids[i:])
		s.ids[i] = id
	}
	s.data[id] = c
}

// Get returns the component pointer, or nil and false.
func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

// Remove deletes the component. No-op if absent.
func (s *PtrComponentStore[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; !ok {
		return
	}
	delete(s.data, id)
	i := sort.Search(len(s.ids), func(i int) bool { return s.ids[i] >= id })
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
}

// Has reports whether the entity owns this component.
func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

// Len returns the number of stored components.
func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

// IDs returns the stored entity IDs in ascending order. The slice is shared;
// callers must not mutate it.
func (s *PtrComponentStore[T]) IDs() []EntityID {
	return s.ids
}

// Each visits every component in ascending ID order. The ID list is copied
// up front, so the callback may add or remove entries mid-walk; entries added
// during the walk are not visited.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	ids := append([]EntityID(nil), s.ids...)
	for _, id := range ids {
		if c, ok := s.data[id]; ok {
			fn(id, c)
		}
	}
}
