package ecs

// EntityID is an opaque handle to an entity. IDs are handed out sequentially
// starting at 1 and are never reused, so a stale reference held by another
// component (a buff source, an action target) can be detected instead of
// silently pointing at a newcomer.
type EntityID uint64

// IsZero reports whether the ID is the null entity.
func (id EntityID) IsZero() bool {
	return id == 0
}

// EntityPool hands out entity IDs. Allocation is a bare counter; the pool
// carries no liveness state, the component stores are the source of truth
// for what exists.
type EntityPool struct {
	next EntityID
}

// NewEntityPool returns a pool whose first issued ID is 1.
func NewEntityPool() *EntityPool {
	return &EntityPool{next: 1}
}

// Create issues the next entity ID.
func (p *EntityPool) Create() EntityID {
	id := p.next
	p.next++
	return id
}

// Next returns the ID the next Create call would issue.
func (p *EntityPool) Next() EntityID {
	return p.next
}

// Restore fast-forwards the counter after a reload. It never rewinds.
func (p *EntityPool) Restore(next EntityID) {
	if next > p.next {
		p.next = next
	}
}
