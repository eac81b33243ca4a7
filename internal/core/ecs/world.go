package ecs

// World is the top-level ECS container: the ID pool plus the registry of
// component stores, so destroying an entity clears every table at once.
type World struct {
	pool     *EntityPool
	registry *Registry
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
	}
}

// Pool exposes the ID pool for save and restore.
func (w *World) Pool() *EntityPool {
	return w.pool
}

// Registry exposes the store registry for registration at construction.
func (w *World) Registry() *Registry {
	return w.registry
}

// CreateEntity issues a fresh entity ID.
func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

// DestroyEntity removes the entity from every registered store. Idempotent:
// destroying an already-destroyed entity is a no-op, and no other entity's
// ID is ever invalidated by it.
func (w *World) DestroyEntity(id EntityID) {
	w.registry.RemoveAll(id)
}
