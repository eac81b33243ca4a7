package ecs

// Each2 visits every entity owning both components, in ascending ID order.
// It walks the smaller store and probes the other.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		sa.Each(func(id EntityID, a *A) {
			if b, ok := sb.Get(id); ok {
				fn(id, a, b)
			}
		})
		return
	}
	sb.Each(func(id EntityID, b *B) {
		if a, ok := sa.Get(id); ok {
			fn(id, a, b)
		}
	})
}

// Each3 visits every entity owning all three components, in ascending ID
// order, walking the first store.
func Each3[A, B, C any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	sa.Each(func(id EntityID, a *A) {
		b, ok := sb.Get(id)
		if !ok {
			return
		}
		c, ok := sc.Get(id)
		if !ok {
			return
		}
		fn(id, a, b, c)
	})
}
