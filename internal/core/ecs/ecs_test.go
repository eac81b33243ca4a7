package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossvale/mossvale/internal/core/ecs"
)

type health struct{ HP int }
type tag struct{ Name string }

func TestEntityPoolMonotonic(t *testing.T) {
	p := ecs.NewEntityPool()
	a := p.Create()
	b := p.Create()
	c := p.Create()
	assert.Equal(t, ecs.EntityID(1), a)
	assert.Equal(t, ecs.EntityID(2), b)
	assert.Equal(t, ecs.EntityID(3), c)
	assert.Equal(t, ecs.EntityID(4), p.Next())

	p.Restore(100)
	assert.Equal(t, ecs.EntityID(100), p.Create())
	// Restore never rewinds.
	p.Restore(5)
	assert.Equal(t, ecs.EntityID(101), p.Create())
}

func TestWorldDestroyDoesNotRecycleIDs(t *testing.T) {
	w := ecs.NewWorld()
	hp := ecs.NewPtrComponentStore[health]()
	w.Registry().Register(hp)

	a := w.CreateEntity()
	hp.Set(a, &health{HP: 10})
	w.DestroyEntity(a)
	assert.False(t, hp.Has(a))

	b := w.CreateEntity()
	assert.NotEqual(t, a, b, "destroyed IDs must not be reissued")

	// Destroy is idempotent.
	w.DestroyEntity(a)
	w.DestroyEntity(ecs.EntityID(9999))
}

func TestStoreOrderedIteration(t *testing.T) {
	s := ecs.NewPtrComponentStore[health]()
	// Insert out of order.
	for _, id := range []ecs.EntityID{5, 1, 9, 3, 7} {
		s.Set(id, &health{HP: int(id)})
	}
	s.Remove(3)

	var seen []ecs.EntityID
	s.Each(func(id ecs.EntityID, h *health) {
		seen = append(seen, id)
		assert.Equal(t, int(id), h.HP)
	})
	assert.Equal(t, []ecs.EntityID{1, 5, 7, 9}, seen)
	assert.Equal(t, []ecs.EntityID{1, 5, 7, 9}, s.IDs())
}

func TestStoreSetReplaces(t *testing.T) {
	s := ecs.NewPtrComponentStore[health]()
	s.Set(2, &health{HP: 1})
	s.Set(2, &health{HP: 42})
	require.Equal(t, 1, s.Len())
	h, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, 42, h.HP)
}

func TestStoreRemoveDuringEach(t *testing.T) {
	s := ecs.NewPtrComponentStore[health]()
	for id := ecs.EntityID(1); id <= 4; id++ {
		s.Set(id, &health{HP: int(id)})
	}
	var seen []ecs.EntityID
	s.Each(func(id ecs.EntityID, _ *health) {
		if id == 1 {
			s.Remove(3)
		}
		seen = append(seen, id)
	})
	assert.Equal(t, []ecs.EntityID{1, 2, 4}, seen)
}

func TestEach2VisitsIntersectionInOrder(t *testing.T) {
	hp := ecs.NewPtrComponentStore[health]()
	tg := ecs.NewPtrComponentStore[tag]()
	for id := ecs.EntityID(1); id <= 6; id++ {
		hp.Set(id, &health{HP: int(id)})
	}
	tg.Set(2, &tag{Name: "b"})
	tg.Set(5, &tag{Name: "e"})
	tg.Set(4, &tag{Name: "d"})

	var seen []ecs.EntityID
	ecs.Each2(hp, tg, func(id ecs.EntityID, h *health, g *tag) {
		seen = append(seen, id)
	})
	assert.Equal(t, []ecs.EntityID{2, 4, 5}, seen)
}
