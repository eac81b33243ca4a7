package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mossvale/mossvale/internal/core/event"
	"github.com/mossvale/mossvale/internal/world"
)

// run advances the state tick by tick through the one system under test,
// swapping the event buffers the way the real loop does.
func run(s *world.State, sys interface{ Update(int64) }, ticks int) {
	for i := 0; i < ticks; i++ {
		s.Tick++
		s.Bus.SwapBuffers()
		sys.Update(s.Tick)
	}
}

func TestIdleCompletesAfterDuration(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 1, Y: 1}})
	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(world.ActionDef{Kind: world.ActIdle, Label: "rest", Duration: 3})

	run(s, sys, 1) // dequeued, elapsed 0
	require.NotNil(t, a.Current)

	run(s, sys, 2) // elapsed 2
	require.NotNil(t, a.Current)

	run(s, sys, 1) // elapsed 3
	assert.True(t, a.Idle())
}

func TestMovePacingIsTimeBased(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 0, Y: 0}})
	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(world.ActionDef{Kind: world.ActMoveTo, Target: world.TilePos{X: 5, Y: 0}})

	pos, _ := s.Entities.Positions.Get(id)

	run(s, sys, 3) // path computed at tick 1, not yet due to step
	assert.Equal(t, world.TilePos{X: 0, Y: 0}, pos.Tile())

	run(s, sys, 1) // elapsed 3 ticks = one tile at 3 ticks/tile
	assert.Equal(t, world.TilePos{X: 1, Y: 0}, pos.Tile())

	run(s, sys, 12) // 15 elapsed: the full 5 tiles
	assert.Equal(t, world.TilePos{X: 5, Y: 0}, pos.Tile())

	run(s, sys, 1)
	assert.True(t, a.Idle(), "arrival retires the action")
	assert.True(t, s.Occupancy.IsOccupied(world.TilePos{X: 5, Y: 0}, 0), "occupancy follows")
}

func TestMoveAbortsWhenNoPathAndDrainsQueue(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	water := s.Content.Terrains.Get(2)
	for y := int32(0); y <= 63; y++ {
		s.Grid.PaintTerrain(3, y, water) // a wall the whole map tall
	}
	bld := place(t, s, 11, world.TilePos{X: 10, Y: 10})

	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 0, Y: 0}})
	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(
		world.ActionDef{Kind: world.ActMoveTo, Target: world.TilePos{X: 5, Y: 0}},
		world.ActionDef{Kind: world.ActUseBuilding, TargetID: bld, Duration: 3, Need: 1, Satisfy: 10},
	)

	run(s, sys, 1)
	assert.True(t, a.Idle(), "unreachable target cancels the move and the follow-up")
	assert.Empty(t, a.Queue)

	pos, _ := s.Entities.Positions.Get(id)
	assert.Equal(t, world.TilePos{X: 0, Y: 0}, pos.Tile())
}

func TestBlockedPawnWaitsThenRepaths(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	a1 := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 0, Y: 0}})
	b1 := spawn(t, s, world.PawnSeed{Name: "B", Pos: world.TilePos{X: 20, Y: 20}})

	a, _ := s.Entities.Actions.Get(a1)
	a.Enqueue(world.ActionDef{Kind: world.ActMoveTo, Target: world.TilePos{X: 5, Y: 0}})

	run(s, sys, 1) // path computed straight along y=0
	s.MovePawn(b1, world.TilePos{X: 1, Y: 0})

	run(s, sys, 3) // tick 4: due to step onto B's tile
	st, _ := s.Entities.Actions.Get(a1)
	assert.Equal(t, int64(4), st.BlockedAt, "first blocked tick recorded")

	run(s, sys, 40)
	pos, _ := s.Entities.Positions.Get(a1)
	assert.Equal(t, world.TilePos{X: 5, Y: 0}, pos.Tile(), "repath slips around the blocker")
	assert.True(t, st.Idle())
	assert.Zero(t, st.BlockedAt, "cleared by the first successful step")
}

func TestWandererYieldsToBusyBlocker(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	a1 := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 0, Y: 0}})
	b1 := spawn(t, s, world.PawnSeed{Name: "B", Pos: world.TilePos{X: 20, Y: 20}})

	a, _ := s.Entities.Actions.Get(a1)
	a.Enqueue(world.ActionDef{Kind: world.ActMoveTo, Target: world.TilePos{X: 5, Y: 0}, Wander: true})

	run(s, sys, 1)
	s.MovePawn(b1, world.TilePos{X: 1, Y: 0}) // B idles there on business

	run(s, sys, 3) // the step attempt cancels the stroll outright
	assert.True(t, a.Idle())
	pos, _ := s.Entities.Positions.Get(a1)
	assert.Equal(t, world.TilePos{X: 0, Y: 0}, pos.Tile())
}

func TestUseBuildingFullCycle(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	bld := place(t, s, 10, world.TilePos{X: 10, Y: 10})
	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 10, Y: 12}, Gold: 10,
		Needs: map[int32]float64{1: 40}})

	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(world.ActionDef{Kind: world.ActUseBuilding, Label: "use cookhouse",
		TargetID: bld, Duration: 5, Need: 1, Satisfy: 30})

	// Tick 1 synthesizes a MoveTo into the use ring; two tiles of walking,
	// then the use runs its five-tick duration.
	run(s, sys, 1)
	require.NotNil(t, a.Current)
	assert.Equal(t, world.ActMoveTo, a.Current.Kind, "repositioning comes first")
	require.Len(t, a.Queue, 1)
	assert.Equal(t, world.ActUseBuilding, a.Queue[0].Kind)

	run(s, sys, 10)
	b, _ := s.Entities.Buildings.Get(bld)
	assert.Equal(t, id, b.InUseBy, "claimed while the session runs")

	run(s, sys, 20)

	store, _ := s.Entities.Stores.Get(bld)
	assert.Equal(t, int32(4), store.Amount, "one unit consumed")

	pg, _ := s.Entities.Gold.Get(id)
	bg, _ := s.Entities.Gold.Get(bld)
	assert.Equal(t, int64(8), pg.Amount, "price paid")
	assert.Equal(t, int64(7), bg.Amount)

	needs, _ := s.Entities.Needs.Get(id)
	assert.Equal(t, 70.0, needs.Values[1], "satisfaction landed")

	buffs, _ := s.Entities.Buffs.Get(id)
	require.Len(t, buffs.Active, 1)
	assert.Equal(t, int32(201), buffs.Active[0].Def)
	assert.Equal(t, buffs.Active[0].StartTick+10, buffs.Active[0].EndTick,
		"buff expires its duration after completion")

	att, _ := s.Entities.Attachments.Get(bld)
	assert.Equal(t, 1.0, att.Scores[id])
	assert.Zero(t, b.InUseBy, "released")
	assert.True(t, a.Idle(), "terminal idle consumed too")
}

func TestUseDeniedWhenBroke(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	bld := place(t, s, 10, world.TilePos{X: 10, Y: 10})
	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 10, Y: 11},
		Needs: map[int32]float64{1: 40}})

	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(world.ActionDef{Kind: world.ActUseBuilding, TargetID: bld, Duration: 5, Need: 1, Satisfy: 30})

	run(s, sys, 6) // claim at tick 1, completes at tick 6

	store, _ := s.Entities.Stores.Get(bld)
	assert.Equal(t, int32(5), store.Amount, "no funds, no stock consumed")
	needs, _ := s.Entities.Needs.Get(id)
	assert.Equal(t, 40.0, needs.Values[1], "benefit denied")
	buffs, _ := s.Entities.Buffs.Get(id)
	assert.Empty(t, buffs.Active)

	require.Len(t, a.Queue, 1, "the failure beat is still queued")
	assert.Equal(t, world.ActIdle, a.Queue[0].Kind)
	assert.Equal(t, "frustrated", a.Queue[0].Expression)

	s.Bus.SwapBuffers()
	done := event.Events[world.ActionCompleted](s.Bus)
	require.Len(t, done, 1)
	assert.False(t, done[0].Success)

	b, _ := s.Entities.Buildings.Get(bld)
	assert.Zero(t, b.InUseBy, "time cost consumed, building released")
}

func TestUseTimesOutWhileBuildingHeld(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	bld := place(t, s, 10, world.TilePos{X: 10, Y: 10})
	other := spawn(t, s, world.PawnSeed{Name: "B", Pos: world.TilePos{X: 30, Y: 30}})
	b, _ := s.Entities.Buildings.Get(bld)
	b.InUseBy = other

	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 10, Y: 11}})
	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(world.ActionDef{Kind: world.ActUseBuilding, TargetID: bld, Duration: 5, Need: 1, Satisfy: 30})

	run(s, sys, 20)
	require.NotNil(t, a.Current, "still waiting inside the patience window")

	run(s, sys, 10)
	assert.True(t, a.Idle(), "gave up past the blocked threshold")
	assert.Equal(t, other, b.InUseBy, "holder keeps the claim")
}

func TestHaulingConservesMass(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	shed := place(t, s, 14, world.TilePos{X: 20, Y: 20})
	depot := place(t, s, 13, world.TilePos{X: 30, Y: 20})
	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 21, Y: 20}})

	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(
		world.ActionDef{Kind: world.ActPickUp, Label: "fetch grain", TargetID: shed, Resource: 2, Amount: 5, Duration: 2},
		world.ActionDef{Kind: world.ActDropOff, Label: "deliver grain", TargetID: depot, Resource: 2, Amount: 5, Duration: 2, Need: 3, Satisfy: 20},
	)

	run(s, sys, 3)
	inv, _ := s.Entities.Inventories.Get(id)
	assert.Equal(t, int32(5), inv.Amount, "loaded at the shed")
	assert.Equal(t, shed, inv.Source)
	shedStore, _ := s.Entities.Stores.Get(shed)
	assert.Equal(t, int32(25), shedStore.Amount)

	run(s, sys, 60) // walk across and deliver

	depotStore, _ := s.Entities.Stores.Get(depot)
	assert.Equal(t, int32(5), depotStore.Amount)
	assert.Equal(t, int32(0), inv.Amount)
	assert.Equal(t, int32(25), shedStore.Amount, "mass conserved end to end")

	shedGold, _ := s.Entities.Gold.Get(shed)
	depotGold, _ := s.Entities.Gold.Get(depot)
	pawnGold, _ := s.Entities.Gold.Get(id)
	assert.Equal(t, int64(5), shedGold.Amount, "wholesale: 1 gold per delivered unit")
	assert.Equal(t, int64(43), depotGold.Amount, "paid wholesale plus the wage")
	assert.Equal(t, int64(2), pawnGold.Amount)

	needs, _ := s.Entities.Needs.Get(id)
	assert.Equal(t, 100.0, needs.Values[3], "already full, clamp holds")

	buffs, _ := s.Entities.Buffs.Get(id)
	require.Len(t, buffs.Active, 1)
	assert.Equal(t, int32(202), buffs.Active[0].Def)
}

func TestDropOffClampsAtCapacity(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	depot := place(t, s, 13, world.TilePos{X: 30, Y: 20})
	store, _ := s.Entities.Stores.Get(depot)
	store.Amount = 18

	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 31, Y: 20}})
	inv, _ := s.Entities.Inventories.Get(id)
	inv.Resource = 2
	inv.Amount = 5

	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(world.ActionDef{Kind: world.ActDropOff, TargetID: depot, Resource: 2, Amount: 5, Duration: 2})

	run(s, sys, 3)
	assert.Equal(t, int32(20), store.Amount, "filled to capacity only")
	assert.Equal(t, int32(3), inv.Amount, "remainder stays in the slot")
	assert.Equal(t, int32(2), inv.Resource)
}

func TestPickUpRefusesMismatchedLoad(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	shed := place(t, s, 14, world.TilePos{X: 20, Y: 20})

	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 21, Y: 20}})
	inv, _ := s.Entities.Inventories.Get(id)
	inv.Resource = 1 // already carrying water
	inv.Amount = 3

	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(world.ActionDef{Kind: world.ActPickUp, TargetID: shed, Resource: 2, Amount: 5, Duration: 2})

	run(s, sys, 3)
	s.Bus.SwapBuffers()
	done := event.Events[world.ActionCompleted](s.Bus)
	require.Len(t, done, 1)
	assert.False(t, done[0].Success)

	assert.Equal(t, int32(3), inv.Amount, "slot untouched")
	assert.Equal(t, int32(1), inv.Resource)
	shedStore, _ := s.Entities.Stores.Get(shed)
	assert.Equal(t, int32(30), shedStore.Amount)
}

func TestTerrainGatherFillsSlot(t *testing.T) {
	s := newTestState(t)
	sys := NewActionSystem(s, nil, zap.NewNop())
	s.Grid.PaintTerrain(5, 5, s.Content.Terrains.Get(2)) // water tile, harvest resource 1

	id := spawn(t, s, world.PawnSeed{Name: "A", Pos: world.TilePos{X: 5, Y: 6}})
	a, _ := s.Entities.Actions.Get(id)
	a.Enqueue(world.ActionDef{Kind: world.ActPickUp, Label: "gather water",
		Target: world.TilePos{X: 5, Y: 5}, Resource: 1, Amount: 4, Duration: 2})

	run(s, sys, 3)
	inv, _ := s.Entities.Inventories.Get(id)
	assert.Equal(t, int32(4), inv.Amount, "terrain source never runs dry")
	assert.Equal(t, int32(1), inv.Resource)
	assert.Zero(t, inv.Source, "no one to settle wholesale with")
}
