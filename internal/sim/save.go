package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mossvale/mossvale/internal/core/ecs"
	"github.com/mossvale/mossvale/internal/core/event"
	"github.com/mossvale/mossvale/internal/world"
)

// SaveVersion tags the capture layout. Bump it on any breaking row change.
const SaveVersion = 1

// Row pairs an entity with one component value.
type Row[T any] struct {
	ID ecs.EntityID `json:"id"`
	C  T            `json:"c"`
}

// TileRow is one grid cell that differs from the default fill.
type TileRow struct {
	X    int32      `json:"x"`
	Y    int32      `json:"y"`
	Tile world.Tile `json:"tile"`
}

// PendingEvents carries emissions the bus had not yet published when the
// capture ran, so a reload sees the same event flow a continuous run would.
type PendingEvents struct {
	Actions []world.ActionCompleted `json:"actions,omitempty"`
	Gold    []world.GoldMoved       `json:"gold,omitempty"`
}

// SaveStateV1 is the complete serializable state of a simulation between
// ticks: every component table, the non-default tiles, the RNG word and the
// entity allocator. Restoring it into a simulation built from the same
// config and content resumes the run exactly.
type SaveStateV1 struct {
	V          int          `json:"v"`
	Seed       int64        `json:"seed"`
	Tick       int64        `json:"tick"`
	Theme      string       `json:"theme"`
	NextEntity ecs.EntityID `json:"next_entity"`
	RNG        uint64       `json:"rng"`

	Pawns       []Row[world.Pawn]          `json:"pawns,omitempty"`
	Positions   []Row[world.Position]      `json:"positions,omitempty"`
	Needs       []Row[world.NeedSet]       `json:"needs,omitempty"`
	Moods       []Row[world.Mood]          `json:"moods,omitempty"`
	Buffs       []Row[world.BuffSet]       `json:"buffs,omitempty"`
	Actions     []Row[world.ActionState]   `json:"actions,omitempty"`
	Buildings   []Row[world.Building]      `json:"buildings,omitempty"`
	Stores      []Row[world.ResourceStore] `json:"stores,omitempty"`
	Attachments []Row[world.AttachmentSet] `json:"attachments,omitempty"`
	Gold        []Row[world.Gold]          `json:"gold,omitempty"`
	Inventories []Row[world.Inventory]     `json:"inventories,omitempty"`
	Tiles       []TileRow                  `json:"tiles,omitempty"`
	Events      PendingEvents              `json:"events"`
}

// Capture copies the full simulation state into a save. Rows come out in
// ascending entity order and reference-typed internals are deep-copied, so
// the capture stays stable while the simulation keeps ticking.
func (s *Simulation) Capture() *SaveStateV1 {
	st := s.state
	save := &SaveStateV1{
		V:          SaveVersion,
		Seed:       s.cfg.World.Seed,
		Tick:       st.Tick,
		Theme:      st.Theme,
		NextEntity: st.Entities.World.Pool().Next(),
		RNG:        st.RNG.State(),

		Pawns:       captureRows(st.Entities.Pawns),
		Positions:   captureRows(st.Entities.Positions),
		Moods:       captureRows(st.Entities.Moods),
		Buildings:   captureRows(st.Entities.Buildings),
		Stores:      captureRows(st.Entities.Stores),
		Gold:        captureRows(st.Entities.Gold),
		Inventories: captureRows(st.Entities.Inventories),
	}

	st.Entities.Needs.Each(func(id ecs.EntityID, n *world.NeedSet) {
		save.Needs = append(save.Needs, Row[world.NeedSet]{ID: id, C: cloneNeedSet(n)})
	})
	st.Entities.Buffs.Each(func(id ecs.EntityID, b *world.BuffSet) {
		save.Buffs = append(save.Buffs, Row[world.BuffSet]{ID: id, C: cloneBuffSet(b)})
	})
	st.Entities.Actions.Each(func(id ecs.EntityID, a *world.ActionState) {
		save.Actions = append(save.Actions, Row[world.ActionState]{ID: id, C: cloneActionState(a)})
	})
	st.Entities.Attachments.Each(func(id ecs.EntityID, a *world.AttachmentSet) {
		save.Attachments = append(save.Attachments, Row[world.AttachmentSet]{ID: id, C: cloneAttachmentSet(a)})
	})

	def := st.Grid.DefaultTile()
	st.Grid.EachTile(func(x, y int32, t *world.Tile) {
		if *t == def {
			return
		}
		save.Tiles = append(save.Tiles, TileRow{X: x, Y: y, Tile: *t})
	})

	save.Events = PendingEvents{
		Actions: event.Pending[world.ActionCompleted](st.Bus),
		Gold:    event.Pending[world.GoldMoved](st.Bus),
	}
	return save
}

// Restore replaces the live world with the captured one. The simulation must
// have been built from the same config and content tables the save came
// from; whatever the bootstrap placed is discarded.
func (s *Simulation) Restore(save *SaveStateV1) error {
	if save == nil {
		return fmt.Errorf("sim: restore: nil save")
	}
	if save.V != SaveVersion {
		return fmt.Errorf("sim: restore: unsupported save version %d", save.V)
	}
	grid, err := newGrid(s.cfg.World, s.registry)
	if err != nil {
		return err
	}

	st := s.state
	st.Entities = world.NewEntities()
	st.Occupancy = world.NewEntityGrid()
	st.Grid = grid
	st.Bus = event.NewBus()
	st.Tick = save.Tick
	st.Theme = save.Theme
	st.RNG.Restore(save.RNG)
	st.Entities.World.Pool().Restore(save.NextEntity)

	for _, r := range save.Tiles {
		*st.Grid.Tile(r.X, r.Y) = r.Tile
	}

	restoreRows(st.Entities.Pawns, save.Pawns)
	restoreRows(st.Entities.Positions, save.Positions)
	restoreRows(st.Entities.Moods, save.Moods)
	restoreRows(st.Entities.Buildings, save.Buildings)
	restoreRows(st.Entities.Stores, save.Stores)
	restoreRows(st.Entities.Gold, save.Gold)
	restoreRows(st.Entities.Inventories, save.Inventories)
	for _, r := range save.Needs {
		c := cloneNeedSet(&r.C)
		st.Entities.Needs.Set(r.ID, &c)
	}
	for _, r := range save.Buffs {
		c := cloneBuffSet(&r.C)
		st.Entities.Buffs.Set(r.ID, &c)
	}
	for _, r := range save.Actions {
		c := cloneActionState(&r.C)
		st.Entities.Actions.Set(r.ID, &c)
	}
	for _, r := range save.Attachments {
		c := cloneAttachmentSet(&r.C)
		st.Entities.Attachments.Set(r.ID, &c)
	}

	st.Entities.Positions.Each(func(id ecs.EntityID, p *world.Position) {
		st.Occupancy.Occupy(p.Tile(), id)
	})

	for _, ev := range save.Events.Actions {
		event.Emit(st.Bus, ev)
	}
	for _, ev := range save.Events.Gold {
		event.Emit(st.Bus, ev)
	}

	s.log.Info("simulation restored",
		zap.Int64("tick", save.Tick),
		zap.Int("pawns", st.Entities.Pawns.Len()),
		zap.Int("buildings", st.Entities.Buildings.Len()))
	return nil
}

func captureRows[T any](store *ecs.PtrComponentStore[T]) []Row[T] {
	out := make([]Row[T], 0, store.Len())
	store.Each(func(id ecs.EntityID, c *T) {
		out = append(out, Row[T]{ID: id, C: *c})
	})
	return out
}

func restoreRows[T any](store *ecs.PtrComponentStore[T], rows []Row[T]) {
	for i := range rows {
		c := rows[i].C
		store.Set(rows[i].ID, &c)
	}
}

func cloneNeedSet(n *world.NeedSet) world.NeedSet {
	return world.NeedSet{Values: cloneMap(n.Values)}
}

func cloneBuffSet(b *world.BuffSet) world.BuffSet {
	if b.Active == nil {
		return world.BuffSet{}
	}
	return world.BuffSet{Active: append([]world.BuffInstance(nil), b.Active...)}
}

func cloneAttachmentSet(a *world.AttachmentSet) world.AttachmentSet {
	return world.AttachmentSet{Scores: cloneMap(a.Scores)}
}

func cloneActionState(a *world.ActionState) world.ActionState {
	out := *a
	if a.Current != nil {
		cur := *a.Current
		out.Current = &cur
	}
	if a.Queue != nil {
		out.Queue = append([]world.ActionDef(nil), a.Queue...)
	}
	if a.Path != nil {
		out.Path = append([]world.TilePos(nil), a.Path...)
	}
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
