package sim

import (
	"github.com/mossvale/mossvale/internal/core/ecs"
	"github.com/mossvale/mossvale/internal/core/event"
	"github.com/mossvale/mossvale/internal/world"
)

// SnapshotVersion tags the observer wire format.
const SnapshotVersion = 1

// Snapshot is the flat observer view of one finished tick. Views are sorted
// by entity ID.
type Snapshot struct {
	V     int    `json:"v"`
	Tick  int64  `json:"tick"`
	Day   int64  `json:"day"`
	Hour  int    `json:"hour"`
	Theme string `json:"theme"`

	Pawns     []PawnView     `json:"pawns"`
	Buildings []BuildingView `json:"buildings"`
	Events    []EventView    `json:"events,omitempty"`
}

// PawnView is one pawn as observers see it. Path is the remaining walk, for
// debug overlays.
type PawnView struct {
	ID         ecs.EntityID    `json:"id"`
	Name       string          `json:"name"`
	X          int32           `json:"x"`
	Y          int32           `json:"y"`
	Mood       float64         `json:"mood"`
	Action     string          `json:"action,omitempty"`
	Expression string          `json:"expression,omitempty"`
	Path       []world.TilePos `json:"path,omitempty"`
}

// BuildingView is one placed building as observers see it.
type BuildingView struct {
	ID       ecs.EntityID `json:"id"`
	Def      string       `json:"def"`
	X        int32        `json:"x"`
	Y        int32        `json:"y"`
	Resource string       `json:"resource,omitempty"`
	Stock    int32        `json:"stock,omitempty"`
	Capacity int32        `json:"capacity,omitempty"`
	Gold     int64        `json:"gold"`
	InUseBy  ecs.EntityID `json:"in_use_by,omitempty"`
}

// EventView is one bus event rendered for observers.
type EventView struct {
	Type    string       `json:"type"` // "action" or "gold"
	Pawn    ecs.EntityID `json:"pawn,omitempty"`
	Kind    string       `json:"kind,omitempty"`
	Target  ecs.EntityID `json:"target,omitempty"`
	Success bool         `json:"success,omitempty"`
	From    ecs.EntityID `json:"from,omitempty"`
	To      ecs.EntityID `json:"to,omitempty"`
	Amount  int64        `json:"amount,omitempty"`
	Tick    int64        `json:"tick"`
}

// Snapshot renders the current state for observers. Events are the ones
// published this tick, meaning completions and payments from the previous
// one.
func (s *Simulation) Snapshot() *Snapshot {
	st := s.state
	snap := &Snapshot{
		V:         SnapshotVersion,
		Tick:      st.Tick,
		Day:       st.Clock.DayAt(st.Tick),
		Hour:      st.Clock.HourAt(st.Tick),
		Theme:     st.Theme,
		Pawns:     make([]PawnView, 0, st.Entities.Pawns.Len()),
		Buildings: make([]BuildingView, 0, st.Entities.Buildings.Len()),
	}

	st.Entities.Pawns.Each(func(id ecs.EntityID, p *world.Pawn) {
		view := PawnView{ID: id, Name: p.Name}
		if pos, ok := st.Entities.Positions.Get(id); ok {
			view.X, view.Y = pos.X, pos.Y
		}
		if mood, ok := st.Entities.Moods.Get(id); ok {
			view.Mood = mood.Value
		}
		if act, ok := st.Entities.Actions.Get(id); ok && act.Current != nil {
			view.Action = act.Current.Label
			view.Expression = act.Current.Expression
			if act.PathIdx < len(act.Path) {
				view.Path = append([]world.TilePos(nil), act.Path[act.PathIdx:]...)
			}
		}
		snap.Pawns = append(snap.Pawns, view)
	})

	st.Entities.Buildings.Each(func(id ecs.EntityID, b *world.Building) {
		view := BuildingView{ID: id, X: b.X, Y: b.Y, InUseBy: b.InUseBy}
		if def := st.Content.Buildings.Get(b.Def); def != nil {
			view.Def = def.Name
		}
		if store, ok := st.Entities.Stores.Get(id); ok {
			view.Stock = store.Amount
			view.Capacity = store.Capacity
			if rd := st.Content.Resources.Get(store.Resource); rd != nil {
				view.Resource = rd.Name
			}
		}
		if g, ok := st.Entities.Gold.Get(id); ok {
			view.Gold = g.Amount
		}
		snap.Buildings = append(snap.Buildings, view)
	})

	for _, ev := range event.Events[world.ActionCompleted](st.Bus) {
		snap.Events = append(snap.Events, EventView{
			Type:    "action",
			Pawn:    ev.Pawn,
			Kind:    ev.Kind.String(),
			Target:  ev.Target,
			Success: ev.Success,
			Tick:    ev.Tick,
		})
	}
	for _, ev := range event.Events[world.GoldMoved](st.Bus) {
		snap.Events = append(snap.Events, EventView{
			Type:   "gold",
			From:   ev.From,
			To:     ev.To,
			Amount: ev.Amount,
			Tick:   ev.Tick,
		})
	}
	return snap
}
