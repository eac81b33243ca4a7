package world

import "github.com/mossvale/mossvale/internal/core/ecs"

// Pawn marks an entity as an autonomous villager.
type Pawn struct {
	Name string `json:"name"`
	Age  int32  `json:"age"`
}

// Position is an entity's tile coordinate. Only the action system moves
// pawns; everything else reads.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Tile returns the position as a TilePos.
func (p Position) Tile() TilePos {
	return TilePos{X: p.X, Y: p.Y}
}

// NeedSet carries current need values by need definition ID, each in [0,100].
type NeedSet struct {
	Values map[int32]float64 `json:"values"`
}

// Clamped writes a need value, clamped into [0,100]. Unknown needs are
// written as-is; the decay system only visits defined ones.
func (n *NeedSet) Clamped(id int32, v float64) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	n.Values[id] = v
}

// Adjust shifts a need value by delta with clamping.
func (n *NeedSet) Adjust(id int32, delta float64) {
	n.Clamped(id, n.Values[id]+delta)
}

// Mood is the clamped sum of active buff offsets, recomputed every tick.
type Mood struct {
	Value float64 `json:"value"`
}

// BuffSource says which mechanism attached a buff. Together with SourceID it
// forms the replacement key: re-applying from the same source swaps the old
// instance out instead of stacking.
type BuffSource uint8

const (
	BuffSourceNeedCritical BuffSource = iota
	BuffSourceNeedLow
	BuffSourceBuilding
	BuffSourceWork
)

// BuffInstance is one active mood modifier on a pawn.
type BuffInstance struct {
	Def       int32      `json:"def"`
	Source    BuffSource `json:"source"`
	SourceID  int32      `json:"source_id"` // need or building definition ID
	Offset    float64    `json:"offset"`
	StartTick int64      `json:"start_tick"`
	EndTick   int64      `json:"end_tick"` // 0 or less: held until the owner removes it
}

// BuffSet is the ordered list of active buffs. Order is application order,
// which both the mood sum and the expression pick rely on.
type BuffSet struct {
	Active []BuffInstance `json:"active,omitempty"`
}

// Apply inserts the instance, replacing any active buff from the same
// (Source, SourceID) pair in place.
func (b *BuffSet) Apply(in BuffInstance) {
	for i := range b.Active {
		if b.Active[i].Source == in.Source && b.Active[i].SourceID == in.SourceID {
			b.Active[i] = in
			return
		}
	}
	b.Active = append(b.Active, in)
}

// RemoveSource drops the buff attributed to (source, sourceID), if any.
func (b *BuffSet) RemoveSource(source BuffSource, sourceID int32) {
	for i := range b.Active {
		if b.Active[i].Source == source && b.Active[i].SourceID == sourceID {
			b.Active = append(b.Active[:i], b.Active[i+1:]...)
			return
		}
	}
}

// ActionKind tags an ActionDef variant.
type ActionKind uint8

const (
	ActIdle ActionKind = iota
	ActMoveTo
	ActUseBuilding
	ActWork
	ActPickUp
	ActDropOff
)

var actionKindNames = [...]string{"idle", "move", "use", "work", "pickup", "dropoff"}

// String returns the lowercase kind name.
func (k ActionKind) String() string {
	if int(k) < len(actionKindNames) {
		return actionKindNames[k]
	}
	return "unknown"
}

// ActionDef describes one queued step. Values are immutable once queued;
// retargeting means building a new def and swapping it in.
type ActionDef struct {
	Kind       ActionKind    `json:"kind"`
	Label      string        `json:"label,omitempty"`
	Target     TilePos       `json:"target"`              // MoveTo destination or terrain harvest tile
	TargetID   ecs.EntityID  `json:"target_id,omitempty"` // building for interactions
	Resource   int32         `json:"resource,omitempty"`
	Amount     int32         `json:"amount,omitempty"`
	Duration   int64         `json:"duration,omitempty"` // required ticks for idle and interactions
	Need       int32         `json:"need,omitempty"`     // need satisfied on completion
	Satisfy    float64       `json:"satisfy,omitempty"`
	Wander     bool          `json:"wander,omitempty"` // leisure move, yields to purposeful traffic
	Expression string        `json:"expression,omitempty"`
}

// ActionState drives one pawn through its action queue.
type ActionState struct {
	Current   *ActionDef  `json:"current,omitempty"`
	Queue     []ActionDef `json:"queue,omitempty"`
	Path      []TilePos   `json:"path,omitempty"`
	PathIdx   int         `json:"path_idx,omitempty"`
	StartTick int64       `json:"start_tick,omitempty"`
	BlockedAt int64       `json:"blocked_at,omitempty"` // first tick the next step was occupied
	WaitUntil int64       `json:"wait_until,omitempty"` // randomized retry point while blocked
}

// Idle reports whether the pawn has nothing running and nothing queued.
func (a *ActionState) Idle() bool {
	return a.Current == nil && len(a.Queue) == 0
}

// PushFront injects defs ahead of everything already queued.
func (a *ActionState) PushFront(defs ...ActionDef) {
	a.Queue = append(defs, a.Queue...)
}

// Enqueue appends defs to the back of the queue.
func (a *ActionState) Enqueue(defs ...ActionDef) {
	a.Queue = append(a.Queue, defs...)
}

// Building is one placed structure instance.
type Building struct {
	Def     int32        `json:"def"`
	X       int32        `json:"x"` // origin; footprint offsets are relative
	Y       int32        `json:"y"`
	InUseBy ecs.EntityID `json:"in_use_by,omitempty"`
}

// Origin returns the anchor tile.
func (b Building) Origin() TilePos {
	return TilePos{X: b.X, Y: b.Y}
}

// ResourceStore holds a building's depletable stock.
type ResourceStore struct {
	Resource int32 `json:"resource"`
	Amount   int32 `json:"amount"`
	Capacity int32 `json:"capacity"`
}

// Fill returns stock as a fraction of capacity.
func (s *ResourceStore) Fill() float64 {
	if s.Capacity <= 0 {
		return 1
	}
	return float64(s.Amount) / float64(s.Capacity)
}

// Add applies a clamped stock change and returns the amount actually moved.
func (s *ResourceStore) Add(delta int32) int32 {
	next := s.Amount + delta
	if next < 0 {
		next = 0
	}
	if next > s.Capacity {
		next = s.Capacity
	}
	moved := next - s.Amount
	s.Amount = next
	return moved
}

// AttachmentSet is a building's per-pawn affinity, 0 to 10. Pawns favor
// places they already frequent.
type AttachmentSet struct {
	Scores map[ecs.EntityID]float64 `json:"scores,omitempty"`
}

// Bump raises a pawn's affinity by one, capped at 10.
func (a *AttachmentSet) Bump(id ecs.EntityID) {
	if a.Scores == nil {
		a.Scores = make(map[ecs.EntityID]float64, 4)
	}
	v := a.Scores[id] + 1
	if v > 10 {
		v = 10
	}
	a.Scores[id] = v
}

// DecayAll scales every score down, dropping entries that reach zero.
func (a *AttachmentSet) DecayAll(factor float64) {
	for id, v := range a.Scores {
		v *= factor
		if v < 0.1 {
			delete(a.Scores, id)
			continue
		}
		a.Scores[id] = v
	}
}

// Gold is an integer balance. Transfers go through State.TransferGold so
// they are atomic and conserve the total supply.
type Gold struct {
	Amount int64 `json:"amount"`
}

// Inventory is a pawn's single carry slot. Amount 0 means empty. Source
// remembers the building the load came from, for wholesale settlement on
// delivery; 0 means gathered from terrain.
type Inventory struct {
	Resource int32        `json:"resource,omitempty"`
	Amount   int32        `json:"amount"`
	Capacity int32        `json:"capacity"`
	Source   ecs.EntityID `json:"source,omitempty"`
}

// Entities bundles every component table plus the ID pool. One per world.
type Entities struct {
	World *ecs.World

	Pawns       *ecs.PtrComponentStore[Pawn]
	Positions   *ecs.PtrComponentStore[Position]
	Needs       *ecs.PtrComponentStore[NeedSet]
	Moods       *ecs.PtrComponentStore[Mood]
	Buffs       *ecs.PtrComponentStore[BuffSet]
	Actions     *ecs.PtrComponentStore[ActionState]
	Buildings   *ecs.PtrComponentStore[Building]
	Stores      *ecs.PtrComponentStore[ResourceStore]
	Attachments *ecs.PtrComponentStore[AttachmentSet]
	Gold        *ecs.PtrComponentStore[Gold]
	Inventories *ecs.PtrComponentStore[Inventory]
}

// NewEntities creates the component tables and registers them for sweep on
// entity destruction.
func NewEntities() *Entities {
	e := &Entities{
		World:       ecs.NewWorld(),
		Pawns:       ecs.NewPtrComponentStore[Pawn](),
		Positions:   ecs.NewPtrComponentStore[Position](),
		Needs:       ecs.NewPtrComponentStore[NeedSet](),
		Moods:       ecs.NewPtrComponentStore[Mood](),
		Buffs:       ecs.NewPtrComponentStore[BuffSet](),
		Actions:     ecs.NewPtrComponentStore[ActionState](),
		Buildings:   ecs.NewPtrComponentStore[Building](),
		Stores:      ecs.NewPtrComponentStore[ResourceStore](),
		Attachments: ecs.NewPtrComponentStore[AttachmentSet](),
		Gold:        ecs.NewPtrComponentStore[Gold](),
		Inventories: ecs.NewPtrComponentStore[Inventory](),
	}
	reg := e.World.Registry()
	reg.Register(e.Pawns)
	reg.Register(e.Positions)
	reg.Register(e.Needs)
	reg.Register(e.Moods)
	reg.Register(e.Buffs)
	reg.Register(e.Actions)
	reg.Register(e.Buildings)
	reg.Register(e.Stores)
	reg.Register(e.Attachments)
	reg.Register(e.Gold)
	reg.Register(e.Inventories)
	return e
}

// Create issues a fresh entity ID.
func (e *Entities) Create() ecs.EntityID {
	return e.World.CreateEntity()
}

// Destroy removes the entity from every table. Idempotent.
func (e *Entities) Destroy(id ecs.EntityID) {
	e.World.DestroyEntity(id)
}
