package world

import (
	"fmt"

	"github.com/mossvale/mossvale/internal/content"
	"github.com/mossvale/mossvale/internal/core/ecs"
)

// PawnSeed carries the construction parameters for one pawn.
type PawnSeed struct {
	Name  string
	Age   int32
	Pos   TilePos
	Gold  int64
	Needs map[int32]float64 // starting values; unset needs start at 100
}

// SpawnPawn creates a pawn with every pawn component populated and its tile
// occupied. Bad coordinates or unknown need IDs fail before anything is
// created.
func (s *State) SpawnPawn(seed PawnSeed) (ecs.EntityID, error) {
	if !s.Grid.InBounds(seed.Pos.X, seed.Pos.Y) {
		return 0, fmt.Errorf("spawn pawn %q: tile (%d,%d) out of bounds", seed.Name, seed.Pos.X, seed.Pos.Y)
	}
	if !s.Grid.Tile(seed.Pos.X, seed.Pos.Y).IsWalkable() {
		return 0, fmt.Errorf("spawn pawn %q: tile (%d,%d) not walkable", seed.Name, seed.Pos.X, seed.Pos.Y)
	}
	for needID := range seed.Needs {
		if s.Content.Needs.Get(needID) == nil {
			return 0, fmt.Errorf("spawn pawn %q: unknown need %d", seed.Name, needID)
		}
	}

	values := make(map[int32]float64, s.Content.Needs.Count())
	s.Content.Needs.Each(func(d *content.NeedDef) {
		v := 100.0
		if ov, ok := seed.Needs[d.ID]; ok {
			v = ov
			if v < 0 {
				v = 0
			}
			if v > 100 {
				v = 100
			}
		}
		values[d.ID] = v
	})

	id := s.Entities.Create()
	e := s.Entities
	e.Pawns.Set(id, &Pawn{Name: seed.Name, Age: seed.Age})
	e.Positions.Set(id, &Position{X: seed.Pos.X, Y: seed.Pos.Y})
	e.Needs.Set(id, &NeedSet{Values: values})
	e.Moods.Set(id, &Mood{})
	e.Buffs.Set(id, &BuffSet{})
	e.Actions.Set(id, &ActionState{})
	e.Gold.Set(id, &Gold{Amount: seed.Gold})
	e.Inventories.Set(id, &Inventory{Capacity: s.Tuning.InventoryCap})
	s.Occupancy.Occupy(seed.Pos, id)
	return id, nil
}

// PlaceBuilding creates a building instance at origin. The footprint must
// lie in bounds on buildable terrain and not overlap another placement.
// Non-walkable buildings block their footprint tiles for pathing.
func (s *State) PlaceBuilding(defID int32, origin TilePos) (ecs.EntityID, error) {
	def := s.Content.Buildings.Get(defID)
	if def == nil {
		return 0, fmt.Errorf("place building: unknown definition %d", defID)
	}
	foot := def.FootprintTiles()
	for _, off := range foot {
		x, y := origin.X+off.X, origin.Y+off.Y
		if !s.Grid.InBounds(x, y) {
			return 0, fmt.Errorf("place %s: tile (%d,%d) out of bounds", def.Name, x, y)
		}
		if !s.Grid.Tile(x, y).Buildable {
			return 0, fmt.Errorf("place %s: tile (%d,%d) not buildable", def.Name, x, y)
		}
		if other := s.PlacementAt(TilePos{X: x, Y: y}); other != 0 {
			return 0, fmt.Errorf("place %s: tile (%d,%d) already covered by building %d", def.Name, x, y, other)
		}
	}

	id := s.Entities.Create()
	s.Entities.Buildings.Set(id, &Building{Def: defID, X: origin.X, Y: origin.Y})
	if !def.Walkable {
		for _, off := range foot {
			s.Grid.Block(origin.X+off.X, origin.Y+off.Y)
		}
	}
	if def.Resource != 0 {
		s.Entities.Stores.Set(id, &ResourceStore{
			Resource: def.Resource,
			Amount:   def.StartAmount,
			Capacity: def.Capacity,
		})
	}
	s.Entities.Attachments.Set(id, &AttachmentSet{})
	s.Entities.Gold.Set(id, &Gold{Amount: def.Gold})
	return id, nil
}

// RemoveBuilding tears a building down, restoring the walkability its
// placement took away. Removing anything else, or an already-removed ID,
// is a no-op.
func (s *State) RemoveBuilding(id ecs.EntityID) {
	b, ok := s.Entities.Buildings.Get(id)
	if !ok {
		return
	}
	def := s.Content.Buildings.Get(b.Def)
	if def != nil && !def.Walkable {
		for _, off := range def.FootprintTiles() {
			s.Grid.Unblock(b.X+off.X, b.Y+off.Y)
		}
	}
	s.Entities.Destroy(id)
}
