package world

import "github.com/mossvale/mossvale/internal/core/ecs"

// EntityGrid is a tile occupancy index for O(1) collision checks.
// A tile may hold several occupants at once (pawns crossing mid-step after
// a reload, or standing on a shared use tile); walk blocking only consults
// whether anyone else is there.
type EntityGrid struct {
	tiles map[TilePos]map[ecs.EntityID]struct{}
}

// NewEntityGrid creates an empty occupancy index.
func NewEntityGrid() *EntityGrid {
	return &EntityGrid{tiles: make(map[TilePos]map[ecs.EntityID]struct{}, 256)}
}

// Occupy records an entity standing on a tile.
func (g *EntityGrid) Occupy(p TilePos, id ecs.EntityID) {
	cell, ok := g.tiles[p]
	if !ok {
		cell = make(map[ecs.EntityID]struct{}, 2)
		g.tiles[p] = cell
	}
	cell[id] = struct{}{}
}

// Vacate removes an entity from a tile.
func (g *EntityGrid) Vacate(p TilePos, id ecs.EntityID) {
	cell, ok := g.tiles[p]
	if !ok {
		return
	}
	delete(cell, id)
	if len(cell) == 0 {
		delete(g.tiles, p)
	}
}

// Move relocates an entity between tiles.
func (g *EntityGrid) Move(from, to TilePos, id ecs.EntityID) {
	if from == to {
		return
	}
	g.Vacate(from, id)
	g.Occupy(to, id)
}

// IsOccupied reports whether anyone besides exclude stands on the tile.
func (g *EntityGrid) IsOccupied(p TilePos, exclude ecs.EntityID) bool {
	cell, ok := g.tiles[p]
	if !ok {
		return false
	}
	if _, self := cell[exclude]; self {
		return len(cell) > 1
	}
	return len(cell) > 0
}

// OccupantAt returns the lowest-ID occupant of the tile, or 0 if empty.
// Lowest-ID keeps blocker resolution reproducible when a tile is shared.
func (g *EntityGrid) OccupantAt(p TilePos) ecs.EntityID {
	cell, ok := g.tiles[p]
	if !ok {
		return 0
	}
	var best ecs.EntityID
	for id := range cell {
		if best == 0 || id < best {
			best = id
		}
	}
	return best
}
