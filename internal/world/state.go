package world

import (
	"github.com/mossvale/mossvale/internal/content"
	"github.com/mossvale/mossvale/internal/core/ecs"
	"github.com/mossvale/mossvale/internal/core/event"
)

// Tuning carries the kernel's behavior constants, copied out of the config
// at construction so the kernel never reads config files itself.
type Tuning struct {
	TicksPerTile     int64
	BlockedThreshold int64
	WaitMin          int64
	WaitSpread       int64

	SocialRadius int32
	SocialGain   float64

	SatisfiedThreshold float64
	ConvergeCap        int
	InventoryCap       int32

	WanderSamples     int
	WanderNear        int
	IdleBase          int64
	IdleScale         float64
	TerminalIdleTicks int64

	WorkUrgencyWeight float64
	DistanceWeight    float64
	AttachmentWeight  float64
	CrowdWeight       float64
	ConvergeWeight    float64
}

// State is one live simulation world: entity tables, tile grid, occupancy
// index, clock, RNG and event bus. Single-goroutine access only; the tick
// loop owns it outright.
type State struct {
	Entities  *Entities
	Grid      *Grid
	Occupancy *EntityGrid
	Clock     *Clock
	RNG       *RNG
	Bus       *event.Bus
	Content   *content.Registry
	Tuning    Tuning
	Diversity DiversityFunc

	Tick  int64
	Theme string
}

// MovePawn steps an entity to a tile, keeping position and occupancy in
// lockstep. The action system is the only caller during ticks.
func (s *State) MovePawn(id ecs.EntityID, to TilePos) {
	pos, ok := s.Entities.Positions.Get(id)
	if !ok {
		return
	}
	s.Occupancy.Move(pos.Tile(), to, id)
	pos.X, pos.Y = to.X, to.Y
}

// TransferGold moves amount between two balances. It refuses to overdraw
// the payer and reports whether the transfer settled. Zero or negative
// amounts settle vacuously.
func (s *State) TransferGold(from, to ecs.EntityID, amount int64) bool {
	if amount <= 0 {
		return true
	}
	src, ok := s.Entities.Gold.Get(from)
	if !ok {
		return false
	}
	dst, ok := s.Entities.Gold.Get(to)
	if !ok {
		return false
	}
	if src.Amount < amount {
		return false
	}
	src.Amount -= amount
	dst.Amount += amount
	event.Emit(s.Bus, GoldMoved{From: from, To: to, Amount: amount, Tick: s.Tick})
	return true
}

// BlockedTilesFor returns every tile someone other than id stands on, as a
// pathfinding obstacle set.
func (s *State) BlockedTilesFor(id ecs.EntityID) map[TilePos]struct{} {
	out := make(map[TilePos]struct{}, len(s.Occupancy.tiles))
	for p, cell := range s.Occupancy.tiles {
		if _, self := cell[id]; self && len(cell) == 1 {
			continue
		}
		out[p] = struct{}{}
	}
	return out
}

// BuildingUseTiles returns the standing tiles for a building, in a fixed
// order: the declared use area verbatim, or the walkable ring around the
// footprint when none is declared.
func (s *State) BuildingUseTiles(b *Building, def *content.BuildingDef) []TilePos {
	origin := b.Origin()
	if len(def.UseArea) > 0 {
		out := make([]TilePos, 0, len(def.UseArea))
		for _, off := range def.UseArea {
			out = append(out, TilePos{X: origin.X + off.X, Y: origin.Y + off.Y})
		}
		return out
	}
	foot := def.FootprintTiles()
	inFoot := make(map[TilePos]struct{}, len(foot))
	for _, off := range foot {
		inFoot[TilePos{X: origin.X + off.X, Y: origin.Y + off.Y}] = struct{}{}
	}
	seen := make(map[TilePos]struct{}, len(foot)*4)
	out := make([]TilePos, 0, len(foot)*4)
	for _, off := range foot {
		base := TilePos{X: origin.X + off.X, Y: origin.Y + off.Y}
		for d := 0; d < 4; d++ {
			p := TilePos{X: base.X + dirDX[d], Y: base.Y + dirDY[d]}
			if _, dup := seen[p]; dup {
				continue
			}
			if _, inside := inFoot[p]; inside {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// TerrainUseTiles returns the standing tiles for a terrain target: the tile
// itself plus its 4-neighbors, so shores of unwalkable tiles still work.
func (s *State) TerrainUseTiles(p TilePos) []TilePos {
	out := make([]TilePos, 0, 5)
	out = append(out, p)
	for d := 0; d < 4; d++ {
		out = append(out, TilePos{X: p.X + dirDX[d], Y: p.Y + dirDY[d]})
	}
	return out
}

// NearestReachableUseTile picks the standing tile with the shortest path
// from the pawn, skipping unwalkable or occupied candidates. Ties keep the
// earliest tile in list order. Returns the tile and whether one was found.
func (s *State) NearestReachableUseTile(id ecs.EntityID, from TilePos, tiles []TilePos) (TilePos, bool) {
	blocked := s.BlockedTilesFor(id)
	bestLen := -1
	var bestTile TilePos
	for _, t := range tiles {
		if !s.Grid.InBounds(t.X, t.Y) || !s.Grid.Tile(t.X, t.Y).IsWalkable() {
			continue
		}
		if t != from && s.Occupancy.IsOccupied(t, id) {
			continue
		}
		path := FindPath(s.Grid, from, t, blocked)
		if path == nil {
			continue
		}
		if bestLen == -1 || len(path) < bestLen {
			bestLen = len(path)
			bestTile = t
		}
	}
	return bestTile, bestLen != -1
}

// PlacementAt returns the building whose footprint covers the tile, or 0.
func (s *State) PlacementAt(p TilePos) ecs.EntityID {
	var found ecs.EntityID
	s.Entities.Buildings.Each(func(id ecs.EntityID, b *Building) {
		if found != 0 {
			return
		}
		def := s.Content.Buildings.Get(b.Def)
		if def == nil {
			return
		}
		for _, off := range def.FootprintTiles() {
			if b.X+off.X == p.X && b.Y+off.Y == p.Y {
				found = id
				return
			}
		}
	})
	return found
}
