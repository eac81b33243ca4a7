package world

import (
	"sort"

	"github.com/mossvale/mossvale/internal/content"
)

// ChunkSize is the side length of one grid chunk.
const ChunkSize = 32

// Tile is one cell of the world grid.
type Tile struct {
	Terrain     int32 `json:"terrain"`
	Walkable    bool  `json:"walkable"`
	Buildable   bool  `json:"buildable"`
	BlocksLight bool  `json:"blocks_light,omitempty"`
	Color       int32 `json:"color"`
	Blockers    int32 `json:"blockers,omitempty"` // placements currently blocking this tile
}

// IsWalkable reports whether terrain and placements both allow standing here.
func (t *Tile) IsWalkable() bool {
	return t.Walkable && t.Blockers == 0
}

// Bounds is the inclusive playable rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY int32
}

// Contains reports whether the coordinate lies inside the rectangle.
func (b Bounds) Contains(x, y int32) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Width returns the number of columns.
func (b Bounds) Width() int32 { return b.MaxX - b.MinX + 1 }

// Height returns the number of rows.
func (b Bounds) Height() int32 { return b.MaxY - b.MinY + 1 }

type chunkKey struct{ CX, CY int32 }

type chunk struct {
	tiles [ChunkSize * ChunkSize]Tile
}

// Grid is the chunked tile map. Chunks materialize on first touch, filled
// with the default terrain, so the map costs memory proportional to the
// area actually visited.
type Grid struct {
	bounds      Bounds
	defaultTile Tile
	paletteSize int32
	chunks      map[chunkKey]*chunk
}

// NewGrid creates an empty grid. Every untouched tile reads as def.
func NewGrid(bounds Bounds, def Tile, paletteSize int32) *Grid {
	if paletteSize < 1 {
		paletteSize = 1
	}
	def.Color = clampColor(def.Color, paletteSize)
	return &Grid{
		bounds:      bounds,
		defaultTile: def,
		paletteSize: paletteSize,
		chunks:      make(map[chunkKey]*chunk),
	}
}

// Bounds returns the playable rectangle.
func (g *Grid) Bounds() Bounds {
	return g.bounds
}

// InBounds reports whether the coordinate lies inside the playable rectangle.
func (g *Grid) InBounds(x, y int32) bool {
	return g.bounds.Contains(x, y)
}

// Tile returns the cell at (x, y), materializing its chunk on first touch.
// It never returns nil, even outside the bounds; callers gate on InBounds.
func (g *Grid) Tile(x, y int32) *Tile {
	key := chunkKey{CX: floorDiv(x, ChunkSize), CY: floorDiv(y, ChunkSize)}
	c, ok := g.chunks[key]
	if !ok {
		c = &chunk{}
		for i := range c.tiles {
			c.tiles[i] = g.defaultTile
		}
		g.chunks[key] = c
	}
	return &c.tiles[floorMod(y, ChunkSize)*ChunkSize+floorMod(x, ChunkSize)]
}

// PaintTerrain stamps a terrain definition onto a tile. The palette index is
// clamped into range; placement blockers on the tile are preserved.
func (g *Grid) PaintTerrain(x, y int32, def *content.TerrainDef) {
	t := g.Tile(x, y)
	t.Terrain = def.ID
	t.Walkable = def.Walkable
	t.Buildable = def.Buildable
	t.BlocksLight = def.BlocksLight
	t.Color = clampColor(def.Color, g.paletteSize)
}

// Block marks a placement covering the tile.
func (g *Grid) Block(x, y int32) {
	g.Tile(x, y).Blockers++
}

// Unblock releases one placement from the tile.
func (g *Grid) Unblock(x, y int32) {
	t := g.Tile(x, y)
	if t.Blockers > 0 {
		t.Blockers--
	}
}

// ChunkCount returns the number of materialized chunks.
func (g *Grid) ChunkCount() int {
	return len(g.chunks)
}

// EachTile visits every materialized tile, chunks in (CX, CY) order and
// tiles row-major within each, so a full walk is reproducible.
func (g *Grid) EachTile(fn func(x, y int32, t *Tile)) {
	keys := make([]chunkKey, 0, len(g.chunks))
	for k := range g.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CY != keys[j].CY {
			return keys[i].CY < keys[j].CY
		}
		return keys[i].CX < keys[j].CX
	})
	for _, k := range keys {
		c := g.chunks[k]
		baseX := k.CX * ChunkSize
		baseY := k.CY * ChunkSize
		for row := int32(0); row < ChunkSize; row++ {
			for col := int32(0); col < ChunkSize; col++ {
				fn(baseX+col, baseY+row, &c.tiles[row*ChunkSize+col])
			}
		}
	}
}

// DefaultTile returns the fill value for untouched tiles.
func (g *Grid) DefaultTile() Tile {
	return g.defaultTile
}

func clampColor(c, palette int32) int32 {
	if c < 0 {
		return 0
	}
	if c >= palette {
		return palette - 1
	}
	return c
}

func floorDiv(a, n int32) int32 {
	q := a / n
	if a%n != 0 && (a < 0) != (n < 0) {
		q--
	}
	return q
}

func floorMod(a, n int32) int32 {
	m := a % n
	if m != 0 && (m < 0) != (n < 0) {
		m += n
	}
	return m
}
