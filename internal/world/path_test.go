package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossvale/mossvale/internal/content"
)

var wall = &content.TerrainDef{ID: 3, Walkable: false}

func TestFindPathOpenField(t *testing.T) {
	g := testGrid(63, 63)
	path := FindPath(g, TilePos{X: 0, Y: 0}, TilePos{X: 3, Y: 2}, nil)
	require.NotNil(t, path)
	assert.Len(t, path, 6, "manhattan distance plus both endpoints")
	assert.Equal(t, TilePos{X: 0, Y: 0}, path[0])
	assert.Equal(t, TilePos{X: 3, Y: 2}, path[len(path)-1])
	for i := 1; i < len(path); i++ {
		assert.Equal(t, int32(1), path[i].Manhattan(path[i-1]), "each step is one tile")
	}
}

func TestFindPathDeterministic(t *testing.T) {
	g := testGrid(63, 63)
	for x := int32(2); x <= 8; x++ {
		g.PaintTerrain(x, 5, wall)
	}
	a := FindPath(g, TilePos{X: 4, Y: 1}, TilePos{X: 4, Y: 9}, nil)
	b := FindPath(g, TilePos{X: 4, Y: 1}, TilePos{X: 4, Y: 9}, nil)
	require.NotNil(t, a)
	assert.Equal(t, a, b, "same query, same tile sequence")
}

func TestFindPathAroundWall(t *testing.T) {
	g := testGrid(63, 63)
	// Vertical wall with a gap at y=6.
	for y := int32(0); y <= 5; y++ {
		g.PaintTerrain(5, y, wall)
	}
	path := FindPath(g, TilePos{X: 2, Y: 2}, TilePos{X: 8, Y: 2}, nil)
	require.NotNil(t, path)
	for _, p := range path {
		assert.True(t, g.Tile(p.X, p.Y).IsWalkable(), "path avoids the wall at %v", p)
	}
}

func TestFindPathNoRoute(t *testing.T) {
	g := testGrid(31, 31)
	// Box the goal in completely.
	for _, p := range []TilePos{{9, 10}, {11, 10}, {10, 9}, {10, 11}} {
		g.PaintTerrain(p.X, p.Y, wall)
	}
	assert.Nil(t, FindPath(g, TilePos{X: 0, Y: 0}, TilePos{X: 10, Y: 10}, nil))
}

func TestFindPathBlockedSetDetour(t *testing.T) {
	g := testGrid(31, 31)
	direct := FindPath(g, TilePos{X: 0, Y: 0}, TilePos{X: 4, Y: 0}, nil)
	require.Len(t, direct, 5)

	blocked := map[TilePos]struct{}{
		{X: 2, Y: 0}: {},
	}
	detour := FindPath(g, TilePos{X: 0, Y: 0}, TilePos{X: 4, Y: 0}, blocked)
	require.NotNil(t, detour)
	assert.Greater(t, len(detour), len(direct))
	for _, p := range detour {
		_, hit := blocked[p]
		assert.False(t, hit, "detour enters a blocked tile at %v", p)
	}
}

func TestFindPathGoalExemptFromBlockedSet(t *testing.T) {
	g := testGrid(31, 31)
	goal := TilePos{X: 3, Y: 0}
	blocked := map[TilePos]struct{}{goal: {}}
	path := FindPath(g, TilePos{X: 0, Y: 0}, goal, blocked)
	require.NotNil(t, path, "an occupied goal is still a legal destination")
	assert.Equal(t, goal, path[len(path)-1])
}

func TestFindPathEdgeCases(t *testing.T) {
	g := testGrid(31, 31)

	same := FindPath(g, TilePos{X: 5, Y: 5}, TilePos{X: 5, Y: 5}, nil)
	assert.Equal(t, []TilePos{{X: 5, Y: 5}}, same)

	assert.Nil(t, FindPath(g, TilePos{X: 0, Y: 0}, TilePos{X: 99, Y: 0}, nil), "out-of-bounds goal")

	g.PaintTerrain(7, 7, wall)
	assert.Nil(t, FindPath(g, TilePos{X: 0, Y: 0}, TilePos{X: 7, Y: 7}, nil), "unwalkable terrain goal")
}
