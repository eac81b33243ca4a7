package world

// TilePos is one grid coordinate.
type TilePos struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Manhattan returns the 4-direction walking distance to another tile.
func (p TilePos) Manhattan(o TilePos) int32 {
	return abs32(p.X-o.X) + abs32(p.Y-o.Y)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Neighbor expansion order is fixed (north, east, south, west) so path
// searches replay identically between runs.
var (
	dirDX = [4]int32{0, 1, 0, -1}
	dirDY = [4]int32{-1, 0, 1, 0}
)
