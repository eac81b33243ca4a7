package world

// maxPathExpansions caps the A* open set so a fully walled-off goal on a
// large map cannot stall the tick.
const maxPathExpansions = 8192

type pathEntry struct {
	pos TilePos
	f   int32  // g + heuristic
	seq uint32 // discovery order, breaks f ties
}

func pathLess(a, b pathEntry) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

type pathHeap []pathEntry

func (h *pathHeap) push(e pathEntry) {
	*h = append(*h, e)
	// Sift up
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !pathLess((*h)[i], (*h)[parent]) {
			break
		}
		(*h)[parent], (*h)[i] = (*h)[i], (*h)[parent]
		i = parent
	}
}

func (h *pathHeap) pop() pathEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]

	// Sift down
	i := 0
	for {
		left := 2*i + 1
		if left >= len(*h) {
			break
		}
		smallest := left
		if right := left + 1; right < len(*h) && pathLess((*h)[right], (*h)[left]) {
			smallest = right
		}
		if !pathLess((*h)[smallest], (*h)[i]) {
			break
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
	return e
}

// FindPath runs 4-direction unit-cost A* from start to goal and returns the
// full tile sequence including both endpoints, or nil when no path exists.
// blocked marks tiles made impassable by other entities; the goal itself is
// exempt from it, so a pawn can path at an occupied use tile and resolve the
// collision on arrival. Ties in the open set break on discovery order, which
// keeps the chosen path identical between runs.
func FindPath(g *Grid, start, goal TilePos, blocked map[TilePos]struct{}) []TilePos {
	if !g.InBounds(start.X, start.Y) || !g.InBounds(goal.X, goal.Y) {
		return nil
	}
	if !g.Tile(goal.X, goal.Y).IsWalkable() {
		return nil
	}
	if start == goal {
		return []TilePos{start}
	}

	gScore := map[TilePos]int32{start: 0}
	cameFrom := make(map[TilePos]TilePos)
	closed := make(map[TilePos]struct{})

	var seq uint32
	open := make(pathHeap, 0, 64)
	open.push(pathEntry{pos: start, f: start.Manhattan(goal), seq: seq})

	for len(open) > 0 {
		cur := open.pop()
		if cur.pos == goal {
			return rebuildPath(cameFrom, start, goal)
		}
		if _, done := closed[cur.pos]; done {
			continue
		}
		closed[cur.pos] = struct{}{}
		if len(closed) > maxPathExpansions {
			return nil
		}

		for d := 0; d < 4; d++ {
			next := TilePos{X: cur.pos.X + dirDX[d], Y: cur.pos.Y + dirDY[d]}
			if !g.InBounds(next.X, next.Y) {
				continue
			}
			if !g.Tile(next.X, next.Y).IsWalkable() {
				continue
			}
			if _, bad := blocked[next]; bad && next != goal {
				continue
			}
			if _, done := closed[next]; done {
				continue
			}
			ng := gScore[cur.pos] + 1
			if old, seen := gScore[next]; seen && old <= ng {
				continue
			}
			gScore[next] = ng
			cameFrom[next] = cur.pos
			seq++
			open.push(pathEntry{pos: next, f: ng + next.Manhattan(goal), seq: seq})
		}
	}
	return nil
}

func rebuildPath(cameFrom map[TilePos]TilePos, start, goal TilePos) []TilePos {
	path := []TilePos{goal}
	for p := goal; p != start; {
		p = cameFrom[p]
		path = append(path, p)
	}
	// Reverse in place.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
