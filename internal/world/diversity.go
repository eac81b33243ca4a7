package world

// DiversityFunc scores how novel a tile is as a wander destination at a
// given tick, in [0, 1). Higher scores draw idle pawns. The default is a
// pure hash so replays stay deterministic; a renderer can swap in a scent
// or visit-history field through the same hook.
type DiversityFunc func(tick int64, p TilePos) float64

// HashDiversity returns the default mixing-based scorer.
func HashDiversity(seed int64) DiversityFunc {
	s := uint64(seed)
	return func(tick int64, p TilePos) float64 {
		x := s
		x ^= uint64(uint32(p.X)) * 0x9E3779B97F4A7C15
		x = mix64(x)
		x ^= uint64(uint32(p.Y)) * 0xBF58476D1CE4E5B9
		x = mix64(x)
		x ^= uint64(tick >> 8) // novelty shifts slowly, not every tick
		x = mix64(x)
		return float64(x>>11) / (1 << 53)
	}
}

func mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xFF51AFD7ED558CCD
	x ^= x >> 33
	x *= 0xC4CEB9FE1A85EC53
	x ^= x >> 33
	return x
}
