package world

// RNG is a splitmix64 generator. Each simulation owns exactly one and every
// system draws from it in a fixed order, so a seed fully determines a run.
// The single state word round-trips through saves.
type RNG struct {
	state uint64
}

// NewRNG seeds a generator.
func NewRNG(seed int64) *RNG {
	return &RNG{state: uint64(seed)}
}

// Uint64 returns the next raw draw.
func (r *RNG) Uint64() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Intn returns a draw in [0, n). n must be positive.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		panic("world: Intn with non-positive n")
	}
	return int(r.Uint64() % uint64(n))
}

// Int63n returns a draw in [0, n). n must be positive.
func (r *RNG) Int63n(n int64) int64 {
	if n <= 0 {
		panic("world: Int63n with non-positive n")
	}
	return int64(r.Uint64() % uint64(n))
}

// Float64 returns a draw in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// State exports the generator state for saves.
func (r *RNG) State() uint64 {
	return r.state
}

// Restore overwrites the generator state from a save.
func (r *RNG) Restore(state uint64) {
	r.state = state
}
