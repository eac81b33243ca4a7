package system

import "sort"

// Runner executes registered systems phase by phase, every tick.
type Runner struct {
	systems []System
	sorted  bool
}

// NewRunner creates an empty runner.
func NewRunner() *Runner {
	return &Runner{systems: make([]System, 0, 16)}
}

// Register adds a system. Registration order breaks ties within a phase.
func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs all systems once in phase order.
func (r *Runner) Tick(tick int64) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(tick)
	}
}

func (r *Runner) ensureSorted() {
	if r.sorted {
		return
	}
	sort.SliceStable(r.systems, func(i, j int) bool {
		return r.systems[i].Phase() < r.systems[j].Phase()
	})
	r.sorted = true
}
