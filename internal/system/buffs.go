package system

import (
	"github.com/mossvale/mossvale/internal/core/ecs"
	coresys "github.com/mossvale/mossvale/internal/core/system"
	"github.com/mossvale/mossvale/internal/world"
)

// BuffSystem expires timed buffs. Need debuffs carry no end tick and stay
// until the needs system lifts them.
type BuffSystem struct {
	world *world.State
}

func NewBuffSystem(ws *world.State) *BuffSystem {
	return &BuffSystem{world: ws}
}

func (s *BuffSystem) Phase() coresys.Phase { return coresys.PhaseBuffs }

func (s *BuffSystem) Update(tick int64) {
	s.world.Entities.Buffs.Each(func(_ ecs.EntityID, buffs *world.BuffSet) {
		kept := buffs.Active[:0]
		for _, b := range buffs.Active {
			if b.EndTick > 0 && tick >= b.EndTick {
				continue
			}
			kept = append(kept, b)
		}
		buffs.Active = kept
	})
}
