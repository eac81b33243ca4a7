package system

import (
	"github.com/mossvale/mossvale/internal/content"
	"github.com/mossvale/mossvale/internal/core/ecs"
	coresys "github.com/mossvale/mossvale/internal/core/system"
	"github.com/mossvale/mossvale/internal/world"
)

// NeedsSystem applies time-of-day decay to every pawn need and keeps the
// hunger-style debuffs in sync with the thresholds.
type NeedsSystem struct {
	world *world.State
}

func NewNeedsSystem(ws *world.State) *NeedsSystem {
	return &NeedsSystem{world: ws}
}

func (s *NeedsSystem) Phase() coresys.Phase { return coresys.PhaseNeeds }

func (s *NeedsSystem) Update(tick int64) {
	mult := s.world.Clock.DecayMultiplier(tick)
	reg := s.world.Content.Needs

	s.world.Entities.Needs.Each(func(id ecs.EntityID, needs *world.NeedSet) {
		buffs, hasBuffs := s.world.Entities.Buffs.Get(id)
		reg.Each(func(def *content.NeedDef) {
			v, tracked := needs.Values[def.ID]
			if !tracked {
				return // 此角色沒有這項需求，跳過
			}
			v -= def.Decay * mult
			if v < 0 {
				v = 0
			}
			if v > 100 {
				v = 100
			}
			needs.Values[def.ID] = v

			if !hasBuffs {
				return
			}
			s.reconcile(buffs, def, v, tick)
		})
	})
}

// reconcile drops any threshold debuff this need held and re-applies the one
// matching the fresh value: critical wins, then low, then none.
func (s *NeedsSystem) reconcile(buffs *world.BuffSet, def *content.NeedDef, v float64, tick int64) {
	buffs.RemoveSource(world.BuffSourceNeedCritical, def.ID)
	buffs.RemoveSource(world.BuffSourceNeedLow, def.ID)

	switch {
	case v < def.Critical && def.CriticalBuff != 0:
		bd := s.world.Content.Buffs.Get(def.CriticalBuff)
		buffs.Apply(world.BuffInstance{
			Def:       bd.ID,
			Source:    world.BuffSourceNeedCritical,
			SourceID:  def.ID,
			Offset:    bd.Offset,
			StartTick: tick,
			EndTick:   -1, // held until the value recovers
		})
	case v < def.Low && def.LowBuff != 0:
		bd := s.world.Content.Buffs.Get(def.LowBuff)
		buffs.Apply(world.BuffInstance{
			Def:       bd.ID,
			Source:    world.BuffSourceNeedLow,
			SourceID:  def.ID,
			Offset:    bd.Offset,
			StartTick: tick,
			EndTick:   -1,
		})
	}
}
