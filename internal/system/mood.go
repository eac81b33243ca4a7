package system

import (
	"github.com/mossvale/mossvale/internal/core/ecs"
	coresys "github.com/mossvale/mossvale/internal/core/system"
	"github.com/mossvale/mossvale/internal/world"
)

// MoodSystem recomputes each pawn's mood as the clamped sum of its active
// buff offsets. Mood is derived state; nothing else writes it.
type MoodSystem struct {
	world *world.State
}

func NewMoodSystem(ws *world.State) *MoodSystem {
	return &MoodSystem{world: ws}
}

func (s *MoodSystem) Phase() coresys.Phase { return coresys.PhaseMood }

func (s *MoodSystem) Update(int64) {
	ecs.Each2(s.world.Entities.Moods, s.world.Entities.Buffs,
		func(_ ecs.EntityID, mood *world.Mood, buffs *world.BuffSet) {
			sum := 0.0
			for _, b := range buffs.Active {
				sum += b.Offset
			}
			if sum > 100 {
				sum = 100
			}
			if sum < -100 {
				sum = -100
			}
			mood.Value = sum
		})
}
