package system

import (
	"github.com/mossvale/mossvale/internal/core/ecs"
	"github.com/mossvale/mossvale/internal/core/event"
	coresys "github.com/mossvale/mossvale/internal/core/system"
	"github.com/mossvale/mossvale/internal/world"
)

// Theme keys, in arbitration priority order.
const (
	ThemeHush     = "hush"     // sleep window
	ThemeNocturne = "nocturne" // night
	ThemeSomber   = "somber"   // village morale is down
	ThemeBustle   = "bustle"   // actions finished last tick
	ThemeMeadow   = "meadow"   // default day
)

// somberMood is the average mood below which the somber theme takes over.
const somberMood = -20

// ThemeSystem arbitrates the ambient theme key exposed in snapshots. Pure
// priority selection, no audio here.
type ThemeSystem struct {
	world *world.State
}

func NewThemeSystem(ws *world.State) *ThemeSystem {
	return &ThemeSystem{world: ws}
}

func (s *ThemeSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ThemeSystem) Update(tick int64) {
	s.world.Theme = s.pick(tick)
}

func (s *ThemeSystem) pick(tick int64) string {
	if s.world.Clock.IsSleepHour(tick) {
		return ThemeHush
	}
	if s.world.Clock.IsNightHour(tick) {
		return ThemeNocturne
	}
	var sum float64
	var count int
	s.world.Entities.Moods.Each(func(_ ecs.EntityID, m *world.Mood) {
		sum += m.Value
		count++
	})
	if count > 0 && sum/float64(count) < somberMood {
		return ThemeSomber
	}
	if len(event.Events[world.ActionCompleted](s.world.Bus)) > 0 {
		return ThemeBustle
	}
	return ThemeMeadow
}
