package system

import (
	"github.com/mossvale/mossvale/internal/core/ecs"
	coresys "github.com/mossvale/mossvale/internal/core/system"
	"github.com/mossvale/mossvale/internal/world"
)

// attachmentDayFactor scales every attachment score once per game day.
// Slow enough that a regular haunt stays a favorite for weeks.
const attachmentDayFactor = 0.9

// AttachmentDecaySystem fades building attachment at each day boundary so
// places a pawn stopped visiting lose their pull.
type AttachmentDecaySystem struct {
	world *world.State
}

func NewAttachmentDecaySystem(ws *world.State) *AttachmentDecaySystem {
	return &AttachmentDecaySystem{world: ws}
}

func (s *AttachmentDecaySystem) Phase() coresys.Phase { return coresys.PhaseNeeds }

func (s *AttachmentDecaySystem) Update(tick int64) {
	if tick <= 0 {
		return
	}
	c := s.world.Clock
	if c.DayAt(tick) == c.DayAt(tick-1) {
		return
	}
	s.world.Entities.Attachments.Each(func(_ ecs.EntityID, a *world.AttachmentSet) {
		a.DecayAll(attachmentDayFactor)
	})
}
