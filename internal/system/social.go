package system

import (
	"github.com/mossvale/mossvale/internal/content"
	"github.com/mossvale/mossvale/internal/core/ecs"
	coresys "github.com/mossvale/mossvale/internal/core/system"
	"github.com/mossvale/mossvale/internal/world"
)

// ProximitySocialSystem tops social-kind needs back up for pawns standing
// near one another. It runs after decay and before buff reconciliation is
// consumed by the mood sum, so company earned this tick counts this tick.
type ProximitySocialSystem struct {
	world *world.State
}

func NewProximitySocialSystem(ws *world.State) *ProximitySocialSystem {
	return &ProximitySocialSystem{world: ws}
}

func (s *ProximitySocialSystem) Phase() coresys.Phase { return coresys.PhaseSocial }

func (s *ProximitySocialSystem) Update(tick int64) {
	var socialNeeds []*content.NeedDef
	s.world.Content.Needs.Each(func(d *content.NeedDef) {
		if d.Kind == content.NeedKindSocial {
			socialNeeds = append(socialNeeds, d)
		}
	})
	if len(socialNeeds) == 0 {
		return
	}

	type spot struct {
		id  ecs.EntityID
		pos world.TilePos
	}
	spots := make([]spot, 0, s.world.Entities.Pawns.Len())
	ecs.Each2(s.world.Entities.Pawns, s.world.Entities.Positions,
		func(id ecs.EntityID, _ *world.Pawn, p *world.Position) {
			spots = append(spots, spot{id: id, pos: p.Tile()})
		})

	radius := s.world.Tuning.SocialRadius
	gain := s.world.Tuning.SocialGain
	for _, me := range spots {
		needs, ok := s.world.Entities.Needs.Get(me.id)
		if !ok {
			continue
		}
		company := 0
		for _, other := range spots {
			if other.id == me.id {
				continue
			}
			if me.pos.Manhattan(other.pos) <= radius {
				company++
			}
		}
		if company == 0 {
			continue
		}
		for _, def := range socialNeeds {
			if _, tracked := needs.Values[def.ID]; !tracked {
				continue
			}
			needs.Adjust(def.ID, gain*float64(company))
		}
	}
}
