package system

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mossvale/mossvale/internal/content"
	"github.com/mossvale/mossvale/internal/core/ecs"
	coresys "github.com/mossvale/mossvale/internal/core/system"
	"github.com/mossvale/mossvale/internal/world"
)

// maxHarvestScan bounds the ring search for a terrain gather tile.
const maxHarvestScan = 24

// Same expansion order as the pathfinder uses.
var (
	wanderDX = [4]int32{0, 1, 0, -1}
	wanderDY = [4]int32{-1, 0, 1, 0}
)

// AISystem decides what idle pawns do next. It scans needs below the
// satisfied threshold worst-first, scores candidate buildings, and queues
// the matching use, work or haul actions; pawns with nothing urgent wander.
type AISystem struct {
	world *world.State
	log   *zap.Logger
}

func NewAISystem(ws *world.State, log *zap.Logger) *AISystem {
	return &AISystem{world: ws, log: log}
}

func (s *AISystem) Phase() coresys.Phase { return coresys.PhaseAI }

func (s *AISystem) Update(tick int64) {
	conv := s.convergingCounts()
	s.world.Entities.Actions.Each(func(id ecs.EntityID, a *world.ActionState) {
		if !a.Idle() {
			return
		}
		if _, isPawn := s.world.Entities.Pawns.Get(id); !isPawn {
			return
		}
		s.decide(id, a, conv, tick)
	})
}

// convergingCounts tallies how many pawns already have each building as an
// interaction target, current or queued. Decisions made later this same
// tick bump the counts so the cap holds within the tick too.
func (s *AISystem) convergingCounts() map[ecs.EntityID]int {
	conv := make(map[ecs.EntityID]int, 16)
	s.world.Entities.Actions.Each(func(_ ecs.EntityID, a *world.ActionState) {
		if a.Current != nil && isInteraction(a.Current.Kind) && a.Current.TargetID != 0 {
			conv[a.Current.TargetID]++
		}
		for i := range a.Queue {
			if isInteraction(a.Queue[i].Kind) && a.Queue[i].TargetID != 0 {
				conv[a.Queue[i].TargetID]++
			}
		}
	})
	return conv
}

func (s *AISystem) decide(id ecs.EntityID, a *world.ActionState, conv map[ecs.EntityID]int, tick int64) {
	pos, ok := s.world.Entities.Positions.Get(id)
	if !ok {
		return
	}
	from := pos.Tile()

	for _, ne := range s.unsatisfiedNeeds(id) {
		def := s.world.Content.Needs.Get(ne.id)
		if def == nil {
			continue // 未知需求跳過
		}
		if def.Kind == content.NeedKindWork {
			if s.tryWork(id, a, from, def, conv) {
				return
			}
			continue
		}
		if s.tryUse(id, a, from, def, conv) {
			return
		}
	}
	s.wander(id, a, from, tick)
}

type needCandidate struct {
	id    int32
	value float64
}

// unsatisfiedNeeds returns needs below the satisfied threshold, worst
// first, ties to the lower need ID.
func (s *AISystem) unsatisfiedNeeds(id ecs.EntityID) []needCandidate {
	needs, ok := s.world.Entities.Needs.Get(id)
	if !ok {
		return nil
	}
	out := make([]needCandidate, 0, len(needs.Values))
	for needID, v := range needs.Values {
		if v < s.world.Tuning.SatisfiedThreshold {
			out = append(out, needCandidate{id: needID, value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].value != out[j].value {
			return out[i].value < out[j].value
		}
		return out[i].id < out[j].id
	})
	return out
}

type buildingCandidate struct {
	id    ecs.EntityID
	b     *world.Building
	def   *content.BuildingDef
	score float64
}

// sortCandidates orders by score descending, ties to the lower entity ID.
// Candidates arrive in ascending ID already, so the stable sort keeps ties
// reproducible.
func sortCandidates(cands []buildingCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
}

// tryWork picks a workplace for a work-kind need. Wanting workers means:
// workable, free, under the converging cap, stock below the fill target.
func (s *AISystem) tryWork(id ecs.EntityID, a *world.ActionState, from world.TilePos, need *content.NeedDef, conv map[ecs.EntityID]int) bool {
	t := s.world.Tuning
	var cands []buildingCandidate
	s.world.Entities.Buildings.Each(func(bid ecs.EntityID, b *world.Building) {
		def := s.world.Content.Buildings.Get(b.Def)
		if def == nil || !def.Workable() {
			return
		}
		if b.InUseBy != 0 && b.InUseBy != id {
			return
		}
		if conv[bid] >= t.ConvergeCap {
			return
		}
		fill := 1.0
		if store, ok := s.world.Entities.Stores.Get(bid); ok {
			fill = store.Fill()
		}
		if def.FillTarget > 0 && fill >= def.FillTarget {
			return // stocked enough, nobody hiring
		}
		own, others := s.attachmentTerms(bid, id)
		score := (1-fill)*t.WorkUrgencyWeight -
			float64(from.Manhattan(b.Origin()))*t.DistanceWeight +
			own*t.AttachmentWeight -
			others*t.CrowdWeight -
			float64(conv[bid])*t.ConvergeWeight
		cands = append(cands, buildingCandidate{id: bid, b: b, def: def, score: score})
	})
	sortCandidates(cands)

	for i := range cands {
		c := cands[i]
		if _, ok := s.world.NearestReachableUseTile(id, from, s.world.BuildingUseTiles(c.b, c.def)); !ok {
			continue
		}
		if c.def.WorkKind == content.WorkKindHaul {
			if !s.queueHaul(id, a, from, c, need, conv) {
				continue
			}
		} else {
			a.Enqueue(world.ActionDef{
				Kind:     world.ActWork,
				Label:    "work at " + c.def.Name,
				TargetID: c.id,
				Duration: c.def.Duration,
				Need:     need.ID,
				Satisfy:  c.def.WorkSatisfy,
			})
			conv[c.id]++
		}
		s.log.Debug("ai queued work", zap.Uint64("pawn", uint64(id)),
			zap.String("building", c.def.Name), zap.Float64("score", c.score))
		return true
	}
	return false
}

// queueHaul builds the PickUp then DropOff pair for a haul workplace. The
// source is the nearest other building stocking the resource, else the
// nearest gatherable terrain tile.
func (s *AISystem) queueHaul(id ecs.EntityID, a *world.ActionState, from world.TilePos, c buildingCandidate, need *content.NeedDef, conv map[ecs.EntityID]int) bool {
	resource := c.def.Resource
	if resource == 0 {
		return false
	}
	if inv, ok := s.world.Entities.Inventories.Get(id); ok && inv.Amount > 0 && inv.Resource != resource {
		return false // carrying something else, can't load this
	}
	amount := c.def.HaulAmount
	if amount <= 0 {
		amount = s.world.Tuning.InventoryCap
	}

	pickup, ok := s.haulSource(from, resource, c.id)
	if !ok {
		return false
	}
	pickup.Amount = amount
	pickup.Duration = c.def.Duration

	a.Enqueue(
		pickup,
		world.ActionDef{
			Kind:     world.ActDropOff,
			Label:    "deliver " + s.resourceName(resource),
			TargetID: c.id,
			Resource: resource,
			Amount:   amount,
			Duration: c.def.Duration,
			Need:     need.ID,
			Satisfy:  c.def.WorkSatisfy,
		},
	)
	if pickup.TargetID != 0 {
		conv[pickup.TargetID]++
	}
	conv[c.id]++
	return true
}

// haulSource returns a PickUp skeleton pointed at the nearest stocked
// building (the destination itself excluded), falling back to terrain.
func (s *AISystem) haulSource(from world.TilePos, resource int32, dest ecs.EntityID) (world.ActionDef, bool) {
	var (
		bestID   ecs.EntityID
		bestDist int32 = -1
	)
	s.world.Entities.Buildings.Each(func(bid ecs.EntityID, b *world.Building) {
		if bid == dest {
			return
		}
		store, ok := s.world.Entities.Stores.Get(bid)
		if !ok || store.Resource != resource || store.Amount <= 0 {
			return
		}
		d := from.Manhattan(b.Origin())
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestID = bid
		}
	})
	if bestID != 0 {
		return world.ActionDef{
			Kind:     world.ActPickUp,
			Label:    "fetch " + s.resourceName(resource),
			TargetID: bestID,
			Resource: resource,
		}, true
	}
	if p, ok := s.nearestHarvestTile(from, resource); ok {
		return world.ActionDef{
			Kind:     world.ActPickUp,
			Label:    "gather " + s.resourceName(resource),
			Target:   p,
			Resource: resource,
		}, true
	}
	return world.ActionDef{}, false
}

// nearestHarvestTile ring-scans outward for terrain that yields the
// resource. Scan order inside a ring is fixed, so ties are stable.
func (s *AISystem) nearestHarvestTile(from world.TilePos, resource int32) (world.TilePos, bool) {
	match := func(x, y int32) bool {
		if !s.world.Grid.InBounds(x, y) {
			return false
		}
		td := s.world.Content.Terrains.Get(s.world.Grid.Tile(x, y).Terrain)
		return td != nil && td.Harvest == resource
	}
	if match(from.X, from.Y) {
		return from, true
	}
	for r := int32(1); r <= maxHarvestScan; r++ {
		for dx := -r; dx <= r; dx++ {
			dy := r - dx
			if dx < 0 {
				dy = r + dx
			}
			if match(from.X+dx, from.Y-dy) {
				return world.TilePos{X: from.X + dx, Y: from.Y - dy}, true
			}
			if dy != 0 && match(from.X+dx, from.Y+dy) {
				return world.TilePos{X: from.X + dx, Y: from.Y + dy}, true
			}
		}
	}
	return world.TilePos{}, false
}

// tryUse picks a building that satisfies an ordinary need: free, stocked
// if it consumes stock, affordable at the listed price.
func (s *AISystem) tryUse(id ecs.EntityID, a *world.ActionState, from world.TilePos, need *content.NeedDef, conv map[ecs.EntityID]int) bool {
	t := s.world.Tuning
	gold := s.pawnGold(id)
	var cands []buildingCandidate
	s.world.Entities.Buildings.Each(func(bid ecs.EntityID, b *world.Building) {
		def := s.world.Content.Buildings.Get(b.Def)
		if def == nil || def.Need != need.ID {
			return
		}
		if b.InUseBy != 0 && b.InUseBy != id {
			return
		}
		if def.UseDelta < 0 {
			store, ok := s.world.Entities.Stores.Get(bid)
			if !ok || store.Amount < -def.UseDelta {
				return
			}
		}
		if def.Price > 0 && gold < def.Price {
			return
		}
		own, others := s.attachmentTerms(bid, id)
		score := -float64(from.Manhattan(b.Origin()))*t.DistanceWeight +
			own*t.AttachmentWeight -
			others*t.CrowdWeight
		cands = append(cands, buildingCandidate{id: bid, b: b, def: def, score: score})
	})
	sortCandidates(cands)

	for i := range cands {
		c := cands[i]
		if _, ok := s.world.NearestReachableUseTile(id, from, s.world.BuildingUseTiles(c.b, c.def)); !ok {
			continue
		}
		a.Enqueue(world.ActionDef{
			Kind:     world.ActUseBuilding,
			Label:    "use " + c.def.Name,
			TargetID: c.id,
			Duration: c.def.Duration,
			Need:     need.ID,
			Satisfy:  c.def.Satisfy,
		})
		conv[c.id]++
		s.log.Debug("ai queued use", zap.Uint64("pawn", uint64(id)),
			zap.String("building", c.def.Name), zap.Float64("score", c.score))
		return true
	}
	return false
}

// wander sends a pawn with nothing urgent toward a fresh-looking tile:
// a few map-wide samples, a few near directional ones, best diversity
// wins with a random tie-break.
func (s *AISystem) wander(id ecs.EntityID, a *world.ActionState, from world.TilePos, tick int64) {
	t := s.world.Tuning
	bounds := s.world.Grid.Bounds()

	cands := make([]world.TilePos, 0, t.WanderSamples+t.WanderNear)
	for i := 0; i < t.WanderSamples; i++ {
		x := bounds.MinX + int32(s.world.RNG.Intn(int(bounds.Width())))
		y := bounds.MinY + int32(s.world.RNG.Intn(int(bounds.Height())))
		cands = append(cands, world.TilePos{X: x, Y: y})
	}
	for i := 0; i < t.WanderNear; i++ {
		d := s.world.RNG.Intn(4)
		dist := int32(2 + s.world.RNG.Intn(5))
		cands = append(cands, world.TilePos{
			X: from.X + wanderDX[d]*dist,
			Y: from.Y + wanderDY[d]*dist,
		})
	}

	var (
		best    world.TilePos
		bestDiv float64
		ties    int
		found   bool
	)
	for _, p := range cands {
		if p == from || !s.world.Grid.InBounds(p.X, p.Y) || !s.world.Grid.Tile(p.X, p.Y).IsWalkable() {
			continue
		}
		if s.world.Occupancy.IsOccupied(p, id) {
			continue
		}
		div := s.world.Diversity(tick, p)
		switch {
		case !found || div > bestDiv:
			best, bestDiv, ties, found = p, div, 1, true
		case div == bestDiv:
			ties++
			if s.world.RNG.Intn(ties) == 0 {
				best = p
			}
		}
	}
	if !found {
		// Boxed in. Sit for a beat and try again later.
		a.Enqueue(world.ActionDef{Kind: world.ActIdle, Label: "linger", Duration: t.IdleBase, Wander: true})
		return
	}

	idle := t.IdleBase + int64(bestDiv*t.IdleScale)
	a.Enqueue(
		world.ActionDef{Kind: world.ActMoveTo, Label: "wander", Target: best, Wander: true},
		world.ActionDef{Kind: world.ActIdle, Label: "wander", Duration: idle, Wander: true,
			Expression: s.idleExpression(id)},
	)
	s.log.Debug("ai wander", zap.Uint64("pawn", uint64(id)),
		zap.Int32("x", best.X), zap.Int32("y", best.Y))
}

// idleExpression picks the face a loitering pawn wears: the strongest
// active buff's expression, else the lowest need's, else content.
func (s *AISystem) idleExpression(id ecs.EntityID) string {
	if buffs, ok := s.world.Entities.Buffs.Get(id); ok {
		strongest := 0.0
		expr := ""
		for i := range buffs.Active {
			off := buffs.Active[i].Offset
			if off < 0 {
				off = -off
			}
			if off <= strongest {
				continue
			}
			if bd := s.world.Content.Buffs.Get(buffs.Active[i].Def); bd != nil && bd.Expression != "" {
				strongest = off
				expr = bd.Expression
			}
		}
		if expr != "" {
			return expr
		}
	}
	if needs, ok := s.world.Entities.Needs.Get(id); ok {
		lowID, lowVal := int32(0), 101.0
		for nid, v := range needs.Values {
			if v < lowVal || (v == lowVal && nid < lowID) {
				lowID, lowVal = nid, v
			}
		}
		if nd := s.world.Content.Needs.Get(lowID); nd != nil && nd.Expression != "" {
			return nd.Expression
		}
	}
	return "content"
}

func (s *AISystem) attachmentTerms(building, pawn ecs.EntityID) (own, others float64) {
	att, ok := s.world.Entities.Attachments.Get(building)
	if !ok {
		return 0, 0
	}
	for pid, v := range att.Scores {
		if pid == pawn {
			own = v
		} else {
			others += v
		}
	}
	return own, others
}

func (s *AISystem) pawnGold(id ecs.EntityID) int64 {
	if g, ok := s.world.Entities.Gold.Get(id); ok {
		return g.Amount
	}
	return 0
}

func (s *AISystem) resourceName(id int32) string {
	if rd := s.world.Content.Resources.Get(id); rd != nil {
		return rd.Name
	}
	return "goods"
}
