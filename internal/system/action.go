package system

import (
	"go.uber.org/zap"

	"github.com/mossvale/mossvale/internal/content"
	"github.com/mossvale/mossvale/internal/core/ecs"
	"github.com/mossvale/mossvale/internal/core/event"
	coresys "github.com/mossvale/mossvale/internal/core/system"
	"github.com/mossvale/mossvale/internal/scripting"
	"github.com/mossvale/mossvale/internal/world"
)

// ActionSystem executes every pawn's current action: timed idles, paced
// tile-by-tile movement with the blocking protocol, and building or terrain
// interactions with their completion effects. It is the only code that
// moves pawns or settles action gold.
type ActionSystem struct {
	world *world.State
	lua   *scripting.Engine
	log   *zap.Logger
}

func NewActionSystem(ws *world.State, lua *scripting.Engine, log *zap.Logger) *ActionSystem {
	return &ActionSystem{world: ws, lua: lua, log: log}
}

func (s *ActionSystem) Phase() coresys.Phase { return coresys.PhaseActions }

func (s *ActionSystem) Update(tick int64) {
	s.world.Entities.Actions.Each(func(id ecs.EntityID, a *world.ActionState) {
		if a.Current == nil && !s.dequeue(a, tick) {
			return
		}
		switch a.Current.Kind {
		case world.ActIdle:
			s.tickIdle(a, tick)
		case world.ActMoveTo:
			s.tickMove(id, a, tick)
		default:
			s.tickInteract(id, a, tick)
		}
	})
}

// dequeue promotes the next queued action. One promotion per tick keeps the
// pacing of back-to-back actions identical between runs.
func (s *ActionSystem) dequeue(a *world.ActionState, tick int64) bool {
	if len(a.Queue) == 0 {
		return false
	}
	def := a.Queue[0]
	a.Queue = a.Queue[1:]
	a.Current = &def
	a.StartTick = tick
	a.Path = nil
	a.PathIdx = 0
	a.BlockedAt = 0
	a.WaitUntil = 0
	return true
}

func (s *ActionSystem) tickIdle(a *world.ActionState, tick int64) {
	if tick-a.StartTick >= a.Current.Duration {
		a.Current = nil
	}
}

func (s *ActionSystem) tickMove(id ecs.EntityID, a *world.ActionState, tick int64) {
	pos, ok := s.world.Entities.Positions.Get(id)
	if !ok {
		s.abort(id, a, tick)
		return
	}
	cur := a.Current

	if a.Path == nil {
		path := world.FindPath(s.world.Grid, pos.Tile(), cur.Target, s.world.BlockedTilesFor(id))
		if path == nil {
			s.log.Debug("no path", zap.Uint64("pawn", uint64(id)),
				zap.Int32("x", cur.Target.X), zap.Int32("y", cur.Target.Y))
			s.abort(id, a, tick)
			return
		}
		a.Path = path
		a.PathIdx = 0
		a.StartTick = tick // pacing restarts with every fresh path
	}

	if a.PathIdx >= len(a.Path)-1 {
		a.Current = nil // arrived
		return
	}

	// Position follows elapsed time: the pawn belongs at tile
	// elapsed/ticksPerTile along the path, stepping at most once per tick.
	elapsed := tick - a.StartTick
	expected := int(elapsed / s.world.Tuning.TicksPerTile)
	if expected > len(a.Path)-1 {
		expected = len(a.Path) - 1
	}
	if expected <= a.PathIdx {
		return
	}

	next := a.Path[a.PathIdx+1]
	if s.world.Occupancy.IsOccupied(next, id) {
		s.stepBlocked(id, a, next, tick)
		return
	}
	a.BlockedAt = 0
	a.WaitUntil = 0
	s.world.MovePawn(id, next)
	a.PathIdx++
}

// stepBlocked runs the blocking protocol: give up past the patience
// threshold, yield outright when wandering into busy traffic, otherwise
// hold a randomized beat and then replan around the obstacle.
func (s *ActionSystem) stepBlocked(id ecs.EntityID, a *world.ActionState, next world.TilePos, tick int64) {
	if a.BlockedAt == 0 {
		a.BlockedAt = tick
	}
	if tick-a.BlockedAt >= s.world.Tuning.BlockedThreshold {
		s.abort(id, a, tick)
		return
	}
	if a.Current.Wander && !s.isWandering(s.world.Occupancy.OccupantAt(next)) {
		s.abort(id, a, tick) // 閒晃讓路給有正事的
		return
	}
	if a.WaitUntil == 0 {
		spread := s.world.Tuning.WaitSpread
		if spread < 1 {
			spread = 1
		}
		a.WaitUntil = tick + s.world.Tuning.WaitMin + s.world.RNG.Int63n(spread)
		return
	}
	if tick >= a.WaitUntil {
		a.WaitUntil = 0
		a.Path = nil // replan around the obstacle next tick
	}
}

func (s *ActionSystem) isWandering(id ecs.EntityID) bool {
	if id == 0 {
		return false
	}
	st, ok := s.world.Entities.Actions.Get(id)
	return ok && st.Current != nil && st.Current.Wander
}

func (s *ActionSystem) tickInteract(id ecs.EntityID, a *world.ActionState, tick int64) {
	cur := a.Current
	if cur.TargetID == 0 && cur.Kind != world.ActPickUp {
		s.abort(id, a, tick)
		return
	}
	pos, ok := s.world.Entities.Positions.Get(id)
	if !ok {
		s.abort(id, a, tick)
		return
	}

	var (
		b        *world.Building
		bdef     *content.BuildingDef
		useTiles []world.TilePos
	)
	if cur.TargetID != 0 {
		b, ok = s.world.Entities.Buildings.Get(cur.TargetID)
		if !ok {
			s.abort(id, a, tick) // target torn down mid-walk
			return
		}
		bdef = s.world.Content.Buildings.Get(b.Def)
		if bdef == nil {
			s.abort(id, a, tick)
			return
		}
		useTiles = s.world.BuildingUseTiles(b, bdef)
	} else {
		useTiles = s.world.TerrainUseTiles(cur.Target)
	}

	if !containsTile(useTiles, pos.Tile()) {
		// Not standing in the use area yet: walk there first, then retry
		// this same action.
		dest, found := s.world.NearestReachableUseTile(id, pos.Tile(), useTiles)
		if !found {
			s.abort(id, a, tick)
			return
		}
		a.PushFront(*cur)
		mv := world.ActionDef{Kind: world.ActMoveTo, Label: cur.Label, Target: dest, Wander: cur.Wander}
		a.Current = &mv
		a.StartTick = tick
		a.Path = nil
		a.PathIdx = 0
		a.BlockedAt = 0
		a.WaitUntil = 0
		return
	}

	if b != nil {
		if b.InUseBy != 0 && b.InUseBy != id {
			// Arrived into someone else's session. Wait it out with the
			// same patience budget as a blocked step.
			if a.BlockedAt == 0 {
				a.BlockedAt = tick
			}
			if tick-a.BlockedAt >= s.world.Tuning.BlockedThreshold {
				s.abort(id, a, tick)
			}
			return
		}
		if b.InUseBy == 0 {
			b.InUseBy = id
			a.StartTick = tick // service time starts at the claim
			a.BlockedAt = 0
		}
	}

	if tick-a.StartTick < cur.Duration {
		return
	}
	s.complete(id, a, cur, b, bdef, tick)
}

func (s *ActionSystem) complete(id ecs.EntityID, a *world.ActionState, cur *world.ActionDef, b *world.Building, bdef *content.BuildingDef, tick int64) {
	var success bool
	switch cur.Kind {
	case world.ActUseBuilding:
		success = s.completeUse(id, cur, bdef, tick)
	case world.ActWork:
		success = s.completeWork(id, cur, bdef, tick)
	case world.ActPickUp:
		success = s.completePickUp(id, cur)
	case world.ActDropOff:
		success = s.completeDropOff(id, cur, bdef, tick)
	}
	if b != nil && b.InUseBy == id {
		b.InUseBy = 0
	}
	event.Emit(s.world.Bus, world.ActionCompleted{
		Pawn:    id,
		Kind:    cur.Kind,
		Target:  cur.TargetID,
		Success: success,
		Tick:    tick,
	})
	s.log.Debug("action done", zap.Uint64("pawn", uint64(id)),
		zap.String("kind", cur.Kind.String()), zap.Bool("ok", success))
	a.Current = nil

	// A short readable beat after the deed, except mid-haul.
	if cur.Kind != world.ActPickUp && s.world.Tuning.TerminalIdleTicks > 0 {
		expr := "frustrated"
		if success {
			expr = s.grantedExpression(cur, bdef)
		}
		a.PushFront(world.ActionDef{
			Kind:       world.ActIdle,
			Label:      cur.Label,
			Duration:   s.world.Tuning.TerminalIdleTicks,
			Expression: expr,
		})
	}
}

func (s *ActionSystem) grantedExpression(cur *world.ActionDef, bdef *content.BuildingDef) string {
	if bdef != nil {
		buffID := bdef.UseBuff
		if cur.Kind == world.ActWork || cur.Kind == world.ActDropOff {
			buffID = bdef.WorkBuff
		}
		if bd := s.world.Content.Buffs.Get(buffID); bd != nil && bd.Expression != "" {
			return bd.Expression
		}
	}
	return "pleased"
}

// completeUse settles one building use: consume stock, charge the price,
// and only then hand out the need satisfaction, buff and attachment.
func (s *ActionSystem) completeUse(id ecs.EntityID, cur *world.ActionDef, bdef *content.BuildingDef, tick int64) bool {
	store, hasStore := s.world.Entities.Stores.Get(cur.TargetID)

	if bdef.UseDelta < 0 && (!hasStore || store.Amount < -bdef.UseDelta) {
		return false // 庫存不足
	}

	if bdef.Price > 0 {
		price := s.lua.CalcUsePrice(scripting.PriceContext{
			Building:  int(bdef.ID),
			BasePrice: int(bdef.Price),
			PawnGold:  int(s.goldOf(id)),
			NeedValue: int(s.needOf(id, cur.Need)),
			Hour:      s.world.Clock.HourAt(tick),
		})
		if !s.world.TransferGold(id, cur.TargetID, price) {
			return false // 付不起
		}
	}

	if bdef.UseDelta != 0 && hasStore {
		store.Add(bdef.UseDelta)
	}
	s.satisfyNeed(id, cur.Need, cur.Satisfy)
	s.grantBuff(id, bdef.UseBuff, world.BuffSourceBuilding, bdef.ID, tick)
	s.bumpAttachment(cur.TargetID, id)
	return true
}

// completeWork settles one onsite shift: production lands, then the wage,
// and the worker's benefit only if the till could pay.
func (s *ActionSystem) completeWork(id ecs.EntityID, cur *world.ActionDef, bdef *content.BuildingDef, tick int64) bool {
	store, hasStore := s.world.Entities.Stores.Get(cur.TargetID)

	if bdef.WorkDelta < 0 && (!hasStore || store.Amount < -bdef.WorkDelta) {
		return false
	}
	if bdef.WorkDelta != 0 && hasStore {
		store.Add(bdef.WorkDelta)
	}

	if !s.payWage(id, cur.TargetID, bdef, tick) {
		return false
	}
	s.satisfyNeed(id, cur.Need, cur.Satisfy)
	s.grantBuff(id, bdef.WorkBuff, world.BuffSourceWork, bdef.ID, tick)
	s.bumpAttachment(cur.TargetID, id)
	return true
}

// completePickUp loads the carry slot from a building store or terrain.
// A slot holding a different resource refuses the load outright.
func (s *ActionSystem) completePickUp(id ecs.EntityID, cur *world.ActionDef) bool {
	inv, ok := s.world.Entities.Inventories.Get(id)
	if !ok {
		return false
	}
	if inv.Amount > 0 && inv.Resource != cur.Resource {
		return false
	}
	want := cur.Amount
	if space := inv.Capacity - inv.Amount; want > space {
		want = space
	}
	if want <= 0 {
		return false
	}

	if cur.TargetID != 0 {
		store, hasStore := s.world.Entities.Stores.Get(cur.TargetID)
		if !hasStore || store.Resource != cur.Resource {
			return false
		}
		if want > store.Amount {
			want = store.Amount
		}
		if want <= 0 {
			return false
		}
		store.Amount -= want
		inv.Source = cur.TargetID
	} else {
		inv.Source = 0 // terrain gathering, nobody to pay later
	}
	inv.Resource = cur.Resource
	inv.Amount += want
	return true
}

// completeDropOff unloads into the destination store, clamped by capacity,
// then settles wholesale with the source and the hauler's wage.
func (s *ActionSystem) completeDropOff(id ecs.EntityID, cur *world.ActionDef, bdef *content.BuildingDef, tick int64) bool {
	inv, ok := s.world.Entities.Inventories.Get(id)
	if !ok {
		return false
	}
	store, hasStore := s.world.Entities.Stores.Get(cur.TargetID)
	if !hasStore || store.Resource != cur.Resource {
		return false
	}
	if inv.Amount <= 0 || inv.Resource != cur.Resource {
		return false
	}

	moved := store.Add(inv.Amount)
	if moved <= 0 {
		return false // 倉庫滿了
	}
	inv.Amount -= moved
	source := inv.Source
	if inv.Amount == 0 {
		inv.Resource = 0
		inv.Source = 0
	}

	if source != 0 && bdef.Wholesale > 0 {
		srcDefID := 0
		if sb, found := s.world.Entities.Buildings.Get(source); found {
			srcDefID = int(sb.Def)
		}
		owed := s.lua.CalcWholesale(scripting.WholesaleContext{
			Source:   srcDefID,
			Dest:     int(bdef.ID),
			BaseRate: int(bdef.Wholesale),
			Units:    int(moved),
		})
		// A short till skips settlement; the delivery itself stands.
		s.world.TransferGold(cur.TargetID, source, owed)
	}

	if !s.payWage(id, cur.TargetID, bdef, tick) {
		return false
	}
	s.satisfyNeed(id, cur.Need, cur.Satisfy)
	s.grantBuff(id, bdef.WorkBuff, world.BuffSourceWork, bdef.ID, tick)
	s.bumpAttachment(cur.TargetID, id)
	return true
}

// ---------- completion helpers ----------

func (s *ActionSystem) payWage(id, building ecs.EntityID, bdef *content.BuildingDef, tick int64) bool {
	if bdef.Wage <= 0 {
		return true
	}
	stock, capacity := 0, 0
	if store, ok := s.world.Entities.Stores.Get(building); ok {
		stock, capacity = int(store.Amount), int(store.Capacity)
	}
	wage := s.lua.CalcWorkWage(scripting.WageContext{
		Building: int(bdef.ID),
		BaseWage: int(bdef.Wage),
		Stock:    stock,
		Capacity: capacity,
		Hour:     s.world.Clock.HourAt(tick),
	})
	return s.world.TransferGold(building, id, wage)
}

func (s *ActionSystem) satisfyNeed(id ecs.EntityID, needID int32, amount float64) {
	if needID == 0 || amount == 0 {
		return
	}
	if needs, ok := s.world.Entities.Needs.Get(id); ok {
		needs.Adjust(needID, amount)
	}
}

func (s *ActionSystem) grantBuff(id ecs.EntityID, buffID int32, source world.BuffSource, sourceID int32, tick int64) {
	if buffID == 0 {
		return
	}
	bd := s.world.Content.Buffs.Get(buffID)
	if bd == nil {
		return
	}
	buffs, ok := s.world.Entities.Buffs.Get(id)
	if !ok {
		return
	}
	end := int64(-1)
	if bd.Duration > 0 {
		end = tick + bd.Duration
	}
	buffs.Apply(world.BuffInstance{
		Def:       bd.ID,
		Source:    source,
		SourceID:  sourceID,
		Offset:    bd.Offset,
		StartTick: tick,
		EndTick:   end,
	})
}

func (s *ActionSystem) bumpAttachment(building, pawn ecs.EntityID) {
	if att, ok := s.world.Entities.Attachments.Get(building); ok {
		att.Bump(pawn)
	}
}

func (s *ActionSystem) goldOf(id ecs.EntityID) int64 {
	if g, ok := s.world.Entities.Gold.Get(id); ok {
		return g.Amount
	}
	return 0
}

func (s *ActionSystem) needOf(id ecs.EntityID, needID int32) float64 {
	if needs, ok := s.world.Entities.Needs.Get(id); ok {
		return needs.Values[needID]
	}
	return 0
}

// abort cancels the current action and everything queued behind it,
// releasing any building claim this pawn holds on its target.
func (s *ActionSystem) abort(id ecs.EntityID, a *world.ActionState, tick int64) {
	cur := a.Current
	if cur != nil && cur.TargetID != 0 {
		if b, ok := s.world.Entities.Buildings.Get(cur.TargetID); ok && b.InUseBy == id {
			b.InUseBy = 0
		}
	}
	if cur != nil && isInteraction(cur.Kind) {
		event.Emit(s.world.Bus, world.ActionCompleted{
			Pawn:    id,
			Kind:    cur.Kind,
			Target:  cur.TargetID,
			Success: false,
			Tick:    tick,
		})
	}
	a.Current = nil
	a.Queue = a.Queue[:0]
	a.Path = nil
	a.PathIdx = 0
	a.BlockedAt = 0
	a.WaitUntil = 0
}

func isInteraction(k world.ActionKind) bool {
	switch k {
	case world.ActUseBuilding, world.ActWork, world.ActPickUp, world.ActDropOff:
		return true
	}
	return false
}

func containsTile(tiles []world.TilePos, p world.TilePos) bool {
	for _, t := range tiles {
		if t == p {
			return true
		}
	}
	return false
}
