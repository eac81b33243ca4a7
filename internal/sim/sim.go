// Package sim assembles the simulation kernel behind one facade: construct
// with New, advance with Tick, observe with Snapshot, persist with Capture,
// Restore and Digest. Single-goroutine use only; the caller owns the loop.
package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mossvale/mossvale/internal/config"
	"github.com/mossvale/mossvale/internal/content"
	"github.com/mossvale/mossvale/internal/core/event"
	coresys "github.com/mossvale/mossvale/internal/core/system"
	"github.com/mossvale/mossvale/internal/scripting"
	"github.com/mossvale/mossvale/internal/system"
	"github.com/mossvale/mossvale/internal/world"
)

// Simulation is one live world plus its tick pipeline.
type Simulation struct {
	cfg      *config.Config
	registry *content.Registry
	state    *world.State
	runner   *coresys.Runner
	log      *zap.Logger
}

type options struct {
	log      *zap.Logger
	lua      *scripting.Engine
	scenario *content.Scenario
}

// Option customizes simulation construction.
type Option func(*options)

// WithLogger routes kernel logging through the given logger. Nil keeps the
// default no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithScripting plugs in the Lua economy hooks. A nil engine keeps the
// definition formulas.
func WithScripting(e *scripting.Engine) Option {
	return func(o *options) { o.lua = e }
}

// WithScenario applies a starting layout after the builtin bootstrap.
func WithScenario(sc *content.Scenario) Option {
	return func(o *options) { o.scenario = sc }
}

// New builds a simulation from config and content tables. The builtin
// bootstrap layout is applied unless config skips it; a scenario option is
// applied on top of whatever the bootstrap placed.
func New(cfg *config.Config, registry *content.Registry, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sim: nil config")
	}
	if registry == nil {
		return nil, fmt.Errorf("sim: nil content registry")
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("sim: content: %w", err)
	}

	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	grid, err := newGrid(cfg.World, registry)
	if err != nil {
		return nil, err
	}
	st := &world.State{
		Entities:  world.NewEntities(),
		Grid:      grid,
		Occupancy: world.NewEntityGrid(),
		Clock:     newClock(cfg.Sim),
		RNG:       world.NewRNG(cfg.World.Seed),
		Bus:       event.NewBus(),
		Content:   registry,
		Tuning:    newTuning(cfg.Sim),
		Diversity: world.HashDiversity(cfg.World.Seed),
		Theme:     system.ThemeMeadow,
	}

	runner := coresys.NewRunner()
	runner.Register(system.NewNeedsSystem(st))
	runner.Register(system.NewAttachmentDecaySystem(st))
	runner.Register(system.NewProximitySocialSystem(st))
	runner.Register(system.NewBuffSystem(st))
	runner.Register(system.NewMoodSystem(st))
	runner.Register(system.NewActionSystem(st, o.lua, o.log))
	runner.Register(system.NewAISystem(st, o.log))
	runner.Register(system.NewThemeSystem(st))

	s := &Simulation{
		cfg:      cfg,
		registry: registry,
		state:    st,
		runner:   runner,
		log:      o.log,
	}

	if !cfg.Bootstrap.Skip {
		boot, err := content.DefaultScenario()
		if err != nil {
			return nil, fmt.Errorf("sim: builtin scenario: %w", err)
		}
		if err := applyScenario(st, registry, boot); err != nil {
			return nil, fmt.Errorf("sim: bootstrap: %w", err)
		}
	}
	if o.scenario != nil {
		if err := applyScenario(st, registry, o.scenario); err != nil {
			return nil, fmt.Errorf("sim: scenario: %w", err)
		}
	}

	s.log.Info("simulation ready",
		zap.Int64("seed", cfg.World.Seed),
		zap.Int("pawns", st.Entities.Pawns.Len()),
		zap.Int("buildings", st.Entities.Buildings.Len()))
	return s, nil
}

// Tick advances the world one step and returns the new tick number. Events
// emitted last tick become readable before any system runs.
func (s *Simulation) Tick() int64 {
	s.state.Tick++
	s.state.Bus.SwapBuffers()
	s.runner.Tick(s.state.Tick)
	return s.state.Tick
}

// CurrentTick returns the last completed tick.
func (s *Simulation) CurrentTick() int64 {
	return s.state.Tick
}

func newGrid(w config.WorldConfig, registry *content.Registry) (*world.Grid, error) {
	if w.MaxX < w.MinX || w.MaxY < w.MinY {
		return nil, fmt.Errorf("sim: degenerate world bounds (%d,%d)-(%d,%d)", w.MinX, w.MinY, w.MaxX, w.MaxY)
	}
	def := registry.Terrains.Get(w.DefaultTerrain)
	if def == nil {
		return nil, fmt.Errorf("sim: unknown default terrain %d", w.DefaultTerrain)
	}
	tile := world.Tile{
		Terrain:     def.ID,
		Walkable:    def.Walkable,
		Buildable:   def.Buildable,
		BlocksLight: def.BlocksLight,
		Color:       def.Color,
	}
	bounds := world.Bounds{MinX: w.MinX, MinY: w.MinY, MaxX: w.MaxX, MaxY: w.MaxY}
	return world.NewGrid(bounds, tile, w.PaletteSize), nil
}

func newClock(c config.SimConfig) *world.Clock {
	return &world.Clock{
		StartHour:    c.StartHour,
		TicksPerHour: c.TicksPerHour,
		NightStart:   c.NightStart,
		NightEnd:     c.NightEnd,
		SleepStart:   c.SleepStart,
		SleepEnd:     c.SleepEnd,
		NightRate:    c.NightDecay,
		SleepRate:    c.SleepDecay,
	}
}

func newTuning(c config.SimConfig) world.Tuning {
	return world.Tuning{
		TicksPerTile:       c.TicksPerTile,
		BlockedThreshold:   c.BlockedThreshold,
		WaitMin:            c.WaitMin,
		WaitSpread:         c.WaitSpread,
		SocialRadius:       c.SocialRadius,
		SocialGain:         c.SocialGain,
		SatisfiedThreshold: c.SatisfiedThreshold,
		ConvergeCap:        c.ConvergeCap,
		InventoryCap:       c.InventoryCap,
		WanderSamples:      c.WanderSamples,
		WanderNear:         c.WanderNear,
		IdleBase:           c.IdleBase,
		IdleScale:          c.IdleScale,
		TerminalIdleTicks:  c.TerminalIdleTicks,
		WorkUrgencyWeight:  c.WorkUrgencyWeight,
		DistanceWeight:     c.DistanceWeight,
		AttachmentWeight:   c.AttachmentWeight,
		CrowdWeight:        c.CrowdWeight,
		ConvergeWeight:     c.ConvergeWeight,
	}
}

// applyScenario resolves every name in the layout against the registry and
// materializes it. Order is terrain, buildings, pawns, so spawn tiles see
// their final walkability.
func applyScenario(st *world.State, reg *content.Registry, sc *content.Scenario) error {
	for _, tr := range sc.Terrain {
		def := reg.Terrains.ByName(tr.Terrain)
		if def == nil {
			return fmt.Errorf("scenario terrain %q: unknown terrain", tr.Terrain)
		}
		w, h := tr.W, tr.H
		if w <= 0 {
			w = 1
		}
		if h <= 0 {
			h = 1
		}
		for y := tr.Y; y < tr.Y+h; y++ {
			for x := tr.X; x < tr.X+w; x++ {
				if !st.Grid.InBounds(x, y) {
					return fmt.Errorf("scenario terrain %q: tile (%d,%d) out of bounds", tr.Terrain, x, y)
				}
				st.Grid.PaintTerrain(x, y, def)
			}
		}
	}

	for _, b := range sc.Buildings {
		def := reg.Buildings.ByName(b.Def)
		if def == nil {
			return fmt.Errorf("scenario building %q: unknown definition", b.Def)
		}
		id, err := st.PlaceBuilding(def.ID, world.TilePos{X: b.X, Y: b.Y})
		if err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
		if b.Stock != nil {
			if store, ok := st.Entities.Stores.Get(id); ok {
				v := *b.Stock
				if v < 0 {
					v = 0
				}
				if v > store.Capacity {
					v = store.Capacity
				}
				store.Amount = v
			}
		}
		if b.Gold != nil {
			if g, ok := st.Entities.Gold.Get(id); ok {
				g.Amount = *b.Gold
			}
		}
	}

	for _, p := range sc.Pawns {
		needs := make(map[int32]float64, len(p.Needs))
		for name, v := range p.Needs {
			def := reg.Needs.ByName(name)
			if def == nil {
				return fmt.Errorf("scenario pawn %q: unknown need %q", p.Name, name)
			}
			needs[def.ID] = v
		}
		name := p.Name
		if name == "" {
			name = content.PawnName(st.RNG.Uint64(), st.RNG.Uint64())
		}
		seed := world.PawnSeed{
			Name:  name,
			Age:   p.Age,
			Pos:   world.TilePos{X: p.X, Y: p.Y},
			Gold:  p.Gold,
			Needs: needs,
		}
		if _, err := st.SpawnPawn(seed); err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
	}
	return nil
}
