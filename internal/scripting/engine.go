package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for the economy formula hooks.
// Single-goroutine access only (tick loop). A nil *Engine is valid and makes
// every hook fall back to its definition value, so the kernel runs
// scriptless out of the box.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory is not an error; broken scripts are.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load economy scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Close releases the VM.
func (e *Engine) Close() {
	if e != nil {
		e.vm.Close()
	}
}

// PriceContext holds pre-packed data for a use-price calculation.
type PriceContext struct {
	Building  int // building definition ID
	BasePrice int
	PawnGold  int
	NeedValue int // buyer's current need, 0-100
	Hour      int
}

// CalcUsePrice asks calc_use_price what a building use costs. Missing hook
// or a failed call falls back to the base price. Results clamp at zero.
func (e *Engine) CalcUsePrice(ctx PriceContext) int64 {
	if e == nil {
		return int64(ctx.BasePrice)
	}
	fn := e.vm.GetGlobal("calc_use_price")
	if fn == lua.LNil {
		return int64(ctx.BasePrice)
	}

	tbl := e.vm.NewTable()
	tbl.RawSetString("building", lua.LNumber(ctx.Building))
	tbl.RawSetString("base_price", lua.LNumber(ctx.BasePrice))
	tbl.RawSetString("pawn_gold", lua.LNumber(ctx.PawnGold))
	tbl.RawSetString("need_value", lua.LNumber(ctx.NeedValue))
	tbl.RawSetString("hour", lua.LNumber(ctx.Hour))

	return e.callPrice("calc_use_price", fn, tbl, int64(ctx.BasePrice))
}

// WageContext holds pre-packed data for a wage calculation.
type WageContext struct {
	Building int
	BaseWage int
	Stock    int
	Capacity int
	Hour     int
}

// CalcWorkWage asks calc_work_wage what a finished job pays.
func (e *Engine) CalcWorkWage(ctx WageContext) int64 {
	if e == nil {
		return int64(ctx.BaseWage)
	}
	fn := e.vm.GetGlobal("calc_work_wage")
	if fn == lua.LNil {
		return int64(ctx.BaseWage)
	}

	tbl := e.vm.NewTable()
	tbl.RawSetString("building", lua.LNumber(ctx.Building))
	tbl.RawSetString("base_wage", lua.LNumber(ctx.BaseWage))
	tbl.RawSetString("stock", lua.LNumber(ctx.Stock))
	tbl.RawSetString("capacity", lua.LNumber(ctx.Capacity))
	tbl.RawSetString("hour", lua.LNumber(ctx.Hour))

	return e.callPrice("calc_work_wage", fn, tbl, int64(ctx.BaseWage))
}

// WholesaleContext holds pre-packed data for a delivery settlement.
type WholesaleContext struct {
	Source   int // source building definition ID, 0 for terrain
	Dest     int
	BaseRate int // gold per unit from the destination's definition
	Units    int
}

// CalcWholesale asks calc_wholesale what a delivery owes the source.
// The default is rate times units.
func (e *Engine) CalcWholesale(ctx WholesaleContext) int64 {
	base := int64(ctx.BaseRate) * int64(ctx.Units)
	if e == nil {
		return base
	}
	fn := e.vm.GetGlobal("calc_wholesale")
	if fn == lua.LNil {
		return base
	}

	tbl := e.vm.NewTable()
	tbl.RawSetString("source", lua.LNumber(ctx.Source))
	tbl.RawSetString("dest", lua.LNumber(ctx.Dest))
	tbl.RawSetString("base_rate", lua.LNumber(ctx.BaseRate))
	tbl.RawSetString("units", lua.LNumber(ctx.Units))

	return e.callPrice("calc_wholesale", fn, tbl, base)
}

// callPrice runs a hook expecting one numeric return. Errors and non-number
// results log once and fall back.
func (e *Engine) callPrice(name string, fn lua.LValue, arg *lua.LTable, fallback int64) int64 {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua hook failed", zap.String("fn", name), zap.Error(err))
		return fallback
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		e.log.Error("lua hook returned non-number", zap.String("fn", name))
		return fallback
	}
	v := int64(n)
	if v < 0 {
		v = 0
	}
	return v
}
