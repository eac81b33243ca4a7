package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNilEngineFallsBack(t *testing.T) {
	var e *Engine
	assert.Equal(t, int64(4), e.CalcUsePrice(PriceContext{BasePrice: 4}))
	assert.Equal(t, int64(6), e.CalcWorkWage(WageContext{BaseWage: 6}))
	assert.Equal(t, int64(8), e.CalcWholesale(WholesaleContext{BaseRate: 2, Units: 4}))
}

func TestMissingHookFallsBack(t *testing.T) {
	e, err := NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, int64(4), e.CalcUsePrice(PriceContext{BasePrice: 4}))
}

func TestMissingDirIsFine(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	require.NoError(t, err)
	e.Close()
}

func TestHooksRun(t *testing.T) {
	dir := t.TempDir()
	script := `
function calc_use_price(ctx)
  if ctx.hour >= 20 then
    return ctx.base_price * 2
  end
  return ctx.base_price
end

function calc_work_wage(ctx)
  if ctx.capacity > 0 and ctx.stock / ctx.capacity < 0.25 then
    return ctx.base_wage + 2
  end
  return ctx.base_wage
end

function calc_wholesale(ctx)
  return ctx.base_rate * ctx.units
end
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "economy.lua"), []byte(script), 0o644))

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, int64(8), e.CalcUsePrice(PriceContext{BasePrice: 4, Hour: 21}))
	assert.Equal(t, int64(4), e.CalcUsePrice(PriceContext{BasePrice: 4, Hour: 12}))
	assert.Equal(t, int64(7), e.CalcWorkWage(WageContext{BaseWage: 5, Stock: 1, Capacity: 10}))
	assert.Equal(t, int64(5), e.CalcWorkWage(WageContext{BaseWage: 5, Stock: 9, Capacity: 10}))
	assert.Equal(t, int64(6), e.CalcWholesale(WholesaleContext{BaseRate: 1, Units: 6}))
}

func TestBrokenScriptFailsConstruction(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644))
	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}

func TestHookErrorFallsBack(t *testing.T) {
	dir := t.TempDir()
	script := `
function calc_use_price(ctx)
  error("boom")
end
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "economy.lua"), []byte(script), 0o644))
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, int64(4), e.CalcUsePrice(PriceContext{BasePrice: 4}))
}
