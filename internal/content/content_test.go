package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryValid(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 4, reg.Needs.Count())
	assert.Equal(t, 4, reg.Terrains.Count())
	assert.Equal(t, 5, reg.Buildings.Count())
	assert.Equal(t, 2, reg.Resources.Count())

	hunger := reg.Needs.ByName("hunger")
	require.NotNil(t, hunger)
	assert.Equal(t, int32(1), hunger.ID)
	assert.Equal(t, NeedKindBasic, hunger.Kind)

	purpose := reg.Needs.ByName("purpose")
	require.NotNil(t, purpose)
	assert.Equal(t, NeedKindWork, purpose.Kind)

	stall := reg.Buildings.ByName("market stall")
	require.NotNil(t, stall)
	assert.True(t, stall.Usable())
	assert.True(t, stall.Workable())
	assert.Equal(t, WorkKindHaul, stall.WorkKind)

	well := reg.Buildings.ByName("well")
	require.NotNil(t, well)
	assert.False(t, well.Usable())
	assert.False(t, well.Workable())
}

func TestNeedTableOrderedIteration(t *testing.T) {
	tbl := NewNeedTable([]NeedDef{
		{ID: 3, Name: "c"},
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b"},
	})
	var ids []int32
	tbl.Each(func(d *NeedDef) { ids = append(ids, d.ID) })
	assert.Equal(t, []int32{1, 2, 3}, ids)
}

func TestValidateCatchesDanglingRefs(t *testing.T) {
	base := func() *Registry {
		return &Registry{
			Needs:     NewNeedTable([]NeedDef{{ID: 1, Name: "hunger", Critical: 20, Low: 45}}),
			Terrains:  NewTerrainTable([]TerrainDef{{ID: 1, Name: "meadow", Walkable: true}}),
			Buildings: NewBuildingTable(nil),
			Buffs:     NewBuffTable([]BuffDef{{ID: 101, Name: "sated", Offset: 5}}),
			Resources: NewResourceTable([]ResourceDef{{ID: 1, Name: "water"}}),
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("unknown need buff", func(t *testing.T) {
		r := base()
		r.Needs = NewNeedTable([]NeedDef{{ID: 1, Name: "hunger", Critical: 20, Low: 45, CriticalBuff: 999}})
		assert.Error(t, r.Validate())
	})

	t.Run("critical above low", func(t *testing.T) {
		r := base()
		r.Needs = NewNeedTable([]NeedDef{{ID: 1, Name: "hunger", Critical: 50, Low: 45}})
		assert.Error(t, r.Validate())
	})

	t.Run("unknown harvest resource", func(t *testing.T) {
		r := base()
		r.Terrains = NewTerrainTable([]TerrainDef{{ID: 2, Name: "bog", Harvest: 77}})
		assert.Error(t, r.Validate())
	})

	t.Run("building with unknown need", func(t *testing.T) {
		r := base()
		r.Buildings = NewBuildingTable([]BuildingDef{{ID: 10, Name: "hut", Need: 42, Duration: 5}})
		assert.Error(t, r.Validate())
	})

	t.Run("usable building without duration", func(t *testing.T) {
		r := base()
		r.Buildings = NewBuildingTable([]BuildingDef{{ID: 10, Name: "hut", Need: 1}})
		assert.Error(t, r.Validate())
	})

	t.Run("haul without resource", func(t *testing.T) {
		r := base()
		r.Buildings = NewBuildingTable([]BuildingDef{{ID: 10, Name: "depot", WorkKind: WorkKindHaul, HaulAmount: 5, Duration: 5}})
		assert.Error(t, r.Validate())
	})

	t.Run("stock above capacity", func(t *testing.T) {
		r := base()
		r.Buildings = NewBuildingTable([]BuildingDef{{ID: 10, Name: "bin", Resource: 1, Capacity: 10, StartAmount: 11}})
		assert.Error(t, r.Validate())
	})
}

func TestLoadTablesFromDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("needs.yaml", "needs:\n  - id: 1\n    name: hunger\n    decay: 0.1\n    critical: 20\n    low: 40\n")
	write("terrains.yaml", "terrains:\n  - id: 1\n    name: meadow\n    walkable: true\n    buildable: true\n")
	write("buildings.yaml", "buildings:\n  - id: 10\n    name: hut\n    need: 1\n    satisfy: 30\n    duration: 10\n")
	write("buffs.yaml", "buffs: []\n")
	write("resources.yaml", "resources: []\n")

	reg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Needs.Count())
	assert.NotNil(t, reg.Buildings.ByName("hut"))
}

func TestLoadMissingTableFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestScenarioSchemaRejectsBadShape(t *testing.T) {
	_, err := ParseScenario([]byte(`{"pawns": [{"name": "x"}]}`))
	assert.Error(t, err, "pawns need coordinates")

	_, err = ParseScenario([]byte(`{"buildings": [{"def": "well", "x": 1, "y": 2, "color": 9}]}`))
	assert.Error(t, err, "unknown keys are rejected")

	sc, err := ParseScenario([]byte(`{"pawns": [{"x": 1, "y": 2, "gold": 5}]}`))
	require.NoError(t, err)
	require.Len(t, sc.Pawns, 1)
	assert.Equal(t, int64(5), sc.Pawns[0].Gold)
}

func TestDefaultScenarioParses(t *testing.T) {
	sc, err := DefaultScenario()
	require.NoError(t, err)
	assert.NotEmpty(t, sc.Buildings)
	assert.NotEmpty(t, sc.Pawns)

	reg, err := Default()
	require.NoError(t, err)
	for _, b := range sc.Buildings {
		assert.NotNil(t, reg.Buildings.ByName(b.Def), "scenario names a missing building def: %s", b.Def)
	}
	for _, tr := range sc.Terrain {
		assert.NotNil(t, reg.Terrains.ByName(tr.Terrain), "scenario names a missing terrain def: %s", tr.Terrain)
	}
}

func TestPawnNameDeterministic(t *testing.T) {
	a := PawnName(7, 13)
	b := PawnName(7, 13)
	assert.Equal(t, a, b)
	require.NotEmpty(t, a)
	assert.Equal(t, strings.ToUpper(a[:1]), a[:1], "names are title cased")
	assert.NotEqual(t, PawnName(1, 2), PawnName(3, 4))
}
