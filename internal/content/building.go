package content

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Work kinds. Onsite work is a single shift at the building; haul work sends
// the worker out to fetch the building's stocked resource.
const (
	WorkKindNone   = ""
	WorkKindOnsite = "onsite"
	WorkKindHaul   = "haul"
)

// Offset is a tile offset relative to a building's origin.
type Offset struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
}

// BuildingDef defines one placeable structure type.
type BuildingDef struct {
	ID        int32    `yaml:"id"`
	Name      string   `yaml:"name"`
	Walkable  bool     `yaml:"walkable"`  // footprint tiles stay passable
	Footprint []Offset `yaml:"footprint"` // occupied tiles; empty means the origin alone
	UseArea   []Offset `yaml:"use_area"`  // standing tiles; empty means any adjacent tile

	Need     int32   `yaml:"need"` // need satisfied by a completed use (0 = not usable)
	Satisfy  float64 `yaml:"satisfy"`
	Duration int64   `yaml:"duration"`  // interaction ticks, shared by use and work
	Price    int64   `yaml:"price"`     // gold a pawn pays per completed use
	UseBuff  int32   `yaml:"use_buff"`  // buff granted on a successful use
	UseDelta int32   `yaml:"use_delta"` // stock change per completed use; negative consumes

	Resource    int32 `yaml:"resource"` // stocked resource (0 = no store)
	Capacity    int32 `yaml:"capacity"`
	StartAmount int32 `yaml:"start_amount"`

	WorkKind    string  `yaml:"work_kind"`
	WorkDelta   int32   `yaml:"work_delta"` // stock change per completed onsite shift
	WorkSatisfy float64 `yaml:"work_satisfy"`
	Wage        int64   `yaml:"wage"`        // gold paid from the till per finished job
	WorkBuff    int32   `yaml:"work_buff"`   // buff granted on a paid job
	FillTarget  float64 `yaml:"fill_target"` // work wanted while stock/capacity < this
	HaulAmount  int32   `yaml:"haul_amount"` // units fetched per haul trip
	Wholesale   int64   `yaml:"wholesale"`   // gold per delivered unit paid to the source

	Gold int64 `yaml:"gold"` // starting till
}

// FootprintTiles returns the footprint offsets, defaulting to the origin.
func (d *BuildingDef) FootprintTiles() []Offset {
	if len(d.Footprint) == 0 {
		return []Offset{{X: 0, Y: 0}}
	}
	return d.Footprint
}

// Usable reports whether completed uses satisfy a need.
func (d *BuildingDef) Usable() bool {
	return d.Need != 0
}

// Workable reports whether the building offers jobs.
func (d *BuildingDef) Workable() bool {
	return d.WorkKind != WorkKindNone
}

// BuildingTable holds all building definitions indexed by ID.
type BuildingTable struct {
	buildings map[int32]*BuildingDef
	byName    map[string]*BuildingDef
	ordered   []*BuildingDef
}

// NewBuildingTable builds a table from definitions. Iteration order is ID order.
func NewBuildingTable(defs []BuildingDef) *BuildingTable {
	t := &BuildingTable{
		buildings: make(map[int32]*BuildingDef, len(defs)),
		byName:    make(map[string]*BuildingDef, len(defs)),
	}
	for i := range defs {
		d := defs[i]
		t.buildings[d.ID] = &d
		t.byName[d.Name] = &d
		t.ordered = append(t.ordered, &d)
	}
	sort.Slice(t.ordered, func(i, j int) bool { return t.ordered[i].ID < t.ordered[j].ID })
	return t
}

// Get returns a building definition by ID, or nil if not found.
func (t *BuildingTable) Get(id int32) *BuildingDef {
	return t.buildings[id]
}

// ByName returns a building definition by name, or nil if not found.
func (t *BuildingTable) ByName(name string) *BuildingDef {
	return t.byName[name]
}

// Count returns the number of buildings loaded.
func (t *BuildingTable) Count() int {
	return len(t.buildings)
}

// Each visits definitions in ascending ID order.
func (t *BuildingTable) Each(fn func(*BuildingDef)) {
	for _, d := range t.ordered {
		fn(d)
	}
}

type buildingListFile struct {
	Buildings []BuildingDef `yaml:"buildings"`
}

func parseBuildingTable(raw []byte) (*BuildingTable, error) {
	var f buildingListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse building_list: %w", err)
	}
	return NewBuildingTable(f.Buildings), nil
}

// LoadBuildingTable loads building definitions from a YAML file.
func LoadBuildingTable(path string) (*BuildingTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read building_list: %w", err)
	}
	return parseBuildingTable(raw)
}
