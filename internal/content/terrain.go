package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TerrainDef defines one paintable ground type.
type TerrainDef struct {
	ID          int32  `yaml:"id"`
	Name        string `yaml:"name"`
	Walkable    bool   `yaml:"walkable"`
	Buildable   bool   `yaml:"buildable"`
	BlocksLight bool   `yaml:"blocks_light"`
	Color       int32  `yaml:"color"`   // palette index, clamped at paint time
	Harvest     int32  `yaml:"harvest"` // resource gathered off this tile (0 = none)
}

// TerrainTable holds all terrain definitions indexed by ID.
type TerrainTable struct {
	terrains map[int32]*TerrainDef
	byName   map[string]*TerrainDef
}

// NewTerrainTable builds a table from definitions.
func NewTerrainTable(defs []TerrainDef) *TerrainTable {
	t := &TerrainTable{
		terrains: make(map[int32]*TerrainDef, len(defs)),
		byName:   make(map[string]*TerrainDef, len(defs)),
	}
	for i := range defs {
		d := defs[i]
		t.terrains[d.ID] = &d
		t.byName[d.Name] = &d
	}
	return t
}

// Get returns a terrain definition by ID, or nil if not found.
func (t *TerrainTable) Get(id int32) *TerrainDef {
	return t.terrains[id]
}

// ByName returns a terrain definition by name, or nil if not found.
func (t *TerrainTable) ByName(name string) *TerrainDef {
	return t.byName[name]
}

// Count returns the number of terrains loaded.
func (t *TerrainTable) Count() int {
	return len(t.terrains)
}

type terrainListFile struct {
	Terrains []TerrainDef `yaml:"terrains"`
}

func parseTerrainTable(raw []byte) (*TerrainTable, error) {
	var f terrainListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse terrain_list: %w", err)
	}
	return NewTerrainTable(f.Terrains), nil
}

// LoadTerrainTable loads terrain definitions from a YAML file.
func LoadTerrainTable(path string) (*TerrainTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terrain_list: %w", err)
	}
	return parseTerrainTable(raw)
}
