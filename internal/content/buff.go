package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BuffDef defines one mood modifier template.
type BuffDef struct {
	ID         int32   `yaml:"id"`
	Name       string  `yaml:"name"`
	Offset     float64 `yaml:"offset"`     // contribution to mood while active
	Duration   int64   `yaml:"duration"`   // ticks; 0 or less never self-expires
	Expression string  `yaml:"expression"` // idle hint while this buff dominates
}

// BuffTable holds all buff definitions indexed by ID.
type BuffTable struct {
	buffs  map[int32]*BuffDef
	byName map[string]*BuffDef
}

// NewBuffTable builds a table from definitions.
func NewBuffTable(defs []BuffDef) *BuffTable {
	t := &BuffTable{
		buffs:  make(map[int32]*BuffDef, len(defs)),
		byName: make(map[string]*BuffDef, len(defs)),
	}
	for i := range defs {
		d := defs[i]
		t.buffs[d.ID] = &d
		t.byName[d.Name] = &d
	}
	return t
}

// Get returns a buff definition by ID, or nil if not found.
func (t *BuffTable) Get(id int32) *BuffDef {
	return t.buffs[id]
}

// ByName returns a buff definition by name, or nil if not found.
func (t *BuffTable) ByName(name string) *BuffDef {
	return t.byName[name]
}

// Count returns the number of buffs loaded.
func (t *BuffTable) Count() int {
	return len(t.buffs)
}

type buffListFile struct {
	Buffs []BuffDef `yaml:"buffs"`
}

func parseBuffTable(raw []byte) (*BuffTable, error) {
	var f buffListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse buff_list: %w", err)
	}
	return NewBuffTable(f.Buffs), nil
}

// LoadBuffTable loads buff definitions from a YAML file.
func LoadBuffTable(path string) (*BuffTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read buff_list: %w", err)
	}
	return parseBuffTable(raw)
}
