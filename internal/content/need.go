package content

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Need kinds. Basic needs are satisfied by using buildings, social needs by
// proximity to other pawns (and social venues), work needs by finished work.
const (
	NeedKindBasic  = ""
	NeedKindSocial = "social"
	NeedKindWork   = "work"
)

// NeedDef defines one decaying drive.
type NeedDef struct {
	ID           int32   `yaml:"id"`
	Name         string  `yaml:"name"`
	Kind         string  `yaml:"kind"`
	Decay        float64 `yaml:"decay"` // points lost per tick at the daytime rate
	Critical     float64 `yaml:"critical"`
	Low          float64 `yaml:"low"`
	CriticalBuff int32   `yaml:"critical_buff"` // debuff held while value < critical
	LowBuff      int32   `yaml:"low_buff"`      // debuff held while value < low
	Expression   string  `yaml:"expression"`    // idle hint when this is the worst need
}

// NeedTable holds all need definitions indexed by ID.
type NeedTable struct {
	needs   map[int32]*NeedDef
	byName  map[string]*NeedDef
	ordered []*NeedDef
}

// NewNeedTable builds a table from definitions. Iteration order is ID order.
func NewNeedTable(defs []NeedDef) *NeedTable {
	t := &NeedTable{
		needs:  make(map[int32]*NeedDef, len(defs)),
		byName: make(map[string]*NeedDef, len(defs)),
	}
	for i := range defs {
		d := defs[i]
		t.needs[d.ID] = &d
		t.byName[d.Name] = &d
		t.ordered = append(t.ordered, &d)
	}
	sort.Slice(t.ordered, func(i, j int) bool { return t.ordered[i].ID < t.ordered[j].ID })
	return t
}

// Get returns a need definition by ID, or nil if not found.
func (t *NeedTable) Get(id int32) *NeedDef {
	return t.needs[id]
}

// ByName returns a need definition by name, or nil if not found.
func (t *NeedTable) ByName(name string) *NeedDef {
	return t.byName[name]
}

// Count returns the number of needs loaded.
func (t *NeedTable) Count() int {
	return len(t.needs)
}

// Each visits definitions in ascending ID order.
func (t *NeedTable) Each(fn func(*NeedDef)) {
	for _, d := range t.ordered {
		fn(d)
	}
}

type needListFile struct {
	Needs []NeedDef `yaml:"needs"`
}

func parseNeedTable(raw []byte) (*NeedTable, error) {
	var f needListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse need_list: %w", err)
	}
	return NewNeedTable(f.Needs), nil
}

// LoadNeedTable loads need definitions from a YAML file.
func LoadNeedTable(path string) (*NeedTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read need_list: %w", err)
	}
	return parseNeedTable(raw)
}
