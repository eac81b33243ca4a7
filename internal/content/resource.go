package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ResourceDef names one haulable material.
type ResourceDef struct {
	ID   int32  `yaml:"id"`
	Name string `yaml:"name"`
}

// ResourceTable holds all resource definitions indexed by ID.
type ResourceTable struct {
	resources map[int32]*ResourceDef
	byName    map[string]*ResourceDef
}

// NewResourceTable builds a table from definitions.
func NewResourceTable(defs []ResourceDef) *ResourceTable {
	t := &ResourceTable{
		resources: make(map[int32]*ResourceDef, len(defs)),
		byName:    make(map[string]*ResourceDef, len(defs)),
	}
	for i := range defs {
		d := defs[i]
		t.resources[d.ID] = &d
		t.byName[d.Name] = &d
	}
	return t
}

// Get returns a resource definition by ID, or nil if not found.
func (t *ResourceTable) Get(id int32) *ResourceDef {
	return t.resources[id]
}

// ByName returns a resource definition by name, or nil if not found.
func (t *ResourceTable) ByName(name string) *ResourceDef {
	return t.byName[name]
}

// Count returns the number of resources loaded.
func (t *ResourceTable) Count() int {
	return len(t.resources)
}

type resourceListFile struct {
	Resources []ResourceDef `yaml:"resources"`
}

func parseResourceTable(raw []byte) (*ResourceTable, error) {
	var f resourceListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse resource_list: %w", err)
	}
	return NewResourceTable(f.Resources), nil
}

// LoadResourceTable loads resource definitions from a YAML file.
func LoadResourceTable(path string) (*ResourceTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resource_list: %w", err)
	}
	return parseResourceTable(raw)
}
