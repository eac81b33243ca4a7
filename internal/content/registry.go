package content

import (
	"fmt"
	"path/filepath"
)

// Registry bundles every definition table the kernel consumes. Construct one
// at boot, validate it, and treat it as immutable afterwards.
type Registry struct {
	Needs     *NeedTable
	Terrains  *TerrainTable
	Buildings *BuildingTable
	Buffs     *BuffTable
	Resources *ResourceTable
}

// Load reads all definition tables from a directory and validates their
// cross references.
func Load(dir string) (*Registry, error) {
	needs, err := LoadNeedTable(filepath.Join(dir, "needs.yaml"))
	if err != nil {
		return nil, err
	}
	terrains, err := LoadTerrainTable(filepath.Join(dir, "terrains.yaml"))
	if err != nil {
		return nil, err
	}
	buildings, err := LoadBuildingTable(filepath.Join(dir, "buildings.yaml"))
	if err != nil {
		return nil, err
	}
	buffs, err := LoadBuffTable(filepath.Join(dir, "buffs.yaml"))
	if err != nil {
		return nil, err
	}
	resources, err := LoadResourceTable(filepath.Join(dir, "resources.yaml"))
	if err != nil {
		return nil, err
	}
	r := &Registry{
		Needs:     needs,
		Terrains:  terrains,
		Buildings: buildings,
		Buffs:     buffs,
		Resources: resources,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks every cross reference between tables. A registry that
// passes never produces a dangling lookup during the tick loop.
func (r *Registry) Validate() error {
	var err error
	r.Needs.Each(func(d *NeedDef) {
		if err != nil {
			return
		}
		err = r.validateNeed(d)
	})
	if err != nil {
		return err
	}
	for _, d := range r.Terrains.terrains {
		if d.Harvest != 0 && r.Resources.Get(d.Harvest) == nil {
			return fmt.Errorf("terrain %d (%s): unknown harvest resource %d", d.ID, d.Name, d.Harvest)
		}
		if d.Color < 0 {
			return fmt.Errorf("terrain %d (%s): negative color %d", d.ID, d.Name, d.Color)
		}
	}
	r.Buildings.Each(func(d *BuildingDef) {
		if err != nil {
			return
		}
		err = r.validateBuilding(d)
	})
	return err
}

func (r *Registry) validateNeed(d *NeedDef) error {
	switch d.Kind {
	case NeedKindBasic, NeedKindSocial, NeedKindWork:
	default:
		return fmt.Errorf("need %d (%s): unknown kind %q", d.ID, d.Name, d.Kind)
	}
	if d.Decay < 0 {
		return fmt.Errorf("need %d (%s): negative decay", d.ID, d.Name)
	}
	if d.Critical > d.Low {
		return fmt.Errorf("need %d (%s): critical %v above low %v", d.ID, d.Name, d.Critical, d.Low)
	}
	if d.CriticalBuff != 0 && r.Buffs.Get(d.CriticalBuff) == nil {
		return fmt.Errorf("need %d (%s): unknown critical buff %d", d.ID, d.Name, d.CriticalBuff)
	}
	if d.LowBuff != 0 && r.Buffs.Get(d.LowBuff) == nil {
		return fmt.Errorf("need %d (%s): unknown low buff %d", d.ID, d.Name, d.LowBuff)
	}
	return nil
}

func (r *Registry) validateBuilding(d *BuildingDef) error {
	if d.Need != 0 && r.Needs.Get(d.Need) == nil {
		return fmt.Errorf("building %d (%s): unknown need %d", d.ID, d.Name, d.Need)
	}
	if d.UseBuff != 0 && r.Buffs.Get(d.UseBuff) == nil {
		return fmt.Errorf("building %d (%s): unknown use buff %d", d.ID, d.Name, d.UseBuff)
	}
	if d.WorkBuff != 0 && r.Buffs.Get(d.WorkBuff) == nil {
		return fmt.Errorf("building %d (%s): unknown work buff %d", d.ID, d.Name, d.WorkBuff)
	}
	if d.Resource != 0 && r.Resources.Get(d.Resource) == nil {
		return fmt.Errorf("building %d (%s): unknown resource %d", d.ID, d.Name, d.Resource)
	}
	if d.Capacity < 0 || d.StartAmount < 0 || d.StartAmount > d.Capacity {
		return fmt.Errorf("building %d (%s): bad stock range %d/%d", d.ID, d.Name, d.StartAmount, d.Capacity)
	}
	if (d.Usable() || d.Workable()) && d.Duration <= 0 {
		return fmt.Errorf("building %d (%s): duration must be positive", d.ID, d.Name)
	}
	switch d.WorkKind {
	case WorkKindNone:
	case WorkKindOnsite:
		if d.Resource == 0 && d.WorkDelta != 0 {
			return fmt.Errorf("building %d (%s): work delta without a resource", d.ID, d.Name)
		}
	case WorkKindHaul:
		if d.Resource == 0 {
			return fmt.Errorf("building %d (%s): haul work needs a stocked resource", d.ID, d.Name)
		}
		if d.HaulAmount <= 0 {
			return fmt.Errorf("building %d (%s): haul amount must be positive", d.ID, d.Name)
		}
	default:
		return fmt.Errorf("building %d (%s): unknown work kind %q", d.ID, d.Name, d.WorkKind)
	}
	if d.FillTarget < 0 || d.FillTarget > 1 {
		return fmt.Errorf("building %d (%s): fill target %v outside [0,1]", d.ID, d.Name, d.FillTarget)
	}
	return nil
}
