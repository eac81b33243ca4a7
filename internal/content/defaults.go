package content

import _ "embed"

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed default_scenario.json
var defaultScenarioJSON []byte

// Default returns the builtin definition tables, validated.
func Default() (*Registry, error) {
	needs, err := parseNeedTable(defaultsYAML)
	if err != nil {
		return nil, err
	}
	terrains, err := parseTerrainTable(defaultsYAML)
	if err != nil {
		return nil, err
	}
	buildings, err := parseBuildingTable(defaultsYAML)
	if err != nil {
		return nil, err
	}
	buffs, err := parseBuffTable(defaultsYAML)
	if err != nil {
		return nil, err
	}
	resources, err := parseResourceTable(defaultsYAML)
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

// DefaultScenario returns the builtin starting layout.
func DefaultScenario() (*Scenario, error) {
	return ParseScenario(defaultScenarioJSON)
}
