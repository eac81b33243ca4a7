package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Scenario is a declarative starting layout applied to a fresh world:
// terrain paint, building placements, pawn spawns.
type Scenario struct {
	Name      string             `json:"name,omitempty"`
	Terrain   []ScenarioTerrain  `json:"terrain,omitempty"`
	Buildings []ScenarioBuilding `json:"buildings,omitempty"`
	Pawns     []ScenarioPawn     `json:"pawns,omitempty"`
}

// ScenarioTerrain paints a rectangle of one terrain type.
type ScenarioTerrain struct {
	Terrain string `json:"terrain"`
	X       int32  `json:"x"`
	Y       int32  `json:"y"`
	W       int32  `json:"w,omitempty"` // defaults to 1
	H       int32  `json:"h,omitempty"`
}

// ScenarioBuilding places one building by definition name.
type ScenarioBuilding struct {
	Def   string `json:"def"`
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	Stock *int32 `json:"stock,omitempty"` // overrides the definition's start amount
	Gold  *int64 `json:"gold,omitempty"`  // overrides the definition's starting till
}

// ScenarioPawn spawns one pawn. An empty name draws a generated one.
type ScenarioPawn struct {
	Name  string             `json:"name,omitempty"`
	Age   int32              `json:"age,omitempty"`
	X     int32              `json:"x"`
	Y     int32              `json:"y"`
	Gold  int64              `json:"gold,omitempty"`
	Needs map[string]float64 `json:"needs,omitempty"` // starting values by need name
}

//go:embed scenario_schema.json
var scenarioSchemaJSON string

var scenarioSchema = jsonschema.MustCompileString("scenario_schema.json", scenarioSchemaJSON)

// ParseScenario validates raw JSON against the scenario schema and decodes it.
// Schema validation catches shape mistakes; name references are resolved
// later against a registry when the scenario is applied.
func ParseScenario(raw []byte) (*Scenario, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := scenarioSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("scenario schema: %w", err)
	}
	var sc Scenario
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(raw)
}
