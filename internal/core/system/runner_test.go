package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type probe struct {
	phase Phase
	name  string
	log   *[]string
}

func (p *probe) Phase() Phase { return p.phase }
func (p *probe) Update(tick int64) {
	*p.log = append(*p.log, p.name)
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	// Register in scrambled order.
	r.Register(&probe{phase: PhaseAI, name: "ai", log: &log})
	r.Register(&probe{phase: PhaseNeeds, name: "needs", log: &log})
	r.Register(&probe{phase: PhaseOutput, name: "theme", log: &log})
	r.Register(&probe{phase: PhaseActions, name: "actions", log: &log})
	r.Register(&probe{phase: PhaseMood, name: "mood", log: &log})
	r.Register(&probe{phase: PhaseSocial, name: "social", log: &log})
	r.Register(&probe{phase: PhaseBuffs, name: "buffs", log: &log})

	r.Tick(1)
	assert.Equal(t, []string{"needs", "social", "buffs", "mood", "actions", "ai", "theme"}, log)

	log = log[:0]
	r.Tick(2)
	assert.Equal(t, []string{"needs", "social", "buffs", "mood", "actions", "ai", "theme"}, log)
}

func TestRunnerStableWithinPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&probe{phase: PhaseOutput, name: "first", log: &log})
	r.Register(&probe{phase: PhaseOutput, name: "second", log: &log})
	r.Tick(1)
	assert.Equal(t, []string{"first", "second"}, log)
}
