package system

// Phase fixes where in the tick a system runs. The order below is the whole
// contract: needs decay before social contact tops them back up, buffs are
// reconciled before the mood sum, actions resolve before the AI plans, and
// output observers see the finished tick.
type Phase int

const (
	PhaseNeeds   Phase = iota // need decay and debuff reconciliation
	PhaseSocial               // proximity gains feeding back into needs
	PhaseBuffs                // timed buff expiry
	PhaseMood                 // mood recomputed from surviving buffs
	PhaseActions              // queued action execution and movement
	PhaseAI                   // decision making for idle pawns
	PhaseOutput               // theme arbitration, observer feeds
)

// System is one tick-ordered simulation stage.
type System interface {
	Phase() Phase
	Update(tick int64)
}
