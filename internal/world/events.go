package world

import "github.com/mossvale/mossvale/internal/core/ecs"

// ActionCompleted is emitted when a pawn finishes or aborts an interaction.
type ActionCompleted struct {
	Pawn    ecs.EntityID
	Kind    ActionKind
	Target  ecs.EntityID
	Success bool
	Tick    int64
}

// GoldMoved records one settled transfer.
type GoldMoved struct {
	From   ecs.EntityID
	To     ecs.EntityID
	Amount int64
	Tick   int64
}
