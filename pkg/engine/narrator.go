package engine

import (
	"context"

	"github.com/jwebster45206/iron-and-snow/pkg/script"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

// Narrator produces the outcome line for a woods choice. A failed or empty
// narration is replaced by the choice's static outcome text.
type Narrator interface {
	Outcome(ctx context.Context, mile int, choice script.Choice) (string, error)
}

// Observer is told about every dispatched action.
type Observer interface {
	Accepted(kind ActionKind, from, to state.Phase)
	Rejected(kind ActionKind, phase state.Phase, err error)
}
