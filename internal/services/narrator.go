package services

import (
	"context"

	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
)

// StaticNarrator tells each woods outcome with the script's own text.
type StaticNarrator struct{}

var _ engine.Narrator = StaticNarrator{}

// Outcome returns the choice's scripted outcome.
func (StaticNarrator) Outcome(ctx context.Context, mile int, choice script.Choice) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return choice.OutcomeText, nil
}
