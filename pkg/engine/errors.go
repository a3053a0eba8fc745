package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned for any action that is not legal in the
	// current phase. The state is left untouched and nothing is logged to the story.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrBusy rejects an action received while a delayed beat is in flight.
	ErrBusy = fmt.Errorf("%w: busy", ErrInvalidTransition)

	ErrUnknownItem   = fmt.Errorf("%w: unknown item", ErrInvalidTransition)
	ErrUnknownChoice = fmt.Errorf("%w: unknown choice", ErrInvalidTransition)
	ErrUnknownLabel  = fmt.Errorf("%w: unknown claim label", ErrInvalidTransition)

	// ErrUnknownAction is returned by ParseAction for unrecognised input.
	ErrUnknownAction = errors.New("unknown action")
)
