package engine

import (
	"fmt"

	"github.com/jwebster45206/iron-and-snow/pkg/item"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

// Beat identifies a delayed effect.
type Beat string

const (
	// BeatChoiceOutcome resolves a woods choice into its outcome line.
	BeatChoiceOutcome Beat = "choice_outcome"
	// BeatReveal turns the wolf's paw into the grandmother's hand.
	BeatReveal Beat = "reveal"
)

// Deferred is the second half of a transition that completes after a pacing
// delay. The state returned with it has Busy set; Complete clears it.
type Deferred struct {
	Beat Beat

	// Line is the static text appended on completion. For a choice outcome it
	// is the fallback used when narration fails.
	Line string

	// Mile and Choice are set for BeatChoiceOutcome.
	Mile   int
	Choice script.Choice

	// Complete applies the effect to the state current at completion time,
	// appending line, and returns the new state and the lines it appended.
	Complete func(st state.GameState, line string) (state.GameState, []string)
}

// Outcome is the result of an accepted transition.
type Outcome struct {
	State    state.GameState
	Lines    []string  // lines appended to the log by this transition, in order
	Deferred *Deferred // non-nil when part of the effect is still pending
}

// Transition computes the next state for an action. It never mutates st.
// Rejected actions return an error wrapping ErrInvalidTransition; duplicate
// collects and claims are accepted with no lines.
func Transition(st state.GameState, sc *script.Script, a Action) (Outcome, error) {
	if st.Busy {
		return Outcome{}, fmt.Errorf("%w: %s while a delayed beat is in flight", ErrBusy, a.Kind())
	}

	if _, ok := a.(Restart); ok {
		return Outcome{State: state.New()}, nil
	}

	if v, ok := a.(Examine); ok {
		return examine(st, v)
	}

	switch st.Phase {
	case state.PhaseIntro:
		if _, ok := a.(Start); ok {
			out := appendLines(st, sc.HomeText()...)
			out.State.Phase = state.PhaseHome
			return out, nil
		}

	case state.PhaseHome:
		switch v := a.(type) {
		case Collect:
			return collect(st, v)
		case Leave:
			return leave(st, sc)
		}

	case state.PhaseWoods:
		switch v := a.(type) {
		case Choose:
			return choose(st, sc, v)
		case Advance:
			return advance(st, sc)
		}

	case state.PhaseAmbush:
		switch a.(type) {
		case Swipe:
			return appendLines(st, sc.SwipeText()), nil
		case Stance:
			return appendLines(st, sc.StanceText()), nil
		case Strike:
			return strike(st, sc), nil
		}

	case state.PhaseTransformation:
		if _, ok := a.(Arrive); ok {
			out := appendLines(st, sc.CottageText(script.CottageIntro))
			out.State.Phase = state.PhaseCottage
			out.State.CottageStep = 0
			return out, nil
		}

	case state.PhaseCottage:
		switch a.(type) {
		case AdvanceCottage:
			return advanceCottage(st, sc)
		case ChooseMercy:
			if st.CottageStep == state.MaxCottageStep {
				out := appendLines(st, sc.GameOverText())
				out.State.Phase = state.PhaseGameOver
				return out, nil
			}
		case ChooseRuthless:
			if st.CottageStep == state.MaxCottageStep {
				out := appendLines(st, sc.EndingText()...)
				out.State.Phase = state.PhaseEnding
				return out, nil
			}
		}

	case state.PhaseEnding:
		if v, ok := a.(Claim); ok {
			return claim(st, v)
		}
	}

	return Outcome{}, invalid(st, a, "not legal here")
}

func invalid(st state.GameState, a Action, reason string) error {
	return fmt.Errorf("%w: %s in %s: %s", ErrInvalidTransition, a.Kind(), st.Phase, reason)
}

// appendLines clones st and appends lines to its log.
func appendLines(st state.GameState, lines ...string) Outcome {
	next := st.Clone()
	next.Log = append(next.Log, lines...)
	return Outcome{State: next, Lines: lines}
}

func collect(st state.GameState, a Collect) (Outcome, error) {
	it, ok := item.Lookup(a.ItemID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w %q", ErrUnknownItem, a.ItemID)
	}
	if st.HasItem(it.ID) {
		return Outcome{State: st.Clone()}, nil
	}
	out := appendLines(st, fmt.Sprintf("You pick up the %s.", it.Name))
	out.State.Inventory = append(out.State.Inventory, it)
	return out, nil
}

func leave(st state.GameState, sc *script.Script) (Outcome, error) {
	for _, it := range item.AvailableItems() {
		if !st.HasItem(it.ID) {
			return Outcome{}, invalid(st, Leave{}, "basket is not packed")
		}
	}
	ev, err := sc.WoodsEvent(1)
	if err != nil {
		return Outcome{}, err
	}
	out := appendLines(st, ev.Text)
	out.State.Phase = state.PhaseWoods
	out.State.Distance = 1
	out.State.AwaitingAdvance = false
	return out, nil
}

func choose(st state.GameState, sc *script.Script, a Choose) (Outcome, error) {
	if st.AwaitingAdvance {
		return Outcome{}, invalid(st, a, "an outcome is already showing")
	}
	ev, err := sc.WoodsEvent(st.Distance)
	if err != nil {
		return Outcome{}, invalid(st, a, err.Error())
	}
	c, ok := ev.Choice(a.ChoiceID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w %q at mile %d", ErrUnknownChoice, a.ChoiceID, st.Distance)
	}

	next := st.Clone()
	next.Busy = true
	return Outcome{
		State: next,
		Deferred: &Deferred{
			Beat:   BeatChoiceOutcome,
			Line:   c.OutcomeText,
			Mile:   st.Distance,
			Choice: c,
			Complete: func(cur state.GameState, line string) (state.GameState, []string) {
				done := cur.Clone()
				done.Log = append(done.Log, line)
				done.AwaitingAdvance = true
				done.Busy = false
				return done, []string{line}
			},
		},
	}, nil
}

func advance(st state.GameState, sc *script.Script) (Outcome, error) {
	if !st.AwaitingAdvance {
		return Outcome{}, invalid(st, Advance{}, "no outcome to advance from")
	}

	distance := st.Distance + 1
	if distance > script.WoodsMiles {
		out := appendLines(st, sc.AmbushText()...)
		out.State.Phase = state.PhaseAmbush
		out.State.Distance = distance
		out.State.AwaitingAdvance = false
		kept := out.State.Inventory[:0]
		for _, it := range out.State.Inventory {
			if it.ID == item.Knife {
				kept = append(kept, it)
			}
		}
		out.State.Inventory = kept
		return out, nil
	}

	ev, err := sc.WoodsEvent(distance)
	if err != nil {
		return Outcome{}, err
	}
	out := appendLines(st, ev.Text)
	out.State.Distance = distance
	out.State.AwaitingAdvance = false
	return out, nil
}

func strike(st state.GameState, sc *script.Script) Outcome {
	out := appendLines(st, sc.TransformationText()...)
	out.State.Phase = state.PhaseTransformation
	if !out.State.HasItem(item.WolfPawID) {
		out.State.Inventory = append(out.State.Inventory, item.WolfPaw())
	}
	return out
}

func advanceCottage(st state.GameState, sc *script.Script) (Outcome, error) {
	switch st.CottageStep {
	case 0:
		out := appendLines(st, sc.CottageText(script.CottageDialogue))
		out.State.Busy = true
		out.Deferred = &Deferred{
			Beat: BeatReveal,
			Line: sc.CottageText(script.CottageReveal),
			Complete: func(cur state.GameState, line string) (state.GameState, []string) {
				done := cur.Clone()
				for i, it := range done.Inventory {
					if it.ID == item.WolfPawID {
						done.Inventory[i] = it.Transform(item.HandWithWart())
					}
				}
				done.Log = append(done.Log, line)
				done.CottageStep = 1
				done.Busy = false
				return done, []string{line}
			},
		}
		return out, nil
	case 1:
		out := appendLines(st, sc.CottageText(script.CottageConfrontation))
		out.State.CottageStep = 2
		return out, nil
	default:
		return Outcome{}, invalid(st, AdvanceCottage{}, "the cottage sequence is complete")
	}
}

func claim(st state.GameState, a Claim) (Outcome, error) {
	if !item.IsClaimLabel(a.Label) {
		return Outcome{}, fmt.Errorf("%w %q", ErrUnknownLabel, a.Label)
	}
	if st.HasClaimed(a.Label) {
		return Outcome{State: st.Clone()}, nil
	}
	out := appendLines(st, fmt.Sprintf("You claimed %s.", a.Label))
	out.State.ClaimedItems = append(out.State.ClaimedItems, a.Label)
	return out, nil
}

func examine(st state.GameState, a Examine) (Outcome, error) {
	if st.Phase == state.PhaseIntro || st.IsTerminal() {
		return Outcome{}, invalid(st, a, "nothing to examine")
	}
	it, ok := st.FindItem(a.ItemID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w %q is not carried", ErrUnknownItem, a.ItemID)
	}
	return appendLines(st, fmt.Sprintf("You look at the %s. %s", it.Name, it.Description)), nil
}
