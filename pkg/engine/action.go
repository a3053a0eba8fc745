package engine

import (
	"fmt"
	"strings"
)

// ActionKind names an action on the wire and in logs.
type ActionKind string

const (
	KindStart          ActionKind = "start"
	KindCollect        ActionKind = "collect"
	KindLeave          ActionKind = "leave"
	KindChoose         ActionKind = "choose"
	KindAdvance        ActionKind = "advance"
	KindSwipe          ActionKind = "swipe"
	KindStance         ActionKind = "stance"
	KindStrike         ActionKind = "strike"
	KindArrive         ActionKind = "arrive"
	KindAdvanceCottage ActionKind = "advance_cottage"
	KindChooseMercy    ActionKind = "choose_mercy"
	KindChooseRuthless ActionKind = "choose_ruthless"
	KindClaim          ActionKind = "claim"
	KindExamine        ActionKind = "examine"
	KindRestart        ActionKind = "restart"
)

// Action is a player input. Each variant carries only the payload its
// transition needs.
type Action interface {
	Kind() ActionKind
	isAction()
}

type (
	// Start leaves the title screen.
	Start struct{}
	// Collect picks up a home item.
	Collect struct{ ItemID string }
	// Leave opens the door once the basket is packed.
	Leave struct{}
	// Choose answers the current woods event.
	Choose struct{ ChoiceID string }
	// Advance trudges on to the next mile after an outcome.
	Advance struct{}
	// Swipe is a flavour attack during the ambush.
	Swipe struct{}
	// Stance is a flavour defence during the ambush.
	Stance struct{}
	// Strike slashes the wolf's right forepaw.
	Strike struct{}
	// Arrive reaches the grandmother's cottage.
	Arrive struct{}
	// AdvanceCottage moves the cottage sequence one beat forward.
	AdvanceCottage struct{}
	// ChooseMercy comforts the grandmother.
	ChooseMercy struct{}
	// ChooseRuthless calls the neighbours.
	ChooseRuthless struct{}
	// Claim takes one of the grandmother's possessions.
	Claim struct{ Label string }
	// Examine looks closely at a carried item.
	Examine struct{ ItemID string }
	// Restart discards the session and returns to the title screen.
	Restart struct{}
)

func (Start) Kind() ActionKind          { return KindStart }
func (Collect) Kind() ActionKind        { return KindCollect }
func (Leave) Kind() ActionKind          { return KindLeave }
func (Choose) Kind() ActionKind         { return KindChoose }
func (Advance) Kind() ActionKind        { return KindAdvance }
func (Swipe) Kind() ActionKind          { return KindSwipe }
func (Stance) Kind() ActionKind         { return KindStance }
func (Strike) Kind() ActionKind         { return KindStrike }
func (Arrive) Kind() ActionKind         { return KindArrive }
func (AdvanceCottage) Kind() ActionKind { return KindAdvanceCottage }
func (ChooseMercy) Kind() ActionKind    { return KindChooseMercy }
func (ChooseRuthless) Kind() ActionKind { return KindChooseRuthless }
func (Claim) Kind() ActionKind          { return KindClaim }
func (Examine) Kind() ActionKind        { return KindExamine }
func (Restart) Kind() ActionKind        { return KindRestart }

func (Start) isAction()          {}
func (Collect) isAction()        {}
func (Leave) isAction()          {}
func (Choose) isAction()         {}
func (Advance) isAction()        {}
func (Swipe) isAction()          {}
func (Stance) isAction()         {}
func (Strike) isAction()         {}
func (Arrive) isAction()         {}
func (AdvanceCottage) isAction() {}
func (ChooseMercy) isAction()    {}
func (ChooseRuthless) isAction() {}
func (Claim) isAction()          {}
func (Examine) isAction()        {}
func (Restart) isAction()        {}

// ParseAction builds an action from its wire name and optional payload.
// Payload is required for collect, choose, claim and examine and must be
// empty otherwise.
func ParseAction(kind, payload string) (Action, error) {
	k := ActionKind(strings.ToLower(strings.TrimSpace(kind)))
	payload = strings.TrimSpace(payload)

	needsPayload := k == KindCollect || k == KindChoose || k == KindClaim || k == KindExamine
	if needsPayload && payload == "" {
		return nil, fmt.Errorf("%w: %s requires a payload", ErrUnknownAction, k)
	}
	if !needsPayload && payload != "" {
		return nil, fmt.Errorf("%w: %s takes no payload", ErrUnknownAction, k)
	}

	switch k {
	case KindStart:
		return Start{}, nil
	case KindCollect:
		return Collect{ItemID: payload}, nil
	case KindLeave:
		return Leave{}, nil
	case KindChoose:
		return Choose{ChoiceID: payload}, nil
	case KindAdvance:
		return Advance{}, nil
	case KindSwipe:
		return Swipe{}, nil
	case KindStance:
		return Stance{}, nil
	case KindStrike:
		return Strike{}, nil
	case KindArrive:
		return Arrive{}, nil
	case KindAdvanceCottage:
		return AdvanceCottage{}, nil
	case KindChooseMercy:
		return ChooseMercy{}, nil
	case KindChooseRuthless:
		return ChooseRuthless{}, nil
	case KindClaim:
		return Claim{Label: payload}, nil
	case KindExamine:
		return Examine{ItemID: payload}, nil
	case KindRestart:
		return Restart{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
}

// Payload returns the action's payload, or "" for variants without one.
func Payload(a Action) string {
	switch v := a.(type) {
	case Collect:
		return v.ItemID
	case Choose:
		return v.ChoiceID
	case Claim:
		return v.Label
	case Examine:
		return v.ItemID
	default:
		return ""
	}
}
