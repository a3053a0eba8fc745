package main

import (
	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/item"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

// option is one selectable action in the choice panel.
type option struct {
	Label  string
	Hint   string // dim second line, may be empty
	Action engine.Action
}

// options lists the actions the player can take from st, in display order.
// Every option is legal unless st is busy.
func options(st state.GameState, sc *script.Script) []option {
	var out []option

	switch st.Phase {
	case state.PhaseIntro:
		out = append(out, option{Label: "Enter the Woods", Action: engine.Start{}})

	case state.PhaseHome:
		for _, it := range item.AvailableItems() {
			if !st.HasItem(it.ID) {
				out = append(out, option{Label: it.Icon + " Take the " + it.Name, Action: engine.Collect{ItemID: it.ID}})
			}
		}
		if len(out) == 0 {
			out = append(out, option{Label: "Open the Door", Action: engine.Leave{}})
		}

	case state.PhaseWoods:
		if st.AwaitingAdvance {
			out = append(out, option{Label: "Trudge On", Action: engine.Advance{}})
			break
		}
		if ev, err := sc.WoodsEvent(st.Distance); err == nil {
			for _, c := range ev.Choices {
				out = append(out, option{Label: c.Text, Action: engine.Choose{ChoiceID: c.ID}})
			}
		}

	case state.PhaseAmbush:
		out = append(out,
			option{Label: "Swipe", Action: engine.Swipe{}},
			option{Label: "Stance", Action: engine.Stance{}},
			option{Label: "Slash the Right Forepaw", Action: engine.Strike{}},
		)

	case state.PhaseTransformation:
		out = append(out, option{Label: "Arrive at Cottage", Action: engine.Arrive{}})

	case state.PhaseCottage:
		switch st.CottageStep {
		case 0:
			out = append(out, option{Label: "Make a Cold Compress", Action: engine.AdvanceCottage{}})
		case 1:
			out = append(out, option{Label: "Check the Grandmother", Action: engine.AdvanceCottage{}})
		default:
			out = append(out,
				option{Label: "Comfort Her", Hint: "She is your kin", Action: engine.ChooseMercy{}},
				option{Label: "Call the Neighbours", Hint: "Cross yourself and cry out", Action: engine.ChooseRuthless{}},
			)
		}

	case state.PhaseEnding:
		for _, label := range item.ClaimLabels() {
			if !st.HasClaimed(label) {
				out = append(out, option{Label: "Claim " + label, Action: engine.Claim{Label: label}})
			}
		}
		if st.ClaimedAll() {
			out = append(out, option{Label: "Reincarnate", Action: engine.Restart{}})
		}

	case state.PhaseGameOver:
		out = append(out, option{Label: "Try Again", Action: engine.Restart{}})
	}

	if st.Phase != state.PhaseIntro && !st.IsTerminal() {
		for _, it := range st.Inventory {
			out = append(out, option{Label: "Examine " + it.Name, Action: engine.Examine{ItemID: it.ID}})
		}
	}

	return out
}
