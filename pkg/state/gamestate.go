package state

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jwebster45206/iron-and-snow/pkg/item"
)

const (
	// MaxDistance is the mile at which the walk ends in the ambush.
	MaxDistance = 5
	// MaxCottageStep is the last beat of the cottage sequence, where the player chooses.
	MaxCottageStep = 2
)

// GameState is one snapshot of a play session. The engine never mutates a
// snapshot it has handed out; every transition works on a Clone.
type GameState struct {
	Phase           Phase       `json:"phase"`
	Inventory       []item.Item `json:"inventory"`        // unique by ID, in pickup order
	Distance        int         `json:"distance"`         // 1..MaxDistance, meaningful in WOODS
	ClaimedItems    []string    `json:"claimed_items"`    // ending spoils, in claim order
	AwaitingAdvance bool        `json:"awaiting_advance"` // an outcome is showing; the player must trudge on
	CottageStep     int         `json:"cottage_step"`     // 0..MaxCottageStep, meaningful in COTTAGE
	Busy            bool        `json:"busy"`             // a delayed beat is in flight
	Log             []string    `json:"log"`              // narrative log, append-only until restart
}

// New returns the initial configuration of a session.
func New() GameState {
	return GameState{
		Phase:        PhaseIntro,
		Inventory:    []item.Item{},
		Distance:     1,
		ClaimedItems: []string{},
		Log:          []string{},
	}
}

// Clone returns a deep copy of gs.
func (gs GameState) Clone() GameState {
	out := gs
	out.Inventory = slices.Clone(gs.Inventory)
	out.ClaimedItems = slices.Clone(gs.ClaimedItems)
	out.Log = slices.Clone(gs.Log)
	if out.Inventory == nil {
		out.Inventory = []item.Item{}
	}
	if out.ClaimedItems == nil {
		out.ClaimedItems = []string{}
	}
	if out.Log == nil {
		out.Log = []string{}
	}
	return out
}

// HasItem reports whether an item with the given ID is in the inventory.
func (gs GameState) HasItem(id string) bool {
	_, ok := gs.FindItem(id)
	return ok
}

// FindItem returns the inventory item with the given ID.
func (gs GameState) FindItem(id string) (item.Item, bool) {
	for _, it := range gs.Inventory {
		if it.ID == id {
			return it, true
		}
	}
	return item.Item{}, false
}

func (gs GameState) HasClaimed(label string) bool {
	return slices.Contains(gs.ClaimedItems, label)
}

// IsTerminal reports whether the session has reached GAME_OVER or ENDING.
func (gs GameState) IsTerminal() bool {
	return gs.Phase.IsTerminal()
}

// ClaimedAll reports whether every ending spoil has been claimed.
func (gs GameState) ClaimedAll() bool {
	return len(gs.ClaimedItems) == len(item.ClaimLabels())
}

// Validate checks the structural invariants of a snapshot.
func (gs GameState) Validate() error {
	var errs []error

	if !gs.Phase.Valid() {
		errs = append(errs, fmt.Errorf("unknown phase %q", gs.Phase))
	}

	ids := make(map[string]bool, len(gs.Inventory))
	for _, it := range gs.Inventory {
		if ids[it.ID] {
			errs = append(errs, fmt.Errorf("duplicate inventory item %q", it.ID))
		}
		ids[it.ID] = true
	}

	if gs.Distance < 1 || gs.Distance > MaxDistance {
		errs = append(errs, fmt.Errorf("distance %d out of range 1..%d", gs.Distance, MaxDistance))
	}

	if gs.CottageStep < 0 || gs.CottageStep > MaxCottageStep {
		errs = append(errs, fmt.Errorf("cottage step %d out of range 0..%d", gs.CottageStep, MaxCottageStep))
	}
	if gs.CottageStep != 0 && gs.Phase != PhaseCottage && !gs.Phase.IsTerminal() {
		errs = append(errs, fmt.Errorf("cottage step %d outside COTTAGE", gs.CottageStep))
	}

	if len(gs.ClaimedItems) > 0 && gs.Phase != PhaseEnding {
		errs = append(errs, errors.New("claimed items outside ENDING"))
	}
	labels := make(map[string]bool, len(gs.ClaimedItems))
	for _, l := range gs.ClaimedItems {
		if !item.IsClaimLabel(l) {
			errs = append(errs, fmt.Errorf("unknown claim label %q", l))
		}
		if labels[l] {
			errs = append(errs, fmt.Errorf("duplicate claim label %q", l))
		}
		labels[l] = true
	}

	if gs.AwaitingAdvance && gs.Phase != PhaseWoods {
		errs = append(errs, errors.New("awaiting advance outside WOODS"))
	}

	return errors.Join(errs...)
}
