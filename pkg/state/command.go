package state

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/iron-and-snow/pkg/item"
)

// DescribeInventory renders the basket contents as a single line of text.
func (gs GameState) DescribeInventory() string {
	if len(gs.Inventory) == 0 {
		return "Your basket is empty."
	}
	names := make([]string, 0, len(gs.Inventory))
	for _, it := range gs.Inventory {
		names = append(names, it.Icon+" "+it.Name)
	}
	return "You carry: " + strings.Join(names, ", ")
}

// DescribeProgress is a short status such as "Mile 2 of 5" for the side panel.
func (gs GameState) DescribeProgress() string {
	switch gs.Phase {
	case PhaseWoods, PhaseAmbush:
		return fmt.Sprintf("Mile %d of %d", gs.Distance, MaxDistance)
	case PhaseCottage:
		return fmt.Sprintf("Cottage, beat %d of %d", gs.CottageStep+1, MaxCottageStep+1)
	case PhaseEnding:
		return fmt.Sprintf("%d of %d claimed", len(gs.ClaimedItems), len(item.ClaimLabels()))
	default:
		return ""
	}
}
