package item

// Well-known item IDs.
const (
	Oatcakes  = "oatcakes"
	Butter    = "butter"
	Knife     = "knife"
	WolfPawID = "wolf-paw"
)

// Item is a collectible object carried in the basket.
// Items are values; transforming one yields a new record with the same ID.
type Item struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`                     // display glyph
	IsTransformed bool   `json:"is_transformed,omitempty"` // true once the item's identity has been narratively replaced
}

// Transform returns a copy of i that keeps i's ID but takes the display
// fields of into.
func (i Item) Transform(into Item) Item {
	return Item{
		ID:            i.ID,
		Name:          into.Name,
		Description:   into.Description,
		Icon:          into.Icon,
		IsTransformed: true,
	}
}

var availableItems = []Item{
	{
		ID:          Oatcakes,
		Name:        "Oatcakes",
		Description: "Baked on the hearthstone.",
		Icon:        "🍪",
	},
	{
		ID:          Butter,
		Name:        "Pot of Butter",
		Description: "A fatty offering.",
		Icon:        "🏺",
	},
	{
		ID:          Knife,
		Name:        "Father's Knife",
		Description: "Iron. Rusted. Sharp.",
		Icon:        "🗡️",
	},
}

var claimLabels = []string{"The Teapot", "The Mirror", "The House"}

// AvailableItems returns the three items that can be collected at home, in display order.
func AvailableItems() []Item {
	out := make([]Item, len(availableItems))
	copy(out, availableItems)
	return out
}

// Lookup finds a home-collection item by ID.
func Lookup(id string) (Item, bool) {
	for _, it := range availableItems {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// WolfPaw is the item taken from the wolf during the ambush.
func WolfPaw() Item {
	return Item{
		ID:          WolfPawID,
		Name:        "The Wolf's Paw",
		Description: "Wrapped in the cloth meant for oatcakes.",
		Icon:        "🐾",
	}
}

// HandWithWart holds the display fields the wolf's paw takes on at the cottage.
// Its ID is irrelevant; use WolfPaw().Transform(HandWithWart()).
func HandWithWart() Item {
	return Item{
		ID:            WolfPawID,
		Name:          "Hand with the Wart",
		Description:   "Toughened with work. A wedding ring on the third finger.",
		Icon:          "🖐️",
		IsTransformed: true,
	}
}

// ClaimLabels returns the spoils that can be claimed in the ending.
func ClaimLabels() []string {
	out := make([]string, len(claimLabels))
	copy(out, claimLabels)
	return out
}

// IsClaimLabel reports whether label is one of the ending spoils.
func IsClaimLabel(label string) bool {
	for _, l := range claimLabels {
		if l == label {
			return true
		}
	}
	return false
}
