package state

import (
	"encoding/json"
	"testing"

	"github.com/jwebster45206/iron-and-snow/pkg/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	gs := New()

	assert.Equal(t, PhaseIntro, gs.Phase)
	assert.Empty(t, gs.Inventory)
	assert.Equal(t, 1, gs.Distance)
	assert.Empty(t, gs.ClaimedItems)
	assert.Equal(t, 0, gs.CottageStep)
	assert.False(t, gs.Busy)
	assert.False(t, gs.AwaitingAdvance)
	assert.Empty(t, gs.Log)
	assert.NoError(t, gs.Validate())
}

func TestClone_IsDeep(t *testing.T) {
	gs := New()
	gs.Phase = PhaseEnding
	gs.Inventory = []item.Item{item.WolfPaw()}
	gs.ClaimedItems = []string{"The Teapot"}
	gs.Log = []string{"one"}

	c := gs.Clone()
	c.Inventory[0].Name = "changed"
	c.ClaimedItems[0] = "The House"
	c.Log = append(c.Log, "two")
	c.Log[0] = "uno"

	assert.Equal(t, "The Wolf's Paw", gs.Inventory[0].Name)
	assert.Equal(t, []string{"The Teapot"}, gs.ClaimedItems)
	assert.Equal(t, []string{"one"}, gs.Log)
}

func TestClone_NilSlices(t *testing.T) {
	c := GameState{Phase: PhaseHome, Distance: 1}.Clone()
	assert.NotNil(t, c.Inventory)
	assert.NotNil(t, c.ClaimedItems)
	assert.NotNil(t, c.Log)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"inventory":[]`)
}

func TestHasItem(t *testing.T) {
	gs := New()
	knife, _ := item.Lookup(item.Knife)
	gs.Inventory = append(gs.Inventory, knife)

	assert.True(t, gs.HasItem(item.Knife))
	assert.False(t, gs.HasItem(item.Butter))

	found, ok := gs.FindItem(item.Knife)
	require.True(t, ok)
	assert.Equal(t, knife, found)
}

func TestPhase(t *testing.T) {
	for _, p := range Phases {
		assert.True(t, p.Valid(), p.String())
	}
	assert.False(t, Phase("WOODS_CHOICE").Valid())

	assert.True(t, PhaseGameOver.IsTerminal())
	assert.True(t, PhaseEnding.IsTerminal())
	assert.False(t, PhaseCottage.IsTerminal())
}

func TestValidate(t *testing.T) {
	knife, _ := item.Lookup(item.Knife)

	tests := []struct {
		name    string
		mutate  func(gs *GameState)
		wantErr string
	}{
		{
			name:    "unknown phase",
			mutate:  func(gs *GameState) { gs.Phase = "LIMBO" },
			wantErr: "unknown phase",
		},
		{
			name:    "duplicate item",
			mutate:  func(gs *GameState) { gs.Inventory = []item.Item{knife, knife} },
			wantErr: "duplicate inventory item",
		},
		{
			name:    "distance too far",
			mutate:  func(gs *GameState) { gs.Distance = 6 },
			wantErr: "distance 6 out of range",
		},
		{
			name:    "distance zero",
			mutate:  func(gs *GameState) { gs.Distance = 0 },
			wantErr: "distance 0 out of range",
		},
		{
			name:    "cottage step outside cottage",
			mutate:  func(gs *GameState) { gs.CottageStep = 1 },
			wantErr: "outside COTTAGE",
		},
		{
			name: "cottage step too high",
			mutate: func(gs *GameState) {
				gs.Phase = PhaseCottage
				gs.CottageStep = 3
			},
			wantErr: "cottage step 3 out of range",
		},
		{
			name:    "claims outside ending",
			mutate:  func(gs *GameState) { gs.ClaimedItems = []string{"The House"} },
			wantErr: "claimed items outside ENDING",
		},
		{
			name: "unknown label",
			mutate: func(gs *GameState) {
				gs.Phase = PhaseEnding
				gs.ClaimedItems = []string{"The Cow"}
			},
			wantErr: "unknown claim label",
		},
		{
			name: "duplicate label",
			mutate: func(gs *GameState) {
				gs.Phase = PhaseEnding
				gs.ClaimedItems = []string{"The House", "The House"}
			},
			wantErr: "duplicate claim label",
		},
		{
			name:    "awaiting outside woods",
			mutate:  func(gs *GameState) { gs.AwaitingAdvance = true },
			wantErr: "awaiting advance outside WOODS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := New()
			tt.mutate(&gs)
			err := gs.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDescribe(t *testing.T) {
	gs := New()
	assert.Equal(t, "Your basket is empty.", gs.DescribeInventory())
	assert.Empty(t, gs.DescribeProgress())

	gs.Inventory = item.AvailableItems()
	assert.Contains(t, gs.DescribeInventory(), "Pot of Butter")

	gs.Phase = PhaseWoods
	gs.Distance = 3
	assert.Equal(t, "Mile 3 of 5", gs.DescribeProgress())

	gs.Phase = PhaseEnding
	gs.ClaimedItems = []string{"The Mirror"}
	assert.Equal(t, "1 of 3 claimed", gs.DescribeProgress())
	assert.False(t, gs.ClaimedAll())
}
