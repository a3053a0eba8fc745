package state

// Phase is the top-level beat of the story.
type Phase string

const (
	PhaseIntro          Phase = "INTRO"
	PhaseHome           Phase = "HOME"
	PhaseWoods          Phase = "WOODS"
	PhaseAmbush         Phase = "AMBUSH"
	PhaseTransformation Phase = "TRANSFORMATION"
	PhaseCottage        Phase = "COTTAGE"
	PhaseGameOver       Phase = "GAME_OVER"
	PhaseEnding         Phase = "ENDING"
)

// Phases lists every phase in story order.
var Phases = []Phase{
	PhaseIntro,
	PhaseHome,
	PhaseWoods,
	PhaseAmbush,
	PhaseTransformation,
	PhaseCottage,
	PhaseGameOver,
	PhaseEnding,
}

// IsTerminal reports whether only a restart can leave p.
func (p Phase) IsTerminal() bool {
	return p == PhaseGameOver || p == PhaseEnding
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

func (p Phase) String() string {
	return string(p)
}
