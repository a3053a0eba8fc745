package script

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// WoodsMiles is the number of choice screens in the woods. The mile after the
// last one is the ambush.
const WoodsMiles = 4

//go:embed werewolf.yaml
var defaultScript []byte

// Choice is one option presented at a woods event.
type Choice struct {
	ID          string `yaml:"id" json:"id"`
	Text        string `yaml:"text" json:"text"`
	OutcomeText string `yaml:"outcome" json:"outcome_text"` // also the fallback when narration fails
}

// WoodsEvent is the branch point shown at one mile of the walk.
type WoodsEvent struct {
	Mile    int      `yaml:"mile" json:"mile"`
	Text    string   `yaml:"text" json:"text"`
	Choices []Choice `yaml:"choices" json:"choices"`
}

// Choice finds a choice offered at this event by ID.
func (e WoodsEvent) Choice(id string) (Choice, bool) {
	for _, c := range e.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// CottageBeat selects a line of the cottage sequence.
type CottageBeat int

const (
	CottageIntro CottageBeat = iota
	CottageDialogue
	CottageReveal
	CottageConfrontation
)

func (b CottageBeat) String() string {
	switch b {
	case CottageIntro:
		return "intro"
	case CottageDialogue:
		return "dialogue"
	case CottageReveal:
		return "reveal"
	case CottageConfrontation:
		return "confrontation"
	default:
		return fmt.Sprintf("CottageBeat(%d)", int(b))
	}
}

// Script is the static narrative content of the story. It is read-only
// once loaded.
type Script struct {
	TitleText    string `yaml:"title"`
	SubtitleText string `yaml:"subtitle"`
	Intro        string `yaml:"intro"`

	Home struct {
		Description string `yaml:"description"`
		Mother      string `yaml:"mother"`
	} `yaml:"home"`

	WoodsEvents []WoodsEvent `yaml:"woods_events"`

	Ambush struct {
		Intro       string `yaml:"intro"`
		Description string `yaml:"description"`
		Loss        string `yaml:"loss"`
		Swipe       string `yaml:"swipe"`
		Stance      string `yaml:"stance"`
	} `yaml:"ambush"`

	Transformation struct {
		Text   string `yaml:"text"`
		Prompt string `yaml:"prompt"`
	} `yaml:"transformation"`

	Cottage struct {
		Intro         string `yaml:"intro"`
		Dialogue      string `yaml:"dialogue"`
		Reveal        string `yaml:"reveal"`
		Confrontation string `yaml:"confrontation"`
	} `yaml:"cottage"`

	GameOver struct {
		Title string `yaml:"title"`
		Text  string `yaml:"text"`
	} `yaml:"game_over"`

	Ending struct {
		Title  string `yaml:"title"`
		CryOut string `yaml:"cry_out"`
		Text   string `yaml:"text"`
	} `yaml:"ending"`

	WhisperLines []string `yaml:"whispers"`
}

// Load parses a script from YAML and validates it.
func Load(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads and validates a script file.
func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

var (
	defaultOnce sync.Once
	defaultVal  *Script
	defaultErr  error
)

// Default returns the embedded script.
func Default() (*Script, error) {
	defaultOnce.Do(func() {
		defaultVal, defaultErr = Load(bytes.NewReader(defaultScript))
	})
	return defaultVal, defaultErr
}

// MustDefault is Default for callers that cannot recover from a broken build.
func MustDefault() *Script {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Script) Title() string    { return s.TitleText }
func (s *Script) Subtitle() string { return s.SubtitleText }

// IntroText is the epigraph shown on the title screen.
func (s *Script) IntroText() string { return s.Intro }

// HomeText returns the lines appended when the story starts, in order.
func (s *Script) HomeText() []string {
	return []string{s.Home.Description, s.Home.Mother}
}

// WoodsEvent returns the event for mile 1..WoodsMiles.
func (s *Script) WoodsEvent(mile int) (WoodsEvent, error) {
	if mile < 1 || mile > len(s.WoodsEvents) {
		return WoodsEvent{}, fmt.Errorf("no woods event for mile %d", mile)
	}
	return s.WoodsEvents[mile-1], nil
}

// AmbushText returns the intro, description and inventory-loss lines, in order.
func (s *Script) AmbushText() []string {
	return []string{s.Ambush.Intro, s.Ambush.Description, s.Ambush.Loss}
}

func (s *Script) SwipeText() string  { return s.Ambush.Swipe }
func (s *Script) StanceText() string { return s.Ambush.Stance }

// TransformationText returns the lines appended after the strike.
func (s *Script) TransformationText() []string {
	return []string{s.Transformation.Text, s.Transformation.Prompt}
}

func (s *Script) CottageText(beat CottageBeat) string {
	switch beat {
	case CottageIntro:
		return s.Cottage.Intro
	case CottageDialogue:
		return s.Cottage.Dialogue
	case CottageReveal:
		return s.Cottage.Reveal
	case CottageConfrontation:
		return s.Cottage.Confrontation
	default:
		return ""
	}
}

func (s *Script) GameOverTitle() string { return s.GameOver.Title }
func (s *Script) GameOverText() string  { return s.GameOver.Text }
func (s *Script) EndingTitle() string   { return s.Ending.Title }

// EndingText returns the two closing lines of the ruthless path, in order.
func (s *Script) EndingText() []string {
	return []string{s.Ending.CryOut, s.Ending.Text}
}

// Whispers are atmospheric lines for presentation while a delayed beat is in flight.
// They never enter the narrative log.
func (s *Script) Whispers() []string {
	out := make([]string, len(s.WhisperLines))
	copy(out, s.WhisperLines)
	return out
}
