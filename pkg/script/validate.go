package script

import (
	"errors"
	"fmt"
)

// Validate checks that the script has every line the engine will ask for and
// exactly WoodsMiles woods events, numbered 1..WoodsMiles, each with at least
// one choice and unique choice IDs.
func (s *Script) Validate() error {
	var errs []error
	required := func(field, value string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", field))
		}
	}

	required("title", s.TitleText)
	required("home.description", s.Home.Description)
	required("home.mother", s.Home.Mother)
	required("ambush.intro", s.Ambush.Intro)
	required("ambush.description", s.Ambush.Description)
	required("ambush.loss", s.Ambush.Loss)
	required("ambush.swipe", s.Ambush.Swipe)
	required("ambush.stance", s.Ambush.Stance)
	required("transformation.text", s.Transformation.Text)
	required("transformation.prompt", s.Transformation.Prompt)
	required("cottage.intro", s.Cottage.Intro)
	required("cottage.dialogue", s.Cottage.Dialogue)
	required("cottage.reveal", s.Cottage.Reveal)
	required("cottage.confrontation", s.Cottage.Confrontation)
	required("game_over.text", s.GameOver.Text)
	required("ending.cry_out", s.Ending.CryOut)
	required("ending.text", s.Ending.Text)

	if len(s.WoodsEvents) != WoodsMiles {
		errs = append(errs, fmt.Errorf("woods_events must have exactly %d entries, got %d", WoodsMiles, len(s.WoodsEvents)))
	}
	for i, ev := range s.WoodsEvents {
		if ev.Mile != i+1 {
			errs = append(errs, fmt.Errorf("woods_events[%d]: mile must be %d, got %d", i, i+1, ev.Mile))
		}
		if ev.Text == "" {
			errs = append(errs, fmt.Errorf("woods_events[%d]: text is required", i))
		}
		if len(ev.Choices) == 0 {
			errs = append(errs, fmt.Errorf("woods_events[%d]: at least one choice is required", i))
		}
		ids := make(map[string]bool, len(ev.Choices))
		for j, c := range ev.Choices {
			if c.ID == "" {
				errs = append(errs, fmt.Errorf("woods_events[%d].choices[%d]: id is required", i, j))
			} else if ids[c.ID] {
				errs = append(errs, fmt.Errorf("woods_events[%d].choices[%d]: duplicate id %q", i, j, c.ID))
			}
			ids[c.ID] = true
			if c.Text == "" || c.OutcomeText == "" {
				errs = append(errs, fmt.Errorf("woods_events[%d].choices[%d]: text and outcome are required", i, j))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid script: %w", errors.Join(errs...))
	}
	return nil
}
