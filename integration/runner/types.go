package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite defines a complete integration test playthrough
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one action sent to the game and its expected outcomes
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       string       `json:"action"`
	Payload      string       `json:"payload,omitempty"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// GameState properties - aligned with pkg/state/gamestate.go
	Phase           *string  `json:"phase,omitempty"`
	Distance        *int     `json:"distance,omitempty"`
	CottageStep     *int     `json:"cottage_step,omitempty"`
	AwaitingAdvance *bool    `json:"awaiting_advance,omitempty"`
	Inventory       []string `json:"inventory,omitempty"` // Item IDs (order independent)
	Claimed         []string `json:"claimed,omitempty"`   // Claim labels (order independent)
	LogLength       *int     `json:"log_length,omitempty"`

	// Rejected expects the API to refuse the action with 409
	Rejected bool `json:"rejected,omitempty"`

	// Lines appended by this step
	LinesContain    []string `json:"lines_contain,omitempty"`
	LinesNotContain []string `json:"lines_not_contain,omitempty"`
	LinesRegex      string   `json:"lines_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Lines    []string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	GameID   uuid.UUID // ID of the game used for this test
}
