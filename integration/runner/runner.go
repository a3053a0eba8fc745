package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/iron-and-snow/internal/handlers"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted walks against a running iron-and-snow API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration // per step, including any delayed beat
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite plays a complete test suite in a fresh game
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	created, err := r.createGame(ctx)
	if err != nil {
		result.Error = fmt.Errorf("failed to create game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.GameID = created.ID
	defer func() {
		if err := r.deleteGame(context.Background(), created.ID); err != nil {
			r.Logger("    Warning: failed to delete game %s: %v", created.ID, err)
		}
	}()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, created.ID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep sends one action, waiting for any delayed beat, and checks expectations
func (r *Runner) runStep(ctx context.Context, gameID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}
	if result.StepName == "" {
		result.StepName = strings.TrimSpace(step.Action + " " + step.Payload)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	resp, status, err := r.postAction(ctx, gameID, step)
	if err != nil {
		result.Error = fmt.Errorf("failed to post action: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	switch {
	case step.Expectations.Rejected && status != http.StatusConflict:
		result.Error = fmt.Errorf("expected action to be rejected, got status %d", status)
	case !step.Expectations.Rejected && status != http.StatusOK:
		result.Error = fmt.Errorf("action returned status %d", status)
	}
	if result.Error != nil {
		result.Duration = time.Since(start)
		return result
	}

	// A rejected action leaves the game as it was; check against the current snapshot.
	if step.Expectations.Rejected {
		current, err := r.getGame(ctx, gameID)
		if err != nil {
			result.Error = fmt.Errorf("failed to get game after rejection: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		resp.State = current.State
	}
	result.Lines = resp.Lines

	if err := r.checkExpectations(step.Expectations, resp.State, resp.Lines); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) createGame(ctx context.Context) (handlers.GameResponse, error) {
	var created handlers.GameResponse
	status, err := r.do(ctx, http.MethodPost, "/v1/games", nil, &created)
	if err != nil {
		return created, err
	}
	if status != http.StatusCreated {
		return created, fmt.Errorf("create game returned %d", status)
	}
	return created, nil
}

func (r *Runner) getGame(ctx context.Context, gameID uuid.UUID) (handlers.GameResponse, error) {
	var game handlers.GameResponse
	status, err := r.do(ctx, http.MethodGet, "/v1/games/"+gameID.String(), nil, &game)
	if err != nil {
		return game, err
	}
	if status != http.StatusOK {
		return game, fmt.Errorf("get game returned %d", status)
	}
	return game, nil
}

func (r *Runner) deleteGame(ctx context.Context, gameID uuid.UUID) error {
	status, err := r.do(ctx, http.MethodDelete, "/v1/games/"+gameID.String(), nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("delete game returned %d", status)
	}
	return nil
}

func (r *Runner) postAction(ctx context.Context, gameID uuid.UUID, step TestStep) (handlers.ActionResponse, int, error) {
	var resp handlers.ActionResponse
	req := handlers.ActionRequest{Action: step.Action, Payload: step.Payload}
	status, err := r.do(ctx, http.MethodPost, "/v1/games/"+gameID.String()+"/actions?wait=true", req, &resp)
	return resp, status, err
}

// do sends body as JSON and decodes a 2xx response into out.
func (r *Runner) do(ctx context.Context, method, path string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute %s request: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// checkExpectations validates the test expectations against the game after the step
func (r *Runner) checkExpectations(exp Expectations, post state.GameState, lines []string) error {
	if exp.Phase != nil {
		if string(post.Phase) != *exp.Phase {
			return fmt.Errorf("expected phase %s, got %s", *exp.Phase, post.Phase)
		}
	}

	if exp.Distance != nil {
		if post.Distance != *exp.Distance {
			return fmt.Errorf("expected distance %d, got %d", *exp.Distance, post.Distance)
		}
	}

	if exp.CottageStep != nil {
		if post.CottageStep != *exp.CottageStep {
			return fmt.Errorf("expected cottage_step %d, got %d", *exp.CottageStep, post.CottageStep)
		}
	}

	if exp.AwaitingAdvance != nil {
		if post.AwaitingAdvance != *exp.AwaitingAdvance {
			return fmt.Errorf("expected awaiting_advance to be %t, got %t", *exp.AwaitingAdvance, post.AwaitingAdvance)
		}
	}

	if exp.Inventory != nil {
		actual := make([]string, 0, len(post.Inventory))
		for _, it := range post.Inventory {
			actual = append(actual, it.ID)
		}
		if err := sameSet("inventory", exp.Inventory, actual); err != nil {
			return err
		}
	}

	if exp.Claimed != nil {
		if err := sameSet("claimed items", exp.Claimed, post.ClaimedItems); err != nil {
			return err
		}
	}

	if exp.LogLength != nil {
		if len(post.Log) != *exp.LogLength {
			return fmt.Errorf("expected log length %d, got %d", *exp.LogLength, len(post.Log))
		}
	}

	if post.Busy {
		return fmt.Errorf("game is still busy after the step")
	}

	text := strings.ToLower(strings.Join(lines, "\n"))
	for _, expectedText := range exp.LinesContain {
		if !strings.Contains(text, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected lines to contain '%s', but they didn't: %q", expectedText, lines)
		}
	}
	for _, unexpectedText := range exp.LinesNotContain {
		if strings.Contains(text, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected lines to NOT contain '%s', but they did", unexpectedText)
		}
	}

	if exp.LinesRegex != "" {
		matched, err := regexp.MatchString(exp.LinesRegex, strings.Join(lines, "\n"))
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("lines didn't match regex pattern: %s", exp.LinesRegex)
		}
	}

	return nil
}

// sameSet compares two string lists ignoring order
func sameSet(field string, expected, actual []string) error {
	want := make(map[string]bool, len(expected))
	for _, v := range expected {
		want[v] = true
	}
	got := make(map[string]bool, len(actual))
	for _, v := range actual {
		got[v] = true
	}

	for v := range want {
		if !got[v] {
			return fmt.Errorf("expected %s to contain '%s', but it's missing. Actual: %v", field, v, actual)
		}
	}
	for v := range got {
		if !want[v] {
			return fmt.Errorf("%s contains unexpected '%s'. Expected: %v, Actual: %v", field, v, expected, actual)
		}
	}
	return nil
}
