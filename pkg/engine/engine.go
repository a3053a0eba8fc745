package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

// Default pacing delays.
const (
	DefaultChoiceDelay   = 600 * time.Millisecond
	DefaultCompressDelay = 1500 * time.Millisecond
)

// Options configures an Engine. Zero values fall back to defaults, except the
// delays: a zero delay completes a beat as soon as the goroutine runs.
type Options struct {
	Narrator      Narrator
	Observers     []Observer
	Logger        *slog.Logger
	ChoiceDelay   time.Duration
	CompressDelay time.Duration
}

// Update is delivered to subscribers after every accepted transition and
// again when a delayed beat completes.
type Update struct {
	GameID   uuid.UUID
	Action   ActionKind
	State    state.GameState
	Lines    []string // lines appended by this step
	Deferred bool     // true when this update completes a delayed beat
}

// Engine runs one play session. It is the only writer of the session state;
// Dispatch calls are serialized and at most one delayed beat is in flight.
type Engine struct {
	ID uuid.UUID

	script        *script.Script
	narrator      Narrator
	observers     []Observer
	logger        *slog.Logger
	choiceDelay   time.Duration
	compressDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	current state.GameState
	pending chan struct{} // closed when the in-flight beat completes; nil when idle
	subs    map[int]func(Update)
	nextSub int

	// notifyMu is taken while mu is held and released after subscribers run,
	// so updates reach subscribers in the order transitions were applied.
	notifyMu sync.Mutex
}

// New creates an engine at the initial state.
func New(sc *script.Script, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New()
	return &Engine{
		ID:            id,
		script:        sc,
		narrator:      opts.Narrator,
		observers:     opts.Observers,
		logger:        logger.With("game_id", id.String()),
		choiceDelay:   opts.ChoiceDelay,
		compressDelay: opts.CompressDelay,
		ctx:           ctx,
		cancel:        cancel,
		current:       state.New(),
		subs:          make(map[int]func(Update)),
	}
}

// Script returns the narrative script the engine plays.
func (e *Engine) Script() *script.Script {
	return e.script
}

// State returns a copy of the current snapshot.
func (e *Engine) State() state.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.Clone()
}

// Subscribe registers fn for every update. fn runs on the dispatching or
// completing goroutine and must not block or call back into the engine.
func (e *Engine) Subscribe(fn func(Update)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// Dispatch applies an action. It returns the resulting snapshot and the lines
// the action appended immediately. Actions with a delayed beat return with
// Busy set; the completion is delivered to subscribers and Wait unblocks.
// A rejected action returns the unchanged snapshot and an error wrapping
// ErrInvalidTransition.
func (e *Engine) Dispatch(ctx context.Context, a Action) (state.GameState, []string, error) {
	if err := ctx.Err(); err != nil {
		return e.State(), nil, err
	}

	e.mu.Lock()
	from := e.current.Phase
	out, err := Transition(e.current, e.script, a)
	if err != nil {
		snapshot := e.current.Clone()
		e.mu.Unlock()

		e.logger.Debug("Action rejected",
			"action", a.Kind(),
			"payload", Payload(a),
			"phase", from,
			"error", err)
		for _, o := range e.observers {
			o.Rejected(a.Kind(), from, err)
		}
		return snapshot, nil, err
	}

	e.current = out.State
	var done chan struct{}
	if out.Deferred != nil {
		done = make(chan struct{})
		e.pending = done
	}
	snapshot := e.current.Clone()
	subs := e.subscribers()
	e.notifyMu.Lock()
	e.mu.Unlock()

	e.logger.Debug("Action accepted",
		"action", a.Kind(),
		"payload", Payload(a),
		"from", from,
		"to", snapshot.Phase,
		"lines", len(out.Lines),
		"busy", snapshot.Busy)
	for _, o := range e.observers {
		o.Accepted(a.Kind(), from, snapshot.Phase)
	}
	e.notify(subs, Update{GameID: e.ID, Action: a.Kind(), State: snapshot, Lines: out.Lines})
	e.notifyMu.Unlock()

	if out.Deferred != nil {
		e.wg.Add(1)
		go e.runDeferred(a.Kind(), out.Deferred, done)
	}

	return snapshot.Clone(), out.Lines, nil
}

// Busy reports whether a delayed beat is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending != nil
}

// Wait blocks until no delayed beat is in flight or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	for {
		e.mu.Lock()
		ch := e.pending
		e.mu.Unlock()
		if ch == nil {
			// The completing goroutine took notifyMu before releasing mu;
			// wait for its subscribers to finish.
			e.notifyMu.Lock()
			e.notifyMu.Unlock() //nolint:staticcheck
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close skips any remaining pacing delay and waits for the in-flight beat to
// complete. Further dispatches are still accepted.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

func (e *Engine) runDeferred(kind ActionKind, d *Deferred, done chan struct{}) {
	defer e.wg.Done()
	defer close(done)

	delay := e.compressDelay
	if d.Beat == BeatChoiceOutcome {
		delay = e.choiceDelay
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-e.ctx.Done():
			timer.Stop()
		}
	}

	line := d.Line
	if d.Beat == BeatChoiceOutcome && e.narrator != nil {
		text, err := e.narrator.Outcome(e.ctx, d.Mile, d.Choice)
		switch {
		case err != nil:
			e.logger.Warn("Narration failed, using fallback text",
				"mile", d.Mile,
				"choice", d.Choice.ID,
				"error", err)
		case text == "":
			e.logger.Warn("Narration was empty, using fallback text",
				"mile", d.Mile,
				"choice", d.Choice.ID)
		default:
			line = text
		}
	}

	e.mu.Lock()
	next, lines := d.Complete(e.current, line)
	e.current = next
	e.pending = nil
	snapshot := e.current.Clone()
	subs := e.subscribers()
	e.notifyMu.Lock()
	e.mu.Unlock()

	e.logger.Debug("Delayed beat completed",
		"action", kind,
		"beat", d.Beat,
		"phase", snapshot.Phase)
	e.notify(subs, Update{GameID: e.ID, Action: kind, State: snapshot, Lines: lines, Deferred: true})
	e.notifyMu.Unlock()
}

// subscribers copies the subscriber list. Callers hold mu.
func (e *Engine) subscribers() []func(Update) {
	out := make([]func(Update), 0, len(e.subs))
	for i := 0; i < e.nextSub; i++ {
		if fn, ok := e.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (e *Engine) notify(subs []func(Update), u Update) {
	for _, fn := range subs {
		fn(Update{
			GameID:   u.GameID,
			Action:   u.Action,
			State:    u.State.Clone(),
			Lines:    append([]string(nil), u.Lines...),
			Deferred: u.Deferred,
		})
	}
}
