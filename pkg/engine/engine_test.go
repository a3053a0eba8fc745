package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/iron-and-snow/pkg/item"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

type narratorFunc func(ctx context.Context, mile int, choice script.Choice) (string, error)

func (f narratorFunc) Outcome(ctx context.Context, mile int, choice script.Choice) (string, error) {
	return f(ctx, mile, choice)
}

type recordingObserver struct {
	mu       sync.Mutex
	accepted []ActionKind
	rejected []ActionKind
}

func (o *recordingObserver) Accepted(kind ActionKind, from, to state.Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.accepted = append(o.accepted, kind)
}

func (o *recordingObserver) Rejected(kind ActionKind, phase state.Phase, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, kind)
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	e := New(script.MustDefault(), opts)
	t.Cleanup(e.Close)
	return e
}

// play dispatches a and waits for any delayed beat to complete.
func play(t *testing.T, e *Engine, a Action) state.GameState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := e.Dispatch(ctx, a)
	require.NoError(t, err, "dispatch %s", a.Kind())
	require.NoError(t, e.Wait(ctx))
	return e.State()
}

func playToCottage(t *testing.T, e *Engine) {
	t.Helper()
	play(t, e, Start{})
	for _, it := range item.AvailableItems() {
		play(t, e, Collect{ItemID: it.ID})
	}
	play(t, e, Leave{})
	for _, id := range []string{"devil", "knife", "take", "shiver"} {
		play(t, e, Choose{ChoiceID: id})
		play(t, e, Advance{})
	}
	play(t, e, Strike{})
	play(t, e, Arrive{})
}

func TestEngine_RuthlessPlaythrough(t *testing.T) {
	e := newTestEngine(t, Options{})
	sc := e.Script()

	playToCottage(t, e)
	play(t, e, AdvanceCottage{})
	play(t, e, AdvanceCottage{})
	st := play(t, e, ChooseRuthless{})

	assert.Equal(t, state.PhaseEnding, st.Phase)
	ending := sc.EndingText()
	assert.Equal(t, ending, st.Log[len(st.Log)-len(ending):])

	for _, label := range item.ClaimLabels() {
		st = play(t, e, Claim{Label: label})
	}
	assert.Len(t, st.ClaimedItems, 3)
	assert.True(t, st.ClaimedAll())

	hand, ok := st.FindItem(item.WolfPawID)
	require.True(t, ok)
	assert.True(t, hand.IsTransformed)
	assert.NoError(t, st.Validate())
}

func TestEngine_MercyIsFinal(t *testing.T) {
	e := newTestEngine(t, Options{})
	playToCottage(t, e)
	play(t, e, AdvanceCottage{})
	play(t, e, AdvanceCottage{})
	over := play(t, e, ChooseMercy{})
	assert.Equal(t, state.PhaseGameOver, over.Phase)

	ctx := context.Background()
	for _, a := range []Action{Start{}, Leave{}, Strike{}, ChooseRuthless{}, Claim{Label: "The Teapot"}} {
		got, lines, err := e.Dispatch(ctx, a)
		assert.ErrorIs(t, err, ErrInvalidTransition, a.Kind())
		assert.Nil(t, lines)
		assert.Equal(t, over, got)
	}

	st := play(t, e, Restart{})
	assert.Equal(t, state.New(), st)
}

func TestEngine_BusyRejectsActions(t *testing.T) {
	release := make(chan struct{})
	narrator := narratorFunc(func(ctx context.Context, mile int, choice script.Choice) (string, error) {
		<-release
		return "The snow answers.", nil
	})
	obs := &recordingObserver{}
	e := newTestEngine(t, Options{Narrator: narrator, Observers: []Observer{obs}})

	play(t, e, Start{})
	for _, it := range item.AvailableItems() {
		play(t, e, Collect{ItemID: it.ID})
	}
	play(t, e, Leave{})

	ctx := context.Background()
	before := len(e.State().Log)
	st, lines, err := e.Dispatch(ctx, Choose{ChoiceID: "pray"})
	require.NoError(t, err)
	assert.True(t, st.Busy)
	assert.Empty(t, lines)
	assert.True(t, e.Busy())
	assert.Len(t, st.Log, before)

	for _, a := range []Action{Choose{ChoiceID: "devil"}, Choose{ChoiceID: "pray"}, Advance{}, Examine{ItemID: item.Knife}, Restart{}} {
		rejected, lines, err := e.Dispatch(ctx, a)
		assert.ErrorIs(t, err, ErrBusy, a.Kind())
		assert.Empty(t, lines, a.Kind())
		assert.Len(t, rejected.Log, before, a.Kind())
		assert.False(t, rejected.AwaitingAdvance, a.Kind())
		assert.True(t, rejected.Busy, a.Kind())
	}

	close(release)
	require.NoError(t, e.Wait(ctx))

	st = e.State()
	assert.False(t, st.Busy)
	assert.True(t, st.AwaitingAdvance)
	assert.Len(t, st.Log, before+1, "exactly one outcome line lands")
	assert.Equal(t, "The snow answers.", st.Log[len(st.Log)-1])
	assert.False(t, e.Busy())

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []ActionKind{KindChoose, KindAdvance, KindRestart}, obs.rejected)
}

func TestEngine_NarratorFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{"error", "", errors.New("backend down")},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			narrator := narratorFunc(func(ctx context.Context, mile int, choice script.Choice) (string, error) {
				return tt.text, tt.err
			})
			e := newTestEngine(t, Options{Narrator: narrator})
			play(t, e, Start{})
			for _, it := range item.AvailableItems() {
				play(t, e, Collect{ItemID: it.ID})
			}
			play(t, e, Leave{})
			st := play(t, e, Choose{ChoiceID: "ignore"})

			ev, err := e.Script().WoodsEvent(1)
			require.NoError(t, err)
			c, ok := ev.Choice("ignore")
			require.True(t, ok)
			assert.Equal(t, c.OutcomeText, st.Log[len(st.Log)-1])
			assert.True(t, st.AwaitingAdvance)
		})
	}
}

func TestEngine_SubscribersSeeOrderedUpdates(t *testing.T) {
	e := newTestEngine(t, Options{})

	var mu sync.Mutex
	var updates []Update
	unsubscribe := e.Subscribe(func(u Update) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, u)
	})

	playToCottage(t, e)
	play(t, e, AdvanceCottage{})

	mu.Lock()
	got := append([]Update(nil), updates...)
	mu.Unlock()

	// Start, 3 collects, leave, 4x (choose + outcome + advance), strike,
	// arrive, then the dialogue and its reveal.
	require.Len(t, got, 1+3+1+4*3+1+1+2)

	logLen := 0
	for i, u := range got {
		assert.Equal(t, e.ID, u.GameID)
		assert.GreaterOrEqual(t, len(u.State.Log), logLen, "update %d went backwards", i)
		logLen = len(u.State.Log)
	}

	last := got[len(got)-1]
	assert.True(t, last.Deferred)
	assert.Equal(t, KindAdvanceCottage, last.Action)
	assert.Equal(t, []string{e.Script().CottageText(script.CottageReveal)}, last.Lines)
	assert.False(t, last.State.Busy)

	beforeLast := got[len(got)-2]
	assert.False(t, beforeLast.Deferred)
	assert.True(t, beforeLast.State.Busy)

	unsubscribe()
	play(t, e, AdvanceCottage{})
	mu.Lock()
	assert.Len(t, updates, len(got))
	mu.Unlock()
}

func TestEngine_RejectedActionsNotify(t *testing.T) {
	obs := &recordingObserver{}
	e := newTestEngine(t, Options{Observers: []Observer{obs}})

	var calls int
	e.Subscribe(func(Update) { calls++ })

	before := e.State()
	st, lines, err := e.Dispatch(context.Background(), Leave{})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, lines)
	assert.Equal(t, before, st)
	assert.Zero(t, calls)

	play(t, e, Start{})
	assert.Equal(t, 1, calls)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []ActionKind{KindLeave}, obs.rejected)
	assert.Equal(t, []ActionKind{KindStart}, obs.accepted)
}

func TestEngine_DispatchCanceledContext(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, _, err := e.Dispatch(ctx, Start{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, state.PhaseIntro, st.Phase)
}

func TestEngine_WaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	narrator := narratorFunc(func(ctx context.Context, mile int, choice script.Choice) (string, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return "", ctx.Err()
	})
	e := newTestEngine(t, Options{Narrator: narrator})
	play(t, e, Start{})
	for _, it := range item.AvailableItems() {
		play(t, e, Collect{ItemID: it.ID})
	}
	play(t, e, Leave{})

	_, _, err := e.Dispatch(context.Background(), Choose{ChoiceID: "pray"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Wait(ctx), context.DeadlineExceeded)
	assert.True(t, e.Busy())
}

func TestEngine_CloseSkipsDelay(t *testing.T) {
	e := newTestEngine(t, Options{ChoiceDelay: time.Hour})
	play(t, e, Start{})
	for _, it := range item.AvailableItems() {
		play(t, e, Collect{ItemID: it.ID})
	}
	play(t, e, Leave{})

	_, _, err := e.Dispatch(context.Background(), Choose{ChoiceID: "pray"})
	require.NoError(t, err)
	assert.True(t, e.Busy())

	e.Close()
	assert.False(t, e.Busy())
	assert.True(t, e.State().AwaitingAdvance)
}

func TestEngine_StateIsACopy(t *testing.T) {
	e := newTestEngine(t, Options{})
	st := play(t, e, Start{})
	st.Log[0] = "tampered"
	st.Inventory = append(st.Inventory, item.WolfPaw())

	fresh := e.State()
	assert.NotEqual(t, "tampered", fresh.Log[0])
	assert.Empty(t, fresh.Inventory)
}
