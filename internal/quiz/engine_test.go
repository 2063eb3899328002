package quiz

import (
	"errors"
	"math"
	"strings"
	"testing"

	"kdrama-dashboard/internal/dataset"
)

// scriptedRand returns its values in order, wrapping around.
type scriptedRand struct {
	values []int
	calls  int
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	value := r.values[r.calls%len(r.values)]
	r.calls++
	return value % n
}

type fakeSampler struct {
	records []dataset.Record
	calls   int
}

func (f *fakeSampler) SampleOne(rng dataset.Rand) (dataset.Record, error) {
	f.calls++
	if len(f.records) == 0 {
		return dataset.Record{}, dataset.ErrEmptyDataset
	}
	return f.records[rng.IntN(len(f.records))], nil
}

func singleRecord(title string, episodes int) *fakeSampler {
	return &fakeSampler{records: []dataset.Record{{Title: title, Episodes: episodes, HasEpisodes: true}}}
}

func newTestEngine(t *testing.T, sampler Sampler, offsets []int, rngValues ...int) *Engine {
	t.Helper()
	engine, err := NewEngine(sampler, offsets, &scriptedRand{values: rngValues})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func mustEnsure(t *testing.T, engine *Engine, state GameState) GameState {
	t.Helper()
	next, err := engine.EnsureChallenge(state)
	if err != nil {
		t.Fatalf("EnsureChallenge failed: %v", err)
	}
	return next
}

func TestNewGameStateIsInitial(t *testing.T) {
	state := NewGameState()
	if state.Round != 1 || state.Score != 0 || state.Phase != PhaseAwaitingAnswer || state.Challenge != nil || state.LastVerdict != nil {
		t.Fatalf("unexpected initial state: %+v", state)
	}
	if err := state.Validate(); err != nil {
		t.Fatalf("initial state invalid: %v", err)
	}
}

func TestNewEngineValidatesOffsets(t *testing.T) {
	sampler := singleRecord("X", 16)
	if _, err := NewEngine(sampler, []int{1, 2}, &scriptedRand{}); err == nil {
		t.Fatalf("expected error for offsets without 0")
	}
	if _, err := NewEngine(sampler, []int{0, 0}, &scriptedRand{}); err == nil {
		t.Fatalf("expected error for offsets without a nonzero value")
	}
	if _, err := NewEngine(sampler, []int{0, math.MaxInt}, &scriptedRand{}); err == nil {
		t.Fatalf("expected error for an offset that could overflow the displayed count")
	}
	if _, err := NewEngine(sampler, []int{0, -MaxOffset, MaxOffset}, &scriptedRand{}); err != nil {
		t.Fatalf("offsets at the bound should be accepted: %v", err)
	}
	if _, err := NewEngine(sampler, nil, &scriptedRand{}); err != nil {
		t.Fatalf("nil offsets should fall back to defaults: %v", err)
	}
}

func TestCorrectTrueClaimScores(t *testing.T) {
	engine := newTestEngine(t, singleRecord("X", 16), []int{0, 2}, 0)

	state := mustEnsure(t, engine, NewGameState())
	if state.Challenge.DisplayedEpisodes != 16 {
		t.Fatalf("displayed = %d, want 16", state.Challenge.DisplayedEpisodes)
	}

	state, err := engine.SubmitAnswer(state, true)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if !state.LastVerdict.Correct || state.Score != 1 || state.Phase != PhaseShowingResult {
		t.Fatalf("unexpected state after correct answer: %+v verdict=%+v", state, state.LastVerdict)
	}
}

func TestPerturbedTrueClaimIsWrongAndNamesRealCount(t *testing.T) {
	// offsets[1] = +2
	engine := newTestEngine(t, singleRecord("X", 16), []int{0, 2}, 1)

	state := mustEnsure(t, engine, NewGameState())
	if state.Challenge.DisplayedEpisodes != 18 {
		t.Fatalf("displayed = %d, want 18", state.Challenge.DisplayedEpisodes)
	}

	state, err := engine.SubmitAnswer(state, true)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if state.LastVerdict.Correct || state.Score != 0 {
		t.Fatalf("claim should be incorrect: %+v", state.LastVerdict)
	}
	if !strings.Contains(state.LastVerdict.Message, "16") {
		t.Fatalf("message does not name the real count: %q", state.LastVerdict.Message)
	}
}

func TestSubmitAnswerTruthTable(t *testing.T) {
	cases := []struct {
		displayed, actual int
		claim, want       bool
	}{
		{16, 16, true, true},
		{16, 16, false, false},
		{18, 16, true, false},
		{18, 16, false, true},
		{0, 0, true, true},
		{0, 1, false, true},
	}

	engine := newTestEngine(t, singleRecord("X", 1), nil)
	for _, tc := range cases {
		state := NewGameState()
		state.Challenge = &Challenge{
			Subject:           Subject{Title: "X", Episodes: tc.actual},
			DisplayedEpisodes: tc.displayed,
		}

		next, err := engine.SubmitAnswer(state, tc.claim)
		if err != nil {
			t.Fatalf("SubmitAnswer failed: %v", err)
		}
		if next.LastVerdict.Correct != tc.want {
			t.Fatalf("displayed=%d actual=%d claim=%t: correct=%t, want %t",
				tc.displayed, tc.actual, tc.claim, next.LastVerdict.Correct, tc.want)
		}
		if state.LastVerdict != nil || state.Score != 0 {
			t.Fatalf("input state mutated: %+v", state)
		}
	}
}

func TestEnsureChallengeIsIdempotent(t *testing.T) {
	sampler := &fakeSampler{records: []dataset.Record{
		{Title: "A", Episodes: 10, HasEpisodes: true},
		{Title: "B", Episodes: 20, HasEpisodes: true},
	}}
	engine := newTestEngine(t, sampler, []int{-1, 0, 1}, 0, 1, 1, 2)

	first := mustEnsure(t, engine, NewGameState())
	for i := 0; i < 5; i++ {
		again := mustEnsure(t, engine, first)
		if *again.Challenge != *first.Challenge {
			t.Fatalf("challenge changed on redraw %d: %+v != %+v", i, again.Challenge, first.Challenge)
		}
	}
	if sampler.calls != 1 {
		t.Fatalf("sampler called %d times, want 1", sampler.calls)
	}
}

func TestEnsureChallengeClampsAtZero(t *testing.T) {
	engine := newTestEngine(t, singleRecord("Short", 1), []int{0, -5}, 1)

	state := mustEnsure(t, engine, NewGameState())
	if state.Challenge.DisplayedEpisodes != 0 {
		t.Fatalf("displayed = %d, want clamp to 0", state.Challenge.DisplayedEpisodes)
	}
}

func TestEnsureChallengeEmptyDataset(t *testing.T) {
	engine := newTestEngine(t, &fakeSampler{}, nil)

	state, err := engine.EnsureChallenge(NewGameState())
	if !errors.Is(err, dataset.ErrEmptyDataset) {
		t.Fatalf("error = %v, want ErrEmptyDataset", err)
	}
	if state.Challenge != nil || state.Phase != PhaseAwaitingAnswer {
		t.Fatalf("state changed on error: %+v", state)
	}
}

func TestInvalidTransitionsLeaveStateUntouched(t *testing.T) {
	engine := newTestEngine(t, singleRecord("X", 16), []int{0, 2}, 0)

	if _, err := engine.SubmitAnswer(NewGameState(), true); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("answer without challenge: err = %v", err)
	}
	if _, err := engine.Advance(NewGameState()); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("advance while awaiting: err = %v", err)
	}

	state := mustEnsure(t, engine, NewGameState())
	answered, err := engine.SubmitAnswer(state, true)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	again, err := engine.SubmitAnswer(answered, true)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("double answer: err = %v", err)
	}
	if again.Score != answered.Score || again.Phase != PhaseShowingResult {
		t.Fatalf("double answer changed state: %+v", again)
	}
}

func TestAdvanceThroughAllRounds(t *testing.T) {
	engine := newTestEngine(t, singleRecord("X", 16), []int{0, 2}, 0)

	state := NewGameState()
	for round := 1; round <= MaxRounds; round++ {
		state = mustEnsure(t, engine, state)
		if state.Round != round {
			t.Fatalf("round = %d, want %d", state.Round, round)
		}

		var err error
		state, err = engine.SubmitAnswer(state, true)
		if err != nil {
			t.Fatalf("round %d SubmitAnswer failed: %v", round, err)
		}
		if state.Score > state.CompletedRounds() {
			t.Fatalf("score %d exceeds completed rounds %d", state.Score, state.CompletedRounds())
		}

		state, err = engine.Advance(state)
		if err != nil {
			t.Fatalf("round %d Advance failed: %v", round, err)
		}
		if err := state.Validate(); err != nil {
			t.Fatalf("round %d produced invalid state: %v", round, err)
		}
	}

	if state.Phase != PhaseFinished || state.Challenge != nil || state.Round != MaxRounds+1 {
		t.Fatalf("unexpected final state: %+v", state)
	}
	if state.FinalScore() != "3/3" {
		t.Fatalf("FinalScore = %q, want 3/3", state.FinalScore())
	}

	// Finished ignores further challenge draws.
	if again := mustEnsure(t, engine, state); again.Challenge != nil {
		t.Fatalf("EnsureChallenge drew a challenge after finish")
	}

	reset := engine.Reset(state)
	if reset.Round != 1 || reset.Score != 0 || reset.Phase != PhaseAwaitingAnswer || reset.Challenge != nil || reset.LastVerdict != nil {
		t.Fatalf("Reset = %+v", reset)
	}
}

func TestApplyMapsActions(t *testing.T) {
	engine := newTestEngine(t, singleRecord("X", 16), []int{0, 2}, 1)
	state := mustEnsure(t, engine, NewGameState())

	state, err := engine.Apply(state, ActionAnswerFalse)
	if err != nil {
		t.Fatalf("Apply(answer_false) failed: %v", err)
	}
	if !state.LastVerdict.Correct {
		t.Fatalf("false claim on perturbed count should be correct")
	}

	state, err = engine.Apply(state, ActionNextRound)
	if err != nil || state.Round != 2 {
		t.Fatalf("Apply(next_round) = (%+v, %v)", state, err)
	}

	if _, err := engine.Apply(state, Action("skip")); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("unknown action error = %v", err)
	}

	state, err = engine.Apply(state, ActionRestart)
	if err != nil || state.Round != 1 || state.Score != 0 {
		t.Fatalf("Apply(restart) = (%+v, %v)", state, err)
	}
}

func TestParseAction(t *testing.T) {
	if got, err := ParseAction(" Answer_True "); err != nil || got != ActionAnswerTrue {
		t.Fatalf("ParseAction = (%q, %v)", got, err)
	}
	if _, err := ParseAction("answer_maybe"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestValidateRejectsBrokenStates(t *testing.T) {
	broken := []GameState{
		{Round: 0, Phase: PhaseAwaitingAnswer},
		{Round: 2, Score: 2, Phase: PhaseAwaitingAnswer},
		{Round: 1, Phase: PhaseShowingResult},
		{Round: 3, Phase: PhaseFinished},
		{Round: 1, Phase: Phase("paused")},
	}
	for _, state := range broken {
		if err := state.Validate(); !errors.Is(err, ErrCorruptState) {
			t.Fatalf("Validate(%+v) = %v, want ErrCorruptState", state, err)
		}
	}
}
