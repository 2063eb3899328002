package quiz

import (
	"errors"
	"fmt"
	"sync"

	"kdrama-dashboard/internal/dataset"
)

// DefaultOffsets perturb the true episode count. 0 keeps the claim true.
var DefaultOffsets = []int{-2, -1, 0, 1, 3}

// MaxOffset bounds the magnitude of a single offset.
const MaxOffset = 1000

// Sampler supplies challenge subjects. *dataset.Dataset implements it.
type Sampler interface {
	SampleOne(rng dataset.Rand) (dataset.Record, error)
}

// Engine implements the quiz transitions. It holds no game state; every
// operation takes a GameState and returns the next one. On error the input
// state is returned unchanged.
type Engine struct {
	source  Sampler
	offsets []int

	mu  sync.Mutex
	rng dataset.Rand
}

func NewEngine(source Sampler, offsets []int, rng dataset.Rand) (*Engine, error) {
	if source == nil {
		return nil, errors.New("quiz engine requires a record source")
	}
	if rng == nil {
		return nil, errors.New("quiz engine requires a random source")
	}
	if len(offsets) == 0 {
		offsets = DefaultOffsets
	}
	if err := ValidateOffsets(offsets); err != nil {
		return nil, err
	}

	copied := make([]int, len(offsets))
	copy(copied, offsets)

	return &Engine{
		source:  source,
		offsets: copied,
		rng:     rng,
	}, nil
}

// ValidateOffsets requires 0 plus at least one nonzero offset so both true
// and false claims stay reachable.
func ValidateOffsets(offsets []int) error {
	hasZero, hasNonZero := false, false
	for _, offset := range offsets {
		if offset < -MaxOffset || offset > MaxOffset {
			return fmt.Errorf("offset %d outside -%d..%d", offset, MaxOffset, MaxOffset)
		}
		if offset == 0 {
			hasZero = true
		} else {
			hasNonZero = true
		}
	}
	if !hasZero {
		return errors.New("offsets must include 0")
	}
	if !hasNonZero {
		return errors.New("offsets must include at least one nonzero value")
	}
	return nil
}

// EnsureChallenge draws the round's challenge if none exists yet. Calling it
// again during the same round is a no-op.
func (e *Engine) EnsureChallenge(state GameState) (GameState, error) {
	if state.Phase != PhaseAwaitingAnswer || state.Challenge != nil {
		return state, nil
	}

	e.mu.Lock()
	record, err := e.source.SampleOne(e.rng)
	var offset int
	if err == nil {
		offset = e.offsets[e.rng.IntN(len(e.offsets))]
	}
	e.mu.Unlock()
	if err != nil {
		return state, fmt.Errorf("draw challenge: %w", err)
	}

	displayed := record.Episodes + offset
	if displayed < 0 {
		displayed = 0
	}

	next := state
	next.Challenge = &Challenge{
		Subject: Subject{
			Title:    record.Title,
			Episodes: record.Episodes,
		},
		DisplayedEpisodes: displayed,
	}
	return next, nil
}

// SubmitAnswer scores the player's claim that the displayed count is true.
func (e *Engine) SubmitAnswer(state GameState, claim bool) (GameState, error) {
	if state.Phase != PhaseAwaitingAnswer {
		return state, fmt.Errorf("%w: answer while %s", ErrInvalidStateTransition, state.Phase)
	}
	if state.Challenge == nil {
		return state, fmt.Errorf("%w: answer without a challenge", ErrInvalidStateTransition)
	}

	challenge := *state.Challenge
	correct := claim == challenge.Claimed()

	next := state
	if correct {
		next.Score++
	}
	next.LastVerdict = &Verdict{
		Correct: correct,
		Message: verdictMessage(correct, challenge.Subject),
	}
	next.Phase = PhaseShowingResult
	return next, nil
}

// Advance moves past a shown result to the next round, or finishes the game
// after the last round.
func (e *Engine) Advance(state GameState) (GameState, error) {
	if state.Phase != PhaseShowingResult {
		return state, fmt.Errorf("%w: next round while %s", ErrInvalidStateTransition, state.Phase)
	}

	next := state
	next.Round++
	next.Challenge = nil
	next.LastVerdict = nil
	if next.Round > MaxRounds {
		next.Round = MaxRounds + 1
		next.Phase = PhaseFinished
		return next, nil
	}
	next.Phase = PhaseAwaitingAnswer
	return next, nil
}

// Reset starts a new game. It is accepted in every phase.
func (e *Engine) Reset(GameState) GameState {
	return NewGameState()
}

func verdictMessage(correct bool, subject Subject) string {
	if correct {
		return fmt.Sprintf("Correct! %q has %d episodes.", subject.Title, subject.Episodes)
	}
	return fmt.Sprintf("Incorrect. %q has %d episodes.", subject.Title, subject.Episodes)
}
