package quiz

import (
	"fmt"
	"strings"
)

// Action is a user event fed back into the engine by a presentation shell.
type Action string

const (
	ActionAnswerTrue  Action = "answer_true"
	ActionAnswerFalse Action = "answer_false"
	ActionNextRound   Action = "next_round"
	ActionRestart     Action = "restart"
)

func ParseAction(raw string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(raw)))
	switch action {
	case ActionAnswerTrue, ActionAnswerFalse, ActionNextRound, ActionRestart:
		return action, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
}

// Apply maps an action onto its transition. It does not draw a challenge;
// callers follow it with EnsureChallenge before rendering.
func (e *Engine) Apply(state GameState, action Action) (GameState, error) {
	switch action {
	case ActionAnswerTrue:
		return e.SubmitAnswer(state, true)
	case ActionAnswerFalse:
		return e.SubmitAnswer(state, false)
	case ActionNextRound:
		return e.Advance(state)
	case ActionRestart:
		return e.Reset(state), nil
	default:
		return state, fmt.Errorf("%w: %q", ErrUnknownAction, string(action))
	}
}
