package quiz

import (
	"fmt"
	"strings"
)

// MaxRounds is the fixed number of rounds in one game.
const MaxRounds = 3

type Phase string

const (
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseShowingResult  Phase = "showing_result"
	PhaseFinished       Phase = "finished"
)

// Subject is the series a challenge asks about. Episodes is the true count.
type Subject struct {
	Title    string `json:"title"`
	Episodes int    `json:"episodes"`
}

// Challenge is one round's claim: the subject plus the episode count shown
// to the player, which may differ from the true one.
type Challenge struct {
	Subject           Subject `json:"subject"`
	DisplayedEpisodes int     `json:"displayed_episodes"`
}

// Claimed reports whether the displayed count is the real one.
func (c Challenge) Claimed() bool {
	return c.DisplayedEpisodes == c.Subject.Episodes
}

type Verdict struct {
	Correct bool   `json:"correct"`
	Message string `json:"message"`
}

// GameState is the durable per-session quiz state. It is a value: engine
// operations return an updated copy and never mutate their input.
type GameState struct {
	Round       int        `json:"round"`
	Score       int        `json:"score"`
	Phase       Phase      `json:"phase"`
	Challenge   *Challenge `json:"current_challenge,omitempty"`
	LastVerdict *Verdict   `json:"last_verdict,omitempty"`
}

func NewGameState() GameState {
	return GameState{
		Round: 1,
		Phase: PhaseAwaitingAnswer,
	}
}

// CompletedRounds counts rounds that have received an answer.
func (s GameState) CompletedRounds() int {
	switch s.Phase {
	case PhaseShowingResult:
		return s.Round
	case PhaseFinished:
		return MaxRounds
	default:
		return s.Round - 1
	}
}

// FinalScore formats the score as "score/MaxRounds".
func (s GameState) FinalScore() string {
	return fmt.Sprintf("%d/%d", s.Score, MaxRounds)
}

// Validate checks the state invariants. Stores call it on load so a corrupt
// row never reaches the engine.
func (s GameState) Validate() error {
	var problems []string

	switch s.Phase {
	case PhaseAwaitingAnswer, PhaseShowingResult:
		if s.Round < 1 || s.Round > MaxRounds {
			problems = append(problems, fmt.Sprintf("round %d outside 1..%d", s.Round, MaxRounds))
		}
		if s.Phase == PhaseShowingResult && (s.Challenge == nil || s.LastVerdict == nil) {
			problems = append(problems, "showing_result without challenge or verdict")
		}
	case PhaseFinished:
		if s.Round != MaxRounds+1 {
			problems = append(problems, fmt.Sprintf("finished at round %d", s.Round))
		}
		if s.Challenge != nil {
			problems = append(problems, "finished with a challenge")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown phase %q", s.Phase))
	}

	if s.Score < 0 || s.Score > s.CompletedRounds() {
		problems = append(problems, fmt.Sprintf("score %d exceeds completed rounds %d", s.Score, s.CompletedRounds()))
	}
	if s.Challenge != nil && s.Challenge.DisplayedEpisodes < 0 {
		problems = append(problems, "negative displayed episode count")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrCorruptState, strings.Join(problems, "; "))
	}
	return nil
}
