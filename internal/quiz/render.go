package quiz

import "fmt"

type QuestionView struct {
	Title             string `json:"title"`
	DisplayedEpisodes int    `json:"displayed_episodes"`
	Prompt            string `json:"prompt"`
}

// View is everything a shell needs to draw the quiz screen.
type View struct {
	Phase      Phase         `json:"phase"`
	Round      int           `json:"round"`
	MaxRounds  int           `json:"max_rounds"`
	Score      int           `json:"score"`
	Question   *QuestionView `json:"question,omitempty"`
	Verdict    *Verdict      `json:"verdict,omitempty"`
	FinalScore string        `json:"final_score,omitempty"`
	Actions    []Action      `json:"actions"`
	Notice     string        `json:"notice,omitempty"`
}

// Render is a pure function of the state.
func Render(state GameState) View {
	view := View{
		Phase:     state.Phase,
		Round:     state.Round,
		MaxRounds: MaxRounds,
		Score:     state.Score,
		Actions:   []Action{},
	}

	if state.Challenge != nil && state.Phase != PhaseFinished {
		view.Question = &QuestionView{
			Title:             state.Challenge.Subject.Title,
			DisplayedEpisodes: state.Challenge.DisplayedEpisodes,
			Prompt: fmt.Sprintf("%q has %d episodes. True or false?",
				state.Challenge.Subject.Title, state.Challenge.DisplayedEpisodes),
		}
	}
	if state.LastVerdict != nil {
		verdict := *state.LastVerdict
		view.Verdict = &verdict
	}

	switch state.Phase {
	case PhaseAwaitingAnswer:
		if state.Challenge != nil {
			view.Actions = []Action{ActionAnswerTrue, ActionAnswerFalse}
		} else {
			view.Actions = []Action{ActionRestart}
		}
	case PhaseShowingResult:
		view.Actions = []Action{ActionNextRound}
	case PhaseFinished:
		view.FinalScore = state.FinalScore()
		view.Actions = []Action{ActionRestart}
	}

	return view
}
