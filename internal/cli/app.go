// Package cli is the terminal shell: an interactive quiz loop and table
// rendering for the dashboard views.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"kdrama-dashboard/internal/quiz"
)

const maxInvalidInputs = 3

// Driver runs quiz actions for one session, locally or over HTTP.
type Driver interface {
	View(ctx context.Context) (quiz.View, error)
	Dispatch(ctx context.Context, action quiz.Action) (quiz.View, error)
}

// LocalDriver binds a Service to a single session.
type LocalDriver struct {
	service   *quiz.Service
	sessionID string
}

func NewLocalDriver(service *quiz.Service, sessionID string) *LocalDriver {
	return &LocalDriver{service: service, sessionID: sessionID}
}

func (d *LocalDriver) View(ctx context.Context) (quiz.View, error) {
	return d.service.View(ctx, d.sessionID)
}

func (d *LocalDriver) Dispatch(ctx context.Context, action quiz.Action) (quiz.View, error) {
	return d.service.Dispatch(ctx, d.sessionID, action)
}

var keyActions = map[string]quiz.Action{
	"t": quiz.ActionAnswerTrue,
	"f": quiz.ActionAnswerFalse,
	"n": quiz.ActionNextRound,
	"r": quiz.ActionRestart,
}

// Run plays the quiz until the player quits or input ends.
func Run(ctx context.Context, in io.Reader, out io.Writer, driver Driver) error {
	reader := bufio.NewReader(in)

	view, err := driver.View(ctx)
	if err != nil {
		return err
	}

	invalid := 0
	for {
		printView(out, view)
		fmt.Fprintf(out, "%s > ", promptFor(view.Actions))

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		key := strings.ToLower(strings.TrimSpace(line))
		if key == "q" || key == "quit" || key == "exit" {
			return nil
		}

		action, ok := keyActions[key]
		if !ok || !allowed(view.Actions, action) {
			invalid++
			if invalid >= maxInvalidInputs {
				fmt.Fprintln(out, "\nToo many invalid inputs. Bye!")
				return nil
			}
			fmt.Fprintf(out, "\nInvalid input. Choose %s.\n", promptFor(view.Actions))
			continue
		}
		invalid = 0

		view, err = driver.Dispatch(ctx, action)
		if err != nil {
			return err
		}
	}
}

func printView(out io.Writer, view quiz.View) {
	fmt.Fprintln(out)
	if view.Notice != "" {
		fmt.Fprintf(out, "! %s\n", view.Notice)
	}

	switch view.Phase {
	case quiz.PhaseFinished:
		fmt.Fprintf(out, "Game over. Final score: %s\n", view.FinalScore)
		return
	default:
		fmt.Fprintf(out, "Round %d/%d  Score %d\n", view.Round, view.MaxRounds, view.Score)
	}

	if view.Question != nil {
		fmt.Fprintf(out, "\n%s\n", view.Question.Prompt)
	}
	if view.Verdict != nil && view.Phase == quiz.PhaseShowingResult {
		fmt.Fprintf(out, "\n%s\n", view.Verdict.Message)
	}
}

func promptFor(actions []quiz.Action) string {
	labels := make([]string, 0, len(actions)+1)
	for _, action := range actions {
		switch action {
		case quiz.ActionAnswerTrue:
			labels = append(labels, "[t]rue")
		case quiz.ActionAnswerFalse:
			labels = append(labels, "[f]alse")
		case quiz.ActionNextRound:
			labels = append(labels, "[n]ext")
		case quiz.ActionRestart:
			labels = append(labels, "[r]estart")
		}
	}
	labels = append(labels, "[q]uit")
	return strings.Join(labels, " ")
}

func allowed(actions []quiz.Action, action quiz.Action) bool {
	for _, candidate := range actions {
		if candidate == action {
			return true
		}
	}
	return false
}
