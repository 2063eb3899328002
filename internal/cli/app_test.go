package cli

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"kdrama-dashboard/internal/aggregate"
	"kdrama-dashboard/internal/dataset"
	"kdrama-dashboard/internal/quiz"
)

type fakeDriver struct {
	view       quiz.View
	dispatched []quiz.Action
	err        error
}

func (f *fakeDriver) View(context.Context) (quiz.View, error) {
	return f.view, f.err
}

func (f *fakeDriver) Dispatch(_ context.Context, action quiz.Action) (quiz.View, error) {
	f.dispatched = append(f.dispatched, action)
	return f.view, f.err
}

func newLocalDriver(t *testing.T) *LocalDriver {
	t.Helper()
	data := dataset.New([]dataset.Record{
		{Title: "Goblin", Episodes: 16, HasEpisodes: true},
		{Title: "Signal", Episodes: 16, HasEpisodes: true},
	})
	engine, err := quiz.NewEngine(data, nil, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	service := quiz.NewService(engine, quiz.NewMemoryStore(time.Hour), nil, nil)
	return NewLocalDriver(service, "terminal")
}

func TestRunPlaysFullGame(t *testing.T) {
	driver := newLocalDriver(t)
	in := strings.NewReader("t\nn\nf\nn\nt\nn\nq\n")
	var out bytes.Buffer

	if err := Run(context.Background(), in, &out, driver); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Round 1/3") || !strings.Contains(output, "Round 3/3") {
		t.Fatalf("missing round headers:\n%s", output)
	}
	if !strings.Contains(output, "Game over. Final score: ") {
		t.Fatalf("missing final score:\n%s", output)
	}

	view, err := driver.View(context.Background())
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.Phase != quiz.PhaseFinished {
		t.Fatalf("phase = %s, want finished", view.Phase)
	}
}

func TestRunRejectsUnavailableKeys(t *testing.T) {
	driver := &fakeDriver{view: quiz.View{
		Phase:     quiz.PhaseAwaitingAnswer,
		Round:     1,
		MaxRounds: quiz.MaxRounds,
		Question:  &quiz.QuestionView{Title: "Goblin", DisplayedEpisodes: 16, Prompt: "\"Goblin\" has 16 episodes. True or false?"},
		Actions:   []quiz.Action{quiz.ActionAnswerTrue, quiz.ActionAnswerFalse},
	}}
	var out bytes.Buffer

	if err := Run(context.Background(), strings.NewReader("n\nx\n"), &out, driver); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(driver.dispatched) != 0 {
		t.Fatalf("unexpected dispatches: %v", driver.dispatched)
	}
	if strings.Count(out.String(), "Invalid input") != 2 {
		t.Fatalf("expected two invalid input messages:\n%s", out.String())
	}
}

func TestRunGivesUpAfterRepeatedInvalidInput(t *testing.T) {
	driver := &fakeDriver{view: quiz.View{Phase: quiz.PhaseShowingResult, Actions: []quiz.Action{quiz.ActionNextRound}}}
	var out bytes.Buffer

	if err := Run(context.Background(), strings.NewReader("t\nt\nt\nn\n"), &out, driver); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(driver.dispatched) != 0 || !strings.Contains(out.String(), "Too many invalid inputs") {
		t.Fatalf("dispatched=%v output=\n%s", driver.dispatched, out.String())
	}
}

func TestRunPropagatesDriverErrors(t *testing.T) {
	driver := &fakeDriver{err: errors.New("server down")}
	if err := Run(context.Background(), strings.NewReader(""), &bytes.Buffer{}, driver); err == nil {
		t.Fatalf("expected driver error")
	}
}

func TestRunShowsNotice(t *testing.T) {
	driver := &fakeDriver{view: quiz.View{
		Phase:   quiz.PhaseAwaitingAnswer,
		Round:   1,
		Notice:  "No series with a known episode count are available for the quiz.",
		Actions: []quiz.Action{quiz.ActionRestart},
	}}
	var out bytes.Buffer

	if err := Run(context.Background(), strings.NewReader("r\n"), &out, driver); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "! No series") {
		t.Fatalf("notice not printed:\n%s", out.String())
	}
	if len(driver.dispatched) != 1 || driver.dispatched[0] != quiz.ActionRestart {
		t.Fatalf("dispatched = %v", driver.dispatched)
	}
}

func TestTables(t *testing.T) {
	var out bytes.Buffer
	WriteYearCounts(&out, []aggregate.YearCount{{Year: 2016, Count: 2}, {Year: 2021, Count: 1}})
	if !strings.Contains(out.String(), "Series per year") || !strings.Contains(out.String(), "2016") || !strings.Contains(out.String(), "3 series across 2 years") {
		t.Fatalf("year table:\n%s", out.String())
	}

	out.Reset()
	WriteTagCounts(&out, "Genre", []aggregate.TagCount{{Tag: "Romance", Count: 4}})
	if !strings.Contains(out.String(), "Romance") || !strings.Contains(out.String(), "Genre") {
		t.Fatalf("tag table:\n%s", out.String())
	}

	out.Reset()
	WriteRecords(&out, []dataset.Record{{Title: "Goblin", Year: 2016, HasYear: true, Genres: []string{"Fantasy", "Romance"}}})
	if !strings.Contains(out.String(), "Fantasy, Romance") || !strings.Contains(out.String(), "-") {
		t.Fatalf("records table:\n%s", out.String())
	}

	out.Reset()
	WriteRecords(&out, nil)
	if !strings.Contains(out.String(), "No series found.") {
		t.Fatalf("empty records output: %q", out.String())
	}
}
