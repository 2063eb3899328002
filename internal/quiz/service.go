package quiz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"kdrama-dashboard/internal/dataset"
)

const maxSessionIDLength = 128

const (
	noticeInvalidAction = "That action is not available right now."
	noticeEmptyDataset  = "No series with a known episode count are available for the quiz."
)

// Service runs one request of the quiz: it loads the session's state, applies
// at most one action, makes sure the round has a challenge, saves, and
// renders. Every shell invocation goes through View or Dispatch, so repeated
// redraws without a new action never change the state.
type Service struct {
	engine    *Engine
	store     SessionStore
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time

	locks sessionLocks
}

func NewService(engine *Engine, store SessionStore, publisher EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		engine:    engine,
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		locks:     sessionLocks{entries: make(map[string]*sessionLock)},
	}
}

// View renders the session without applying an action.
func (s *Service) View(ctx context.Context, sessionID string) (View, error) {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return View{}, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.settle(ctx, sessionID, state, "")
}

// Dispatch applies one user action to the session. A rejected action leaves
// the state untouched and is reported through View.Notice.
func (s *Service) Dispatch(ctx context.Context, sessionID string, action Action) (View, error) {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return View{}, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	notice := ""
	next, err := s.engine.Apply(state, action)
	if err != nil {
		if !errors.Is(err, ErrInvalidStateTransition) && !errors.Is(err, ErrUnknownAction) {
			return View{}, err
		}
		s.logger.Info("quiz action rejected",
			slog.String("session_id", sessionID),
			slog.String("action", string(action)),
			slog.String("phase", string(state.Phase)),
			slog.String("error", err.Error()),
		)
		notice = noticeInvalidAction
		next = state
	}

	view, err := s.settle(ctx, sessionID, next, notice)
	if err != nil {
		return View{}, err
	}

	if notice == "" {
		s.publish(ctx, sessionID, action, state, next)
	}
	return view, nil
}

// Sweep evicts expired sessions when the store needs explicit eviction.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	sweeper, ok := s.store.(Sweeper)
	if !ok {
		return 0, nil
	}
	return sweeper.EvictExpired(ctx, s.now())
}

func (s *Service) load(ctx context.Context, sessionID string) (GameState, error) {
	state, err := s.store.Load(ctx, sessionID)
	switch {
	case err == nil:
		return state, nil
	case errors.Is(err, ErrSessionNotFound):
		return NewGameState(), nil
	case errors.Is(err, ErrCorruptState):
		s.logger.Warn("discarding corrupt session state",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return NewGameState(), nil
	default:
		return GameState{}, fmt.Errorf("load session: %w", err)
	}
}

// settle draws a challenge if the round needs one, persists, and renders.
func (s *Service) settle(ctx context.Context, sessionID string, state GameState, notice string) (View, error) {
	next, err := s.engine.EnsureChallenge(state)
	if err != nil {
		if !errors.Is(err, dataset.ErrEmptyDataset) {
			return View{}, err
		}
		s.logger.Warn("quiz has no playable records", slog.String("session_id", sessionID))
		notice = noticeEmptyDataset
		next = state
	}

	if err := s.store.Save(ctx, sessionID, next); err != nil {
		return View{}, fmt.Errorf("save session: %w", err)
	}

	view := Render(next)
	view.Notice = notice
	return view, nil
}

func (s *Service) publish(ctx context.Context, sessionID string, action Action, before, after GameState) {
	if s.publisher == nil {
		return
	}

	event := Event{
		SessionID:  sessionID,
		Round:      after.Round,
		Score:      after.Score,
		OccurredAt: s.now().UTC(),
	}

	switch {
	case action == ActionAnswerTrue || action == ActionAnswerFalse:
		event.Type = EventAnswered
		if after.Challenge != nil {
			event.Title = after.Challenge.Subject.Title
		}
		if after.LastVerdict != nil {
			correct := after.LastVerdict.Correct
			event.Correct = &correct
		}
	case action == ActionNextRound && after.Phase == PhaseFinished:
		event.Type = EventFinished
		event.Round = MaxRounds
		event.FinalScore = after.FinalScore()
	case action == ActionRestart:
		event.Type = EventReset
		event.Score = before.Score
	default:
		return
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish quiz event failed",
			slog.String("event", event.Type),
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func normalizeSessionID(sessionID string) (string, error) {
	normalized := strings.TrimSpace(sessionID)
	if normalized == "" || len(normalized) > maxSessionIDLength {
		return "", ErrInvalidSessionID
	}
	return normalized, nil
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks serializes requests per session while letting different
// sessions proceed in parallel.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*sessionLock
}

func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	entry, ok := l.entries[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.entries[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, sessionID)
		}
		l.mu.Unlock()
	}
}
