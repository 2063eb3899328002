package quiz

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUnknownAction          = errors.New("unknown action")
	ErrSessionNotFound        = errors.New("session not found")
	ErrInvalidSessionID       = errors.New("invalid session id")
	ErrCorruptState           = errors.New("corrupt game state")
)

// SessionStore keeps one GameState per session id. Load returns
// ErrSessionNotFound for unknown or expired sessions; Save creates or
// replaces the state and refreshes its expiry.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (GameState, error)
	Save(ctx context.Context, sessionID string, state GameState) error
	Delete(ctx context.Context, sessionID string) error
}

// Sweeper is implemented by stores that need explicit eviction of expired
// sessions.
type Sweeper interface {
	EvictExpired(ctx context.Context, now time.Time) (int, error)
}

const (
	EventAnswered = "quiz.answered"
	EventFinished = "quiz.finished"
	EventReset    = "quiz.reset"
)

type Event struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	Round      int       `json:"round"`
	Score      int       `json:"score"`
	Title      string    `json:"title,omitempty"`
	Correct    *bool     `json:"correct,omitempty"`
	FinalScore string    `json:"final_score,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher receives game events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
