package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kdrama-dashboard/internal/quiz"
)

// Load returns quiz.ErrSessionNotFound for unknown and expired sessions, and
// quiz.ErrCorruptState when the stored document no longer decodes into a
// valid game.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (quiz.GameState, error) {
	var (
		stateJSON     string
		expiresAtUnix int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT state_json, expires_at_unix FROM sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&stateJSON, &expiresAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.GameState{}, quiz.ErrSessionNotFound
		}
		return quiz.GameState{}, err
	}

	if expiresAtUnix > 0 && s.now().Unix() >= expiresAtUnix {
		return quiz.GameState{}, quiz.ErrSessionNotFound
	}

	var state quiz.GameState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return quiz.GameState{}, fmt.Errorf("%w: %v", quiz.ErrCorruptState, err)
	}
	if err := state.Validate(); err != nil {
		return quiz.GameState{}, err
	}
	return state, nil
}

// Save upserts the session and pushes its expiry forward.
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, state quiz.GameState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	now := s.now()
	var expiresAtUnix int64
	if s.ttl > 0 {
		expiresAtUnix = now.Add(s.ttl).Unix()
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (session_id, state_json, updated_at_unix, expires_at_unix)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			state_json = excluded.state_json,
			updated_at_unix = excluded.updated_at_unix,
			expires_at_unix = excluded.expires_at_unix`,
		sessionID,
		string(payload),
		now.Unix(),
		expiresAtUnix,
	)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) EvictExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM sessions WHERE expires_at_unix > 0 AND expires_at_unix <= ?`,
		now.Unix(),
	)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
