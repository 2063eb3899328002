package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"kdrama-dashboard/internal/dataset"
	"kdrama-dashboard/internal/quiz"
)

const (
	sessionCookieName = "kdrama_session"
	sessionHeader     = "X-Session-ID"
	sessionCookieAge  = 7 * 24 * 60 * 60
)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrInvalidSessionID):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session id must be 1-128 characters"})
	case errors.Is(err, quiz.ErrUnknownAction):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "action must be one of answer_true, answer_false, next_round, restart"})
	case errors.Is(err, dataset.ErrEmptyDataset):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no playable series loaded"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// sessionID resolves the caller's session. The header wins over the cookie so
// non-browser clients can pin a session explicitly. When neither is present a
// new id is issued as a cookie.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(sessionHeader)); id != "" {
		return id
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionCookieAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func toRecordResponses(records []dataset.Record) []recordResponse {
	response := make([]recordResponse, 0, len(records))
	for _, record := range records {
		item := recordResponse{
			Title:  record.Title,
			Genres: record.Genres,
		}
		if item.Genres == nil {
			item.Genres = []string{}
		}
		if record.HasYear {
			year := record.Year
			item.Year = &year
		}
		if record.HasEpisodes {
			episodes := record.Episodes
			item.Episodes = &episodes
		}
		response = append(response, item)
	}
	return response
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
