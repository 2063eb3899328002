package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"kdrama-dashboard/internal/aggregate"
	"kdrama-dashboard/internal/quiz"
)

const (
	defaultGenreLimit = 10
	defaultWordLimit  = 50
	maxActionBody     = 1 << 10
)

func (a *API) HandleQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.service == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "quiz service unavailable"})
		return
	}

	id := sessionID(w, r)
	view, err := a.service.View(r.Context(), id)
	if err != nil {
		a.logServiceError(r, id, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quizResponse{SessionID: id, View: view})
}

func (a *API) HandleQuizAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if a.service == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "quiz service unavailable"})
		return
	}

	defer r.Body.Close()

	var request quizActionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxActionBody)).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	action, err := quiz.ParseAction(request.Action)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	id := sessionID(w, r)
	view, err := a.service.Dispatch(r.Context(), id, action)
	if err != nil {
		a.logServiceError(r, id, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quizResponse{SessionID: id, View: view})
}

func (a *API) HandleYearCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	years := aggregate.SortedYearCounts(aggregate.CountsByYear(a.data))
	total := 0
	for _, year := range years {
		total += year.Count
	}
	writeJSON(w, http.StatusOK, yearCountsResponse{Total: total, Years: years})
}

func (a *API) HandleTopGenres(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	k, err := parseIntParam(r, "k", defaultGenreLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tagCountsResponse{Tags: aggregate.TopGenres(a.data, k)})
}

func (a *API) HandleTitleWords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	k, err := parseIntParam(r, "k", defaultWordLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tagCountsResponse{Tags: aggregate.TopTitleWords(a.data, k)})
}

func (a *API) HandleYears(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	years := a.data.DistinctYears()
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, yearsResponse{Years: years})
}

func (a *API) HandleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	year, err := parseIntParam(r, "year", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if year == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "year is required"})
		return
	}

	records := toRecordResponses(a.data.FilterByYear(year))
	writeJSON(w, http.StatusOK, recordsResponse{Year: year, Count: len(records), Records: records})
}

func (a *API) logServiceError(r *http.Request, sessionID string, err error) {
	if errors.Is(err, quiz.ErrInvalidSessionID) {
		return
	}
	a.logger.Error("quiz request failed",
		slog.String("path", r.URL.Path),
		slog.String("session_id", sessionID),
		slog.String("error", err.Error()),
	)
}
