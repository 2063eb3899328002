package httpapi

import (
	"kdrama-dashboard/internal/aggregate"
	"kdrama-dashboard/internal/quiz"
)

type quizResponse struct {
	SessionID string `json:"session_id"`
	quiz.View
}

type quizActionRequest struct {
	Action string `json:"action"`
}

type yearCountsResponse struct {
	Total int                   `json:"total"`
	Years []aggregate.YearCount `json:"years"`
}

type tagCountsResponse struct {
	Tags []aggregate.TagCount `json:"tags"`
}

type yearsResponse struct {
	Years []int `json:"years"`
}

type recordResponse struct {
	Title    string   `json:"title"`
	Year     *int     `json:"year,omitempty"`
	Genres   []string `json:"genres"`
	Episodes *int     `json:"episodes,omitempty"`
}

type recordsResponse struct {
	Year    int              `json:"year"`
	Count   int              `json:"count"`
	Records []recordResponse `json:"records"`
}

type errorResponse struct {
	Error string `json:"error"`
}
