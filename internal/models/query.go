package models

import (
	"errors"
	"strings"
)

// ErrEmptyQuery is returned by Validate for a blank query.
var ErrEmptyQuery = errors.New("query cannot be empty")

// SearchQuery represents a retrieval request.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Validate ensures the query is non-blank and normalizes the limit.
// A zero or negative limit falls back to defaultLimit.
func (q *SearchQuery) Validate(defaultLimit int) error {
	if strings.TrimSpace(q.Query) == "" {
		return ErrEmptyQuery
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	return nil
}

// AnswerRequest is the body of an answer request.
type AnswerRequest struct {
	Question string `json:"question"`
}
