package search

import "github.com/hyperjump/sdkchat/internal/models"

// ProcessQuery validates and applies defaults to the search query.
func ProcessQuery(query *models.SearchQuery, defaultLimit int) error {
	return query.Validate(defaultLimit)
}
