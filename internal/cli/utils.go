// Package cli formats retrieval results and answers for terminal output.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/sdkchat/internal/models"
	"github.com/hyperjump/sdkchat/internal/search"
	"github.com/hyperjump/sdkchat/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const snippetLen = 200

// ParseOutputFormat validates a --output flag value. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// WriteSearchResults writes retrieval results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms for %q\n\n", response.Total, response.QueryTime, response.Query)
	terms := strings.Fields(response.Query)
	for _, result := range response.Results {
		writeOneResult(w, result, terms)
	}
	return nil
}

func writeOneResult(w io.Writer, result *models.RetrievalResult, terms []string) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Distance: %.4f\n", result.Rank, result.Distance)
	fmt.Fprintf(w, "Path: %s\n", result.Document.Path)
	snippet := utils.OneLine(search.Snippet(result.Document.Content, terms, snippetLen))
	fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(snippet, snippetLen+6))
}

// WriteAnswer writes a generated answer to w. Text output lists the source
// paths after the answer.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintln(w, answer.Answer)
	if len(answer.Sources) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nSources:")
	for _, s := range answer.Sources {
		fmt.Fprintf(w, "  %d. %s (%.4f)\n", s.Rank, s.Document.Path, s.Distance)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
