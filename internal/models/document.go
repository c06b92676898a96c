// Package models defines core data structures for corpus documents, queries, and answers.
package models

// Document is one corpus file held in memory. Its position in the loaded
// slice is the join key into the similarity index.
type Document struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Content string `json:"-"`
	Size    int64  `json:"size"`
}
