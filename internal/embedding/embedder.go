// Package embedding maps text to fixed-dimension vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Embedder produces vector embeddings for text. Implementations are
// deterministic: a text always yields the same vector regardless of batch
// composition or call order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// ErrDimensionMismatch reports a vector whose length differs from the expected dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// DimensionError carries the expected and observed dimensions.
type DimensionError struct {
	Want  int
	Got   int
	Index int // position of the offending vector, -1 for a single vector
}

func (e *DimensionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("embedding dimension mismatch at %d: got %d, expected %d", e.Index, e.Got, e.Want)
	}
	return fmt.Sprintf("embedding dimension mismatch: got %d, expected %d", e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// CheckDimension returns a *DimensionError if len(vec) != want.
func CheckDimension(vec []float32, want int) error {
	if len(vec) != want {
		return &DimensionError{Want: want, Got: len(vec), Index: -1}
	}
	return nil
}

// CheckDimensions returns a *DimensionError for the first vector whose length differs from want.
func CheckDimensions(vecs [][]float32, want int) error {
	for i, v := range vecs {
		if len(v) != want {
			return &DimensionError{Want: want, Got: len(v), Index: i}
		}
	}
	return nil
}
