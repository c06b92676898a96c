// Package vector provides exact nearest-neighbour indexes over fixed-dimension vectors.
package vector

import (
	"context"
	"errors"
)

// Index is a write-once, read-many similarity index. Vectors are identified
// by their insertion position. Once Search has been called the index is
// sealed and Add returns ErrSealed.
type Index interface {
	Add(ctx context.Context, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]Neighbor, error)
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// Neighbor is a single search hit. Distance is the squared Euclidean distance.
type Neighbor struct {
	Position int
	Distance float32
}

var (
	// ErrSealed is returned by Add after the index has served a search.
	ErrSealed = errors.New("index is sealed")
	// ErrDimensionMismatch is returned for vectors of the wrong length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
