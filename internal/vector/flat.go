package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// FlatIndex is an exhaustive in-memory index using squared Euclidean distance.
// Results are ordered by ascending distance; equal distances keep insertion order.
type FlatIndex struct {
	dimensions int
	data       []float32 // row-major, Size() x dimensions
	sealed     bool
	mu         sync.RWMutex
}

// NewFlatIndex creates an empty flat index with the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &FlatIndex{dimensions: dimensions}, nil
}

// Type returns the index type identifier.
func (f *FlatIndex) Type() string {
	return string(IndexTypeFlat)
}

// Add appends vectors; their positions continue from Size().
func (f *FlatIndex) Add(ctx context.Context, vectors [][]float32) error {
	for i, vec := range vectors {
		if len(vec) != f.dimensions {
			return fmt.Errorf("%w at %d: got %d, expected %d", ErrDimensionMismatch, i, len(vec), f.dimensions)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sealed {
		return ErrSealed
	}
	for _, vec := range vectors {
		if err := ctx.Err(); err != nil {
			return err
		}
		f.data = append(f.data, vec...)
	}
	return nil
}

// Search returns the k nearest vectors to query. k larger than Size() returns
// Size() results; k <= 0 returns none.
func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]Neighbor, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), f.dimensions)
	}
	f.seal()

	f.mu.RLock()
	defer f.mu.RUnlock()
	n := len(f.data) / f.dimensions
	if k <= 0 || n == 0 {
		return nil, nil
	}
	all := make([]Neighbor, n)
	for i := 0; i < n; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := f.data[i*f.dimensions : (i+1)*f.dimensions]
		all[i] = Neighbor{Position: i, Distance: SquaredL2(query, row)}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].Position < all[j].Position
	})
	if k > n {
		k = n
	}
	return all[:k:k], nil
}

func (f *FlatIndex) seal() {
	f.mu.Lock()
	f.sealed = true
	f.mu.Unlock()
}

// Size returns the number of vectors in the index.
func (f *FlatIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.data) / f.dimensions
}

// Dimensions returns the vector dimension.
func (f *FlatIndex) Dimensions() int {
	return f.dimensions
}

// Close is a no-op for FlatIndex.
func (f *FlatIndex) Close() error {
	return nil
}
