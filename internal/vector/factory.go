package vector

import (
	"context"
	"fmt"
)

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeFlat uses exhaustive in-memory search.
	IndexTypeFlat IndexType = "flat"
	// IndexTypeFAISS uses FAISS IndexFlatL2 through the C API.
	// Requires the FAISS library and build tag -tags=faiss.
	IndexTypeFAISS IndexType = "faiss"
)

// NewIndex creates an empty index of the specified type.
// Supported types: "flat" (default), "faiss".
func NewIndex(indexType string, dimensions int) (Index, error) {
	switch IndexType(indexType) {
	case IndexTypeFlat, "":
		return NewFlatIndex(dimensions)
	case IndexTypeFAISS:
		idx, err := NewFAISSIndex(dimensions)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: flat, faiss)", indexType)
	}
}

// Build creates an index of the given type and adds all vectors in one call.
func Build(ctx context.Context, indexType string, dimensions int, vectors [][]float32) (Index, error) {
	idx, err := NewIndex(indexType, dimensions)
	if err != nil {
		return nil, err
	}
	if err := idx.Add(ctx, vectors); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("failed to add vectors: %w", err)
	}
	return idx, nil
}

// IsFAISSAvailable returns true if FAISS support is compiled in.
// This is determined by the build tag -tags=faiss.
func IsFAISSAvailable() bool {
	idx, err := NewFAISSIndex(1)
	if err != nil {
		return false
	}
	_ = idx.Close()
	return true
}
