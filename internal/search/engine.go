// Package search embeds a loaded corpus once and answers nearest-neighbour queries over it.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/sdkchat/internal/embedding"
	"github.com/hyperjump/sdkchat/internal/models"
	"github.com/hyperjump/sdkchat/internal/vector"
	"go.uber.org/zap"
)

// ErrEmptyCorpus is returned when there are no documents to index.
var ErrEmptyCorpus = errors.New("corpus contains no readable documents")

// Engine pairs the loaded documents with their similarity index. It is
// immutable after construction and safe for concurrent use.
type Engine struct {
	docs     []*models.Document
	embedder embedding.Embedder
	index    vector.Index
	logger   *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for build and query events.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine wraps an already populated index. Position i in index must hold
// the embedding of docs[i].
func NewEngine(docs []*models.Document, embedder embedding.Embedder, index vector.Index, opts ...EngineOption) (*Engine, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}
	if index.Size() != len(docs) {
		return nil, fmt.Errorf("index holds %d vectors for %d documents", index.Size(), len(docs))
	}
	if index.Dimensions() != embedder.Dimensions() {
		return nil, &embedding.DimensionError{Want: index.Dimensions(), Got: embedder.Dimensions(), Index: -1}
	}
	e := &Engine{docs: docs, embedder: embedder, index: index, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Build embeds every document in one batch and builds an index of indexType.
// Any vector whose length differs from the embedder's dimension is a fatal
// *embedding.DimensionError.
func Build(ctx context.Context, docs []*models.Document, embedder embedding.Embedder, indexType string, opts ...EngineOption) (*Engine, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}
	start := time.Now()
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed corpus: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}
	dims := embedder.Dimensions()
	if err := embedding.CheckDimensions(vectors, dims); err != nil {
		return nil, fmt.Errorf("corpus embeddings: %w", err)
	}
	index, err := vector.Build(ctx, indexType, dims, vectors)
	if err != nil {
		return nil, err
	}
	e, err := NewEngine(docs, embedder, index, opts...)
	if err != nil {
		_ = index.Close()
		return nil, err
	}
	e.logger.Info("index built",
		zap.Int("documents", len(docs)),
		zap.Int("dimensions", dims),
		zap.String("index_type", index.Type()),
		zap.Duration("duration", time.Since(start)))
	return e, nil
}

// Search embeds query and returns up to k nearest documents, nearest first.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]*models.RetrievalResult, error) {
	qv, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if err := embedding.CheckDimension(qv, e.index.Dimensions()); err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	neighbors, err := e.index.Search(ctx, qv, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	results := make([]*models.RetrievalResult, len(neighbors))
	for i, n := range neighbors {
		results[i] = &models.RetrievalResult{
			Document: e.docs[n.Position],
			Distance: n.Distance,
			Position: n.Position,
			Rank:     i + 1,
		}
	}
	e.logger.Debug("retrieval", zap.Int("k", k), zap.Int("results", len(results)))
	return results, nil
}

// Query validates q, runs Search, and wraps the results with timing.
func (e *Engine) Query(ctx context.Context, q *models.SearchQuery, defaultLimit int) (*models.SearchResponse, error) {
	start := time.Now()
	if err := ProcessQuery(q, defaultLimit); err != nil {
		return nil, err
	}
	results, err := e.Search(ctx, q.Query, q.Limit)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     q.Query,
	}, nil
}

// Size returns the number of indexed documents.
func (e *Engine) Size() int { return len(e.docs) }

// Dimensions returns the embedding dimension.
func (e *Engine) Dimensions() int { return e.index.Dimensions() }

// IndexType returns the index backend name.
func (e *Engine) IndexType() string { return e.index.Type() }

// Close releases the index. The embedder is owned by the caller.
func (e *Engine) Close() error { return e.index.Close() }
