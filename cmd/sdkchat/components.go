package main

import (
	"context"
	"fmt"

	"github.com/hyperjump/sdkchat/internal/answer"
	"github.com/hyperjump/sdkchat/internal/config"
	"github.com/hyperjump/sdkchat/internal/corpus"
	"github.com/hyperjump/sdkchat/internal/embedding"
	"github.com/hyperjump/sdkchat/internal/search"
	"github.com/hyperjump/sdkchat/internal/vector"
	"go.uber.org/zap"
)

// Components is everything a front end needs once the corpus is indexed.
type Components struct {
	Report   *corpus.Report
	Embedder embedding.Embedder
	Engine   *search.Engine
	Service  *answer.Service
}

// Close releases the index and the embedder.
func (c *Components) Close() {
	if c.Engine != nil {
		_ = c.Engine.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// initializeComponents prepares the corpus roots, loads every document,
// embeds and indexes them, and wires the answer service. Any error is fatal
// to the caller; nothing is retried.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	loader := corpus.NewLoader(
		corpus.WithLogger(logger),
		corpus.WithArchiveExt(cfg.Corpus.ArchiveExt),
	)
	if err := loader.EnsureRoots(ctx, cfg.Corpus.Directories); err != nil {
		return nil, fmt.Errorf("failed to prepare corpus: %w", err)
	}
	report, err := loader.Load(ctx, cfg.Corpus.Directories)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	embedder, err := newEmbedder(cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	indexType := cfg.Index.Type
	if vector.IndexType(indexType) == vector.IndexTypeFAISS && !vector.IsFAISSAvailable() {
		logger.Warn("FAISS not compiled in, falling back to flat index",
			zap.String("requested_type", indexType))
		indexType = string(vector.IndexTypeFlat)
	}
	engine, err := search.Build(ctx, report.Documents, embedder, indexType, search.WithLogger(logger))
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	generator, err := answer.NewGenerator(cfg.Generator)
	if err != nil {
		_ = engine.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}
	synth := answer.NewSynthesizer(answer.PromptBuilder{
		Preamble:    cfg.Prompt.Preamble,
		Instruction: cfg.Prompt.Instruction,
	}, generator)
	svc := answer.NewService(engine, synth, cfg.Retrieval.TopK, answer.WithLogger(logger))

	logger.Info("ready",
		zap.Int("documents", len(report.Documents)),
		zap.Int("skipped", len(report.Skipped)),
		zap.String("index_type", engine.IndexType()),
		zap.String("generator", cfg.Generator.Type))

	return &Components{
		Report:   report,
		Embedder: embedder,
		Engine:   engine,
		Service:  svc,
	}, nil
}

// newEmbedder creates the configured embedder. When the ONNX model cannot be
// loaded the deterministic hashing embedder of the same dimension is used;
// any other failure, such as an unknown type, is returned.
func newEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) (embedding.Embedder, error) {
	e, err := embedding.New(cfg)
	if err == nil {
		return e, nil
	}
	if cfg.Type != embedding.TypeONNX {
		return nil, err
	}
	logger.Warn("embedder unavailable, falling back to hashing embedder",
		zap.String("model_path", cfg.ModelPath),
		zap.Error(err))
	return embedding.NewHashingEmbedder(cfg.Dimensions), nil
}
