package embedding

import (
	"errors"
	"fmt"

	"github.com/hyperjump/sdkchat/internal/config"
)

// Embedder types accepted by New.
const (
	TypeONNX    = "onnx"
	TypeHashing = "hashing"
)

// ONNXOptions configures NewONNXEmbedder.
type ONNXOptions struct {
	ModelPath  string
	Tokenizer  Tokenizer
	Dimensions int
	MaxTokens  int
	CacheSize  int
	Pooling    string
	OutputName string
}

func (o *ONNXOptions) validate() error {
	if o.ModelPath == "" {
		return errors.New("onnx model path is required")
	}
	if o.Tokenizer == nil {
		return errors.New("onnx embedder needs a tokenizer")
	}
	if o.Dimensions <= 0 || o.MaxTokens < 2 {
		return fmt.Errorf("invalid onnx shape: dimensions=%d max_tokens=%d", o.Dimensions, o.MaxTokens)
	}
	if o.Pooling != PoolingMean && o.Pooling != PoolingNone {
		return fmt.Errorf("unknown pooling %q (want %q or %q)", o.Pooling, PoolingMean, PoolingNone)
	}
	if o.OutputName == "" {
		return errors.New("onnx output name is required")
	}
	return nil
}

// New creates the embedder selected by cfg.Type.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Type {
	case TypeHashing:
		return NewHashingEmbedder(cfg.Dimensions), nil
	case TypeONNX:
		vocab, err := LoadVocab(cfg.VocabPath)
		if err != nil {
			return nil, err
		}
		e, err := NewONNXEmbedder(ONNXOptions{
			ModelPath:  cfg.ModelPath,
			Tokenizer:  NewWordPieceTokenizer(vocab, cfg.LowercaseOrDefault()),
			Dimensions: cfg.Dimensions,
			MaxTokens:  cfg.MaxTokens,
			CacheSize:  cfg.CacheSize,
			Pooling:    cfg.Pooling,
			OutputName: cfg.OutputName,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding type %q (want %q or %q)", cfg.Type, TypeONNX, TypeHashing)
	}
}
