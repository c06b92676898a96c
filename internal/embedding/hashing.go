package embedding

import (
	"context"
	"hash/fnv"

	"github.com/hyperjump/sdkchat/pkg/utils"
)

// HashingEmbedder is a model-free embedder: tokens are feature-hashed into a
// signed bag-of-words vector and L2-normalised. It needs no model files and
// is used offline and in tests.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder returns an embedder producing vectors of the given dimensions.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashingEmbedder{dimensions: dimensions}
}

// Embed returns the hashed embedding of text. Empty text yields the zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.dimensions)
	eachBasicToken(text, true, func(tok string) bool {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dimensions))
		if sum&(1<<31) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
		return true
	})
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *HashingEmbedder) Close() error {
	return nil
}
