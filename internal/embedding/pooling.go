package embedding

// Pooling strategies for ONNX sentence-transformer exports.
const (
	// PoolingMean averages the token embeddings of last_hidden_state under the attention mask.
	PoolingMean = "mean"
	// PoolingNone reads an already pooled [1, D] output.
	PoolingNone = "none"
)

// meanPool averages the rows of hidden (seqLen x dims, row-major) whose mask is non-zero.
func meanPool(hidden []float32, mask []int64, dims int) []float32 {
	out := make([]float32, dims)
	var count float32
	for t, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[t*dims : (t+1)*dims]
		for j, v := range row {
			out[j] += v
		}
		count++
	}
	if count == 0 {
		return out
	}
	for j := range out {
		out[j] /= count
	}
	return out
}
