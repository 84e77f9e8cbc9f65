package service

import (
	"math"

	"github.com/inkstand-ai/inkstand/internal/domain"
)

// MeanPool combines multiple embeddings into a single vector: each input is
// normalized to unit L2 length, the element-wise mean is taken, and the
// result is normalized again. Normalizing before averaging keeps an
// outlier-magnitude embedding from dominating the centroid; normalizing the
// result gives the pooled vector the unit length the cosine-similarity
// search assumes of every stored embedding.
//
// A single input is normalized and returned; this is not a passthrough,
// because provider embeddings are not guaranteed to be pre-normalized.
// Vectors with zero norm are left as-is to avoid division by zero.
//
// Fails with a validation error on an empty input or on inputs of
// inconsistent dimensions.
func MeanPool(embeddings [][]float32) ([]float32, error) {
	if len(embeddings) == 0 {
		return nil, domain.ErrEmptyEmbeddings
	}

	dim := len(embeddings[0])
	for _, e := range embeddings[1:] {
		if len(e) != dim {
			return nil, domain.ErrEmbeddingDimensionsVary
		}
	}

	if len(embeddings) == 1 {
		return normalize(embeddings[0]), nil
	}

	mean := make([]float64, dim)
	for _, e := range embeddings {
		norm := l2Norm(e)
		if norm == 0 {
			norm = 1
		}
		for i, v := range e {
			mean[i] += float64(v) / norm
		}
	}

	n := float64(len(embeddings))
	var sumSquares float64
	for i := range mean {
		mean[i] /= n
		sumSquares += mean[i] * mean[i]
	}

	meanNorm := math.Sqrt(sumSquares)
	result := make([]float32, dim)
	for i, v := range mean {
		if meanNorm > 0 {
			v /= meanNorm
		}
		result[i] = float32(v)
	}

	return result, nil
}

// normalize returns a unit-length copy of the vector, or an unchanged copy
// when its norm is zero.
func normalize(embedding []float32) []float32 {
	norm := l2Norm(embedding)
	result := make([]float32, len(embedding))
	for i, v := range embedding {
		if norm > 0 {
			result[i] = float32(float64(v) / norm)
		} else {
			result[i] = v
		}
	}
	return result
}

func l2Norm(embedding []float32) float64 {
	var sumSquares float64
	for _, v := range embedding {
		sumSquares += float64(v) * float64(v)
	}
	return math.Sqrt(sumSquares)
}
