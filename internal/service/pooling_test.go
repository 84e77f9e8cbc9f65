package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkstand-ai/inkstand/internal/domain"
)

func vectorNorm(v []float32) float64 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	return math.Sqrt(sumSquares)
}

func TestMeanPool_SingleVectorNormalized(t *testing.T) {
	result, err := MeanPool([][]float32{{3, 4, 0}})

	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.InDelta(t, 0.6, result[0], 1e-6)
	assert.InDelta(t, 0.8, result[1], 1e-6)
	assert.InDelta(t, 0.0, result[2], 1e-6)
}

func TestMeanPool_OrthogonalUnitVectors(t *testing.T) {
	result, err := MeanPool([][]float32{
		{1, 0, 0},
		{0, 1, 0},
	})

	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2/2, result[0], 1e-6)
	assert.InDelta(t, math.Sqrt2/2, result[1], 1e-6)
	assert.InDelta(t, 0.0, result[2], 1e-6)
}

func TestMeanPool_ResultIsUnitNorm(t *testing.T) {
	result, err := MeanPool([][]float32{
		{2, 3, 5},
		{-1, 4, 0.5},
		{0.1, 0.1, 9},
	})

	require.NoError(t, err)
	assert.InDelta(t, 1.0, vectorNorm(result), 1e-6)
}

func TestMeanPool_MagnitudeInvariance(t *testing.T) {
	// Scaling one input must not change the pooled direction since each
	// input is normalized before averaging.
	base, err := MeanPool([][]float32{
		{1, 2, 3},
		{4, 0, 1},
	})
	require.NoError(t, err)

	scaled, err := MeanPool([][]float32{
		{100, 200, 300},
		{4, 0, 1},
	})
	require.NoError(t, err)

	for i := range base {
		assert.InDelta(t, base[i], scaled[i], 1e-5)
	}
}

func TestMeanPool_OrderIndependent(t *testing.T) {
	a, err := MeanPool([][]float32{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})
	require.NoError(t, err)

	b, err := MeanPool([][]float32{
		{7, 8, 9},
		{1, 2, 3},
		{4, 5, 6},
	})
	require.NoError(t, err)

	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-6)
	}
}

func TestMeanPool_ZeroVectorIgnoredSafely(t *testing.T) {
	result, err := MeanPool([][]float32{
		{0, 0, 0},
		{0, 2, 0},
	})

	require.NoError(t, err)
	assert.InDelta(t, 0.0, result[0], 1e-6)
	assert.InDelta(t, 1.0, result[1], 1e-6)
	assert.InDelta(t, 0.0, result[2], 1e-6)
}

func TestMeanPool_EmptyInput(t *testing.T) {
	result, err := MeanPool(nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrEmptyEmbeddings)
	assert.True(t, domain.IsValidation(err))
}

func TestMeanPool_DimensionMismatch(t *testing.T) {
	result, err := MeanPool([][]float32{
		{1, 2, 3},
		{1, 2},
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrEmbeddingDimensionsVary)
	assert.True(t, domain.IsValidation(err))
}
