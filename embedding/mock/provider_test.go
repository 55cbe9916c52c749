package mock_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uththunga/Ethos-Prompt-sub003/embedding/mock"
)

func TestDeterministicVector(t *testing.T) {
	t.Run("same text yields same vector", func(t *testing.T) {
		assert.Equal(t,
			mock.DeterministicVector("stable input", 64),
			mock.DeterministicVector("stable input", 64))
	})

	t.Run("distinct texts yield distinct vectors", func(t *testing.T) {
		assert.NotEqual(t,
			mock.DeterministicVector("alpha", 64),
			mock.DeterministicVector("beta", 64))
	})

	t.Run("vectors are unit length", func(t *testing.T) {
		vector := mock.DeterministicVector("normalize me", mock.DefaultDimension)
		var sumSquares float64
		for _, v := range vector {
			sumSquares += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-4)
	})
}

func TestProviderEmbed(t *testing.T) {
	provider := mock.NewProvider()

	vectors, err := provider.Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], mock.DefaultDimension)
	assert.Equal(t, 1, provider.CallCount())
}
