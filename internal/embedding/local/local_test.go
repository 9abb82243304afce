package local

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_FixedDimensions(t *testing.T) {
	e := NewEmbedder(64)
	assert.Equal(t, 64, e.Dimensions())

	vec, err := e.Embed(context.Background(), "globally distributed database")
	require.NoError(t, err)
	assert.Len(t, vec, 64)
}

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEmbedder(64)
	a, err := e.Embed(context.Background(), "serverless event-driven compute")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "serverless event-driven compute")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbed_Normalized(t *testing.T) {
	e := NewEmbedder(128)
	vec, err := e.Embed(context.Background(), "a globally distributed multi-model database")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbed_NoTokensIsZeroVector(t *testing.T) {
	e := NewEmbedder(16)
	vec, err := e.Embed(context.Background(), "the and of 123 !!!")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbed_SharedTokensCorrelate(t *testing.T) {
	e := NewEmbedder(256)
	ctx := context.Background()
	db, err := e.Embed(ctx, "A globally distributed multi-model database.")
	require.NoError(t, err)
	fn, err := e.Embed(ctx, "Event-driven serverless compute platform.")
	require.NoError(t, err)
	q, err := e.Embed(ctx, "I need a globally distributed database")
	require.NoError(t, err)

	assert.Greater(t, dot(q, db), dot(q, fn))
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
