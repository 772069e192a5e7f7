package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClientEmbedDeterministic(t *testing.T) {
	client := NewFakeClient(64)
	ctx := context.Background()

	a, err := client.Embed(ctx, "кава з друзями")
	require.NoError(t, err)
	b, err := client.Embed(ctx, "кава з друзями")
	require.NoError(t, err)

	require.Len(t, a, 64)
	assert.Equal(t, a, b, "equal texts map to equal vectors")

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5, "vectors are unit length")

	other, err := client.Embed(ctx, "зовсім інший текст")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestFakeClientEmbedEmptyText(t *testing.T) {
	client := NewFakeClient(8)

	vec, err := client.Embed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vec, 8)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestFakeClientCompleteOverride(t *testing.T) {
	client := NewFakeClient(8)
	ctx := context.Background()

	answer, err := client.Complete(ctx, "підсумуй")
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Equal(t, []string{"підсумуй"}, client.Completions)

	client.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("boom")
	}
	_, err = client.Complete(ctx, "ще раз")
	assert.Error(t, err)
}
