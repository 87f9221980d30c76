package quizstream

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerator_FIFOThenRepeatsLast(t *testing.T) {
	ctx := context.Background()
	m := NewMockGenerator(MockResponse{Text: "one"}, MockResponse{Text: "two"})

	for _, want := range []string{"one", "two", "two"} {
		got, err := m.Generate(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	m.AddResponse(MockResponse{Err: errors.New("rate limited")})
	_, err := m.Generate(ctx, "p")
	assert.EqualError(t, err, "rate limited")
	assert.Equal(t, 4, m.CallCount())
}

func TestMockGenerator_EmptyQueue(t *testing.T) {
	_, err := NewMockGenerator().Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestMockGenerator_HonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockGenerator(MockResponse{Text: "x"}).Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSampleResponseValidates(t *testing.T) {
	qc, _ := newTestChecker(t)
	result, err := qc.Validate(SampleResponse)
	require.NoError(t, err)
	assert.Len(t, result.Questions, 5)
	assert.Empty(t, result.Rejected)
}
