package stats

import (
	"strings"
	"testing"

	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordCounter struct{}

func (wordCounter) Count(text string) (int, error) {
	return len(strings.Fields(text)), nil
}

func docs() []*transcript.Document {
	return []*transcript.Document{{
		Name: "prompts.yaml",
		Conversations: []transcript.Conversation{
			{
				Source:   "prompts.yaml",
				Messages: transcript.ClassifyAll([]string{"hello there", "Q: what now", "A: this", "odd", "Q2: and then"}),
			},
			{
				Source:   "prompts.yaml",
				Index:    1,
				Title:    "second",
				Messages: transcript.ClassifyAll([]string{"Q: x", "A: y", "A2: z"}),
			},
		},
	}}
}

func TestCompute(t *testing.T) {
	s, err := Compute(docs(), wordCounter{})
	require.NoError(t, err)
	require.Len(t, s.Conversations, 2)

	first := s.Conversations[0]
	assert.Equal(t, 5, first.Messages)
	assert.Equal(t, 2, first.Turns)
	assert.Equal(t, 1, first.Answers)
	assert.Equal(t, 2, first.Flagged)
	assert.Equal(t, 8, first.Tokens)

	assert.Equal(t, 8, s.Total.Messages)
	assert.Equal(t, 3, s.Total.Turns)
	assert.Equal(t, 3, s.Total.Answers)
	assert.Equal(t, 2, s.Total.Flagged)
	assert.Equal(t, 11, s.Total.Tokens)
}

func TestCompute_WithoutCounter(t *testing.T) {
	s, err := Compute(docs(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Total.Tokens)
}

func TestRows(t *testing.T) {
	s, err := Compute(docs(), wordCounter{})
	require.NoError(t, err)

	rows := s.Rows(false)
	require.Len(t, rows, 3)

	source, ok := rows[0].Get("source")
	require.True(t, ok)
	assert.Equal(t, "prompts.yaml", source)
	_, ok = rows[0].Get("tokens")
	assert.False(t, ok)

	total := rows[2]
	source, _ = total.Get("source")
	assert.Equal(t, "total", source)
	messages, _ := total.Get("messages")
	assert.Equal(t, 8, messages)

	rows = s.Rows(true)
	tokens, ok := rows[2].Get("tokens")
	require.True(t, ok)
	assert.Equal(t, 11, tokens)
}

func TestNewTokenCounter(t *testing.T) {
	c, err := NewTokenCounter(DefaultModel)
	require.NoError(t, err)
	n, err := c.Count("hello world")
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	_, err = NewTokenCounter("no-such-model")
	require.Error(t, err)
}
