package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/go-go-golems/qalog/pkg/transcript/loader"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptsFromDocument(t *testing.T) {
	doc := &transcript.Document{
		Conversations: []transcript.Conversation{
			{Messages: transcript.ClassifyAll([]string{"Q: shown", "P: first prompt", "  P:second  ", "P:"})},
			{Messages: transcript.ClassifyAll([]string{"A: shown", "P: third"})},
		},
	}
	assert.Equal(t, []string{"first prompt", "second", "third"}, PromptsFromDocument(doc))
}

func TestQueryAll_StopsAtFirstError(t *testing.T) {
	client := NewScriptedClient(
		ScriptedResponse{Response: "one"},
		ScriptedResponse{Err: errors.New("rate limited")},
		ScriptedResponse{Response: "three"},
	)
	_, err := QueryAll(context.Background(), client, []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt 2")
	assert.Equal(t, []string{"a", "b"}, client.Calls())
}

func TestRecorder_WritesLoadableVariant(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompts.yaml"), []byte("prompts:\n  - [\"Q: original\"]\n"), 0o644))

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	client := NewScriptedClient(
		ScriptedResponse{Response: "Paris."},
		ScriptedResponse{Response: "line one\nline two"},
	)
	r := NewRecorder(client, dir, "prompts.yaml", WithClock(func() time.Time { return now }))

	path, exchanges, err := r.Record(context.Background(), []string{"Capital of France?", "Two lines please"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prompts-20250102T030405.yaml"), path)
	require.Len(t, exchanges, 2)

	res, err := loader.LoadDir(dir, "prompts.yaml")
	require.NoError(t, err)
	require.Len(t, res.Documents, 2)
	assert.Empty(t, res.Warnings)

	variant := res.Documents[1]
	assert.Equal(t, now, variant.Timestamp)
	require.Len(t, variant.Conversations, 1)
	msgs := variant.Conversations[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, transcript.RoleQuestion, msgs[0].Role)
	assert.Equal(t, "Capital of France?", msgs[0].Text)
	assert.Equal(t, "Paris.", msgs[1].Text)
	assert.Equal(t, "line one\nline two", msgs[3].Text)

	// a second recording in the same second gets the next free name
	client = NewScriptedClient(ScriptedResponse{Response: "again"})
	r = NewRecorder(client, dir, "prompts.yaml", WithClock(func() time.Time { return now }))
	path, _, err = r.Record(context.Background(), []string{"again?"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prompts-20250102T030406.yaml"), path)
}

func TestRecorder_FailedQueryWritesNothing(t *testing.T) {
	dir := t.TempDir()
	client := NewScriptedClient(ScriptedResponse{Err: errors.New("boom")})
	r := NewRecorder(client, dir, "prompts.yaml")

	_, _, err := r.Record(context.Background(), []string{"x"})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, _, err = r.Record(context.Background(), nil)
	require.Error(t, err)
}

func TestEchoClient(t *testing.T) {
	c := NewEchoClient()
	out, err := c.Query(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "ping", out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Query(ctx, "ping")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSettings(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("QALOG_MODEL", "gpt-4")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", s.APIKey)
	assert.Equal(t, "gpt-4", s.Model)
	assert.Equal(t, 1000, s.MaxTokens)
	assert.Equal(t, 42, s.Seed)
	assert.Equal(t, float32(1), s.TopP)
	require.NoError(t, s.Validate())

	c := s.Clone()
	c.Model = "other"
	assert.Equal(t, "gpt-4", s.Model)

	c.APIKey = ""
	assert.ErrorIs(t, c.Validate(), ErrMissingAPIKey)
}

func TestOpenAIClient_Request(t *testing.T) {
	s := &Settings{APIKey: "sk", Model: "gpt-3.5-turbo", MaxTokens: 10, TopP: 1, Seed: 42, SystemMessage: "be brief"}
	c, err := NewOpenAIClient(s)
	require.NoError(t, err)

	req := c.makeRequest("hi")
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "hi", req.Messages[1].Content)
	assert.Greater(t, req.Temperature, float32(0))
	require.NotNil(t, req.Seed)
	assert.Equal(t, 42, *req.Seed)

	_, err = NewOpenAIClient(&Settings{Model: "x"})
	require.Error(t, err)
}
