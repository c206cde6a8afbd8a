package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func setup(t *testing.T) *Settings {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "logo.png", "png")
	writeFile(t, dir, "microphone.png", "png")
	writeFile(t, dir, "prompts.yaml", `
prompts:
  - ["Q: primary question", "A: primary answer"]
`)
	writeFile(t, dir, "prompts-20240101.yaml", `
prompts:
  - ["Q: t1 question"]
`)
	writeFile(t, dir, "prompts-20240201.yaml", `
prompts:
  - ["Q: t2 question", "A: t2 answer"]
`)

	s := NewSettings()
	s.InputDir = dir
	s.Output = filepath.Join(dir, "index.html")
	return s
}

func TestRun_WritesDeterministicOutput(t *testing.T) {
	s := setup(t)

	res, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Documents)
	assert.Equal(t, 3, res.Conversations)
	assert.Equal(t, 5, res.Messages)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Warnings)

	first, err := os.ReadFile(s.Output)
	require.NoError(t, err)

	res, err = Run(s)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	second, err := os.ReadFile(s.Output)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_ConversationsInChronologicalOrder(t *testing.T) {
	s := setup(t)
	_, err := Run(s)
	require.NoError(t, err)

	b, err := os.ReadFile(s.Output)
	require.NoError(t, err)
	html := string(b)

	p := indexOf(t, html, "primary question")
	t1 := indexOf(t, html, "t1 question")
	t2 := indexOf(t, html, "t2 question")
	assert.Less(t, p, t1)
	assert.Less(t, t1, t2)
}

func TestRun_MalformedVariantWarns(t *testing.T) {
	s := setup(t)
	writeFile(t, s.InputDir, "prompts-20240301.yaml", "prompts: just a string\n")

	res, err := Run(s)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.True(t, res.Warnings[0].IsDocument())
	assert.Equal(t, 3, res.Documents)
}

func TestRun_FatalErrorsKeepPreviousOutput(t *testing.T) {
	s := setup(t)
	_, err := Run(s)
	require.NoError(t, err)
	good, err := os.ReadFile(s.Output)
	require.NoError(t, err)

	writeFile(t, s.InputDir, "prompts.yaml", "prompts: just a string\n")
	_, err = Run(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transcript.ErrMalformedDocument))

	require.NoError(t, os.Remove(filepath.Join(s.InputDir, "prompts.yaml")))
	_, err = Run(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transcript.ErrMissingFile))

	writeFile(t, s.InputDir, "prompts.yaml", "prompts: []\n")
	require.NoError(t, os.Remove(filepath.Join(s.InputDir, "logo.png")))
	_, err = Run(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transcript.ErrRenderFailure))

	after, err := os.ReadFile(s.Output)
	require.NoError(t, err)
	assert.Equal(t, good, after)
}

func TestCompile_ReturnsLoaderWarnings(t *testing.T) {
	s := setup(t)
	writeFile(t, s.InputDir, "prompts-20240301.yaml", "prompts:\n  - ~\n")

	res, err := Load(s)
	require.NoError(t, err)
	html, warnings, err := Compile(res)
	require.NoError(t, err)
	assert.NotEmpty(t, html)
	require.Len(t, warnings, 1)
	assert.True(t, warnings[0].IsConversation())
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	idx := strings.Index(s, sub)
	require.GreaterOrEqual(t, idx, 0, "%q not found", sub)
	return idx
}
