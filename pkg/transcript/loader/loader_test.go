package loader

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func firstTexts(res *Result) []string {
	var ret []string
	for _, c := range res.Conversations() {
		ret = append(ret, c.Messages[0].Text)
	}
	return ret
}

func TestLoad_PrimaryThenVariantsOldestFirst(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts.yaml":                 file("prompts:\n  - [\"Q: primary\"]\n"),
		"prompts-20240301T120000.yaml": file("prompts:\n  - [\"Q: t2\"]\n"),
		"prompts-20240101T120000.yaml": file("prompts:\n  - [\"Q: t1\"]\n"),
		"prompts-notes.yaml":           file("prompts:\n  - [\"Q: ignored\"]\n"),
		"other-20240101T120000.yaml":   file("prompts:\n  - [\"Q: ignored\"]\n"),
	}

	res, err := Load(fsys, "prompts.yaml")
	require.NoError(t, err)
	require.Len(t, res.Documents, 3)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, []string{"primary", "t1", "t2"}, firstTexts(res))
	assert.False(t, res.Documents[0].IsVariant())
	assert.True(t, res.Documents[1].IsVariant())
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), res.Documents[1].Timestamp)
	assert.Equal(t, "prompts.yaml", res.Primary().Name)
}

func TestLoad_MissingPrimary(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts-20240101.yaml": file("prompts: []\n"),
	}
	_, err := Load(fsys, "prompts.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, transcript.ErrMissingFile))
}

func TestLoad_MalformedPrimaryIsFatal(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts.yaml": file("prompts: just a string\n"),
	}
	_, err := Load(fsys, "prompts.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, transcript.ErrMalformedDocument))
}

func TestLoad_MalformedVariantIsSkippedWithWarning(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts.yaml":          file("prompts:\n  - [\"Q: primary\"]\n"),
		"prompts-20240101.yaml": file("prompts: just a string\n"),
		"prompts-20240201.yaml": file("prompts:\n  - [\"Q: later\"]\n"),
	}

	res, err := Load(fsys, "prompts.yaml")
	require.NoError(t, err)
	require.Len(t, res.Documents, 2)
	assert.Equal(t, []string{"primary", "later"}, firstTexts(res))

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "prompts-20240101.yaml", res.Warnings[0].Document)
	assert.True(t, res.Warnings[0].IsDocument())
}

func TestLoad_Subdirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"data/prompts.yml":           file("prompts:\n  - [\"Q: primary\"]\n"),
		"data/prompts_20240101.yml":  file("prompts:\n  - [\"Q: variant\"]\n"),
		"data/prompts_20240101.yaml": file("prompts:\n  - [\"Q: other extension\"]\n"),
	}
	res, err := Load(fsys, "data/prompts.yml")
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "variant"}, firstTexts(res))
	assert.Equal(t, "data/prompts_20240101.yml", res.Documents[1].Name)
}

func TestLoad_UsersMergeLaterWins(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts.yaml":          file("users: {default: BG, \"2\": JS}\nprompts: []\n"),
		"prompts-20240101.yaml": file("users: {\"2\": KL}\nprompts: []\n"),
	}
	res, err := Load(fsys, "prompts.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"default": "BG", "2": "KL"}, res.Users())
}

func TestVariantNameRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	name := VariantName("dir/prompts.yaml", ts)
	assert.Equal(t, "dir/prompts-20250304T050607.yaml", name)

	parsed, ok := ParseVariantName("prompts.yaml", "prompts-20250304T050607.yaml")
	require.True(t, ok)
	assert.Equal(t, ts, parsed)
}

func TestParseVariantName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"prompts-20240101.yaml", true},
		{"prompts_20240101_101010.yaml", true},
		{"prompts-2024-01-01.yaml", true},
		{"prompts-202401011010.yaml", true},
		{"prompts.yaml", false},
		{"prompts-.yaml", false},
		{"prompts-2024.yaml", false},
		{"prompts-20241301.yaml", false},
		{"prompts20240101.yaml", false},
		{"prompts-20240101.yml", false},
		{"promptsx-20240101.yaml", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseVariantName("prompts.yaml", tt.name)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFindVariants_TiesOrderedByName(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts.yaml":                 file("prompts: []\n"),
		"prompts_20240101.yaml":        file("prompts: []\n"),
		"prompts-20240101.yaml":        file("prompts: []\n"),
		"prompts-20231231T235959.yaml": file("prompts: []\n"),
	}
	variants, err := FindVariants(fsys, "prompts.yaml")
	require.NoError(t, err)
	var names []string
	for _, v := range variants {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{
		"prompts-20231231T235959.yaml",
		"prompts-20240101.yaml",
		"prompts_20240101.yaml",
	}, names)
}

func TestLoad_PrimaryPathIsCleaned(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts.yaml":                     file("prompts:\n  - [\"Q: primary\"]\n"),
		"prompts-20240101T120000.yaml":     file("prompts:\n  - [\"Q: t1\"]\n"),
		"sub/prompts.yaml":                 file("prompts:\n  - [\"Q: nested\"]\n"),
		"sub/prompts-20240101T120000.yaml": file("prompts:\n  - [\"Q: nested t1\"]\n"),
	}

	res, err := Load(fsys, "./prompts.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "t1"}, firstTexts(res))
	assert.Equal(t, "prompts.yaml", res.Primary().Name)

	res, err = Load(fsys, "./sub/../sub/prompts.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"nested", "nested t1"}, firstTexts(res))
}
