package build

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/go-go-golems/qalog/pkg/helpers"
	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/go-go-golems/qalog/pkg/transcript/loader"
	"github.com/go-go-golems/qalog/pkg/transcript/render"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPrimary = "prompts.yaml"
	DefaultOutput  = "index.html"
)

type Settings struct {
	InputDir string `yaml:"input-dir"`
	Primary  string `yaml:"primary"`
	Output   string `yaml:"output"`
	// AssetsDir holds logo.png and microphone.png. Defaults to the directory
	// of Output.
	AssetsDir string `yaml:"assets-dir"`
	Title     string `yaml:"title"`
	Markdown  bool   `yaml:"markdown"`
}

func NewSettings() *Settings {
	return &Settings{
		InputDir: ".",
		Primary:  DefaultPrimary,
		Output:   DefaultOutput,
		Title:    render.DefaultTitle,
	}
}

func (s *Settings) assetsDir() string {
	if s.AssetsDir != "" {
		return s.AssetsDir
	}
	return filepath.Dir(s.Output)
}

func (s *Settings) compilerOptions() []render.Option {
	return []render.Option{
		render.WithAssets(os.DirFS(s.assetsDir())),
		render.WithTitle(s.Title),
		render.WithMarkdown(s.Markdown),
	}
}

// Result summarizes a successful build.
type Result struct {
	Output        string
	Documents     int
	Conversations int
	Messages      int
	// Changed is false when the rewritten output is identical to the
	// previous one.
	Changed  bool
	Warnings []transcript.Warning
}

// Compile renders a loaded document set. It has no side effects: the same
// document set always yields the same HTML and warnings.
func Compile(res *loader.Result, options ...render.Option) (string, []transcript.Warning, error) {
	html, err := render.NewCompiler(options...).Compile(res.Documents)
	if err != nil {
		return "", nil, err
	}
	return html, res.Warnings, nil
}

// Load reads the document set described by s.
func Load(s *Settings) (*loader.Result, error) {
	return loader.LoadDir(s.InputDir, s.Primary)
}

// Run performs one load and render pass and replaces the output file. Fatal
// errors are returned before the output is touched.
func Run(s *Settings) (*Result, error) {
	res, err := Load(s)
	if err != nil {
		return nil, err
	}

	html, warnings, err := Compile(res, s.compilerOptions()...)
	if err != nil {
		return nil, err
	}

	previous, err := os.ReadFile(s.Output)
	changed := err != nil || !bytes.Equal(previous, []byte(html))

	if err := helpers.WriteFileAtomic(s.Output, []byte(html), 0o644); err != nil {
		return nil, errors.Wrapf(err, "could not write %s", s.Output)
	}

	ret := &Result{
		Output:    s.Output,
		Documents: len(res.Documents),
		Changed:   changed,
		Warnings:  warnings,
	}
	for _, doc := range res.Documents {
		ret.Conversations += len(doc.Conversations)
		ret.Messages += doc.MessageCount()
	}

	log.Info().
		Str("output", ret.Output).
		Int("documents", ret.Documents).
		Int("conversations", ret.Conversations).
		Int("messages", ret.Messages).
		Int("warnings", len(ret.Warnings)).
		Bool("changed", ret.Changed).
		Msg("built transcript")

	return ret, nil
}
