package render

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"

	"github.com/Masterminds/sprig"
	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/rs/zerolog/log"
)

const (
	LogoAsset       = "logo.png"
	MicrophoneAsset = "microphone.png"

	DefaultTitle      = "Q&A Chat History"
	DefaultDisclaimer = "Please share openly. Your responses are private and help identify alignment gaps. Respectful summaries will be shared with everyone."
)

// RequiredAssets are the static files the page references by relative path.
var RequiredAssets = []string{LogoAsset, MicrophoneAsset}

//go:embed templates/transcript.html.tmpl
var templatesFS embed.FS

// Compiler renders snapshot documents into a single HTML page. The output
// only depends on its input: rendering the same documents twice yields
// byte-identical HTML.
type Compiler struct {
	assets     fs.FS
	title      string
	disclaimer string
	markdown   bool
}

type Option func(*Compiler)

// WithAssets sets the directory the static assets are checked in. Without
// it, assets are not checked.
func WithAssets(assets fs.FS) Option {
	return func(c *Compiler) {
		c.assets = assets
	}
}

func WithTitle(title string) Option {
	return func(c *Compiler) {
		c.title = title
	}
}

func WithDisclaimer(disclaimer string) Option {
	return func(c *Compiler) {
		c.disclaimer = disclaimer
	}
}

// WithMarkdown renders message bodies as Markdown. Raw HTML in messages is
// shown as text.
func WithMarkdown(markdown bool) Option {
	return func(c *Compiler) {
		c.markdown = markdown
	}
}

func NewCompiler(options ...Option) *Compiler {
	c := &Compiler{
		title:      DefaultTitle,
		disclaimer: DefaultDisclaimer,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func newTemplate() (*template.Template, error) {
	return template.New("transcript.html.tmpl").
		Funcs(sprig.HtmlFuncMap()).
		ParseFS(templatesFS, "templates/transcript.html.tmpl")
}

// Compile renders docs in order. It fails with a *transcript.RenderError when
// a required asset is missing or the template cannot be executed.
func (c *Compiler) Compile(docs []*transcript.Document) (string, error) {
	if err := c.checkAssets(); err != nil {
		return "", err
	}

	t, err := newTemplate()
	if err != nil {
		return "", &transcript.RenderError{Reason: "could not parse template", Err: err}
	}

	b := &viewBuilder{users: mergeUsers(docs)}
	if c.markdown {
		b.markdown = newMarkdown()
	}

	page, err := b.page(c.title, c.disclaimer, docs)
	if err != nil {
		return "", &transcript.RenderError{Reason: "could not build page", Err: err}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, page); err != nil {
		return "", &transcript.RenderError{Reason: "could not execute template", Err: err}
	}

	log.Debug().
		Int("conversations", len(page.Conversations)).
		Int("messages", page.MessageCount).
		Int("bytes", buf.Len()).
		Msg("rendered transcript")

	return buf.String(), nil
}

func (c *Compiler) checkAssets() error {
	if c.assets == nil {
		return nil
	}
	for _, name := range RequiredAssets {
		if _, err := fs.Stat(c.assets, name); err != nil {
			return &transcript.RenderError{Reason: "required asset " + name + " is missing", Err: err}
		}
	}
	return nil
}

func mergeUsers(docs []*transcript.Document) map[string]string {
	ret := map[string]string{}
	for _, doc := range docs {
		for k, v := range doc.Users {
			ret[k] = v
		}
	}
	return ret
}
