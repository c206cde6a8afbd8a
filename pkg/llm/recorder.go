package llm

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-go-golems/qalog/pkg/helpers"
	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/go-go-golems/qalog/pkg/transcript/loader"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// PromptPrefix marks lines of a snapshot document meant to be sent to the
// model. They render as unclassified messages.
const PromptPrefix = "P:"

// PromptsFromDocument returns the body of every "P:" message, in order.
func PromptsFromDocument(doc *transcript.Document) []string {
	var ret []string
	for _, conv := range doc.Conversations {
		for _, m := range conv.Messages {
			text := strings.TrimSpace(m.Raw)
			if !strings.HasPrefix(text, PromptPrefix) {
				continue
			}
			prompt := strings.TrimSpace(strings.TrimPrefix(text, PromptPrefix))
			if prompt != "" {
				ret = append(ret, prompt)
			}
		}
	}
	return ret
}

type snapshot struct {
	Prompts [][]string `yaml:"prompts"`
}

// Recorder queries a Client and stores the exchanges as a new timestamped
// variant of the primary document. The primary itself is never modified.
type Recorder struct {
	client  Client
	dir     string
	primary string
	now     func() time.Time
}

type RecorderOption func(*Recorder)

func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

func NewRecorder(client Client, dir string, primary string, options ...RecorderOption) *Recorder {
	r := &Recorder{
		client:  client,
		dir:     dir,
		primary: primary,
		now:     time.Now,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Record sends prompts and writes one conversation holding every Q/A pair.
// Nothing is written if any query fails.
func (r *Recorder) Record(ctx context.Context, prompts []string) (string, []Exchange, error) {
	if len(prompts) == 0 {
		return "", nil, errors.New("no prompts to send")
	}

	exchanges, err := QueryAll(ctx, r.client, prompts)
	if err != nil {
		return "", nil, err
	}

	conversation := make([]string, 0, 2*len(exchanges))
	for _, e := range exchanges {
		conversation = append(conversation, "Q: "+e.Prompt, "A: "+e.Response)
	}

	b, err := yaml.Marshal(&snapshot{Prompts: [][]string{conversation}})
	if err != nil {
		return "", nil, errors.Wrap(err, "could not encode snapshot")
	}

	path, err := r.nextPath()
	if err != nil {
		return "", nil, err
	}
	if err := helpers.WriteFileAtomic(path, b, 0o644); err != nil {
		return "", nil, err
	}

	log.Info().Str("path", path).Int("exchanges", len(exchanges)).Msg("recorded exchanges")
	return path, exchanges, nil
}

// nextPath picks a variant name that does not exist yet, moving forward one
// second at a time.
func (r *Recorder) nextPath() (string, error) {
	t := r.now().UTC().Truncate(time.Second)
	for i := 0; i < 60; i++ {
		name := loader.VariantName(r.primary, t)
		path := filepath.Join(r.dir, filepath.FromSlash(name))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		t = t.Add(time.Second)
	}
	return "", errors.Errorf("could not find a free variant name for %s", r.primary)
}
