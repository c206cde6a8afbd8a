package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
)

const (
	DefaultUsersKey = "default"
	DefaultInitials = "BG"
)

type pageView struct {
	Title         string
	Disclaimer    string
	Logo          string
	Microphone    string
	Conversations []conversationView
	MessageCount  int
}

type conversationView struct {
	ID     string
	Title  string
	Source string
	Blocks []blockView
}

// blockView mirrors transcript.Block: either Flagged or Question is set.
type blockView struct {
	Flagged  *messageView
	Question *messageView
	Answers  []messageView
}

type messageView struct {
	Role     string
	Prefix   string
	Label    string
	Body     template.HTML
	Initials string
	Flagged  bool
	Logo     string
}

type viewBuilder struct {
	users    map[string]string
	markdown goldmark.Markdown
}

func (b *viewBuilder) page(title, disclaimer string, docs []*transcript.Document) (*pageView, error) {
	page := &pageView{
		Title:      title,
		Disclaimer: disclaimer,
		Logo:       LogoAsset,
		Microphone: MicrophoneAsset,
	}

	n := 0
	for _, doc := range docs {
		for _, conv := range doc.Conversations {
			n++
			cv := conversationView{
				ID:     fmt.Sprintf("conversation-%d", n),
				Title:  conv.Title,
				Source: conv.Source,
			}
			for _, block := range transcript.GroupTurns(conv.Messages) {
				bv, err := b.block(block)
				if err != nil {
					return nil, err
				}
				page.MessageCount += block.MessageCount()
				cv.Blocks = append(cv.Blocks, bv)
			}
			page.Conversations = append(page.Conversations, cv)
		}
	}

	return page, nil
}

func (b *viewBuilder) block(block transcript.Block) (blockView, error) {
	if block.Flagged != nil {
		m, err := b.message(*block.Flagged, true)
		if err != nil {
			return blockView{}, err
		}
		return blockView{Flagged: &m}, nil
	}

	q, err := b.message(block.Turn.Question, false)
	if err != nil {
		return blockView{}, err
	}
	ret := blockView{Question: &q}
	for _, a := range block.Turn.Answers {
		av, err := b.message(a, a.Role == transcript.RoleUnclassified)
		if err != nil {
			return blockView{}, err
		}
		ret.Answers = append(ret.Answers, av)
	}
	return ret, nil
}

func (b *viewBuilder) message(m transcript.Message, flagged bool) (messageView, error) {
	body, err := b.body(m.Text)
	if err != nil {
		return messageView{}, err
	}
	ret := messageView{
		Role:    m.Role.String(),
		Prefix:  m.Prefix(),
		Label:   m.Label,
		Body:    body,
		Flagged: flagged,
		Logo:    LogoAsset,
	}
	if m.Role == transcript.RoleAnswer {
		ret.Initials = Initials(b.users, m.Label)
	}
	return ret, nil
}

func (b *viewBuilder) body(text string) (template.HTML, error) {
	if b.markdown == nil {
		return template.HTML(template.HTMLEscapeString(text)), nil
	}
	var buf bytes.Buffer
	if err := b.markdown.Convert([]byte(text), &buf); err != nil {
		return "", errors.Wrap(err, "could not convert markdown")
	}
	return template.HTML(strings.TrimSpace(buf.String())), nil
}

// Initials resolves the avatar initials for an answer label: the label's
// entry, then the "default" entry, then DefaultInitials.
func Initials(users map[string]string, label string) string {
	if label != "" {
		if v, ok := users[label]; ok && v != "" {
			return v
		}
	}
	if v, ok := users[DefaultUsersKey]; ok && v != "" {
		return v
	}
	return DefaultInitials
}
