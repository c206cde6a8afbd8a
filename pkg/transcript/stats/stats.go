package stats

import (
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/tiktoken-go/tokenizer"
)

const DefaultModel = "gpt-3.5-turbo"

type TokenCounter interface {
	Count(text string) (int, error)
}

type codecCounter struct {
	codec tokenizer.Codec
}

func (c *codecCounter) Count(text string) (int, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// NewTokenCounter returns a tiktoken based counter for model.
func NewTokenCounter(model string) (TokenCounter, error) {
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		return nil, errors.Wrapf(err, "no tokenizer for model %s", model)
	}
	return &codecCounter{codec: codec}, nil
}

type ConversationStats struct {
	Source   string
	Index    int
	Title    string
	Messages int
	Turns    int
	Answers  int
	// Flagged counts unclassified messages, standalone or inside a turn.
	Flagged int
	Tokens  int
}

func (c *ConversationStats) add(o ConversationStats) {
	c.Messages += o.Messages
	c.Turns += o.Turns
	c.Answers += o.Answers
	c.Flagged += o.Flagged
	c.Tokens += o.Tokens
}

type Stats struct {
	Conversations []ConversationStats
	Total         ConversationStats
}

// Compute counts turns, answers and flagged messages per conversation.
// Tokens are only counted when counter is not nil.
func Compute(docs []*transcript.Document, counter TokenCounter) (*Stats, error) {
	ret := &Stats{Total: ConversationStats{Source: "total"}}

	for _, doc := range docs {
		for _, conv := range doc.Conversations {
			cs := ConversationStats{
				Source:   conv.Source,
				Index:    conv.Index,
				Title:    conv.Title,
				Messages: len(conv.Messages),
			}

			for _, block := range transcript.GroupTurns(conv.Messages) {
				if block.Flagged != nil {
					cs.Flagged++
					continue
				}
				cs.Turns++
				for _, a := range block.Turn.Answers {
					if a.Role == transcript.RoleUnclassified {
						cs.Flagged++
					} else {
						cs.Answers++
					}
				}
			}

			if counter != nil {
				for _, m := range conv.Messages {
					n, err := counter.Count(m.Text)
					if err != nil {
						return nil, errors.Wrapf(err, "could not count tokens in %s", conv.Source)
					}
					cs.Tokens += n
				}
			}

			ret.Conversations = append(ret.Conversations, cs)
			ret.Total.add(cs)
		}
	}

	return ret, nil
}

// Rows returns one row per conversation followed by the total row, the shape
// glazed prints as table, CSV, JSON or YAML.
func (s *Stats) Rows(withTokens bool) []types.Row {
	ret := make([]types.Row, 0, len(s.Conversations)+1)
	for _, c := range s.Conversations {
		ret = append(ret, c.row(c.Index, withTokens))
	}
	return append(ret, s.Total.row("", withTokens))
}

func (c ConversationStats) row(index interface{}, withTokens bool) types.Row {
	row := types.NewRow(
		types.MRP("source", c.Source),
		types.MRP("index", index),
		types.MRP("title", c.Title),
		types.MRP("messages", c.Messages),
		types.MRP("turns", c.Turns),
		types.MRP("answers", c.Answers),
		types.MRP("flagged", c.Flagged),
	)
	if withTokens {
		row.Set("tokens", c.Tokens)
	}
	return row
}
