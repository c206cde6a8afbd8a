package loader

import (
	"regexp"

	"github.com/pkg/errors"
)

// RawMessage is a message entry as found in a snapshot document, before it
// is normalized into a single string and classified. It is either PlainText
// or Structured.
type RawMessage interface {
	Normalize() (string, error)
	Line() int
}

// PlainText is a message written as a YAML string.
type PlainText struct {
	Text       string
	SourceLine int
}

func (p PlainText) Normalize() (string, error) {
	return p.Text, nil
}

func (p PlainText) Line() int {
	return p.SourceLine
}

// Structured is a message written as a YAML mapping of scalars, either
// `{text: "Q: ..."}` or a single prefix key such as `{Q2: "..."}`.
type Structured struct {
	// Keys preserves the source order of Fields.
	Keys       []string
	Fields     map[string]string
	SourceLine int
}

const textField = "text"

// prefixKeyRegexp matches mapping keys that are a message prefix on their
// own, as in `{Q: "...", A: "..."}`.
var prefixKeyRegexp = regexp.MustCompile(`^[QA]\d*$`)

func (s Structured) Normalize() (string, error) {
	if text, ok := s.Fields[textField]; ok {
		return text, nil
	}
	if len(s.Keys) == 1 {
		key := s.Keys[0]
		return key + ": " + s.Fields[key], nil
	}
	return "", errors.Errorf("structured message needs a %q field or a single prefix key, got %d keys", textField, len(s.Keys))
}

// Expand splits a record made only of prefix keys into one message per key,
// in source order. A record with a "text" field or a single key stays whole.
func (s Structured) Expand() ([]RawMessage, error) {
	if _, ok := s.Fields[textField]; ok || len(s.Keys) <= 1 {
		if _, err := s.Normalize(); err != nil {
			return nil, err
		}
		return []RawMessage{s}, nil
	}

	ret := make([]RawMessage, 0, len(s.Keys))
	for _, key := range s.Keys {
		if !prefixKeyRegexp.MatchString(key) {
			return nil, errors.Errorf("structured message needs a %q field or only Q/A prefix keys, got key %q", textField, key)
		}
		ret = append(ret, Structured{
			Keys:       []string{key},
			Fields:     map[string]string{key: s.Fields[key]},
			SourceLine: s.SourceLine,
		})
	}
	return ret, nil
}

func (s Structured) Line() int {
	return s.SourceLine
}

var (
	_ RawMessage = PlainText{}
	_ RawMessage = Structured{}
)
