package loader

import (
	"fmt"

	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	PromptsKey = "prompts"
	UsersKey   = "users"
	ContextKey = "context"

	titleKey    = "title"
	messagesKey = "messages"
)

// Parse decodes a single snapshot document.
//
// A structural problem at the document level is returned as a
// *transcript.MalformedDocumentError. A problem inside a single conversation
// only skips that conversation and is reported as a warning.
func Parse(name string, data []byte) (*transcript.Document, []transcript.Warning, error) {
	malformed := func(format string, args ...interface{}) error {
		return &transcript.MalformedDocumentError{
			Document: name,
			Reason:   fmt.Sprintf(format, args...),
		}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, malformed("invalid YAML: %v", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil, malformed("document is empty")
	}

	top := resolve(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, nil, malformed("top level must be a mapping, got %s", describe(top))
	}

	doc := &transcript.Document{Name: name}
	var prompts *yaml.Node

	for i := 0; i+1 < len(top.Content); i += 2 {
		key := top.Content[i].Value
		value := resolve(top.Content[i+1])

		switch key {
		case PromptsKey:
			prompts = value
		case UsersKey:
			users, err := parseUsers(value)
			if err != nil {
				return nil, nil, malformed("%v", err)
			}
			doc.Users = users
		case ContextKey:
			if !isText(value) {
				return nil, nil, malformed("%q must be a string, got %s", ContextKey, describe(value))
			}
			doc.Context = value.Value
		default:
			log.Debug().Str("document", name).Str("key", key).Msg("ignoring unknown top-level key")
		}
	}

	if prompts == nil {
		return nil, nil, malformed("missing %q key", PromptsKey)
	}
	if prompts.Kind != yaml.SequenceNode {
		return nil, nil, malformed("%q must be a sequence, got %s", PromptsKey, describe(prompts))
	}

	p := &documentParser{name: name}
	p.parseConversations(prompts)
	doc.Conversations = p.conversations

	return doc, p.warnings, nil
}

type documentParser struct {
	name          string
	conversations []transcript.Conversation
	warnings      []transcript.Warning

	// legacy collects consecutive top-level scalars (or single message
	// mappings) into one implicit conversation.
	legacy      []RawMessage
	legacyIndex int
}

func (p *documentParser) parseConversations(prompts *yaml.Node) {
	for idx, item := range prompts.Content {
		item = resolve(item)

		switch {
		case item.Kind == yaml.SequenceNode:
			p.flushLegacy()
			raws, err := parseMessages(item.Content)
			if err != nil {
				p.warn(idx, item, err.Error())
				continue
			}
			p.add(idx, "", raws)

		case item.Kind == yaml.MappingNode && (hasKey(item, messagesKey) || hasKey(item, titleKey)):
			p.flushLegacy()
			title, raws, err := parseStructuredConversation(item)
			if err != nil {
				p.warn(idx, item, err.Error())
				continue
			}
			p.add(idx, title, raws)

		case item.Kind == yaml.MappingNode:
			raws, err := expandStructured(item)
			if err != nil {
				p.flushLegacy()
				p.warn(idx, item, err.Error())
				continue
			}
			for _, raw := range raws {
				p.appendLegacy(idx, raw)
			}

		case isText(item):
			p.appendLegacy(idx, PlainText{Text: item.Value, SourceLine: item.Line})

		default:
			p.flushLegacy()
			p.warn(idx, item, fmt.Sprintf("expected a sequence, a mapping or a string, got %s", describe(item)))
		}
	}
	p.flushLegacy()
}

func (p *documentParser) appendLegacy(idx int, raw RawMessage) {
	if len(p.legacy) == 0 {
		p.legacyIndex = idx
	}
	p.legacy = append(p.legacy, raw)
}

func (p *documentParser) flushLegacy() {
	if len(p.legacy) == 0 {
		return
	}
	p.add(p.legacyIndex, "", p.legacy)
	p.legacy = nil
}

func (p *documentParser) add(idx int, title string, raws []RawMessage) {
	conv := transcript.Conversation{
		Source:   p.name,
		Index:    idx,
		Title:    title,
		Messages: make([]transcript.Message, 0, len(raws)),
	}
	for _, raw := range raws {
		text, err := raw.Normalize()
		if err != nil {
			// parseMessages already normalized every entry once
			p.warn(idx, nil, err.Error())
			return
		}
		conv.Messages = append(conv.Messages, transcript.Classify(text))
	}
	p.conversations = append(p.conversations, conv)
}

func (p *documentParser) warn(idx int, node *yaml.Node, reason string) {
	line := 0
	if node != nil {
		line = node.Line
	}
	err := &transcript.MalformedConversationError{
		Document: p.name,
		Index:    idx,
		Line:     line,
		Reason:   reason,
	}
	log.Warn().Err(err).Msg("skipping conversation")
	p.warnings = append(p.warnings, transcript.Warning{Document: p.name, Err: err})
}

func parseStructuredConversation(node *yaml.Node) (string, []RawMessage, error) {
	title := ""
	var messages *yaml.Node

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolve(node.Content[i+1])
		switch key {
		case titleKey:
			if !isText(value) {
				return "", nil, errors.Errorf("%q must be a string, got %s", titleKey, describe(value))
			}
			title = value.Value
		case messagesKey:
			messages = value
		}
	}

	if messages == nil || messages.Kind != yaml.SequenceNode {
		return "", nil, errors.Errorf("%q must be a sequence, got %s", messagesKey, describe(messages))
	}

	raws, err := parseMessages(messages.Content)
	if err != nil {
		return "", nil, err
	}
	return title, raws, nil
}

func parseMessages(nodes []*yaml.Node) ([]RawMessage, error) {
	ret := make([]RawMessage, 0, len(nodes))
	for i, node := range nodes {
		node = resolve(node)
		switch {
		case isText(node):
			ret = append(ret, PlainText{Text: node.Value, SourceLine: node.Line})
		case node.Kind == yaml.MappingNode:
			raws, err := expandStructured(node)
			if err != nil {
				return nil, errors.Wrapf(err, "message %d", i)
			}
			ret = append(ret, raws...)
		default:
			return nil, errors.Errorf("message %d: expected a string or a mapping, got %s", i, describe(node))
		}
	}
	return ret, nil
}

func parseStructured(node *yaml.Node) (Structured, error) {
	s := Structured{
		Fields:     map[string]string{},
		SourceLine: node.Line,
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolve(node.Content[i+1])
		if value.Kind != yaml.ScalarNode {
			return Structured{}, errors.Errorf("field %q must be a scalar, got %s", key, describe(value))
		}
		if _, ok := s.Fields[key]; !ok {
			s.Keys = append(s.Keys, key)
		}
		// null values (`Q:` with nothing after it) decode to the empty string
		if isNull(value) {
			s.Fields[key] = ""
			continue
		}
		s.Fields[key] = value.Value
	}
	return s, nil
}

func expandStructured(node *yaml.Node) ([]RawMessage, error) {
	raw, err := parseStructured(node)
	if err != nil {
		return nil, err
	}
	return raw.Expand()
}

func parseUsers(node *yaml.Node) (map[string]string, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Errorf("%q must be a mapping, got %s", UsersKey, describe(node))
	}
	users := map[string]string{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolve(node.Content[i+1])
		if !isText(value) {
			return nil, errors.Errorf("%q entry %q must be a string, got %s", UsersKey, key, describe(value))
		}
		users[key] = value.Value
	}
	return users, nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func isNull(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

// isText accepts any non-null scalar; numbers and booleans keep their source
// spelling.
func isText(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.ScalarNode && !isNull(node)
}

func describe(node *yaml.Node) string {
	if node == nil {
		return "nothing"
	}
	switch node.Kind {
	case yaml.DocumentNode:
		return "a document"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.MappingNode:
		return "a mapping"
	case yaml.AliasNode:
		return "an alias"
	case yaml.ScalarNode:
		if isNull(node) {
			return "null"
		}
		return fmt.Sprintf("a scalar (%s)", node.ShortTag())
	default:
		return "an unknown node"
	}
}
