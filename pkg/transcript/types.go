package transcript

import (
	"time"
)

// Role is the inferred role of a message. Roles are inferred from a textual
// prefix, never from the structure of the source document.
type Role int

const (
	RoleUnclassified Role = iota
	RoleQuestion
	RoleAnswer
)

func (r Role) String() string {
	switch r {
	case RoleQuestion:
		return "question"
	case RoleAnswer:
		return "answer"
	case RoleUnclassified:
		return "unclassified"
	default:
		return "unknown"
	}
}

// Message is a single normalized text entry of a conversation.
type Message struct {
	// Raw is the normalized source text, prefix included.
	Raw  string
	Role Role
	// Label is the variant label following the Q/A letter ("2" for "Q2:").
	Label string
	// Text is the body after the prefix. For unclassified messages it is the
	// whole trimmed text.
	Text string
}

// Prefix returns the prefix as written in the source ("Q2"), or the empty
// string for unclassified messages.
func (m Message) Prefix() string {
	switch m.Role {
	case RoleQuestion:
		return "Q" + m.Label
	case RoleAnswer:
		return "A" + m.Label
	case RoleUnclassified:
		return ""
	default:
		return ""
	}
}

type Conversation struct {
	// Source is the name of the document the conversation was read from.
	Source   string
	Index    int
	Title    string
	Messages []Message
}

// Document is one snapshot document. Timestamp is zero for the primary.
type Document struct {
	Name          string
	Timestamp     time.Time
	Context       string
	Users         map[string]string
	Conversations []Conversation
}

func (d *Document) IsVariant() bool {
	return !d.Timestamp.IsZero()
}

// MessageCount returns the number of messages over all conversations.
func (d *Document) MessageCount() int {
	n := 0
	for _, c := range d.Conversations {
		n += len(c.Messages)
	}
	return n
}
