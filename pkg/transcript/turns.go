package transcript

// Turn is a question followed by every message up to the next question.
// Answers may contain unclassified messages; they are kept in place.
type Turn struct {
	Question Message
	Answers  []Message
}

// Block is the unit emitted by the renderer. Exactly one of Turn and Flagged
// is set.
type Block struct {
	Turn    *Turn
	Flagged *Message
}

func (b Block) IsFlagged() bool {
	return b.Flagged != nil
}

// MessageCount is the number of source messages the block accounts for.
func (b Block) MessageCount() int {
	if b.Flagged != nil {
		return 1
	}
	if b.Turn != nil {
		return 1 + len(b.Turn.Answers)
	}
	return 0
}

// GroupTurns groups classified messages into blocks. Each question opens a
// new turn, regardless of its variant label. Messages seen before the first
// question become standalone flagged blocks.
func GroupTurns(messages []Message) []Block {
	var blocks []Block
	var current *Turn

	for i := range messages {
		msg := messages[i]
		switch {
		case msg.Role == RoleQuestion:
			current = &Turn{Question: msg}
			blocks = append(blocks, Block{Turn: current})
		case current != nil:
			current.Answers = append(current.Answers, msg)
		default:
			blocks = append(blocks, Block{Flagged: &msg})
		}
	}

	return blocks
}

// Flagged returns the messages of a turn that could not be classified.
func (t *Turn) Flagged() []Message {
	var ret []Message
	for _, a := range t.Answers {
		if a.Role == RoleUnclassified {
			ret = append(ret, a)
		}
	}
	return ret
}
