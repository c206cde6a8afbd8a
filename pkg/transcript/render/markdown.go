package render

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/qalog/pkg/transcript"
)

// Markdown renders docs as a Markdown transcript, one section per
// conversation. Like Compile, the output is deterministic.
func Markdown(docs []*transcript.Document) string {
	var sb strings.Builder
	users := mergeUsers(docs)

	n := 0
	for _, doc := range docs {
		for _, conv := range doc.Conversations {
			n++
			title := conv.Title
			if title == "" {
				title = fmt.Sprintf("Conversation %d", n)
			}
			fmt.Fprintf(&sb, "## %s\n\n_%s_\n\n", title, conv.Source)

			for _, block := range transcript.GroupTurns(conv.Messages) {
				if block.Flagged != nil {
					writeMarkdownMessage(&sb, users, *block.Flagged, true)
					sb.WriteString("\n")
					continue
				}
				writeMarkdownMessage(&sb, users, block.Turn.Question, false)
				for _, a := range block.Turn.Answers {
					writeMarkdownMessage(&sb, users, a, a.Role == transcript.RoleUnclassified)
				}
				sb.WriteString("\n")
			}
			sb.WriteString("---\n\n")
		}
	}

	return sb.String()
}

func writeMarkdownMessage(sb *strings.Builder, users map[string]string, m transcript.Message, flagged bool) {
	text := strings.ReplaceAll(m.Text, "\n", "\n  ")
	switch {
	case flagged:
		fmt.Fprintf(sb, "- ⚠ **unclassified**: %s\n", text)
	case m.Role == transcript.RoleQuestion:
		fmt.Fprintf(sb, "- **%s**: %s\n", m.Prefix(), text)
	default:
		fmt.Fprintf(sb, "- **%s** (%s): %s\n", m.Prefix(), Initials(users, m.Label), text)
	}
}
