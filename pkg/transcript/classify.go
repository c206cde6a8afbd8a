package transcript

import (
	"regexp"
	"strings"
)

// prefixRegexp requires the colon to follow the letter and the optional
// digits immediately: "Q:", "Q2:", "A10:". "Q :", "q:" and "Question:" do not
// match.
var prefixRegexp = regexp.MustCompile(`^([QA])(\d*):`)

// Classify infers the role of a raw message. It never fails: anything that
// does not carry a recognized prefix is RoleUnclassified.
func Classify(raw string) Message {
	trimmed := strings.TrimSpace(raw)
	m := prefixRegexp.FindStringSubmatch(trimmed)
	if m == nil {
		return Message{
			Raw:  raw,
			Role: RoleUnclassified,
			Text: trimmed,
		}
	}

	role := RoleAnswer
	if m[1] == "Q" {
		role = RoleQuestion
	}

	return Message{
		Raw:   raw,
		Role:  role,
		Label: m[2],
		Text:  strings.TrimSpace(trimmed[len(m[0]):]),
	}
}

// ClassifyAll classifies every entry, preserving order.
func ClassifyAll(raws []string) []Message {
	ret := make([]Message, 0, len(raws))
	for _, raw := range raws {
		ret = append(ret, Classify(raw))
	}
	return ret
}
