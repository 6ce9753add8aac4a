package blockmentor

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor/llm"
)

// Message is a chat history entry as sent by the client. Role is "system",
// "user", or the name of the mentor that spoke ("meta", "code", "music").
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConvertMessages maps client history onto model roles. Mentor turns
// become assistant turns. Any other role fails with ErrUnknownRole.
func ConvertMessages(raw []Message) ([]llm.Message, error) {
	out := make([]llm.Message, 0, len(raw))
	for i, m := range raw {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, llm.System(m.Content))
		case "user":
			out = append(out, llm.User(m.Content))
		case "meta", "code", "music":
			out = append(out, llm.Assistant(m.Content))
		default:
			return nil, fmt.Errorf("%w: message %d has role %q", ErrUnknownRole, i, m.Role)
		}
	}
	return out, nil
}

// FormatConversation renders history as "role: content" lines for the
// analysis prompt.
func FormatConversation(raw []Message) string {
	var sb strings.Builder
	for i, m := range raw {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}
