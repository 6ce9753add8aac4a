package llm

import (
	"encoding/json"
	"strings"

	bmerrors "github.com/randalmurphal/blockmentor/pkg/blockmentor/errors"
)

// DecodeJSON parses a structured reply into T. Markdown code fences around
// the object are tolerated. Failures are *errors.JSONParseError.
func DecodeJSON[T any](reply string) (T, error) {
	var out T
	text := stripFences(reply)
	if text == "" {
		return out, &bmerrors.JSONParseError{Input: reply, Message: "empty reply"}
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, &bmerrors.JSONParseError{Input: reply, Message: err.Error()}
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the info string, e.g. "json"
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
