package blockmentor

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor/prompt"
)

// Sentinel errors for request validation. All of them describe a bad
// request rather than an upstream failure; see IsClientError.
var (
	// ErrEmptyQuery indicates a chat query that is blank after trimming, or
	// an analysis request without messages.
	ErrEmptyQuery = errors.New("empty query")

	// ErrUnknownMentor indicates a mentor without a persona.
	ErrUnknownMentor = prompt.ErrUnknownMentor

	// ErrUnknownRole indicates a history message whose role is not one of
	// system, user, meta, code or music.
	ErrUnknownRole = errors.New("unknown message role")

	// ErrInvalidProject indicates project code that is not valid JSON.
	ErrInvalidProject = errors.New("invalid project code")
)

// ErrNoLLM indicates the service was built without a model client.
var ErrNoLLM = errors.New("no language model configured")

// StageError wraps a failure of one processing stage.
type StageError struct {
	// Stage is "convert", "retrieve", "llm" or "decode".
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrUnknownMentor) ||
		errors.Is(err, ErrUnknownRole) ||
		errors.Is(err, ErrInvalidProject)
}
