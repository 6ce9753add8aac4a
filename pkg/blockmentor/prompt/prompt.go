// Package prompt builds the texts sent to the language model: the mentor
// personas used as chat system prompts, and the one-shot prompts that turn
// a flowchart into an algorithm or analyse a finished conversation.
package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownMentor is returned for a mentor name without a persona.
var ErrUnknownMentor = errors.New("unknown mentor")

// Mentor names a chat persona.
type Mentor string

// Known mentors.
const (
	MentorMeta  Mentor = "meta"
	MentorMusic Mentor = "music"
	MentorCode  Mentor = "code"
)

// ParseMentor normalizes name and checks it against the known personas.
func ParseMentor(name string) (Mentor, error) {
	m := Mentor(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := personas[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMentor, name)
	}
	return m, nil
}

// Mentors returns the known mentor names, sorted.
func Mentors() []Mentor {
	out := make([]Mentor, 0, len(personas))
	for m := range personas {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DisplayName returns the persona's name, e.g. "Rohan".
func (m Mentor) DisplayName() string {
	return personas[m].name
}

var expander = NewExpander()

// System returns the chat system prompt for mentor, grounded on the
// project's algorithm.
func System(mentor, algorithm string) (string, error) {
	m, err := ParseMentor(mentor)
	if err != nil {
		return "", err
	}
	return expander.Expand(personas[m].template, map[string]string{
		"algorithm":            algorithm,
		"general_instructions": GeneralInstructions,
	})
}

// Algorithm asks for a numbered algorithm and a use-case guess for a
// flowchart. Reply shape: AlgorithmSchema.
func Algorithm(flowchart, blockInfo string) string {
	return expander.MustExpand(algorithmTemplate, map[string]string{
		"flowchart":  flowchart,
		"block_info": blockInfo,
	})
}

// Update asks for the new algorithm and the key changes between two
// versions of a flowchart. Reply shape: AlgorithmSchema.
func Update(oldFlowchart, newFlowchart, blockInfo string) string {
	return expander.MustExpand(updateTemplate, map[string]string{
		"old_flowchart": oldFlowchart,
		"new_flowchart": newFlowchart,
		"block_info":    blockInfo,
	})
}

// Analysis asks for a learning analysis of a conversation, given the
// previous summary. Reply shape: AnalysisSchema.
func Analysis(summary, conversation string) string {
	return expander.MustExpand(analysisTemplate, map[string]string{
		"summary":      summary,
		"conversation": conversation,
	})
}
