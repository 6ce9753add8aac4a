package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMentor(t *testing.T) {
	tests := []struct {
		in      string
		want    Mentor
		wantErr bool
	}{
		{"meta", MentorMeta, false},
		{"Music", MentorMusic, false},
		{" CODE ", MentorCode, false},
		{"teacher", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMentor(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMentor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMentors(t *testing.T) {
	assert.Equal(t, []Mentor{MentorCode, MentorMeta, MentorMusic}, Mentors())
	assert.Equal(t, "Rohan", MentorMeta.DisplayName())
	assert.Equal(t, "Ludwig van Beethoven", MentorMusic.DisplayName())
	assert.Equal(t, "Alan Kay", MentorCode.DisplayName())
}

func TestSystem(t *testing.T) {
	tests := []struct {
		mentor string
		marker string
	}{
		{"meta", "You are Rohan"},
		{"music", "You are Beethoven"},
		{"code", "You are Alan Kay"},
	}
	for _, tt := range tests {
		t.Run(tt.mentor, func(t *testing.T) {
			got, err := System(tt.mentor, "1. Play a note")
			require.NoError(t, err)
			assert.Contains(t, got, tt.marker)
			assert.Contains(t, got, "1. Play a note")
			assert.Contains(t, got, "WORD LIMIT: 30 words per reply")
			assert.NotContains(t, got, "${")
		})
	}

	_, err := System("beethoven", "x")
	assert.ErrorIs(t, err, ErrUnknownMentor)
}

func TestSystem_AlgorithmIsLiteral(t *testing.T) {
	got, err := System("meta", "uses ${general_instructions} literally")
	require.NoError(t, err)
	assert.Contains(t, got, "uses ${general_instructions} literally")
}

func TestBuilders(t *testing.T) {
	alg := Algorithm("Start of Project\n├── Note", "Note : plays a note\n")
	assert.Contains(t, alg, "Flowchart:\nStart of Project\n├── Note\n")
	assert.Contains(t, alg, "Block Information:\nNote : plays a note\n")
	assert.Contains(t, alg, "guessed use case")

	upd := Update("OLD-CHART", "NEW-CHART", "INFO")
	assert.Less(t, strings.Index(upd, "NEW-CHART"), strings.Index(upd, "OLD-CHART"), "new flowchart comes first")
	assert.Contains(t, upd, "If there are no changes, say it is unchanged.")
	assert.Contains(t, upd, "Block Information:\nINFO")

	an := Analysis("earlier summary", "user: hi")
	assert.Contains(t, an, "Previous Summary:\nearlier summary\nChat conversation:\nuser: hi\nLearning Outcome:")
}

func TestTemplatesAreComplete(t *testing.T) {
	for m, p := range personas {
		assert.ElementsMatch(t, []string{"algorithm", "general_instructions"}, Variables(p.template), m)
	}
	assert.ElementsMatch(t, []string{"flowchart", "block_info"}, Variables(algorithmTemplate))
	assert.ElementsMatch(t, []string{"new_flowchart", "old_flowchart", "block_info"}, Variables(updateTemplate))
	assert.ElementsMatch(t, []string{"summary", "conversation"}, Variables(analysisTemplate))
}

func TestSchemas(t *testing.T) {
	for _, raw := range []json.RawMessage{AlgorithmSchema, AnalysisSchema} {
		var schema map[string]any
		require.NoError(t, json.Unmarshal(raw, &schema))
		assert.Equal(t, "object", schema["type"])
	}

	var reply AlgorithmReply
	require.NoError(t, json.Unmarshal([]byte(`{"algorithm":"1. a","response":"r"}`), &reply))
	assert.Equal(t, AlgorithmReply{Algorithm: "1. a", Response: "r"}, reply)
}
