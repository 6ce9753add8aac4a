package flowchart_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor/flowchart"
)

// body converts the given block tuples and returns the lines after the header.
func body(t *testing.T, blocks ...string) []string {
	t.Helper()
	lines, err := flowchart.ConvertJSON([]byte("[" + strings.Join(blocks, ",") + "]"))
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	require.Equal(t, flowchart.Header, lines[0])
	return lines[1:]
}

func TestRules(t *testing.T) {
	tests := []struct {
		name     string
		blocks   []string
		expected []string
	}{
		{
			name: "forward with number",
			blocks: []string{
				`["f", "forward", 0, 0, [null, "n", null]]`,
				`["n", ["number", {"value": 10}], 0, 0, ["f"]]`,
			},
			expected: []string{"├── Move Forward → 10 Steps"},
		},
		{
			name:     "forward with dangling operand",
			blocks:   []string{`["f", "forward", 0, 0, [null, "gone", null]]`},
			expected: []string{"├── Move Forward → ? Steps"},
		},
		{
			name: "zero operand shows placeholder",
			blocks: []string{
				`["f", "back", 0, 0, [null, "n", null]]`,
				`["n", ["number", {"value": 0}], 0, 0, ["f"]]`,
			},
			expected: []string{"├── Move Backward → ? Steps"},
		},
		{
			name: "rotations",
			blocks: []string{
				`["r", "right", 0, 0, [null, "n90", "l"]]`,
				`["l", "left", 0, 0, ["r", "n45", null]]`,
				`["n90", ["number", {"value": 90}], 0, 0, ["r"]]`,
				`["n45", ["number", {"value": 45.5}], 0, 0, ["l"]]`,
			},
			expected: []string{"├── Rotate Right → 90°", "├── Rotate Left → 45.5°"},
		},
		{
			name:     "set heading defaults to zero",
			blocks:   []string{`["h", "setheading", 0, 0, [null, null, null]]`},
			expected: []string{"├── Set Heading → 0°"},
		},
		{
			name: "show reads the second slot",
			blocks: []string{
				`["s", "show", 0, 0, [null, null, "n", null]]`,
				`["n", ["number", {"value": 3}], 0, 0, ["s"]]`,
			},
			expected: []string{"├── Show Number: 3"},
		},
		{
			name: "fixed labels",
			blocks: []string{
				`["a", "penup", 0, 0, [null, "b"]]`,
				`["b", "pendown", 0, 0, ["a", "c"]]`,
				`["c", "forever", 0, 0, ["b", null, null]]`,
			},
			expected: []string{
				"├── Pen Up (Lifts Pen from Canvas)",
				"├── Pen Down",
				"├── Forever Loop (Repeats Indefinitely)",
			},
		},
		{
			name: "store shows a resolved zero",
			blocks: []string{
				`["st", ["storein2", {"value": "box"}], 0, 0, [null, "n", null]]`,
				`["n", ["number", {"value": 0}], 0, 0, ["st"]]`,
			},
			expected: []string{`├── Store Variable "box" → 0`},
		},
		{
			name:     "store without name or value",
			blocks:   []string{`["st", "storein2", 0, 0, [null, null, null]]`},
			expected: []string{`├── Store Variable "unnamed" → ?`},
		},
		{
			name:     "named box",
			blocks:   []string{`["nb", ["namedbox", {"value": "score"}], 0, 0, [null, null]]`},
			expected: []string{`├── Variable: "score"`},
		},
		{
			name:     "named do",
			blocks:   []string{`["nd", ["nameddo", {"value": "dance"}], 0, 0, [null, null]]`},
			expected: []string{`├── Do action --> "dance"`},
		},
		{
			name: "increment with missing amount",
			blocks: []string{
				`["i", "increment", 0, 0, [null, "n", null, null]]`,
				`["n", ["number", {"value": 5}], 0, 0, ["i"]]`,
			},
			expected: []string{"├── Increment --> Color: 5, Amount: ?"},
		},
		{
			name: "increment one names its variable",
			blocks: []string{
				`["i", "incrementOne", 0, 0, [null, "v", null]]`,
				`["v", ["namedbox", {"value": "count"}], 0, 0, ["i", null]]`,
			},
			expected: []string{
				`├── Increment Variable: "count"`,
				`│   ├── Variable: "count"`,
			},
		},
		{
			name: "play drum",
			blocks: []string{
				`["p", "playdrum", 0, 0, [null, "d", null]]`,
				`["d", ["drumname", {"value": "snare drum"}], 0, 0, ["p"]]`,
			},
			expected: []string{"├── Play Drum → snare drum"},
		},
		{
			name: "print and its text",
			blocks: []string{
				`["p", "print", 0, 0, [null, null, "t", null]]`,
				`["t", ["text", {"value": "hi"}], 0, 0, ["p"]]`,
			},
			expected: []string{`├── Print: "hi"`, `│   ├── "hi"`},
		},
		{
			name: "plus folds resolved operands",
			blocks: []string{
				`["p", "plus", 0, 0, [null, "a", "b"]]`,
				`["a", ["number", {"value": 2}], 0, 0, ["p"]]`,
				`["b", ["number", {"value": 3}], 0, 0, ["p"]]`,
			},
			expected: []string{"├── Add --> 2 + 3 = 5.00"},
		},
		{
			name: "plus with a zero operand",
			blocks: []string{
				`["p", "plus", 0, 0, [null, "a", "b"]]`,
				`["a", ["number", {"value": 2.5}], 0, 0, ["p"]]`,
				`["b", ["number", {"value": 0}], 0, 0, ["p"]]`,
			},
			expected: []string{"├── Add --> 2.5 + ? = 2.50"},
		},
		{
			name: "pitch",
			blocks: []string{
				`["p", "pitch", 0, 0, [null, "s", "o", null]]`,
				`["s", ["solfege", {"value": "sol"}], 0, 0, ["p"]]`,
				`["o", ["number", {"value": 4}], 0, 0, ["p"]]`,
			},
			expected: []string{"├── Pitch --> Solfege: sol, Octave: 4"},
		},
		{
			name: "transposition",
			blocks: []string{
				`["x", "settransposition", 0, 0, [null, "n", null]]`,
				`["n", ["number", {"value": 2}], 0, 0, ["x"]]`,
			},
			expected: []string{"├── Set Transposition --> 2"},
		},
		{
			name: "repeat with a number and a body",
			blocks: []string{
				`["r", "repeat", 0, 0, [null, "n", "b", null]]`,
				`["n", ["number", {"value": 4}], 0, 0, ["r"]]`,
				`["b", "penup", 0, 0, ["r", null]]`,
			},
			expected: []string{
				"├── Repeat (4) Times",
				"│   ├── Pen Up (Lifts Pen from Canvas)",
			},
		},
		{
			name: "repeat shows a resolved zero",
			blocks: []string{
				`["r", "repeat", 0, 0, [null, "n", null, null]]`,
				`["n", ["number", {"value": 0}], 0, 0, ["r"]]`,
			},
			expected: []string{"├── Repeat (0) Times"},
		},
		{
			name: "repeat with a fraction still draws the divide",
			blocks: []string{
				`["r", "repeat", 0, 0, [null, "d", null, null]]`,
				`["d", "divide", 0, 0, ["r", "three", "one"]]`,
				`["three", ["number", {"value": 3}], 0, 0, ["d"]]`,
				`["one", ["number", {"value": 1}], 0, 0, ["d"]]`,
			},
			expected: []string{
				"├── Repeat (3/1 = 3.00) Times",
				"│   ├── Divide Block --> 3/1 = 3.00",
			},
		},
		{
			name: "master bpm inlines its beat value",
			blocks: []string{
				`["m", "setmasterbpm2", 0, 0, [null, "bpm", "d", null]]`,
				`["bpm", ["number", {"value": 90}], 0, 0, ["m"]]`,
				`["d", ["divide", {}], 0, 0, ["m", "one", "four"]]`,
				`["one", ["number", {"value": 1}], 0, 0, ["d"]]`,
				`["four", ["number", {"value": 4}], 0, 0, ["d"]]`,
			},
			expected: []string{
				"├── Set Master BPM → 90 BPM",
				"│   ├── beat value --> 1/4 = 0.25",
			},
		},
		{
			name: "note inlines a fractional duration",
			blocks: []string{
				`["n", "newnote", 0, 0, [null, "d", "p", null]]`,
				`["d", "divide", 0, 0, ["n", "one", "four"]]`,
				`["one", ["number", {"value": 1}], 0, 0, ["d"]]`,
				`["four", ["number", {"value": 4}], 0, 0, ["d"]]`,
				`["p", "pitch", 0, 0, ["n", "s", "o", null]]`,
				`["s", ["solfege", {"value": "sol"}], 0, 0, ["p"]]`,
				`["o", ["number", {"value": 4}], 0, 0, ["p"]]`,
			},
			expected: []string{
				"├── Note --> Duration: 1/4 = 0.25",
				"│   ├── Pitch --> Solfege: sol, Octave: 4",
			},
		},
		{
			name: "note with a plain duration",
			blocks: []string{
				`["n", "newnote", 0, 0, [null, "eight", null]]`,
				`["eight", ["number", {"value": 8}], 0, 0, ["n"]]`,
			},
			expected: []string{"├── Note --> Duration: 8"},
		},
		{
			name:     "note without duration",
			blocks:   []string{`["n", "newnote", 0, 0, [null, null, null]]`},
			expected: []string{"├── Note"},
		},
		{
			name: "divide reached through a passthrough under a note",
			blocks: []string{
				`["n", "newnote", 0, 0, [null, "h", null]]`,
				`["h", "hidden", 0, 0, ["n", "d"]]`,
				`["d", "divide", 0, 0, ["h", "one", "four"]]`,
				`["one", ["number", {"value": 1}], 0, 0, ["d"]]`,
				`["four", ["number", {"value": 4}], 0, 0, ["d"]]`,
			},
			expected: []string{
				"├── Note",
				"│   ├── Duration --> 1/4 = 0.25",
			},
		},
		{
			name: "arc folds its angle",
			blocks: []string{
				`["a", "arc", 0, 0, [null, null, "r", "d", null]]`,
				`["r", ["number", {"value": 100}], 0, 0, ["a"]]`,
				`["d", "divide", 0, 0, ["a", "ninety", "two"]]`,
				`["ninety", ["number", {"value": 90}], 0, 0, ["d"]]`,
				`["two", ["number", {"value": 2}], 0, 0, ["d"]]`,
			},
			expected: []string{"├── Draw Arc --> Angle: 45.00°, Radius: 100"},
		},
		{
			name: "arc draws a divide over a computed operand as a child",
			blocks: []string{
				`["a", "arc", 0, 0, [null, null, "r", "d", null]]`,
				`["r", ["number", {"value": 3}], 0, 0, ["a"]]`,
				`["d", "divide", 0, 0, ["a", "p", "four"]]`,
				`["p", "plus", 0, 0, ["d", "one", "two"]]`,
				`["one", ["number", {"value": 1}], 0, 0, ["p"]]`,
				`["two", ["number", {"value": 2}], 0, 0, ["p"]]`,
				`["four", ["number", {"value": 4}], 0, 0, ["d"]]`,
			},
			expected: []string{
				"├── Draw Arc --> Angle: ?°, Radius: 3",
				"│   ├── Divide Block --> ?/4 = ?",
				"│   │   ├── Add --> 1 + 2 = 3.00",
			},
		},
		{
			name: "note draws a fraction with a divide denominator as branches",
			blocks: []string{
				`["n", "newnote", 0, 0, [null, "d", null]]`,
				`["d", "divide", 0, 0, ["n", "one", "inner"]]`,
				`["one", ["number", {"value": 1}], 0, 0, ["d"]]`,
				`["inner", "divide", 0, 0, ["d", "two", "four"]]`,
				`["two", ["number", {"value": 2}], 0, 0, ["inner"]]`,
				`["four", ["number", {"value": 4}], 0, 0, ["inner"]]`,
			},
			expected: []string{
				"├── Note --> Duration: 1/? = ?",
				"│   ├── Duration --> 1/? = ?",
				"│   ├── Divide Block --> 2/4 = 0.50",
			},
		},
		{
			name: "arc shows a resolved zero angle",
			blocks: []string{
				`["a", "arc", 0, 0, [null, null, null, "z", null]]`,
				`["z", ["number", {"value": 0}], 0, 0, ["a"]]`,
			},
			expected: []string{"├── Draw Arc --> Angle: 0°, Radius: ?"},
		},
		{
			name: "divide with zero denominator",
			blocks: []string{
				`["d", "divide", 0, 0, [null, "one", "zero"]]`,
				`["one", ["number", {"value": 1}], 0, 0, ["d"]]`,
				`["zero", ["number", {"value": 0}], 0, 0, ["d"]]`,
			},
			expected: []string{"├── Divide Block --> 1/? = ?"},
		},
		{
			name: "action with name and body",
			blocks: []string{
				`["a", "action", 0, 0, [null, "name", "b", null]]`,
				`["name", ["text", {"value": "song"}], 0, 0, ["a"]]`,
				`["b", "penup", 0, 0, ["a", null]]`,
			},
			expected: []string{
				`├── Action: "song"`,
				`│   ├── "song"`,
				"│   ├── Pen Up (Lifts Pen from Canvas)",
				"│",
			},
		},
		{
			name:     "fallback with value",
			blocks:   []string{`["x", ["settimbre", {"value": "guitar"}], 0, 0, [null, null]]`},
			expected: []string{"├── settimbre: guitar"},
		},
		{
			name:     "fallback without value",
			blocks:   []string{`["x", "wrap", 0, 0, [null, null]]`},
			expected: []string{"├── Wrap"},
		},
		{
			name:     "value carriers draw nothing",
			blocks:   []string{`["s", ["solfege", {"value": "la"}], 0, 0, [null]]`},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, body(t, tt.blocks...))
		})
	}
}

func TestRules_StartBlock(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		lines := body(t,
			`[0, ["start", {"id": 1, "xcor": 12.5, "ycor": -3, "heading": 90, "color": 10, "shade": 50, "pensize": 5, "grey": 100}], 0, 0, [null, null, null]]`,
		)
		assert.Equal(t, []string{
			"├── Start Block --> {ID: 1, Position: (12.50, -3.00), Heading: 90°, Color: 10, Shade: 50, Pen Size: 5, Grey: 100.00}",
			"│",
		}, lines)
	})

	t.Run("missing fields take defaults", func(t *testing.T) {
		lines := body(t, `[0, ["start", {}], 0, 0, [null, null, null]]`)
		assert.Equal(t, []string{
			"├── Start Block --> {ID: , Position: (0.00, 0.00), Heading: 0°, Color: , Shade: , Pen Size: , Grey: 0.00}",
			"│",
		}, lines)
	})

	t.Run("media color is scrubbed", func(t *testing.T) {
		lines := body(t, `[0, ["start", {"id": 1, "color": "data:image/png;base64,AAAA"}], 0, 0, [null, null, null]]`)
		require.NotEmpty(t, lines)
		assert.Contains(t, lines[0], "Color: data,")
		assert.NotContains(t, lines[0], "base64")
	})

	t.Run("non numeric coordinate is reported inline", func(t *testing.T) {
		lines := body(t,
			`[0, ["start", {"id": 1, "xcor": "abc"}], 0, 0, [null, 1, null]]`,
			`[1, "penup", 0, 0, [0, null]]`,
		)
		assert.Equal(t, []string{
			"├── Error processing start: xcor is not a number: abc",
			"│   ├── Pen Up (Lifts Pen from Canvas)",
			"│",
		}, lines)
	})
}

func TestFallback(t *testing.T) {
	r, err := flowchart.Fallback(&flowchart.Node{Block: &flowchart.Block{Kind: ""}})
	require.NoError(t, err)
	assert.Nil(t, r, "empty kind is suppressed")

	r, err = flowchart.Fallback(&flowchart.Node{Block: &flowchart.Block{Kind: "ünicode"}})
	require.NoError(t, err)
	assert.Equal(t, "Ünicode", r.Text)
}

func TestDefaultRules_ReturnsCopy(t *testing.T) {
	rules := flowchart.DefaultRules()
	delete(rules, flowchart.KindForward)

	assert.Contains(t, flowchart.DefaultRules(), flowchart.KindForward)
}
