package flowchart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Header is the first line of every successful conversion.
const Header = "Start of Project"

// Diagnostics returned in place of a flowchart.
const (
	DiagnosticNotList  = "Invalid JSON format: Expected a list at the root."
	DiagnosticNoBlocks = "Warning: No blocks found in input!"
)

// Result is a conversion together with a few facts about the input.
type Result struct {
	Lines []string
	// Blocks is the number of distinct blocks in the project.
	Blocks int
	// Skipped counts malformed entries ignored while building the store.
	Skipped int
	// Orphans counts trees rendered by the sweep after the root walk.
	Orphans int
}

// Converter turns block graphs into flowcharts.
// A Converter is immutable after New and safe for concurrent use; every
// conversion owns its block store and visited set.
type Converter struct {
	rules   map[Kind]Rule
	filters []LineFilter
}

// New creates a Converter with the built-in rules and no line filters.
func New(opts ...Option) *Converter {
	c := &Converter{rules: DefaultRules()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultConverter = New()

// Convert renders a decoded project with the default converter.
func Convert(raw any) []string {
	return defaultConverter.Convert(raw)
}

// ConvertJSON decodes and renders a project with the default converter.
func ConvertJSON(data []byte) ([]string, error) {
	return defaultConverter.ConvertJSON(data)
}

// Convert renders a decoded project. It never fails: malformed input yields
// a single diagnostic line.
func (c *Converter) Convert(raw any) []string {
	return c.Run(raw).Lines
}

// ConvertJSON decodes data and renders it. The error reports undecodable
// JSON only; a decoded value that is not a project yields a diagnostic line.
func (c *Converter) ConvertJSON(data []byte) ([]string, error) {
	raw, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return c.Convert(raw), nil
}

// Run renders a decoded project and reports conversion facts.
func (c *Converter) Run(raw any) Result {
	entries, ok := raw.([]any)
	if !ok {
		return Result{Lines: []string{DiagnosticNotList}}
	}
	store, skipped := Build(entries)
	if store.Len() == 0 {
		return Result{Lines: []string{DiagnosticNoBlocks}, Skipped: skipped}
	}

	blocks := store.Blocks()
	root := blocks[0]
	for _, b := range blocks {
		if b.Kind == KindStart {
			root = b
			break
		}
	}

	w := newWalker(store, c.rules)
	w.lines = append(w.lines, Line{Text: Header})
	w.walk(root, 1, false, "")

	orphans := 0
	for _, b := range blocks {
		if w.visited[b.ID] || b.Kind.Passthrough() || b.ID == root.ID {
			continue
		}
		before := len(w.lines)
		w.walk(b, 1, false, "")
		if len(w.lines) > before {
			orphans++
		}
	}

	return Result{
		Lines:   c.filter(w.lines),
		Blocks:  store.Len(),
		Skipped: skipped,
		Orphans: orphans,
	}
}

func (c *Converter) filter(lines []Line) []string {
	out := make([]string, 0, len(lines))
next:
	for _, l := range lines {
		s := l.String()
		for _, keep := range c.filters {
			if !keep(s) {
				continue next
			}
		}
		out = append(out, s)
	}
	return out
}

// Decode parses project JSON keeping numbers in their authored spelling.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode project: unexpected data after top-level value")
	}
	return raw, nil
}

// Equal reports whether two flowcharts are identical.
func Equal(a, b []string) bool {
	return slices.Equal(a, b)
}

// Text joins flowchart lines for embedding in prompts.
func Text(lines []string) string {
	return strings.Join(lines, "\n")
}
