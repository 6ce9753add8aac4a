package flowchart

import (
	"fmt"
	"strings"
)

const (
	branch   = "├── "
	pipe     = "│   "
	pipeTail = "│"
)

// Line is one row of a flowchart.
type Line struct {
	// Depth is the nesting level; top-level blocks sit at depth 1.
	// Header and diagnostic lines have depth 0.
	Depth int
	Text  string
	// Spacer lines close the body of a start or action block.
	Spacer bool
}

// String draws the line with its tree connectors.
func (l Line) String() string {
	if l.Depth <= 0 {
		return l.Text
	}
	indent := strings.Repeat(pipe, l.Depth-1)
	if l.Spacer {
		return indent + pipeTail
	}
	return indent + branch + l.Text
}

// inlinedFractions lists the kinds whose divide operands are folded into
// their own line and must not be drawn again as a child branch.
var inlinedFractions = map[Kind]bool{
	KindNewNote:      true,
	KindSetMasterBPM: true,
	KindArc:          true,
}

// walker renders the graph reachable from a block into one line buffer.
// It is scoped to a single conversion.
type walker struct {
	store   *Store
	rules   map[Kind]Rule
	visited map[ID]bool
	lines   []Line
}

func newWalker(store *Store, rules map[Kind]Rule) *walker {
	return &walker{
		store:   store,
		rules:   rules,
		visited: make(map[ID]bool, store.Len()),
		lines:   make([]Line, 0, store.Len()+1),
	}
}

// walk renders b and everything reachable from it that was not rendered
// before. Each block is marked visited before its children are followed,
// so cycles and shared children contribute output only once. Continuations
// are followed iteratively; only nested slots recurse.
func (w *walker) walk(b *Block, depth int, nested bool, parent Kind) {
	for b != nil {
		b, nested, parent = w.step(b, depth, nested, parent)
	}
}

// step renders one block and its nested slots, and returns the block that
// continues the chain at the same depth.
func (w *walker) step(b *Block, depth int, nested bool, parent Kind) (*Block, bool, Kind) {
	if w.visited[b.ID] {
		return nil, false, ""
	}
	w.visited[b.ID] = true

	last := len(b.Connections) - 1
	if b.Kind.Passthrough() {
		for i := 0; i < last; i++ {
			if child, ok := w.store.Get(b.Connections[i]); ok {
				w.walk(child, depth, nested, parent)
			}
		}
		if next, ok := w.store.Get(b.Slot(last)); ok {
			return next, nested, parent
		}
		return nil, false, ""
	}
	if b.Kind.ValueCarrier() {
		return nil, false, ""
	}

	r := w.render(&Node{Block: b, Store: w.store, Depth: depth, Nested: nested, Parent: parent})
	if r == nil || r.Text == "" {
		return nil, false, ""
	}

	w.lines = append(w.lines, Line{Depth: depth, Text: r.Text})
	for _, d := range r.Details {
		w.lines = append(w.lines, Line{Depth: depth + 1, Text: d})
	}

	for i := 0; i < last; i++ {
		child, ok := w.store.Get(b.Connections[i])
		if !ok {
			continue
		}
		if child.Kind == KindDivide && inlinedFractions[b.Kind] && w.foldable(child) {
			w.absorb(child)
			continue
		}
		w.walk(child, depth+1, true, b.Kind)
	}

	if b.Kind == KindStart || b.Kind == KindAction {
		w.lines = append(w.lines, Line{Depth: depth, Spacer: true})
	}

	if next, ok := w.store.Get(b.Slot(last)); ok {
		return next, false, b.Kind
	}
	return nil, false, ""
}

// foldable reports whether every operand of a divide is a plain value, so
// the parent's line can show the whole fraction. A divide over computed
// operands is drawn as a child branch instead.
func (w *walker) foldable(divide *Block) bool {
	for _, id := range []ID{divide.Slot(1), divide.Slot(2)} {
		if b, ok := w.store.Get(id); ok && !b.Kind.ValueCarrier() {
			return false
		}
	}
	return true
}

// absorb marks a fraction folded into its parent's line, and its value
// operands, as rendered so the orphan sweep does not draw it again.
func (w *walker) absorb(divide *Block) {
	w.visited[divide.ID] = true
	for _, id := range divide.Connections {
		if b, ok := w.store.Get(id); ok && b.Kind.ValueCarrier() {
			w.visited[id] = true
		}
	}
}

// render applies the rule for the block's kind. Rule errors and panics are
// reported inline so one bad block never aborts the conversion.
func (w *walker) render(n *Node) (r *Rendering) {
	defer func() {
		if v := recover(); v != nil {
			r = faultRendering(n.Block.Kind, v)
		}
	}()

	rule, ok := w.rules[n.Block.Kind]
	if !ok || rule == nil {
		rule = Fallback
	}
	out, err := rule(n)
	if err != nil {
		return faultRendering(n.Block.Kind, err)
	}
	return out
}

func faultRendering(kind Kind, cause any) *Rendering {
	return &Rendering{Text: fmt.Sprintf("Error processing %s: %v", kind, cause)}
}
