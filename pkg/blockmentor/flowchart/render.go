package flowchart

import (
	"fmt"
	"maps"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Node is the view a Rule gets of the block being rendered.
type Node struct {
	Block  *Block
	Store  *Store
	Depth  int
	Nested bool
	// Parent is the kind of the block this one was reached from, or empty
	// for roots and orphans.
	Parent Kind
}

// Rendering is the display produced for one block.
type Rendering struct {
	// Text is the content of the block's own line.
	Text string
	// Details are extra lines drawn one level deeper, directly under Text.
	Details []string
}

// Rule renders one block kind. Returning a nil Rendering suppresses the block.
type Rule func(n *Node) (*Rendering, error)

func text(format string, args ...any) (*Rendering, error) {
	return &Rendering{Text: fmt.Sprintf(format, args...)}, nil
}

var defaultRules = map[Kind]Rule{
	KindStart:            renderStart,
	KindSetMasterBPM:     renderSetMasterBPM,
	KindDivide:           renderDivide,
	KindStoreIn:          renderStoreIn,
	KindNamedBox:         renderNamedBox,
	KindAction:           renderAction,
	KindRepeat:           renderRepeat,
	KindForever:          fixed("Forever Loop (Repeats Indefinitely)"),
	KindPenUp:            fixed("Pen Up (Lifts Pen from Canvas)"),
	KindPenDown:          fixed("Pen Down"),
	KindForward:          numeric(1, "Move Forward → %s Steps"),
	KindBack:             numeric(1, "Move Backward → %s Steps"),
	KindRight:            numeric(1, "Rotate Right → %s°"),
	KindLeft:             numeric(1, "Rotate Left → %s°"),
	KindSetHeading:       renderSetHeading,
	KindShow:             numeric(2, "Show Number: %s"),
	KindIncrement:        renderIncrement,
	KindIncrementOne:     renderIncrementOne,
	KindNewNote:          renderNewNote,
	KindPlayDrum:         renderPlayDrum,
	KindArc:              renderArc,
	KindPrint:            renderPrint,
	KindPlus:             renderPlus,
	KindText:             renderText,
	KindPitch:            renderPitch,
	KindSolfege:          suppress,
	KindNamedDo:          renderNamedDo,
	KindSetTransposition: numeric(1, "Set Transposition --> %s"),
}

// DefaultRules returns a copy of the built-in rule table.
func DefaultRules() map[Kind]Rule {
	return maps.Clone(defaultRules)
}

// Fallback renders kinds without a rule: "kind: value" when the block has
// a value argument, otherwise the kind with its first letter capitalized.
func Fallback(n *Node) (*Rendering, error) {
	if v, ok := n.Block.Arg("value"); ok {
		return text("%s: %s", n.Block.Kind, Display(v))
	}
	kind := string(n.Block.Kind)
	if kind == "" {
		return nil, nil
	}
	r, size := utf8.DecodeRuneInString(kind)
	return &Rendering{Text: string(unicode.ToUpper(r)) + kind[size:]}, nil
}

func fixed(s string) Rule {
	return func(*Node) (*Rendering, error) {
		return &Rendering{Text: s}, nil
	}
}

// numeric renders a template around the number found in one slot.
func numeric(slot int, format string) Rule {
	return func(n *Node) (*Rendering, error) {
		v, ok := n.Store.Number(n.Block.Slot(slot))
		return text(format, orPlaceholder(v, ok))
	}
}

func suppress(*Node) (*Rendering, error) { return nil, nil }

func renderStart(n *Node) (*Rendering, error) {
	id := argText(n.Block, "id", "")
	x, err := argFixed2(n.Block, "xcor")
	if err != nil {
		return nil, err
	}
	y, err := argFixed2(n.Block, "ycor")
	if err != nil {
		return nil, err
	}
	grey, err := argFixed2(n.Block, "grey")
	if err != nil {
		return nil, err
	}
	info := []string{
		"ID: " + id,
		fmt.Sprintf("Position: (%s, %s)", x, y),
		fmt.Sprintf("Heading: %s°", argText(n.Block, "heading", "0")),
		fmt.Sprintf("Color: %s, Shade: %s", argText(n.Block, "color", ""), argText(n.Block, "shade", "")),
		fmt.Sprintf("Pen Size: %s, Grey: %s", argText(n.Block, "pensize", ""), grey),
	}
	return text("Start Block --> {%s}", strings.Join(info, ", "))
}

func renderSetMasterBPM(n *Node) (*Rendering, error) {
	bpm, ok := n.Store.Number(n.Block.Slot(1))
	r := &Rendering{Text: fmt.Sprintf("Set Master BPM → %s BPM", orPlaceholder(bpm, ok))}
	if f, ok := n.Store.Fraction(n.Block.Slot(2)); ok {
		if ratio, ok := f.Ratio(); ok {
			r.Details = append(r.Details, fmt.Sprintf("beat value --> %s/%s = %s", f.Num, f.Den, fixed2(ratio)))
		}
	}
	return r, nil
}

func renderDivide(n *Node) (*Rendering, error) {
	f, _ := n.Store.Fraction(n.Block.ID)
	result := Placeholder
	if ratio, ok := f.Ratio(); ok {
		result = fixed2(ratio)
	}
	label := "Divide Block"
	if n.Parent == KindNewNote {
		label = "Duration"
	}
	return text("%s --> %s = %s", label, f.Operands(), result)
}

func renderStoreIn(n *Node) (*Rendering, error) {
	name := argText(n.Block, "value", "unnamed")
	v, ok := n.Store.Number(n.Block.Slot(1))
	value := Placeholder
	if ok {
		value = v.Text
	}
	return text("Store Variable \"%s\" → %s", name, value)
}

func renderNamedBox(n *Node) (*Rendering, error) {
	return text("Variable: \"%s\"", argText(n.Block, "value", "unnamed"))
}

func renderAction(n *Node) (*Rendering, error) {
	name, ok := n.Store.Text(n.Block.Slot(1))
	return text("Action: \"%s\"", orText(name, ok, "unnamed"))
}

func renderRepeat(n *Node) (*Rendering, error) {
	return text("Repeat (%s) Times", operand(n.Store, n.Block.Slot(1), true))
}

func renderSetHeading(n *Node) (*Rendering, error) {
	v, ok := n.Store.Number(n.Block.Slot(1))
	return text("Set Heading → %s°", orDefault(v, ok, "0"))
}

func renderIncrement(n *Node) (*Rendering, error) {
	color, cok := n.Store.Number(n.Block.Slot(1))
	amount, aok := n.Store.Number(n.Block.Slot(2))
	return text("Increment --> Color: %s, Amount: %s", orPlaceholder(color, cok), orPlaceholder(amount, aok))
}

func renderIncrementOne(n *Node) (*Rendering, error) {
	name, ok := n.Store.NamedValue(n.Block.Slot(1))
	return text("Increment Variable: \"%s\"", orText(name, ok, Placeholder))
}

// renderNewNote inlines the note value; the walker does not descend into
// a divide child of a note.
func renderNewNote(n *Node) (*Rendering, error) {
	slot := n.Block.Slot(1)
	if f, ok := n.Store.Fraction(slot); ok {
		result := Placeholder
		if ratio, ok := f.Ratio(); ok {
			result = fixed2(ratio)
		}
		return text("Note --> Duration: %s = %s", f.Operands(), result)
	}
	if v, ok := n.Store.Number(slot); ok {
		return text("Note --> Duration: %s", v)
	}
	return &Rendering{Text: "Note"}, nil
}

func renderPlayDrum(n *Node) (*Rendering, error) {
	drum, ok := n.Store.DrumName(n.Block.Slot(1))
	return text("Play Drum → %s", orText(drum, ok, Placeholder))
}

func renderArc(n *Node) (*Rendering, error) {
	angle := operand(n.Store, n.Block.Slot(3), false)
	radius, ok := n.Store.Number(n.Block.Slot(2))
	return text("Draw Arc --> Angle: %s°, Radius: %s", angle, orPlaceholder(radius, ok))
}

func renderPrint(n *Node) (*Rendering, error) {
	msg, ok := n.Store.Text(n.Block.Slot(2))
	return text("Print: \"%s\"", orText(msg, ok, ""))
}

func renderPlus(n *Node) (*Rendering, error) {
	a, aok := n.Store.Number(n.Block.Slot(1))
	b, bok := n.Store.Number(n.Block.Slot(2))
	result := Placeholder
	if aok && bok {
		result = fixed2(a.Value + b.Value)
	}
	return text("Add --> %s + %s = %s", orPlaceholder(a, aok), orPlaceholder(b, bok), result)
}

func renderText(n *Node) (*Rendering, error) {
	return text("\"%s\"", argText(n.Block, "value", ""))
}

func renderPitch(n *Node) (*Rendering, error) {
	solfege, ok := n.Store.Solfege(n.Block.Slot(1))
	if !ok {
		solfege = Placeholder
	}
	octave, ook := n.Store.Number(n.Block.Slot(2))
	return text("Pitch --> Solfege: %s, Octave: %s", solfege, orPlaceholder(octave, ook))
}

func renderNamedDo(n *Node) (*Rendering, error) {
	return text("Do action --> \"%s\"", argText(n.Block, "value", "unnamed"))
}

// operand renders a slot that may hold either a number or a divide block.
// A folded divide shows its operands too when withOperands is set.
func operand(s *Store, id ID, withOperands bool) string {
	if f, ok := s.Fraction(id); ok {
		ratio, ok := f.Ratio()
		if !ok {
			return Placeholder
		}
		if withOperands {
			return fmt.Sprintf("%s/%s = %s", f.Num, f.Den, fixed2(ratio))
		}
		return fixed2(ratio)
	}
	if v, ok := s.Number(id); ok {
		return v.Text
	}
	return Placeholder
}

func argText(b *Block, key, def string) string {
	v, ok := b.Arg(key)
	if !ok {
		return def
	}
	return Display(v)
}

func argFixed2(b *Block, key string) (string, error) {
	v, ok := b.Arg(key)
	if !ok {
		return fixed2(0), nil
	}
	n, ok := toNumber(v)
	if !ok {
		return "", fmt.Errorf("%s is not a number: %s", key, Display(v))
	}
	return fixed2(n.Value), nil
}
