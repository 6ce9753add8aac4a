package flowchart

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholder is displayed in place of an operand that cannot be resolved.
const Placeholder = "?"

// Number is a resolved numeric literal.
// Text keeps the authored spelling for display; Value is used for folding.
type Number struct {
	Text  string
	Value float64
}

// String returns the display form of the number.
func (n Number) String() string { return n.Text }

// IsZero reports whether the number is zero.
func (n Number) IsZero() bool { return n.Value == 0 }

// Fraction is a resolved divide block.
type Fraction struct {
	Num, Den     Number
	NumOK, DenOK bool
}

// Ratio returns Num/Den when both operands resolved and Den is not zero.
func (f Fraction) Ratio() (float64, bool) {
	if !f.NumOK || !f.DenOK || f.Den.IsZero() {
		return 0, false
	}
	return f.Num.Value / f.Den.Value, true
}

// Operands renders "n/d" with the placeholder for a missing or zero side.
func (f Fraction) Operands() string {
	return orPlaceholder(f.Num, f.NumOK) + "/" + orPlaceholder(f.Den, f.DenOK)
}

// Number resolves a number block to its literal.
// The literal is read from args.value when the block carries a record, or
// from the bare payload otherwise. Anything else is unresolved.
func (s *Store) Number(id ID) (Number, bool) {
	b, ok := s.Get(id)
	if !ok || b.Kind != KindNumber {
		return Number{}, false
	}
	var lit any
	if b.Args != nil {
		lit = b.Args["value"]
	} else {
		lit = b.Literal
	}
	return toNumber(lit)
}

// Text resolves a text block to its value.
func (s *Store) Text(id ID) (string, bool) {
	return s.valueOf(id, KindText)
}

// DrumName resolves a drumname block to its value.
func (s *Store) DrumName(id ID) (string, bool) {
	return s.valueOf(id, KindDrumName)
}

// NamedValue resolves a namedbox or namedarg block to the variable name.
func (s *Store) NamedValue(id ID) (string, bool) {
	return s.valueOf(id, KindNamedBox, KindNamedArg)
}

// Solfege resolves a solfege or text block to its value.
func (s *Store) Solfege(id ID) (string, bool) {
	return s.valueOf(id, KindSolfege, KindText)
}

// Fraction resolves a divide block's numerator (slot 1) and denominator (slot 2).
func (s *Store) Fraction(id ID) (Fraction, bool) {
	b, ok := s.Get(id)
	if !ok || b.Kind != KindDivide {
		return Fraction{}, false
	}
	var f Fraction
	f.Num, f.NumOK = s.Number(b.Slot(1))
	f.Den, f.DenOK = s.Number(b.Slot(2))
	return f, true
}

func (s *Store) valueOf(id ID, kinds ...Kind) (string, bool) {
	b, ok := s.Get(id)
	if !ok {
		return "", false
	}
	for _, k := range kinds {
		if b.Kind != k {
			continue
		}
		v, ok := b.Arg("value")
		if !ok || v == nil {
			return "", false
		}
		return Display(v), true
	}
	return "", false
}

func toNumber(v any) (Number, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return Number{}, false
		}
		text := n.String()
		if strings.ContainsAny(text, ".eE") {
			text = formatFloat(f)
		}
		return Number{Text: text, Value: f}, true
	case float64:
		return Number{Text: formatFloat(n), Value: n}, true
	case int:
		return Number{Text: strconv.Itoa(n), Value: float64(n)}, true
	case int64:
		return Number{Text: strconv.FormatInt(n, 10), Value: float64(n)}, true
	}
	return Number{}, false
}

// Display formats a literal the way the visual editor shows it:
// integers without a fraction, floats with at least one decimal.
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case json.Number, float64, int, int64:
		if n, ok := toNumber(x); ok {
			return n.Text
		}
		return fmt.Sprint(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func fixed2(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// orPlaceholder shows zero and unresolved operands as the placeholder.
func orPlaceholder(n Number, ok bool) string {
	return orDefault(n, ok, Placeholder)
}

func orDefault(n Number, ok bool, def string) string {
	if !ok || n.IsZero() {
		return def
	}
	return n.Text
}

func orText(s string, ok bool, def string) string {
	if !ok || s == "" {
		return def
	}
	return s
}
