package flowchart

// LineFilter decides whether a finished flowchart line is kept.
type LineFilter func(line string) (keep bool)

// Option configures a Converter.
type Option func(*Converter)

// WithLineFilter adds a filter applied to every output line.
// Filters run in the order they were added; a line is dropped as soon as
// one filter rejects it.
func WithLineFilter(f LineFilter) Option {
	return func(c *Converter) {
		if f != nil {
			c.filters = append(c.filters, f)
		}
	}
}

// WithNoiseLines drops lines exactly equal to one of lines.
//
// Example:
//
//	conv := flowchart.New(flowchart.WithNoiseLines("├── Reflection"))
func WithNoiseLines(lines ...string) Option {
	if len(lines) == 0 {
		return func(*Converter) {}
	}
	noise := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		noise[l] = struct{}{}
	}
	return WithLineFilter(func(line string) bool {
		_, drop := noise[line]
		return !drop
	})
}

// WithRule installs r for kind, replacing the built-in rule if any.
// A nil rule removes the entry so the kind renders through Fallback.
func WithRule(kind Kind, r Rule) Option {
	return func(c *Converter) {
		if r == nil {
			delete(c.rules, kind)
			return
		}
		c.rules[kind] = r
	}
}
