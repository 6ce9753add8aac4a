// Package blockinfo describes the blocks a flowchart mentions so prompts can
// explain them to the model.
package blockinfo

import (
	"strings"
	"sync"
)

// Entry is one catalogue row.
type Entry struct {
	Label       string
	Description string
}

// defaults are matched in this order.
var defaults = []Entry{
	{"Start Block", "Each Start block is a separate voice. All of the Start blocks run at the same time when the Play button is pressed."},
	{"Settimbre", "The Set instrument block selects a voice for the synthesizer, eg guitar piano violin or cello."},
	{"Action", "The Action block is used to group together blocks so that they can be used more than once. It is often used for storing a phrase of music that is repeated."},
	{"Note", "The Note block is a container for one or more Pitch blocks. The Note block specifies the duration (note value) of its contents."},
	{"Pitch", "The Pitch block specifies the pitch name and octave of a note that together determine the frequency of the note."},
	{"Wrap", "The Wrap block enables or disables screen wrapping for the graphics actions within it."},
	{"Set Master BPM", "The Master beats per minute block sets the number of 1/4 notes per minute for every voice."},
	{"Arc", "The Arc block moves the turtle in an arc."},
	{"Move Forward", "The Forward block moves the mouse forward."},
	{"Move Backward", "The Backward block moves the mouse backward."},
	{"Setxy", "The Set XY block moves the mouse to a specific position on the screen."},
}

// Catalogue is a thread-safe, ordered label to description table.
type Catalogue struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]string
}

// New creates a catalogue holding entries in the given order.
func New(entries ...Entry) *Catalogue {
	c := &Catalogue{entries: make(map[string]string, len(entries))}
	for _, e := range entries {
		c.Register(e.Label, e.Description)
	}
	return c
}

// Default returns a fresh catalogue of the built-in block descriptions.
func Default() *Catalogue {
	return New(defaults...)
}

// Register adds or replaces a description. New labels are matched last.
func (c *Catalogue) Register(label, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[label]; !ok {
		c.order = append(c.order, label)
	}
	c.entries[label] = description
}

// Get returns the description for a label.
func (c *Catalogue) Get(label string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[label]
	return d, ok
}

// Entries returns the catalogue in match order.
func (c *Catalogue) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.order))
	for _, l := range c.order {
		out = append(out, Entry{Label: l, Description: c.entries[l]})
	}
	return out
}

// Len returns the number of entries.
func (c *Catalogue) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Lookup returns "{label} : {description}\n" for every label that occurs
// as a substring of any flowchart line, in catalogue order.
func (c *Catalogue) Lookup(lines []string) string {
	joined := strings.Join(lines, "\n")
	var b strings.Builder
	for _, e := range c.Entries() {
		if strings.Contains(joined, e.Label) {
			b.WriteString(e.Label)
			b.WriteString(" : ")
			b.WriteString(e.Description)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

var std = Default()

// Lookup describes the blocks mentioned in lines using the built-in catalogue.
func Lookup(lines []string) string {
	return std.Lookup(lines)
}
