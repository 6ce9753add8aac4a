package flowchart

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Kind names the semantic role of a block.
// The set is open-ended; kinds without a rule render through the fallback.
type Kind string

// Known block kinds.
const (
	KindStart            Kind = "start"
	KindAction           Kind = "action"
	KindSetMasterBPM     Kind = "setmasterbpm2"
	KindDivide           Kind = "divide"
	KindStoreIn          Kind = "storein2"
	KindNamedBox         Kind = "namedbox"
	KindNamedArg         Kind = "namedarg"
	KindRepeat           Kind = "repeat"
	KindForever          Kind = "forever"
	KindPenUp            Kind = "penup"
	KindPenDown          Kind = "pendown"
	KindForward          Kind = "forward"
	KindBack             Kind = "back"
	KindRight            Kind = "right"
	KindLeft             Kind = "left"
	KindSetHeading       Kind = "setheading"
	KindShow             Kind = "show"
	KindIncrement        Kind = "increment"
	KindIncrementOne     Kind = "incrementOne"
	KindNewNote          Kind = "newnote"
	KindPlayDrum         Kind = "playdrum"
	KindArc              Kind = "arc"
	KindPrint            Kind = "print"
	KindPlus             Kind = "plus"
	KindText             Kind = "text"
	KindPitch            Kind = "pitch"
	KindSolfege          Kind = "solfege"
	KindNamedDo          Kind = "nameddo"
	KindSetTransposition Kind = "settransposition"
	KindNumber           Kind = "number"
	KindDrumName         Kind = "drumname"
	KindVSpace           Kind = "vspace"
	KindHidden           Kind = "hidden"
)

// Passthrough reports whether blocks of this kind only forward their children.
func (k Kind) Passthrough() bool {
	return k == KindVSpace || k == KindHidden
}

// ValueCarrier reports whether blocks of this kind exist only to feed a
// scalar to their parent and never render a line of their own.
func (k Kind) ValueCarrier() bool {
	return k == KindNumber || k == KindDrumName || k == KindSolfege
}

// ID identifies a block within one project graph.
// Numeric ids are kept in their decimal spelling.
type ID string

// NoID marks an empty connection slot.
const NoID ID = ""

// Block is one normalized node of a project graph.
type Block struct {
	ID   ID
	Kind Kind

	// Args holds the literal attributes when the type spec carried a record.
	Args map[string]any

	// Literal holds the payload when the type spec carried a bare scalar,
	// e.g. ["number", 4].
	Literal any

	// Connections are ordered slots; the last one continues the main flow.
	Connections []ID
}

// Arg returns the named literal argument.
func (b *Block) Arg(key string) (any, bool) {
	if b == nil || b.Args == nil {
		return nil, false
	}
	v, ok := b.Args[key]
	return v, ok
}

// Slot returns the connection at position i, or NoID when absent.
func (b *Block) Slot(i int) ID {
	if b == nil || i < 0 || i >= len(b.Connections) {
		return NoID
	}
	return b.Connections[i]
}

// mediaPattern matches inline base64 media payloads.
var mediaPattern = regexp.MustCompile(`^data:(image|audio)/[a-zA-Z0-9+.-]+;base64,`)

// MediaPlaceholder replaces base64 media payloads found in block args.
const MediaPlaceholder = "data"

// Store maps block ids to blocks and remembers input order.
// A Store is owned by a single conversion.
type Store struct {
	blocks map[ID]*Block
	order  []ID
}

// Build normalizes raw block tuples into a Store.
//
// Each tuple is [id, typeSpec, ..., connections] where typeSpec is either a
// kind string or a [kind, args] pair and connections is the last
// array-valued field. Entries that do not have that shape are skipped and
// counted. Duplicate ids: the last entry wins.
func Build(raw []any) (*Store, int) {
	s := &Store{blocks: make(map[ID]*Block, len(raw))}
	skipped := 0
	for _, entry := range raw {
		b, err := normalize(entry)
		if err != nil {
			skipped++
			continue
		}
		if _, seen := s.blocks[b.ID]; !seen {
			s.order = append(s.order, b.ID)
		}
		s.blocks[b.ID] = b
	}
	return s, skipped
}

// Get returns the block with the given id.
func (s *Store) Get(id ID) (*Block, bool) {
	if s == nil || id == NoID {
		return nil, false
	}
	b, ok := s.blocks[id]
	return b, ok
}

// Len returns the number of distinct blocks.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Blocks returns the blocks in input order of their first appearance.
func (s *Store) Blocks() []*Block {
	out := make([]*Block, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.blocks[id])
	}
	return out
}

func normalize(entry any) (*Block, error) {
	tuple, ok := entry.([]any)
	if !ok {
		return nil, fmt.Errorf("block entry is %T, not a list", entry)
	}
	if len(tuple) < 2 {
		return nil, fmt.Errorf("block entry has %d fields", len(tuple))
	}

	id, err := toID(tuple[0])
	if err != nil {
		return nil, err
	}
	if id == NoID {
		return nil, fmt.Errorf("block entry has no id")
	}

	b := &Block{ID: id}
	switch spec := tuple[1].(type) {
	case string:
		b.Kind = Kind(spec)
	case []any:
		if len(spec) == 0 {
			return nil, fmt.Errorf("block %s: empty type spec", id)
		}
		kind, ok := spec[0].(string)
		if !ok {
			return nil, fmt.Errorf("block %s: kind is %T", id, spec[0])
		}
		b.Kind = Kind(kind)
		if len(spec) > 1 {
			if args, ok := spec[1].(map[string]any); ok {
				b.Args = scrubMedia(args)
			} else {
				b.Literal = spec[1]
			}
		}
	default:
		return nil, fmt.Errorf("block %s: type spec is %T", id, tuple[1])
	}

	for i := len(tuple) - 1; i >= 2; i-- {
		slots, ok := tuple[i].([]any)
		if !ok {
			continue
		}
		b.Connections = make([]ID, len(slots))
		for j, slot := range slots {
			// Malformed slots behave like empty ones.
			ref, _ := toID(slot)
			b.Connections[j] = ref
		}
		break
	}
	return b, nil
}

func scrubMedia(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && mediaPattern.MatchString(s) {
			out[k] = MediaPlaceholder
			continue
		}
		out[k] = v
	}
	return out
}

func toID(v any) (ID, error) {
	switch id := v.(type) {
	case nil:
		return NoID, nil
	case string:
		return ID(id), nil
	case json.Number:
		return ID(id.String()), nil
	case float64:
		return ID(strconv.FormatFloat(id, 'f', -1, 64)), nil
	case int:
		return ID(strconv.Itoa(id)), nil
	case int64:
		return ID(strconv.FormatInt(id, 10)), nil
	default:
		return NoID, fmt.Errorf("unsupported block id type %T", v)
	}
}
