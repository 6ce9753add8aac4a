package benchmarks

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// buildProject returns a project with a start block followed by n movement
// blocks, every fifth one wrapped in a repeat.
func buildProject(n int) []byte {
	entries := []any{
		[]any{"s", []any{"start", map[string]any{"id": 0, "xcor": 0, "ycor": 0, "heading": 0, "color": 0, "shade": 50, "pensize": 5, "grey": 100}}, 0, 0, []any{nil, blockID(0)}},
	}
	prev := "s"
	for i := 0; i < n; i++ {
		id := blockID(i)
		next := any(nil)
		if i < n-1 {
			next = blockID(i + 1)
		}
		arg := "v" + strconv.Itoa(i)
		kind := "forward"
		if i%2 == 1 {
			kind = "right"
		}
		if i%5 == 4 {
			body := "rb" + strconv.Itoa(i)
			entries = append(entries,
				[]any{id, "repeat", 0, 0, []any{prev, arg, body, next}},
				[]any{arg, []any{"number", map[string]any{"value": 4}}, 0, 0, []any{id}},
				[]any{body, "forward", 0, 0, []any{id, "bv" + strconv.Itoa(i), nil}},
				[]any{"bv" + strconv.Itoa(i), []any{"number", map[string]any{"value": 25}}, 0, 0, []any{body}},
			)
		} else {
			entries = append(entries,
				[]any{id, kind, 0, 0, []any{prev, arg, next}},
				[]any{arg, []any{"number", map[string]any{"value": i * 10}}, 0, 0, []any{id}},
			)
		}
		prev = id
	}
	data, err := json.Marshal(entries)
	if err != nil {
		panic(err)
	}
	return data
}

func blockID(i int) string {
	return fmt.Sprintf("b%d", i)
}
