// Package jsonfield resolves dot-separated field paths, with optional
// array indexes, against arbitrary JSON documents. It exists so the
// transcription endpoint's response shape stays a config concern
// ("text", "result.text", "results[0].alternatives[0].transcript")
// instead of a code one.
package jsonfield

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Path is a compiled field path.
type Path struct {
	expr  string
	steps []step
}

type step struct {
	key     string
	indexes []int
}

// Compile parses an expression like "data.items[1].value". An empty
// expression is an error; callers wanting fallback behavior use Text.
func Compile(expr string) (Path, error) {
	if expr == "" {
		return Path{}, fmt.Errorf("empty field path")
	}
	var steps []step
	for _, token := range strings.Split(expr, ".") {
		st, err := parseStep(token)
		if err != nil {
			return Path{}, fmt.Errorf("field path %q: %w", expr, err)
		}
		steps = append(steps, st)
	}
	return Path{expr: expr, steps: steps}, nil
}

func (p Path) String() string { return p.expr }

// Lookup unmarshals doc and walks the path. The second return is false
// when the document does not parse, the path misses, or the leaf is
// not representable as a string.
func (p Path) Lookup(doc []byte) (string, bool) {
	var root interface{}
	if err := json.Unmarshal(doc, &root); err != nil {
		return "", false
	}
	return p.resolve(root)
}

func (p Path) resolve(root interface{}) (string, bool) {
	cur := root
	for _, st := range p.steps {
		if st.key != "" {
			m, ok := cur.(map[string]interface{})
			if !ok {
				return "", false
			}
			next, exists := m[st.key]
			if !exists {
				return "", false
			}
			cur = next
		}
		for _, idx := range st.indexes {
			arr, ok := cur.([]interface{})
			if !ok {
				return "", false
			}
			if idx < 0 || idx >= len(arr) {
				return "", false
			}
			cur = arr[idx]
		}
	}
	return stringify(cur)
}

// Text resolves expr against doc, then falls back to a top-level
// "text" key, then to the first non-empty top-level string value.
// Returns "" when nothing matches.
func Text(doc []byte, expr string) string {
	var root interface{}
	if err := json.Unmarshal(doc, &root); err != nil {
		return ""
	}
	if expr != "" {
		if p, err := Compile(expr); err == nil {
			if v, ok := p.resolve(root); ok {
				return v
			}
		}
	}
	m, ok := root.(map[string]interface{})
	if !ok {
		return ""
	}
	if v, exists := m["text"]; exists {
		if s, ok := stringify(v); ok {
			return s
		}
	}
	for _, v := range m {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringify(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10), true
		}
		return fmt.Sprintf("%v", x), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

// parseStep splits a single token like "foo[0][1]", "[2]" or "bar"
// into its key and index list.
func parseStep(token string) (step, error) {
	if token == "" {
		return step{}, fmt.Errorf("empty segment")
	}
	br := strings.Index(token, "[")
	if br == -1 {
		return step{key: token}, nil
	}
	st := step{key: token[:br]}
	rest := token[br:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return step{}, fmt.Errorf("bad index syntax in %q", token)
		}
		end := strings.Index(rest, "]")
		if end == -1 {
			return step{}, fmt.Errorf("missing ] in %q", token)
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return step{}, fmt.Errorf("bad index in %q", token)
		}
		st.indexes = append(st.indexes, n)
		rest = rest[end+1:]
	}
	return st, nil
}
