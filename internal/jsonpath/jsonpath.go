// Package jsonpath pulls the transcript out of an ASR server's JSON reply.
//
// Paths are dot separated keys with optional array indexes, e.g.
// "results[0].alternatives[0].transcript".
package jsonpath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text decodes body and returns the value at path. When path is empty or
// does not resolve, a top-level "text" field is tried, then any non-empty
// top-level string. Undecodable bodies yield "".
func Text(body []byte, path string) string {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return ""
	}
	if path != "" {
		if v, ok := Lookup(root, path); ok {
			return v
		}
	}
	m, ok := root.(map[string]any)
	if !ok {
		return ""
	}
	if v, ok := scalar(m["text"]); ok {
		return v
	}
	for _, val := range m {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Lookup walks root along path and renders the scalar it ends on.
func Lookup(root any, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	cur := root
	for _, tok := range strings.Split(path, ".") {
		key, idxs, err := SplitToken(tok)
		if err != nil {
			return "", false
		}
		if key != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return "", false
			}
			if cur, ok = m[key]; !ok {
				return "", false
			}
		}
		for _, i := range idxs {
			arr, ok := cur.([]any)
			if !ok || i < 0 || i >= len(arr) {
				return "", false
			}
			cur = arr[i]
		}
	}
	return scalar(cur)
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

// SplitToken splits "key[0][1]" into its key and indexes. "[2]" has an empty key.
func SplitToken(tok string) (string, []int, error) {
	if tok == "" {
		return "", nil, fmt.Errorf("empty path element")
	}
	br := strings.IndexByte(tok, '[')
	if br < 0 {
		return tok, nil, nil
	}
	key, rest := tok[:br], tok[br:]
	var idxs []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("unexpected %q in %q", rest, tok)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, fmt.Errorf("missing ] in %q", tok)
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, fmt.Errorf("bad index %q in %q", rest[1:end], tok)
		}
		idxs = append(idxs, n)
		rest = rest[end+1:]
	}
	return key, idxs, nil
}
