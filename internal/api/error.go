package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Error is a non-2xx response from the Xpense API.
type Error struct {
	Status  int
	Message string // flattened, human readable server payload
}

func (e *Error) Error() string {
	return fmt.Sprintf("xpense API error (status %d): %s", e.Status, e.Message)
}

// generalKeys carry messages that are not tied to a field.
var generalKeys = map[string]bool{
	"detail":           true,
	"message":          true,
	"error":            true,
	"non_field_errors": true,
}

// FlattenMessage turns an error payload into one line.
//
//	{"detail": "Not found."}                         -> "Not found."
//	{"amount": ["Must be positive."]}                -> "amount: Must be positive."
//	{"accounts": [{"splits": [{"loan": ["Bad."]}]}]} -> "accounts.0.splits.0.loan: Bad."
//
// Keys are visited in sorted order and messages joined with "; ". Bodies that
// are not JSON are returned trimmed.
func FlattenMessage(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return strings.TrimSpace(string(body))
	}
	var msgs []string
	flatten("", v, &msgs)
	return strings.Join(msgs, "; ")
}

func flatten(path string, v any, msgs *[]string) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(join(path, k), t[k], msgs)
		}
	case []any:
		var texts []string
		for i, item := range t {
			if s, ok := scalar(item); ok {
				texts = append(texts, s)
				continue
			}
			flatten(join(path, strconv.Itoa(i)), item, msgs)
		}
		if len(texts) > 0 {
			emit(path, strings.Join(texts, " "), msgs)
		}
	case nil:
	default:
		if s, ok := scalar(t); ok {
			emit(path, s, msgs)
		}
	}
}

func emit(path, text string, msgs *[]string) {
	if text == "" {
		return
	}
	if path == "" {
		*msgs = append(*msgs, text)
		return
	}
	*msgs = append(*msgs, path+": "+text)
}

// join extends a dotted path. General keys do not add a segment.
func join(path, key string) string {
	if generalKeys[key] {
		return path
	}
	if path == "" {
		return key
	}
	return path + "." + key
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}
