package id

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID references a record owned by the Xpense API ("" = not set).
type ID string

// Parse trims s and returns it as an ID. Blank input yields the unset ID.
// Embedded whitespace is rejected.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, " \t\r\n") {
		return "", fmt.Errorf("invalid id %q: contains whitespace", s)
	}
	return ID(s), nil
}

// IsSet reports whether the ID references a record.
func (i ID) IsSet() bool { return i != "" }

// String returns the raw id.
func (i ID) String() string { return string(i) }

// Ptr returns nil for an unset ID so payloads carry JSON null.
func (i ID) Ptr() *string {
	if !i.IsSet() {
		return nil
	}
	s := string(i)
	return &s
}

// UnmarshalJSON accepts numbers, strings and null.
// 12 -> "12", "12" -> "12", null -> "".
func (i *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding id %s: %w", data, err)
	}
	*i = ID(n.String())
	return nil
}

// MarshalJSON encodes the ID as a string, or null when unset.
func (i ID) MarshalJSON() ([]byte, error) {
	if !i.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(string(i))
}
