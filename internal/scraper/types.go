package scraper

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text decodes any JSON scalar into a string. Numbers keep their literal
// form, null and composite values decode to "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*t = Text(n.String())
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*t = Text(strconv.FormatBool(v))
	}
	return nil
}

// String returns the trimmed text.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Number decodes a JSON number or numeric string. Anything else is zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = Number(v)
		}
	}
	return nil
}

// Flag decodes a loose JSON truth value. true, "true" and non-zero numbers or
// numeric strings are true. Anything else is false.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = false
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*f = Flag(v)
		return nil
	}
	var n Number
	_ = n.UnmarshalJSON(b)
	if n != 0 {
		*f = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = Flag(strings.EqualFold(strings.TrimSpace(s), "true"))
	}
	return nil
}

// Named decodes either a bare string or an object with a "name" field.
type Named struct {
	Name string
}

func (n *Named) UnmarshalJSON(b []byte) error {
	n.Name = ""
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		n.Name = s
		return nil
	}
	var obj struct {
		Name Text `json:"name"`
	}
	if isObject(b) && json.Unmarshal(b, &obj) == nil {
		n.Name = string(obj.Name)
	}
	return nil
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

// decodeEach decodes every raw item into T, skipping items that do not fit.
func decodeEach[T any](items []json.RawMessage) ([]T, int) {
	out := make([]T, 0, len(items))
	skipped := 0
	for _, item := range items {
		if !isObject(item) {
			skipped++
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}
