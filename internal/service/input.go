package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// IntInput is a loosely typed integer form field. Browsers send numbers as
// strings ("2022"), as JSON numbers, as "" for a cleared input, or not at
// all. Anything that does not start with an integer decodes to null, so
// the store never sees "" or NaN.
type IntInput struct {
	Value int
	Valid bool
}

func (n *IntInput) UnmarshalJSON(b []byte) error {
	*n = IntInput{}
	b = bytes.TrimSpace(b)

	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.Value, n.Valid = parseLeadingInt(s)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return nil
		}
		n.Value, n.Valid = parseLeadingInt(numberText(f))
	}
	// booleans, objects and arrays stay null
	return nil
}

// Ptr returns nil for null.
func (n IntInput) Ptr() *int {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// numberText formats f the way a browser prints a number: plain decimal
// notation from 1e-6 up to 1e21, exponent notation outside it. 1e5 reads
// as 100000, 1e21 as 1.
func numberText(f float64) string {
	if a := math.Abs(f); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseLeadingInt reads an optionally signed base-10 integer prefix,
// ignoring leading whitespace and any trailing text: "12.7" is 12, "  42cm"
// is 42, "0x1A" is 0. Values outside the 32-bit column range are rejected.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}

// TextInput accepts a JSON string or number and keeps its text form.
// Used for record ids and jersey numbers, which clients send either way.
type TextInput struct {
	Value   string
	Valid   bool
	numeric bool
}

func (t *TextInput) UnmarshalJSON(b []byte) error {
	*t = TextInput{}
	b = bytes.TrimSpace(b)

	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		if err := json.Unmarshal(b, &t.Value); err != nil {
			return err
		}
		t.Valid = true
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return err
		}
		t.Value, t.Valid, t.numeric = num.String(), true, true
	case bytes.Equal(b, []byte("false")):
		// same as null: a false id means "no id yet"
	case bytes.Equal(b, []byte("true")):
		t.Value, t.Valid = string(b), true
	default:
		return fmt.Errorf("service: expected string or number, got %s", b)
	}
	return nil
}

// Present reports whether the value is a usable identifier: not null or
// false, not empty and not a numeric zero.
func (t TextInput) Present() bool {
	if !t.Valid || t.Value == "" {
		return false
	}
	if t.numeric {
		if f, err := strconv.ParseFloat(t.Value, 64); err == nil && f == 0 {
			return false
		}
	}
	return true
}

// Ptr returns nil for null. An empty string stays an empty string.
func (t TextInput) Ptr() *string {
	if !t.Valid {
		return nil
	}
	v := t.Value
	return &v
}

// ids collects the present identifiers from a deletion list.
func ids(list []TextInput) []string {
	out := make([]string, 0, len(list))
	for _, id := range list {
		if id.Present() {
			out = append(out, id.Value)
		}
	}
	return out
}
