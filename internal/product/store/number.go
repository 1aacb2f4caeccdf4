package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNotANumber = errors.New("not a number")

// Number is a numeric input field that accepts a JSON number or a numeric string, e.g. 9.99 or "9.99".
// An absent or null value, false, and a numeric zero literal count as not provided.
// A string is always considered provided, even "0".
type Number struct {
	text   string
	quoted bool
}

// NumberOf returns a Number holding f.
func NumberOf(f float64) Number {
	return Number{text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NumberFromString returns a Number holding the raw string s.
func NumberFromString(s string) Number {
	return Number{text: s, quoted: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = Number{}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number{text: s, quoted: true}
	default:
		*n = Number{text: string(b)}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.quoted {
		if n.text == "" {
			return []byte("null"), nil
		}
		if _, err := strconv.ParseFloat(n.text, 64); err == nil {
			return []byte(n.text), nil
		}
	}
	return json.Marshal(n.text)
}

// Provided reports whether the value counts as present for a required field.
func (n Number) Provided() bool {
	if n.quoted {
		return n.text != ""
	}
	switch n.text {
	case "", "false":
		return false
	}
	f, err := strconv.ParseFloat(n.text, 64)
	return err != nil || f != 0
}

func (n Number) String() string {
	return n.text
}

// Float parses the value as a finite float.
func (n Number) Float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(n.text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotANumber
	}
	return f, nil
}

// Int parses the value and truncates it toward zero, so "12.7" yields 12.
func (n Number) Int() (int, error) {
	f, err := n.Float()
	if err != nil {
		return 0, err
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errNotANumber
	}
	return int(math.Trunc(f)), nil
}
