package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float that remembers whether it was explicitly supplied.
// Decoding never fails: null, non-numeric strings, booleans, objects and
// non-finite values all leave the Number unset.
type Number struct {
	Value float64
	Set   bool
}

// Num returns a set Number, or an unset one for NaN and infinities.
func Num(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Set: true}
}

// Or returns the value when set, def otherwise.
func (n Number) Or(def float64) float64 {
	if !n.Set {
		return def
	}
	return n.Value
}

// FirstSet returns the first set Number, or an unset one.
func FirstSet(nums ...Number) Number {
	for _, n := range nums {
		if n.Set {
			return n
		}
	}
	return Number{}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		*n = Num(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			*n = Num(f)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Flag is true only when decoded from the JSON literal true.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = Flag(bytes.Equal(bytes.TrimSpace(data), []byte("true")))
	return nil
}

// ID is a trade identifier decoded from either a JSON string or number.
type ID string

// String returns the identifier with surrounding whitespace removed.
func (id ID) String() string {
	return strings.TrimSpace(string(id))
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ""
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case string:
		*id = ID(v)
	case float64:
		*id = ID(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return nil
}
