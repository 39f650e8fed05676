package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The estimate form posts loosely typed values: numbers as strings, booleans
// as "true", and so on. The Flex types accept those shapes and fall back to
// "absent" instead of failing the whole body.

func decodeLoose(data []byte) interface{} {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// FlexString is text sent as a JSON string, number or boolean.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler. Objects, arrays and null decode as empty.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	switch v := decodeLoose(data).(type) {
	case string:
		*f = FlexString(v)
	case json.Number:
		*f = FlexString(v.String())
	case bool:
		*f = FlexString(strconv.FormatBool(v))
	default:
		*f = ""
	}
	return nil
}

// FlexBool is a boolean sent as a JSON bool or as the string "true".
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler. Anything else decodes as false.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	switch v := decodeLoose(data).(type) {
	case bool:
		*f = FlexBool(v)
	case string:
		*f = FlexBool(strings.EqualFold(v, "true"))
	default:
		*f = false
	}
	return nil
}

// FlexInt is an integer sent as a JSON number or a decimal string.
// Fractional numbers are truncated toward zero.
type FlexInt struct {
	Value int
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler. Values that are not integers,
// or do not fit in 32 bits, leave the field invalid.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}

	var n float64
	switch v := decodeLoose(data).(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			n = float64(i)
		} else if fl, err := v.Float64(); err == nil {
			n = math.Trunc(fl)
		} else {
			return nil
		}
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil
		}
		n = float64(i)
	default:
		return nil
	}

	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil
	}
	*f = FlexInt{Value: int(n), Valid: true}
	return nil
}

// Ptr returns the value, or nil when the field was absent or unusable.
func (f FlexInt) Ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}
