package tag

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Encoding selects the NBT byte layout used by Encode and Decode.
type Encoding string

const (
	// LittleEndian is the on-disk layout of world and player data.
	LittleEndian Encoding = "little"
	// BigEndian is the layout used by the original Java engine.
	BigEndian Encoding = "big"
	// Network is the varint-compressed network layout.
	Network Encoding = "network"
)

var (
	// ErrUnknownEncoding is returned for an Encoding value outside the known set.
	ErrUnknownEncoding = errors.New("unknown tag encoding")
	// ErrUnsupportedValue is returned for values with no NBT representation.
	ErrUnsupportedValue = errors.New("unsupported tag value")
)

func (e Encoding) nbt() (nbt.Encoding, error) {
	switch e {
	case LittleEndian, "":
		return nbt.LittleEndian, nil
	case BigEndian:
		return nbt.BigEndian, nil
	case Network:
		return nbt.NetworkLittleEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, string(e))
	}
}

// Encode serialises the compound as NBT.
func Encode(c Compound, enc Encoding) ([]byte, error) {
	e, err := enc.nbt()
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = Compound{}
	}
	m, err := toNBT(c, "")
	if err != nil {
		return nil, fmt.Errorf("encode tag: %w", err)
	}
	data, err := nbt.MarshalEncoding(m, e)
	if err != nil {
		return nil, fmt.Errorf("encode tag: %w", err)
	}
	return data, nil
}

// Decode parses NBT produced by Encode.
func Decode(data []byte, enc Encoding) (Compound, error) {
	e, err := enc.nbt()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := nbt.UnmarshalEncoding(data, &m, e); err != nil {
		return nil, fmt.Errorf("decode tag: %w", err)
	}
	return fromNBT(m), nil
}

// FromJSON parses a JSON object into a compound. Integral numbers become
// int32 (int64 when out of range), fractional numbers float64 and booleans
// the NBT byte 0/1. Numeric lists are widened to one element type. Nulls and
// lists mixing other kinds have no NBT form and are rejected.
func FromJSON(data []byte) (Compound, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse tag json: %w", err)
	}
	if m == nil {
		return Compound{}, nil
	}
	c, err := fromJSONMap(m, "")
	if err != nil {
		return nil, fmt.Errorf("parse tag json: %w", err)
	}
	return c, nil
}

func fromJSONMap(m map[string]any, path string) (Compound, error) {
	out := make(Compound, len(m))
	for k, v := range m {
		conv, err := fromJSONValue(v, join(path, k))
		if err != nil {
			return nil, err
		}
		out[k] = conv
	}
	return out, nil
}

func fromJSONValue(v any, path string) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: %s is null", ErrUnsupportedValue, path)
	case map[string]any:
		return fromJSONMap(t, path)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			conv, err := fromJSONValue(e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		widenNumbers(out)
		if err := checkList(out, path); err != nil {
			return nil, err
		}
		return out, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return int32(i), nil
			}
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedValue, path, err)
		}
		return f, nil
	case bool:
		if t {
			return uint8(1), nil
		}
		return uint8(0), nil
	case string:
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrUnsupportedValue, path, v)
	}
}

// widenNumbers converts a list of JSON numbers to a single type: float64 if
// any element is fractional, else int64 if any exceeds int32.
func widenNumbers(list []any) {
	hasFloat, hasLong := false, false
	for _, e := range list {
		switch e.(type) {
		case float64:
			hasFloat = true
		case int64:
			hasLong = true
		case int32:
		default:
			return
		}
	}
	for i, e := range list {
		switch n := e.(type) {
		case int32:
			if hasFloat {
				list[i] = float64(n)
			} else if hasLong {
				list[i] = int64(n)
			}
		case int64:
			if hasFloat {
				list[i] = float64(n)
			}
		}
	}
}

// checkList reports an error unless every element has the same Go type, as an
// NBT list carries a single element tag.
func checkList(list []any, path string) error {
	if len(list) == 0 {
		return nil
	}
	first := reflect.TypeOf(list[0])
	for i, e := range list[1:] {
		if reflect.TypeOf(e) != first {
			return fmt.Errorf("%w: %s mixes %s and %T at index %d", ErrUnsupportedValue, path, first, e, i+1)
		}
	}
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// toNBT converts the tree into types the NBT encoder accepts: plain maps for
// compounds and sized integers in place of int.
func toNBT(c Compound, path string) (map[string]any, error) {
	out := make(map[string]any, len(c))
	for k, v := range c {
		conv, err := toNBTValue(v, join(path, k))
		if err != nil {
			return nil, err
		}
		out[k] = conv
	}
	return out, nil
}

func toNBTValue(v any, path string) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: %s is nil", ErrUnsupportedValue, path)
	case Compound:
		return toNBT(t, path)
	case map[string]any:
		return toNBT(Compound(t), path)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			conv, err := toNBTValue(e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		if err := checkList(out, path); err != nil {
			return nil, err
		}
		return out, nil
	case int:
		if t >= math.MinInt32 && t <= math.MaxInt32 {
			return int32(t), nil
		}
		return int64(t), nil
	case bool:
		if t {
			return uint8(1), nil
		}
		return uint8(0), nil
	case uint8, int16, int32, int64, float32, float64, string,
		[]uint8, []int16, []int32, []int64, []float32, []float64, []string:
		return v, nil
	}

	// decoded byte, int and long arrays
	if rt := reflect.TypeOf(v); rt.Kind() == reflect.Array {
		switch rt.Elem().Kind() {
		case reflect.Uint8, reflect.Int32, reflect.Int64:
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has type %T", ErrUnsupportedValue, path, v)
}

func fromNBT(m map[string]any) Compound {
	out := make(Compound, len(m))
	for k, v := range m {
		out[k] = fromNBTValue(v)
	}
	return out
}

func fromNBTValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return fromNBT(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromNBTValue(e)
		}
		return out
	default:
		return v
	}
}
