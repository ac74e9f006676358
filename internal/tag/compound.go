// Package tag implements the hierarchical item metadata tree (a named-tag
// compound) and its binary and JSON codecs.
package tag

import (
	"encoding/json"
	"math"
	"sort"
)

// Compound is one level of the tag tree. Values are the NBT scalar types
// (uint8, int16, int32, int64, float32, float64, string), lists ([]any),
// byte/int arrays, or nested compounds.
type Compound map[string]any

// New returns an empty compound.
func New() Compound {
	return Compound{}
}

// HasKey reports whether key is present, whatever its type.
func (c Compound) HasKey(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c[key]
	return ok
}

// Int returns the 32-bit integer stored at key, or 0 when the key is absent or
// holds a non-numeric value.
func (c Compound) Int(key string) int32 {
	v, _ := c.IntOK(key)
	return v
}

// IntOK is Int with an explicit presence result.
func (c Compound) IntOK(key string) (int32, bool) {
	if c == nil {
		return 0, false
	}
	return toInt32(c[key])
}

// SetInt stores v at key.
func (c Compound) SetInt(key string, v int32) {
	c[key] = v
}

// GetString returns the string stored at key.
func (c Compound) GetString(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	s, ok := c[key].(string)
	return s, ok
}

// SetString stores v at key.
func (c Compound) SetString(key, v string) {
	c[key] = v
}

// Compound returns the nested compound stored at key.
func (c Compound) Compound(key string) (Compound, bool) {
	if c == nil {
		return nil, false
	}
	switch v := c[key].(type) {
	case Compound:
		return v, true
	case map[string]any:
		// Promote in place so later writes land in the tree.
		nc := Compound(v)
		c[key] = nc
		return nc, true
	default:
		return nil, false
	}
}

// GetOrCreateCompound returns the nested compound at key, creating (or
// replacing a non-compound value with) an empty one when needed.
func (c Compound) GetOrCreateCompound(key string) Compound {
	if nc, ok := c.Compound(key); ok {
		return nc
	}
	nc := Compound{}
	c[key] = nc
	return nc
}

// Remove deletes key.
func (c Compound) Remove(key string) {
	delete(c, key)
}

// Keys returns the keys in sorted order.
func (c Compound) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone deep-copies the compound, including nested compounds and lists.
func (c Compound) Clone() Compound {
	if c == nil {
		return nil
	}
	out := make(Compound, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Compound:
		return t.Clone()
	case map[string]any:
		return Compound(t).Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []int32:
		return append([]int32(nil), t...)
	case []int64:
		return append([]int64(nil), t...)
	case []byte:
		return append([]byte(nil), t...)
	default:
		return v
	}
}

func toInt32(v any) (int32, bool) {
	switch n := v.(type) {
	case int32:
		return n, true
	case int:
		return int32(n), true
	case int16:
		return int32(n), true
	case uint8:
		return int32(n), true
	case int64:
		return int32(n), true
	case float32:
		return int32(n), true
	case float64:
		return int32(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int32(i), true
		}
		if f, err := n.Float64(); err == nil && !math.IsNaN(f) {
			return int32(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}
