package tag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompound_HasKey(t *testing.T) {
	var nilTag Compound
	assert.False(t, nilTag.HasKey("display"))

	c := New()
	assert.False(t, c.HasKey("display"))
	c.GetOrCreateCompound("display")
	assert.True(t, c.HasKey("display"))
}

func TestCompound_Int(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int32
		wantOK bool
	}{
		{"int32", int32(0xA06540), 0xA06540, true},
		{"int", 42, 42, true},
		{"int16", int16(-3), -3, true},
		{"byte", uint8(7), 7, true},
		{"int64", int64(99), 99, true},
		{"float64", float64(12), 12, true},
		{"json number", json.Number("255"), 255, true},
		{"string", "red", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compound{"color": tt.value}
			got, ok := c.IntOK("color")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, c.Int("color"))
		})
	}

	assert.Equal(t, int32(0), New().Int("missing"))
}

func TestCompound_CompoundPromotesPlainMaps(t *testing.T) {
	c := Compound{"display": map[string]any{"color": int32(1)}}

	display, ok := c.Compound("display")
	require.True(t, ok)
	display.SetInt("color", 2)

	again, ok := c.Compound("display")
	require.True(t, ok)
	assert.Equal(t, int32(2), again.Int("color"))
}

func TestCompound_GetOrCreateCompoundReplacesScalars(t *testing.T) {
	c := Compound{"display": "not a compound"}
	display := c.GetOrCreateCompound("display")
	display.SetInt("color", 5)

	got, ok := c.Compound("display")
	require.True(t, ok)
	assert.Equal(t, int32(5), got.Int("color"))
}

func TestCompound_Clone(t *testing.T) {
	c := Compound{
		"display": Compound{"color": int32(1)},
		"lore":    []any{"a", Compound{"b": int32(2)}},
	}
	cp := c.Clone()
	cp.GetOrCreateCompound("display").SetInt("color", 9)

	display, _ := c.Compound("display")
	assert.Equal(t, int32(1), display.Int("color"))
	assert.Nil(t, Compound(nil).Clone())
}

func TestCompound_Keys(t *testing.T) {
	c := Compound{"b": int32(1), "a": int32(2), "c": int32(3)}
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
}

func TestCompound_GetString(t *testing.T) {
	c := New()
	c.SetString("Name", "Boots")
	s, ok := c.GetString("Name")
	assert.True(t, ok)
	assert.Equal(t, "Boots", s)

	_, ok = c.GetString("missing")
	assert.False(t, ok)
}
