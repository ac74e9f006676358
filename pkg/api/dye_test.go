package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDyeColors(t *testing.T) {
	dyes := DyeColors()
	assert.Len(t, dyes, 16)
	assert.Equal(t, White, dyes[0])
	assert.Equal(t, Black, dyes[15])
}

func TestDyeColor_Names(t *testing.T) {
	assert.Equal(t, "light_blue", LightBlue.Name())
	assert.Equal(t, "minecraft:silver", Silver.ID())
	assert.Equal(t, "unknown", DyeColor(16).Name())
	assert.False(t, DyeColor(16).Valid())
	assert.Equal(t, "red", Red.String())
}

func TestDyeColorByName(t *testing.T) {
	tests := []struct {
		in   string
		want DyeColor
		ok   bool
	}{
		{"white", White, true},
		{"LIGHT_BLUE", LightBlue, true},
		{"minecraft:black", Black, true},
		{" cyan ", Cyan, true},
		{"teal", White, false},
	}
	for _, tt := range tests {
		got, ok := DyeColorByName(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
