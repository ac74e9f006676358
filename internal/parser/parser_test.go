package parser

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmeow/SpongeCommon/pkg/api"
)

func TestClean(t *testing.T) {
	assert.Equal(t, `a"b`, Clean(` "a""b" `))
	assert.Equal(t, "plain", Clean("plain"))
}

func TestParseUUID(t *testing.T) {
	id := uuid.New()

	got, err := ParseUUID(`"` + id.String() + `"`)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUID("not-a-uuid")
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    api.Color
		wantErr bool
	}{
		{"hex", "#FF8000", api.Color{R: 255, G: 128, B: 0}, false},
		{"short hex", "#fff", api.Color{R: 255, G: 255, B: 255}, false},
		{"quoted hex", `"#102030"`, api.Color{R: 16, G: 32, B: 48}, false},
		{"triple", "1,2,3", api.Color{R: 1, G: 2, B: 3}, false},
		{"triple with spaces", " 10, 20 ,30 ", api.Color{R: 10, G: 20, B: 30}, false},
		{"float triple", "10.0,20,30.00", api.Color{R: 10, G: 20, B: 30}, false},
		{"clamped", "300,-5,128", api.Color{R: 255, G: 0, B: 128}, false},
		{"bad hex", "#zzzzzz", api.Color{}, true},
		{"two parts", "1,2", api.Color{}, true},
		{"fraction truncates", "1.5,2.99,-0.5", api.Color{R: 1, G: 2, B: 0}, false},
		{"huge clamps", "1e300,12.5,-1e300", api.Color{R: 255, G: 12, B: 0}, false},
		{"nan", "NaN,1,1", api.Color{}, true},
		{"inf", "1,Inf,1", api.Color{}, true},
		{"word", "red", api.Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount("")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = ParseCount("16.00")
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	_, err = ParseCount("0")
	assert.Error(t, err)
	_, err = ParseCount("65")
	assert.Error(t, err)
	_, err = ParseCount("x")
	assert.Error(t, err)
}

func TestParseTag(t *testing.T) {
	c, err := ParseTag("")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = ParseTag(`{"display":{"color":255}}`)
	require.NoError(t, err)
	display, ok := c.Compound("display")
	require.True(t, ok)
	assert.Equal(t, int32(255), display.Int("color"))

	_, err = ParseTag("{")
	assert.Error(t, err)
}
