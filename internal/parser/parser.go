// Package parser turns raw command arguments into typed values.
package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/itsmeow/SpongeCommon/internal/tag"
	"github.com/itsmeow/SpongeCommon/pkg/api"
)

// Clean strips the host's quoting from an argument: surrounding quotes are
// removed and doubled quotes ("") collapse to one.
func Clean(arg string) string {
	s := strings.Trim(strings.TrimSpace(arg), `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}

// ParseUUID parses a stack identifier.
func ParseUUID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(Clean(arg))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid stack id %q: %w", arg, err)
	}
	return id, nil
}

// ParseColor accepts "#rrggbb", "#rgb" or "r,g,b". Components of the
// triple form may be fractional; they are truncated and clamped to [0,255].
func ParseColor(arg string) (api.Color, error) {
	s := Clean(arg)
	if strings.HasPrefix(s, "#") {
		return api.ColorFromHex(s)
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return api.Color{}, fmt.Errorf("invalid colour %q: want #rrggbb or r,g,b", arg)
	}
	var rgb [3]int
	for i, p := range parts {
		v, err := parseComponent(strings.TrimSpace(p))
		if err != nil {
			return api.Color{}, fmt.Errorf("invalid colour component %q: %w", p, err)
		}
		rgb[i] = v
	}
	return api.NewColor(rgb[0], rgb[1], rgb[2]), nil
}

// ParseCount parses a stack size. Empty means 1.
func ParseCount(arg string) (int, error) {
	s := Clean(arg)
	if s == "" {
		return 1, nil
	}
	v, err := parseIntFromFloat(s)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", arg, err)
	}
	if v < 1 || v > 64 {
		return 0, fmt.Errorf("count %d out of range [1,64]", v)
	}
	return int(v), nil
}

// ParseTag parses a JSON object into a tag tree. Empty means no tag.
func ParseTag(arg string) (tag.Compound, error) {
	s := Clean(arg)
	if s == "" {
		return nil, nil
	}
	return tag.FromJSON([]byte(s))
}

// parseComponent parses a colour channel, truncating fractions toward zero.
func parseComponent(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	// pre-clamp so the int conversion cannot overflow
	return int(math.Trunc(math.Max(-1, math.Min(f, 256)))), nil
}

// parseIntFromFloat parses a string that may be an integer ("32") or a whole
// float ("32.00").
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int64(f), nil
}
