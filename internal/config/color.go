package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"wordclock.ai/internal/wordframe"
)

const (
	PlateWidth  = wordframe.Width
	PlateHeight = wordframe.Height
)

// Color is a 24-bit 0xRRGGBB value.
type Color uint32

// DefaultWordColor is used whenever the configured color is missing or
// malformed.
const DefaultWordColor Color = 0x05CBFF

var ErrBadColor = errors.New("color must be 6 hex digits RRGGBB")

// ParseColor accepts "RRGGBB", optionally prefixed with '#' or "0x".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if s == "" || len(s) > 6 {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return Color(v), nil
}

// ColorOrDefault parses s and falls back to DefaultWordColor.
func ColorOrDefault(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		return DefaultWordColor
	}
	return c
}

// Hex formats c as "RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("%06X", uint32(c)&0xFFFFFF)
}

func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}
