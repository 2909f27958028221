package canvas

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"strings"
)

const (
	MinBrushWidth = 1
	MaxBrushWidth = 24

	DefaultBrushColor = "#1f2937"
	DefaultBrushWidth = 6
)

var ErrInvalidColor = errors.New("invalid color")

// Brush is the stroke configuration read at every segment paint.
type Brush struct {
	Color  string `json:"color"`
	Width  int    `json:"width"`
	Eraser bool   `json:"eraser"`
}

// DefaultBrush returns the brush a new board starts with.
func DefaultBrush() Brush {
	return Brush{Color: DefaultBrushColor, Width: DefaultBrushWidth}
}

// Mode is the blend rule the brush paints with.
func (b Brush) Mode() BlendMode {
	if b.Eraser {
		return BlendErase
	}
	return BlendNormal
}

// ClampWidth limits a brush width to the supported range.
func ClampWidth(width int) int {
	if width < MinBrushWidth {
		return MinBrushWidth
	}
	if width > MaxBrushWidth {
		return MaxBrushWidth
	}
	return width
}

// ParseHex parses "#rgb" or "#rrggbb" into an opaque color.
func ParseHex(s string) (color.NRGBA, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) == 3 {
		raw = string([]byte{raw[0], raw[0], raw[1], raw[1], raw[2], raw[2]})
	}
	if len(raw) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xff}, nil
}

// NormalizeHex returns the canonical lowercase "#rrggbb" form.
func NormalizeHex(s string) (string, error) {
	c, err := ParseHex(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
}
