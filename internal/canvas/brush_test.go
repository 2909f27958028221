package canvas

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{in: "#ff0000", want: color.NRGBA{R: 0xff, A: 0xff}},
		{in: "#1f2937", want: color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}},
		{in: "#ABC", want: color.NRGBA{R: 0xaa, G: 0xbb, B: 0xcc, A: 0xff}},
		{in: " 00ff00 ", want: color.NRGBA{G: 0xff, A: 0xff}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseHex_Invalid(t *testing.T) {
	for _, in := range []string{"", "#", "#12345", "#gggggg", "rgb(1,2,3)"} {
		_, err := ParseHex(in)
		assert.ErrorIs(t, err, ErrInvalidColor, in)
	}
}

func TestClampWidth(t *testing.T) {
	assert.Equal(t, 1, ClampWidth(-3))
	assert.Equal(t, 1, ClampWidth(1))
	assert.Equal(t, 12, ClampWidth(12))
	assert.Equal(t, 24, ClampWidth(24))
	assert.Equal(t, 24, ClampWidth(25))
}
