package canvas

import (
	"image"
	"image/color"
	"io"
	"sync"
)

// Board is the interactive drawing surface of a draw round: a Surface plus
// the brush and the state of the stroke in progress. It is safe for
// concurrent use; each method is one atomic transition.
type Board struct {
	mu      sync.Mutex
	surface *Surface
	brush   Brush
	ink     color.NRGBA
	enabled bool

	drawing bool
	last    Point
}

// NewBoard mounts a board sized to the container width.
func NewBoard(containerWidth, dpr float64) *Board {
	ink, _ := ParseHex(DefaultBrushColor)
	return &Board{
		surface: NewSurface(containerWidth, dpr),
		brush:   DefaultBrush(),
		ink:     ink,
		enabled: true,
	}
}

// Start begins a stroke at p. It is ignored while the board is disabled.
func (b *Board) Start(p Point) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.enabled {
		return false
	}
	b.drawing = true
	b.last = p
	return true
}

// Move paints a segment from the last point to p with the current brush.
// Without an active stroke it does nothing.
func (b *Board) Move(p Point) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.drawing {
		return false
	}
	b.surface.PaintSegment(b.last, p, float64(b.brush.Width), b.ink, b.brush.Mode())
	b.last = p
	return true
}

// End finishes the active stroke. It reports whether a stroke was active.
func (b *Board) End() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	was := b.drawing
	b.drawing = false
	return was
}

// HandlePointer applies a forwarded pointer event. It reports whether the
// event changed the stroke session or the raster.
func (b *Board) HandlePointer(ev PointerEvent) bool {
	switch ev.Type {
	case PointerDown:
		p, ok := Locate(ev)
		if !ok {
			return false
		}
		return b.Start(p)
	case PointerMove:
		p, ok := Locate(ev)
		if !ok {
			return false
		}
		return b.Move(p)
	case PointerUp, PointerLeave, PointerCancel:
		return b.End()
	default:
		return false
	}
}

func (b *Board) Drawing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drawing
}

func (b *Board) Brush() Brush {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.brush
}

// SetColor sets the brush color from a hex string.
func (b *Board) SetColor(hex string) error {
	ink, err := ParseHex(hex)
	if err != nil {
		return err
	}
	normalized, _ := NormalizeHex(hex)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.ink = ink
	b.brush.Color = normalized
	return nil
}

// SetWidth sets the brush width, clamped to the supported range, and
// returns the width in effect.
func (b *Board) SetWidth(width int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.brush.Width = ClampWidth(width)
	return b.brush.Width
}

// ToggleEraser flips eraser mode and returns the new state.
func (b *Board) ToggleEraser() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.brush.Eraser = !b.brush.Eraser
	return b.brush.Eraser
}

// SetEnabled gates new strokes. Disabling ends the stroke in progress.
func (b *Board) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
	if !enabled {
		b.drawing = false
	}
}

func (b *Board) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// Clear resets the raster to background and grid.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface.Clear()
}

// Reset returns the board to its mounted state: fresh raster, default
// brush, no stroke, enabled. The size is kept.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface.Clear()
	b.brush = DefaultBrush()
	b.ink, _ = ParseHex(DefaultBrushColor)
	b.enabled = true
	b.drawing = false
}

// ExportPNG writes the current raster as PNG.
func (b *Board) ExportPNG(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.ExportPNG(w)
}

// Snapshot returns a copy of the raster.
func (b *Board) Snapshot() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.Snapshot()
}

// Size returns the CSS and backing sizes of the raster.
func (b *Board) Size() (cssW, cssH, pxW, pxH int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cssW, cssH = b.surface.CSSSize()
	pxW, pxH = b.surface.PixelSize()
	return cssW, cssH, pxW, pxH
}

func (b *Board) DevicePixelRatio() float64 {
	return b.surface.DevicePixelRatio()
}
