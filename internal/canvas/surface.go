package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
)

const (
	// GridStep is the spacing of the reference grid in CSS pixels.
	GridStep = 24
	// MinHeight is the smallest CSS height of a surface.
	MinHeight = 240
	// AspectRatio is the preferred height/width ratio of a surface.
	AspectRatio = 0.6

	// ExportFilename is the name of the downloaded drawing.
	ExportFilename = "drawing.png"

	// MaxPixelSide bounds either side of the backing buffer.
	MaxPixelSide = 8192
	// MaxPixels bounds the area of the backing buffer.
	MaxPixels = 16 << 20

	// reach bounds how far outside the surface a point may lie before it
	// is clamped; the rasterizer walks every scanline between endpoints.
	reach = 1 << 12
)

// ErrTooLarge is returned for a surface whose backing buffer would exceed
// MaxPixelSide or MaxPixels.
var ErrTooLarge = errors.New("surface too large")

var (
	BackgroundColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	// GridColor is rgba(15,23,42,0.06).
	GridColor = color.NRGBA{R: 15, G: 23, B: 42, A: 15}
)

// Surface is a raster canvas with a backing buffer scaled by the device
// pixel ratio. All drawing coordinates are CSS pixels.
type Surface struct {
	img  *image.RGBA
	cssW int
	cssH int
	dpr  float64
}

// NewSurface sizes a surface for a container of the given CSS width and
// paints the background and grid. The size is fixed for the life of the
// surface. Untrusted sizes should go through CheckSize first.
func NewSurface(containerWidth, dpr float64) *Surface {
	l := layout(containerWidth, dpr)
	s := &Surface{
		img:  image.NewRGBA(image.Rect(0, 0, int(l.pixW), int(l.pixH))),
		cssW: int(l.cssW),
		cssH: int(l.cssH),
		dpr:  l.dpr,
	}
	s.paintBackground()
	return s
}

type surfaceLayout struct {
	cssW, cssH float64
	pixW, pixH float64
	dpr        float64
}

func layout(containerWidth, dpr float64) surfaceLayout {
	if dpr <= 0 || math.IsNaN(dpr) {
		dpr = 1
	}
	if !(containerWidth >= 0) {
		containerWidth = 0
	}
	cssW := math.Ceil(containerWidth)
	cssH := math.Ceil(math.Max(MinHeight, containerWidth*AspectRatio))
	return surfaceLayout{
		cssW: cssW,
		cssH: cssH,
		pixW: math.Floor(cssW * dpr),
		pixH: math.Floor(cssH * dpr),
		dpr:  dpr,
	}
}

// CheckSize reports ErrTooLarge when a surface for the given container
// width and pixel ratio would need too big a backing buffer.
func CheckSize(containerWidth, dpr float64) error {
	l := layout(containerWidth, dpr)
	if l.pixW > MaxPixelSide || l.pixH > MaxPixelSide || l.pixW*l.pixH > MaxPixels {
		return fmt.Errorf("%w: %.0fx%.0f pixels", ErrTooLarge, l.pixW, l.pixH)
	}
	return nil
}

// CSSSize is the logical size of the surface.
func (s *Surface) CSSSize() (int, int) {
	return s.cssW, s.cssH
}

// PixelSize is the size of the backing buffer.
func (s *Surface) PixelSize() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Surface) DevicePixelRatio() float64 {
	return s.dpr
}

// Snapshot returns a copy of the backing buffer.
func (s *Surface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

func (s *Surface) paintBackground() {
	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(BackgroundColor), image.Point{}, xdraw.Src)

	w, h := float64(s.cssW), float64(s.cssH)
	// Vertical and horizontal lines are separate passes so crossings
	// receive the grid color twice.
	fillPath(s.img, s.dpr, cssBox{0, 0, w, h}, GridColor, BlendNormal, func(p *pen) {
		for x := GridStep; x < s.cssW; x += GridStep {
			p.rect(float64(x)-0.5, 0, float64(x)+0.5, h)
		}
	})
	fillPath(s.img, s.dpr, cssBox{0, 0, w, h}, GridColor, BlendNormal, func(p *pen) {
		for y := GridStep; y < s.cssH; y += GridStep {
			p.rect(0, float64(y)-0.5, w, float64(y)+0.5)
		}
	})
}

// Clear wipes the buffer and repaints the background and grid exactly as
// at initialization.
func (s *Surface) Clear() {
	xdraw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
	s.paintBackground()
}

// PaintSegment strokes a round-capped segment from a to b.
func (s *Surface) PaintSegment(a, b Point, width float64, c color.Color, mode BlendMode) {
	if width <= 0 {
		return
	}
	a, b = s.clamp(a), s.clamp(b)
	r := width / 2
	box := cssBox{
		x0: math.Min(a.X, b.X) - r,
		y0: math.Min(a.Y, b.Y) - r,
		x1: math.Max(a.X, b.X) + r,
		y1: math.Max(a.Y, b.Y) + r,
	}
	fillPath(s.img, s.dpr, box, c, mode, func(p *pen) {
		p.capsule(a, b, r)
	})
}

func (s *Surface) clamp(p Point) Point {
	clampAxis := func(v float64, size int) float64 {
		if math.IsNaN(v) {
			return 0
		}
		return math.Max(-reach, math.Min(float64(size)+reach, v))
	}
	return Point{X: clampAxis(p.X, s.cssW), Y: clampAxis(p.Y, s.cssH)}
}

// ExportPNG encodes the backing buffer as it currently is. A surface with
// no pixels exports as an empty file.
func (s *Surface) ExportPNG(w io.Writer) error {
	if s.img.Bounds().Empty() {
		return nil
	}
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
