package canvas

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// BlendMode is the compositing rule of a paint operation.
type BlendMode int

const (
	// BlendNormal paints source over destination.
	BlendNormal BlendMode = iota
	// BlendErase removes destination coverage where the source paints
	// (destination-out); the source color is ignored.
	BlendErase
)

func (m BlendMode) String() string {
	if m == BlendErase {
		return "erase"
	}
	return "normal"
}

// kappa places cubic control points so a quarter circle is approximated
// within 0.03% of the radius.
const kappa = 0.5522847498307936

// pen translates CSS-pixel path commands into rasterizer space: scaled by
// the device pixel ratio and shifted to the origin of the dirty rectangle.
type pen struct {
	z      *vector.Rasterizer
	scale  float64
	ox, oy float64
}

func (p *pen) moveTo(x, y float64) {
	p.z.MoveTo(p.px(x), p.py(y))
}

func (p *pen) lineTo(x, y float64) {
	p.z.LineTo(p.px(x), p.py(y))
}

func (p *pen) cubeTo(x1, y1, x2, y2, x, y float64) {
	p.z.CubeTo(p.px(x1), p.py(y1), p.px(x2), p.py(y2), p.px(x), p.py(y))
}

func (p *pen) closePath() {
	p.z.ClosePath()
}

func (p *pen) px(x float64) float32 { return float32(x*p.scale - p.ox) }
func (p *pen) py(y float64) float32 { return float32(y*p.scale - p.oy) }

// arc continues the path around c with radius r, starting at angle start and
// sweeping quarters of a circle with decreasing angle. The pen must already
// sit on the circle at start.
func (p *pen) arc(c Point, r, start float64, quarters int) {
	for i := 0; i < quarters; i++ {
		a0 := start - float64(i)*math.Pi/2
		a1 := a0 - math.Pi/2
		x0, y0 := c.X+r*math.Cos(a0), c.Y+r*math.Sin(a0)
		x3, y3 := c.X+r*math.Cos(a1), c.Y+r*math.Sin(a1)
		p.cubeTo(
			x0+kappa*r*math.Sin(a0), y0-kappa*r*math.Cos(a0),
			x3-kappa*r*math.Sin(a1), y3+kappa*r*math.Cos(a1),
			x3, y3,
		)
	}
}

// capsule traces a line segment from a to b of half-width r with round caps
// as one closed contour. A degenerate segment becomes a dot.
func (p *pen) capsule(a, b Point, r float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		p.moveTo(a.X+r, a.Y)
		p.arc(a, r, 0, 4)
		p.closePath()
		return
	}
	phi := math.Atan2(dy, dx)
	left := phi + math.Pi/2
	right := phi - math.Pi/2
	p.moveTo(a.X+r*math.Cos(left), a.Y+r*math.Sin(left))
	p.lineTo(b.X+r*math.Cos(left), b.Y+r*math.Sin(left))
	p.arc(b, r, left, 2)
	p.lineTo(a.X+r*math.Cos(right), a.Y+r*math.Sin(right))
	p.arc(a, r, right, 2)
	p.closePath()
}

func (p *pen) rect(x0, y0, x1, y1 float64) {
	p.moveTo(x0, y0)
	p.lineTo(x1, y0)
	p.lineTo(x1, y1)
	p.lineTo(x0, y1)
	p.closePath()
}

// cssBox is an axis-aligned box in CSS pixels.
type cssBox struct {
	x0, y0, x1, y1 float64
}

// pixels converts the box to backing pixels, padded by one pixel for
// anti-aliasing.
func (b cssBox) pixels(scale float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(b.x0*scale))-1,
		int(math.Floor(b.y0*scale))-1,
		int(math.Ceil(b.x1*scale))+1,
		int(math.Ceil(b.y1*scale))+1,
	)
}

// fillPath rasterizes the path traced by trace into a coverage mask limited
// to box and composites src into dst under mode.
func fillPath(dst *image.RGBA, scale float64, box cssBox, src color.Color, mode BlendMode, trace func(p *pen)) {
	r := box.pixels(scale).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	trace(&pen{z: z, scale: scale, ox: float64(r.Min.X), oy: float64(r.Min.Y)})

	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	z.DrawOp = xdraw.Src
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	switch mode {
	case BlendErase:
		eraseMask(dst, r, mask)
	default:
		xdraw.DrawMask(dst, r, image.NewUniform(src), image.Point{}, mask, image.Point{}, xdraw.Over)
	}
}

// eraseMask scales every premultiplied channel of dst by 1-coverage, which
// is destination-out compositing with an opaque source.
func eraseMask(dst *image.RGBA, r image.Rectangle, mask *image.Alpha) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := uint32(mask.AlphaAt(x-r.Min.X, y-r.Min.Y).A)
			if m == 0 {
				continue
			}
			keep := 0xff - m
			i := dst.PixOffset(x, y)
			px := dst.Pix[i : i+4 : i+4]
			for k := range px {
				px[k] = uint8((uint32(px[k])*keep + 0x7f) / 0xff)
			}
		}
	}
}
