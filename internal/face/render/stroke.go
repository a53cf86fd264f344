package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Coverage under this value is dropped when anti-aliasing is off.
const aliasThreshold = 0x60

// strokeLine draws a segment of the given width with square ends extended by
// half the width, which reads as a rounded cap at watch-face sizes.
func strokeLine(dst *image.RGBA, x0, y0, x1, y1, width float64, c color.Color, antiAlias bool) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 || width <= 0 {
		return
	}

	half := width / 2
	ux, uy := dx/length, dy/length
	nx, ny := -uy*half, ux*half
	ex, ey := ux*half, uy*half

	bounds := dst.Bounds()
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)

	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	r.MoveTo(float32(x0-ex+nx-ox), float32(y0-ey+ny-oy))
	r.LineTo(float32(x1+ex+nx-ox), float32(y1+ey+ny-oy))
	r.LineTo(float32(x1+ex-nx-ox), float32(y1+ey-ny-oy))
	r.LineTo(float32(x0-ex-nx-ox), float32(y0-ey-ny-oy))
	r.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	if !antiAlias {
		for i, a := range mask.Pix {
			if a >= aliasThreshold {
				mask.Pix[i] = 0xff
			} else {
				mask.Pix[i] = 0
			}
		}
	}

	draw.DrawMask(dst, bounds, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}
