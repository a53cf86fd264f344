package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// AddLabel writes label with its baseline at y.
func AddLabel(img draw.Image, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: bitmapfont.Face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

func LabelWidth(label string) int {
	return font.MeasureString(bitmapfont.Face, label).Round()
}

// AddCenteredLabel writes label horizontally centered on img.
func AddCenteredLabel(img draw.Image, y int, label string, col color.Color) {
	bounds := img.Bounds()
	AddLabel(img, bounds.Min.X+(bounds.Dx()-LabelWidth(label))/2, y, label, col)
}
