package render

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/jypelle/sunface/internal/face/mode"
	"github.com/jypelle/sunface/internal/face/weather"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

const (
	DefaultWidth  = 320
	DefaultHeight = 320

	// Label offsets are laid out for a 320 pixel wide face and scaled.
	referenceWidth    = 320.0
	labelOffsetX      = 63.0
	labelOffsetY      = 9.0
	handStrokeDivisor = 40.0
)

var (
	backgroundColor     = color.RGBA{0x03, 0xa9, 0xf4, 0xff}
	handColor           = color.RGBA{0xff, 0xff, 0xff, 0xff}
	ambientHandColor    = color.RGBA{0xbd, 0xbd, 0xbd, 0xff}
	secondHandColor     = color.RGBA{0xff, 0x57, 0x22, 0xff}
	labelColor          = color.RGBA{0xff, 0xff, 0xff, 0xff}
	ambientLabelColor   = color.RGBA{0xbd, 0xbd, 0xbd, 0xff}
	ambientFillColor    = color.RGBA{0x00, 0x00, 0x00, 0xff}
	lowBitForegroundCol = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Assets provides the bitmaps of the face at their native size.
type Assets interface {
	Background(round bool) image.Image
	AmbientBackground() image.Image
	Icon(icon weather.Icon) image.Image
}

type Geometry struct {
	Width  int
	Height int
	Round  bool
}

// Pipeline draws frames. Its only state is the surface geometry and the
// bitmaps scaled for it, rebuilt when the geometry or display properties change.
type Pipeline struct {
	assets     Assets
	geometry   Geometry
	properties mode.Properties

	background        image.Image
	ambientBackground image.Image
	icons             map[weather.Icon]image.Image

	rescaleCount int
}

func NewPipeline(assets Assets) *Pipeline {
	p := &Pipeline{
		assets:   assets,
		geometry: Geometry{Width: DefaultWidth, Height: DefaultHeight},
	}
	p.rescale()
	return p
}

func (p *Pipeline) Geometry() Geometry {
	return p.geometry
}

func (p *Pipeline) SurfaceChanged(width, height int) {
	if width <= 0 || height <= 0 {
		logrus.Warnf("Ignoring surface size %dx%d", width, height)
		return
	}
	if width == p.geometry.Width && height == p.geometry.Height {
		return
	}
	p.geometry.Width = width
	p.geometry.Height = height
	p.rescale()
}

func (p *Pipeline) ShapeChanged(round bool) {
	if round == p.geometry.Round {
		return
	}
	p.geometry.Round = round
	p.rescale()
}

func (p *Pipeline) PropertiesChanged(properties mode.Properties) {
	if properties == p.properties {
		return
	}
	p.properties = properties
	p.rescale()
}

// RescaleCount tells how many times the bitmap cache was rebuilt.
func (p *Pipeline) RescaleCount() int {
	return p.rescaleCount
}

func (p *Pipeline) scale() float64 {
	return float64(p.geometry.Width) / referenceWidth
}

func (p *Pipeline) rescale() {
	p.rescaleCount++
	logrus.Debugf("Scale face bitmaps for %dx%d (round %t)", p.geometry.Width, p.geometry.Height, p.geometry.Round)

	p.background = scaleToWidth(p.assets.Background(p.geometry.Round), p.geometry.Width)
	if !p.properties.LowBitColor && !p.properties.BurnInProtection {
		p.ambientBackground = scaleToWidth(p.assets.AmbientBackground(), p.geometry.Width)
	} else {
		p.ambientBackground = nil
	}
	p.icons = make(map[weather.Icon]image.Image)
}

func (p *Pipeline) icon(icon weather.Icon) image.Image {
	if img, ok := p.icons[icon]; ok {
		return img
	}
	src := p.assets.Icon(icon)
	var img image.Image
	if src != nil {
		width := int(math.Round(float64(src.Bounds().Dx()) * p.scale()))
		img = scaleToWidth(src, width)
	}
	p.icons[icon] = img
	return img
}

func scaleToWidth(src image.Image, width int) image.Image {
	if src == nil || width <= 0 || src.Bounds().Dx() == 0 {
		return nil
	}
	if src.Bounds().Dx() == width {
		return src
	}
	scale := float64(width) / float64(src.Bounds().Dx())
	height := int(math.Round(float64(src.Bounds().Dy()) * scale))
	if height <= 0 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Render allocates a frame of the surface size and draws it.
func (p *Pipeline) Render(now time.Time, policy mode.Policy, snapshot weather.Snapshot) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.geometry.Width, p.geometry.Height))
	p.Draw(img, now, policy, snapshot)
	return img
}

func (p *Pipeline) Draw(dst *image.RGBA, now time.Time, policy mode.Policy, snapshot weather.Snapshot) {
	ambient := policy.Mode == mode.AMBIENT_MODE
	bounds := dst.Bounds()

	p.drawBackground(dst, ambient, policy)

	if policy.ShowWeather {
		p.drawWeather(dst, ambient, policy, snapshot)
	}

	cx := float64(bounds.Min.X) + float64(bounds.Dx())/2
	cy := float64(bounds.Min.Y) + float64(bounds.Dy())/2
	radius := math.Min(float64(bounds.Dx()), float64(bounds.Dy())) / 2

	stroke := math.Max(1, radius/handStrokeDivisor)
	secondStroke := math.Max(1, stroke/2)
	col := handColor
	if ambient {
		col = ambientHandColor
		if policy.LowBitColor {
			col = lowBitForegroundCol
			stroke = 1
		}
	}

	angles := AnglesAt(now)
	if policy.ShowSeconds {
		s := handSegment(cx, cy, radius, angles.Second, secondLength)
		strokeLine(dst, s.x0, s.y0, s.x1, s.y1, secondStroke, secondHandColor, policy.AntiAlias)
	}
	m := handSegment(cx, cy, radius, angles.Minute, minuteLength)
	strokeLine(dst, m.x0, m.y0, m.x1, m.y1, stroke, col, policy.AntiAlias)
	h := handSegment(cx, cy, radius, angles.Hour, hourLength)
	strokeLine(dst, h.x0, h.y0, h.x1, h.y1, stroke, col, policy.AntiAlias)
}

func (p *Pipeline) drawBackground(dst *image.RGBA, ambient bool, policy mode.Policy) {
	bounds := dst.Bounds()
	if ambient {
		draw.Draw(dst, bounds, image.NewUniform(ambientFillColor), image.Point{}, draw.Src)
		if policy.AmbientBackground && p.ambientBackground != nil {
			draw.Draw(dst, p.ambientBackground.Bounds().Add(bounds.Min), p.ambientBackground, p.ambientBackground.Bounds().Min, draw.Over)
		}
		return
	}

	draw.Draw(dst, bounds, image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	if p.background != nil {
		draw.Draw(dst, p.background.Bounds().Add(bounds.Min), p.background, p.background.Bounds().Min, draw.Over)
	}
}

func (p *Pipeline) drawWeather(dst *image.RGBA, ambient bool, policy mode.Policy, snapshot weather.Snapshot) {
	bounds := dst.Bounds()
	cx := bounds.Min.X + bounds.Dx()/2
	cy := bounds.Min.Y + bounds.Dy()/2
	scale := float64(bounds.Dx()) / referenceWidth

	col := labelColor
	if ambient {
		col = ambientLabelColor
		if policy.LowBitColor {
			col = lowBitForegroundCol
		}
	}

	labelY := cy + int(math.Round(labelOffsetY*scale))
	offsetX := int(math.Round(labelOffsetX * scale))
	AddLabel(dst, cx-offsetX-LabelWidth(snapshot.Low)/2, labelY, snapshot.Low, col)
	AddLabel(dst, cx+offsetX-LabelWidth(snapshot.High)/2, labelY, snapshot.High, col)

	if policy.ShowWeatherIcon {
		icon := p.icon(weather.IconFor(snapshot.IconId))
		if icon != nil {
			ib := icon.Bounds()
			at := image.Pt(cx-ib.Dx()/2, cy-ib.Dy()/2)
			draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(ib.Size())}, icon, ib.Min, draw.Over)
		}
	}
}
