package images

import (
	"image"
	"image/color"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/jypelle/sunface/internal/face/weather"
	"github.com/sirupsen/logrus"
)

const backgroundSize = 400

const (
	squareBackgroundFilename  = "bg_square.png"
	roundBackgroundFilename   = "bg_round.png"
	ambientBackgroundFilename = "bg_ambient.png"
)

var (
	dialColor        = color.RGBA{0x03, 0x9b, 0xe5, 0xff}
	markColor        = color.RGBA{0xb3, 0xe5, 0xfc, 0xff}
	ambientMarkColor = color.RGBA{0x42, 0x42, 0x42, 0xff}
)

// Assets serves the face bitmaps. Files found in the override folder replace
// the built-in ones.
type Assets struct {
	squareBackground  image.Image
	roundBackground   image.Image
	ambientBackground image.Image
	icons             map[weather.Icon]image.Image
}

func NewAssets(overrideDir string) *Assets {
	assets := &Assets{
		squareBackground:  dial(false),
		roundBackground:   dial(true),
		ambientBackground: ambientDial(),
		icons:             make(map[weather.Icon]image.Image),
	}
	for _, icon := range weather.Icons() {
		assets.icons[icon] = pixelArt(iconArts[icon])
	}

	if overrideDir != "" {
		assets.loadOverrides(overrideDir)
	}
	return assets
}

func (a *Assets) loadOverrides(dir string) {
	load := func(filename string, target *image.Image) {
		img, err := decodeFile(filepath.Join(dir, filename))
		if err != nil {
			if !os.IsNotExist(err) {
				logrus.Warnf("Can't load %s: %v", filename, err)
			}
			return
		}
		logrus.Infof("Using %s from %s", filename, dir)
		*target = img
	}

	load(squareBackgroundFilename, &a.squareBackground)
	load(roundBackgroundFilename, &a.roundBackground)
	load(ambientBackgroundFilename, &a.ambientBackground)
	for _, icon := range weather.Icons() {
		img := a.icons[icon]
		load("ic_"+icon.String()+".png", &img)
		a.icons[icon] = img
	}
}

func decodeFile(filename string) (image.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}

func (a *Assets) Background(round bool) image.Image {
	if round {
		return a.roundBackground
	}
	return a.squareBackground
}

func (a *Assets) AmbientBackground() image.Image {
	return a.ambientBackground
}

func (a *Assets) Icon(icon weather.Icon) image.Image {
	if img, ok := a.icons[icon]; ok {
		return img
	}
	return a.icons[weather.NONE_ICON]
}

// dial draws the interactive background: a plain dial with twelve hour marks.
func dial(round bool) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, backgroundSize, backgroundSize))
	center := float64(backgroundSize) / 2

	for y := 0; y < backgroundSize; y++ {
		for x := 0; x < backgroundSize; x++ {
			if round && math.Hypot(float64(x)+0.5-center, float64(y)+0.5-center) > center {
				continue
			}
			img.SetRGBA(x, y, dialColor)
		}
	}
	hourMarks(img, markColor, backgroundSize/40)
	return img
}

// ambientDial only has dim hour marks on a transparent background.
func ambientDial() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, backgroundSize, backgroundSize))
	hourMarks(img, ambientMarkColor, backgroundSize/80)
	return img
}

func hourMarks(img *image.RGBA, c color.RGBA, dotRadius int) {
	center := float64(backgroundSize) / 2
	distance := center * 0.92

	for hour := 0; hour < 12; hour++ {
		angle := float64(hour) / 12 * 2 * math.Pi
		mx := center + math.Sin(angle)*distance
		my := center - math.Cos(angle)*distance

		r := dotRadius
		if hour%3 == 0 {
			r = dotRadius * 2
		}
		for y := int(my) - r; y <= int(my)+r; y++ {
			for x := int(mx) - r; x <= int(mx)+r; x++ {
				if math.Hypot(float64(x)-mx, float64(y)-my) <= float64(r) {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}
}
