package srv

import (
	"image"
	"image/color"
	"time"

	"github.com/jypelle/sunface/internal/face/render"
	"github.com/jypelle/sunface/internal/face/weather"
	"github.com/jypelle/sunface/internal/version"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

func (s *ServerApp) refreshDisplay() {
	s.dirty = false

	var imgToDisplay image.Image

	switch s.currentScreen {
	case INTRO_SCREEN:
		imgToDisplay = s.messageScreen(version.AppName+" "+version.AppVersion.String(), true)
	case FACE_SCREEN:
		start := time.Now()
		imgToDisplay = s.engine.Draw(start)
		logrus.Debugf("Face drawn in %v", time.Since(start))
	case END_SCREEN:
		imgToDisplay = s.messageScreen("See you!", false)
	}
	s.displayDevice.ShowImage(imgToDisplay)
}

func (s *ServerApp) messageScreen(message string, withSun bool) image.Image {
	surface := s.displayDevice.Surface()
	img := image.NewRGBA(image.Rect(0, 0, surface.Width, surface.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	labelY := surface.Height/2 + 4
	if withSun {
		sun := s.assets.Icon(weather.CLEAR_ICON)
		sb := sun.Bounds()
		at := image.Pt((surface.Width-sb.Dx())/2, surface.Height/2-sb.Dy())
		draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(sb.Size())}, sun, sb.Min, draw.Over)
		labelY = surface.Height/2 + 14
	}

	render.AddCenteredLabel(img, labelY, message, color.White)
	return img
}
