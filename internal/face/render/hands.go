package render

import (
	"math"
	"time"
)

// Angles are in radians, clockwise from 12 o'clock.
type HandAngles struct {
	Hour   float64
	Minute float64
	Second float64
}

func revolution(unit, unitsPerRevolution float64) float64 {
	return unit / unitsPerRevolution * 2 * math.Pi
}

func AnglesAt(t time.Time) HandAngles {
	minutes := float64(t.Minute())
	return HandAngles{
		Hour:   revolution(float64(t.Hour()%12)+minutes/60, 12),
		Minute: revolution(minutes, 60),
		Second: revolution(float64(t.Second()), 60),
	}
}

// Hand lengths relative to the face radius.
const (
	secondLength = 0.875
	minuteLength = 0.75
	hourLength   = 0.5
	handGap      = 0.25
)

type segment struct {
	x0, y0, x1, y1 float64
}

// handSegment goes from the gap around the center to the tip.
func handSegment(cx, cy, radius, angle, length float64) segment {
	sin, cos := math.Sin(angle), math.Cos(angle)
	return segment{
		x0: cx + sin*radius*handGap,
		y0: cy - cos*radius*handGap,
		x1: cx + sin*radius*length,
		y1: cy - cos*radius*length,
	}
}
