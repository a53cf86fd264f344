// Package face wires the display mode, the redraw scheduler, the weather sync
// channel and the render pipeline of the watch face behind the callbacks of
// its host.
package face

import (
	"image"
	"time"

	"github.com/jypelle/sunface/internal/face/datasync"
	"github.com/jypelle/sunface/internal/face/mode"
	"github.com/jypelle/sunface/internal/face/render"
	"github.com/jypelle/sunface/internal/face/scheduler"
	"github.com/jypelle/sunface/internal/face/weather"
	"github.com/sirupsen/logrus"
)

// Paths shared with the companion.
const (
	WeatherRequestPath = "/weather"
	WeatherInfoPath    = "/weather-info"
)

type Options struct {
	Cadence        time.Duration
	AmbientWeather bool
	Sync           datasync.Options
}

type Status struct {
	Mode       mode.Mode
	Visible    bool
	Properties mode.Properties
	Geometry   render.Geometry
	Weather    weather.Snapshot
	Updates    uint64
	Ticks      uint64
	Sync       datasync.Stats
}

// Engine is driven by a single loop: every method, and every function handed
// to post, runs on it. invalidate asks the host for a new frame; the host then
// calls Draw when it suits it.
type Engine struct {
	machine   *mode.Machine
	scheduler *scheduler.Scheduler
	channel   *datasync.Channel
	weather   *weather.State
	pipeline  *render.Pipeline

	invalidate func()
	destroyed  bool
}

func NewEngine(clock scheduler.Clock, transport datasync.Transport, assets render.Assets, options Options, invalidate func(), post func(func())) *Engine {
	e := &Engine{
		machine:    mode.NewMachine(options.AmbientWeather),
		weather:    weather.NewState(),
		pipeline:   render.NewPipeline(assets),
		invalidate: invalidate,
	}
	e.scheduler = scheduler.NewScheduler(clock, e.machine, options.Cadence, invalidate, post)
	e.channel = datasync.NewChannel(transport, post, options.Sync)

	e.machine.OnChange(e.onModeSignal)
	e.channel.Subscribe(WeatherInfoPath, e.onWeatherInfo)

	return e
}

func (e *Engine) onModeSignal(signal mode.Signal) {
	switch signal {
	case mode.MODE_CHANGED:
		e.scheduler.Start()
		e.invalidate()
	case mode.VISIBILITY_CHANGED:
		if e.machine.IsVisible() {
			e.RequestWeather()
			e.channel.Connect()
		} else {
			e.channel.Disconnect()
		}
		e.scheduler.Start()
	case mode.PROPERTIES_CHANGED:
		e.pipeline.PropertiesChanged(e.machine.Properties())
		e.invalidate()
	}
}

func (e *Engine) onWeatherInfo(message datasync.Message) {
	if len(e.weather.Apply(message.Payload)) == 0 {
		logrus.Debugf("Weather info without any usable field")
	}
	e.scheduler.RequestImmediateRedraw()
}

func (e *Engine) SurfaceCreated() {
	if e.destroyed {
		return
	}
	logrus.Debugf("Surface created")
	e.invalidate()
}

func (e *Engine) SurfaceChanged(width, height int) {
	if e.destroyed {
		return
	}
	e.pipeline.SurfaceChanged(width, height)
	e.invalidate()
}

func (e *Engine) ShapeChanged(round bool) {
	if e.destroyed {
		return
	}
	e.pipeline.ShapeChanged(round)
	e.invalidate()
}

func (e *Engine) VisibilityChanged(visible bool) {
	if e.destroyed {
		return
	}
	e.machine.SetVisible(visible)
}

func (e *Engine) AmbientModeChanged(ambient bool) {
	if e.destroyed {
		return
	}
	e.machine.SetAmbient(ambient)
}

func (e *Engine) PropertiesChanged(lowBitColor, burnInProtection bool) {
	if e.destroyed {
		return
	}
	e.machine.SetProperties(mode.Properties{LowBitColor: lowBitColor, BurnInProtection: burnInProtection})
}

// TimeTick is the per minute tick of the host. It is the only redraw source
// in ambient mode.
func (e *Engine) TimeTick() {
	if e.destroyed {
		return
	}
	e.invalidate()
}

// RequestWeather asks the companion for fresh weather. The request waits
// in the channel queue while the link is down.
func (e *Engine) RequestWeather() string {
	if e.destroyed {
		return ""
	}
	requestId := e.channel.Publish(WeatherRequestPath, datasync.Payload{})
	logrus.Debugf("Weather requested (%s)", requestId)
	return requestId
}

func (e *Engine) IsAmbient() bool {
	return e.machine.IsAmbient()
}

func (e *Engine) IsVisible() bool {
	return e.machine.IsVisible()
}

func (e *Engine) Draw(now time.Time) *image.RGBA {
	return e.pipeline.Render(now, e.machine.Policy(), e.weather.Snapshot())
}

func (e *Engine) Status() Status {
	return Status{
		Mode:       e.machine.Mode(),
		Visible:    e.machine.IsVisible(),
		Properties: e.machine.Properties(),
		Geometry:   e.pipeline.Geometry(),
		Weather:    e.weather.Snapshot(),
		Updates:    e.weather.Updates(),
		Ticks:      e.scheduler.TickCount(),
		Sync:       e.channel.Stats(),
	}
}

// Destroy stops the timer and releases the link. Later host callbacks are
// ignored.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.scheduler.Stop()
	e.channel.Close()
	logrus.Infof("Face destroyed")
}
