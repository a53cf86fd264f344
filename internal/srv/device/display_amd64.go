package device

import (
	"image"
	"sync"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"github.com/jypelle/sunface/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
)

type Display struct {
	oledLock    sync.Mutex
	oledDisplay *ssd1306.Dev
	i2cBus      i2c.BusCloser

	lock           sync.RWMutex
	on             bool
	simulationMode bool
	surface        Surface
	lastImg        image.Image

	simulationWindow *app.Window

	eventChannel chan event.DisplayEvent

	askDone chan bool
	askImg  chan image.Image
	done    chan bool
}

func (d *Display) startSimulation() {
	d.simulationWindow = app.NewWindow(
		app.Title("sunface"),
		app.Size(unit.Px(float32(d.surface.Width)), unit.Px(float32(d.surface.Height))),
		app.MinSize(unit.Px(64), unit.Px(64)),
	)
	go func() {
		if err := d.gioloop(); err != nil {
			logrus.Fatalf("Simulation window failed: %v", err)
		}
	}()
	go app.Main()
}

func (d *Display) invalidateSimulationWindow() {
	d.simulationWindow.Invalidate()
}

func (d *Display) closeSimulationWindow() {
	d.simulationWindow.Close()
}

// gioloop paints the last frame and turns window pauses into visibility events.
func (d *Display) gioloop() error {
	var ops op.Ops
	for {
		e := <-d.simulationWindow.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.StageEvent:
			visible := e.Stage >= system.StageRunning
			logrus.Debugf("Simulation window stage: %v", e.Stage)
			d.notify(event.DisplayEvent{Data: event.DisplayEventVisibilityData{Visible: visible}})
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			d.lock.RLock()
			lastImg := d.lastImg
			on := d.on
			d.lock.RUnlock()

			if lastImg != nil && on {
				img := widget.Image{Src: paint.NewImageOp(lastImg), Fit: widget.Contain}
				img.Layout(gtx)
			}
			e.Frame(gtx.Ops)
		}
	}
}
