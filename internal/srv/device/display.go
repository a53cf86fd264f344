package device

import (
	"image"
	"time"

	"github.com/jypelle/sunface/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// Surface describes what a display can show.
type Surface struct {
	Width            int
	Height           int
	Round            bool
	LowBitColor      bool
	BurnInProtection bool
}

// The oled panel is monochrome and burns in.
var oledSurface = Surface{Width: 128, Height: 64, LowBitColor: true, BurnInProtection: true}

func NewDisplay(simulationMode bool, simulatedSurface Surface) *Display {
	if _, err := host.Init(); err != nil {
		logrus.Fatalf("Unable to initialize host: %v\n", err)
	}

	device := Display{
		simulationMode: simulationMode,
		surface:        oledSurface,
		eventChannel:   make(chan event.DisplayEvent, 4),
		askDone:        make(chan bool),
		askImg:         make(chan image.Image),
		done:           make(chan bool),
	}
	if simulationMode {
		device.surface = simulatedSurface
	}

	return &device
}

func (d *Display) Start() {
	logrus.Infof("Start display device (%dx%d)", d.surface.Width, d.surface.Height)

	d.on = true

	if d.simulationMode {
		d.startSimulation()
	} else {
		var err error
		// Open a handle to the first available I²C bus:
		d.i2cBus, err = i2creg.Open("")
		if err != nil {
			logrus.Fatalf("Unable to open i2c bus: %v\n", err)
		}

		// Open a handle to a ssd1306 connected on the I²C bus:
		opts := ssd1306.DefaultOpts
		opts.W = d.surface.Width
		opts.H = d.surface.Height
		d.oledDisplay, err = ssd1306.NewI2C(d.i2cBus, &opts)
		if err != nil {
			logrus.Fatalf("Unable to initialize oled display: %v\n", err)
		}

		d.oledDisplay.SetContrast(1)

		go func() {
			for loop := true; loop; {
				select {
				case <-d.askDone:
					loop = false
				case newImg := <-d.askImg:
					start := time.Now()
					d.oledLock.Lock()
					err := d.oledDisplay.Draw(d.oledDisplay.Bounds(), newImg, image.Point{})
					d.oledLock.Unlock()
					if err != nil {
						logrus.Warnf("Unable to draw on oled display: %v", err)
					}
					logrus.Debugf("Frame sent in %v", time.Since(start))
				}
			}
			d.oledLock.Lock()
			d.i2cBus.Close()
			d.oledLock.Unlock()
			d.done <- true
		}()
	}
}

func (d *Display) Stop() {
	logrus.Infof("Stop display device")

	if d.simulationMode {
		d.closeSimulationWindow()
	} else {
		d.askDone <- true
		<-d.done
	}
}

// Surface is reported once to the face; it never changes afterwards.
func (d *Display) Surface() Surface {
	return d.surface
}

// EventChannel delivers the visibility changes decided by the display itself
// (simulation window paused or resumed).
func (d *Display) EventChannel() chan event.DisplayEvent {
	return d.eventChannel
}

func (d *Display) notify(ev event.DisplayEvent) {
	select {
	case d.eventChannel <- ev:
	default:
		logrus.Warnf("Display event dropped: %+v", ev.Data)
	}
}

func (d *Display) SetOff() {
	d.lock.Lock()
	defer d.lock.Unlock()
	if !d.on {
		return
	}
	d.on = false
	if !d.simulationMode {
		d.oledLock.Lock()
		d.oledDisplay.Halt()
		d.oledLock.Unlock()
	}
}

func (d *Display) SetOn() {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.on {
		return
	}
	d.on = true
	if d.simulationMode {
		d.invalidateSimulationWindow()
	} else {
		d.oledLock.Lock()
		d.oledDisplay.SetContrast(1) // Hack to force display on (calling Draw() is not enough)
		d.oledLock.Unlock()
		if d.lastImg != nil {
			d.askImg <- d.lastImg
		}
	}
}

func (d *Display) IsOn() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.on
}

func (d *Display) ShowImage(img image.Image) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.lastImg = img
	if d.on {
		if d.simulationMode {
			d.invalidateSimulationWindow()
		} else {
			d.askImg <- img
		}
	}
}
