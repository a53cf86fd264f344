package device

import (
	"image"
	"sync"

	"github.com/jypelle/sunface/internal/srv/event"
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

	eventChannel chan event.DisplayEvent

	askDone chan bool
	askImg  chan image.Image
	done    chan bool
}

// No simulation window on the board.
func (d *Display) startSimulation() {
}

func (d *Display) invalidateSimulationWindow() {
}

func (d *Display) closeSimulationWindow() {
}
