package device

import (
	"sort"
	"sync"
	"time"

	"github.com/jypelle/sunface/internal/srv/device/press"
	"github.com/jypelle/sunface/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const buttonPollInterval = 5 * time.Millisecond

// button is a push button wired between its gpio pin and ground.
type button struct {
	buttonId event.ButtonId
	pinName  string
	pin      gpio.PinIO
	tracker  press.Tracker
}

func openButton(buttonId event.ButtonId, pinName string) (*button, bool) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		logrus.Errorf("No gpio pin %s for button %d", pinName, buttonId)
		return nil, false
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		logrus.Errorf("Unable to set gpio pin %s as pulled up input: %v", pinName, err)
		return nil, false
	}
	return &button{buttonId: buttonId, pinName: pinName, pin: pin}, true
}

func (b *button) poll(now time.Time) (event.ButtonEvent, bool) {
	ev, ok := b.tracker.Update(b.pin.Read() == gpio.Low, now)
	if !ok {
		return event.ButtonEvent{}, false
	}
	return event.ButtonEvent{ButtonId: b.buttonId, ButtonEventType: ev.Type, PressStepCount: ev.Steps}, true
}

type Buttons struct {
	lock         sync.Mutex
	eventChannel chan event.ButtonEvent
	simulation   bool

	pins    map[event.ButtonId]string
	buttons []*button

	askDone chan struct{}
	done    chan struct{}
}

// NewButtons polls the given gpio pins. A button without pin is left out.
func NewButtons(simulation bool, pins map[event.ButtonId]string) *Buttons {
	if !simulation {
		if _, err := host.Init(); err != nil {
			logrus.Fatalf("Unable to initialize host: %v", err)
		}
	}

	return &Buttons{
		eventChannel: make(chan event.ButtonEvent),
		simulation:   simulation,
		pins:         pins,
	}
}

func (d *Buttons) Start() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.simulation {
		logrus.Infof("No buttons in simulation mode")
		return
	}

	var buttonIds []event.ButtonId
	for buttonId, pinName := range d.pins {
		if pinName != "" {
			buttonIds = append(buttonIds, buttonId)
		}
	}
	sort.Slice(buttonIds, func(i, j int) bool { return buttonIds[i] < buttonIds[j] })

	for _, buttonId := range buttonIds {
		if b, ok := openButton(buttonId, d.pins[buttonId]); ok {
			d.buttons = append(d.buttons, b)
		}
	}
	if len(d.buttons) == 0 {
		logrus.Warnf("No usable button")
		return
	}

	logrus.Infof("Start buttons device (%d buttons)", len(d.buttons))
	d.askDone = make(chan struct{})
	d.done = make(chan struct{})
	go d.pollLoop(d.buttons, d.askDone, d.done)
}

func (d *Buttons) pollLoop(buttons []*button, askDone chan struct{}, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(buttonPollInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			for _, b := range buttons {
				ev, ok := b.poll(now)
				if !ok {
					continue
				}
				select {
				case d.eventChannel <- ev:
				case <-askDone:
					return
				}
			}
		case <-askDone:
			return
		}
	}
}

func (d *Buttons) StopSendingEvent() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.askDone == nil {
		return
	}
	logrus.Infof("Stop buttons device")
	close(d.askDone)
	<-d.done
	d.askDone = nil
}

func (d *Buttons) EventChannel() chan event.ButtonEvent {
	return d.eventChannel
}
