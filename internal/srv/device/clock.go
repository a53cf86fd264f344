package device

import (
	"sync"
	"time"

	"github.com/jypelle/sunface/internal/srv/event"
	"github.com/sirupsen/logrus"
)

// Clock emits one tick at each new minute of the wall clock.
type Clock struct {
	lock         sync.RWMutex
	eventChannel chan event.TickerEvent

	refreshClockTicker *time.Ticker

	askDone chan bool
	done    chan bool
}

func NewClock() *Clock {
	ticker := Clock{
		eventChannel: make(chan event.TickerEvent),
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
	return &ticker
}

func (d *Clock) Start() {
	logrus.Infof("Start ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.refreshClockTicker = time.NewTicker(time.Second)

	go func() {
		oldDisplayedTime := time.Now().Format("15:04")

		for loop := true; loop; {
			select {
			case <-d.refreshClockTicker.C:
				// Check starting minute
				displayedTime := time.Now().Format("15:04")
				if oldDisplayedTime != displayedTime {
					select {
					case d.eventChannel <- event.TickerEvent{Data: event.TickerEventTickData{}}:
					case <-d.askDone:
						loop = false
					}
				}
				oldDisplayedTime = displayedTime

			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Clock) StopSendingEvent() {
	logrus.Infof("Stop ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.refreshClockTicker.Stop()
	d.askDone <- true
	<-d.done
}

func (d *Clock) EventChannel() chan event.TickerEvent {
	return d.eventChannel
}
