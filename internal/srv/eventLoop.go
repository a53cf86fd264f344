package srv

import (
	"syscall"

	"github.com/jypelle/sunface/apimodel"
	"github.com/jypelle/sunface/internal/srv/api"
	"github.com/jypelle/sunface/internal/srv/device/press"
	"github.com/jypelle/sunface/internal/srv/event"
	"github.com/sirupsen/logrus"
)

func (s *ServerApp) eventLoop() {
	for loop := true; loop; {
		select {
		case ev := <-s.internalEventChannel:
			switch data := ev.Data.(type) {
			case event.InternalEventTaskData:
				data.Task()
			}
		case ev := <-s.clockDevice.EventChannel():
			switch ev.Data.(type) {
			case event.TickerEventTickData:
				logrus.Debugf("Receive Ticker tick event")
				s.engine.TimeTick()
			}
		case ev := <-s.displayDevice.EventChannel():
			switch data := ev.Data.(type) {
			case event.DisplayEventVisibilityData:
				logrus.Debugf("Receive display visibility event: %t", data.Visible)
				s.setVisible(data.Visible)
			}
		case ev := <-s.apiDevice.EventChannel():
			switch data := ev.Data.(type) {
			case event.ApiEventStatusData:
				ev.Result <- event.ApiResult{Body: api.NewFaceStatus(s.engine.Status())}
			case event.ApiEventModeData:
				s.engine.AmbientModeChanged(data.Ambient)
				ev.Result <- event.ApiResult{}
			case event.ApiEventVisibilityData:
				s.setVisible(data.Visible)
				ev.Result <- event.ApiResult{}
			case event.ApiEventWeatherRequestData:
				requestId := s.engine.RequestWeather()
				ev.Result <- event.ApiResult{Body: apimodel.WeatherRequest{RequestId: requestId}}
			}
		case ev := <-s.buttonsDevice.EventChannel():
			logrus.Debugf("Receive button event: %d, %d, %d", ev.ButtonId, ev.ButtonEventType, ev.PressStepCount)
			switch ev.ButtonId {
			case event.MODE_BUTTON:
				if ev.ButtonEventType == event.RELEASE_EVENT_TYPE {
					logrus.Debugf("Switch ambient mode")
					s.engine.AmbientModeChanged(!s.engine.IsAmbient())
				}
			case event.SCREEN_BUTTON:
				if ev.ButtonEventType == event.RELEASE_EVENT_TYPE && ev.PressStepCount < press.LongPress {
					logrus.Debugf("Switch display on/off")
					s.setVisible(!s.engine.IsVisible())
				} else if ev.ButtonEventType == event.PRESS_EVENT_TYPE && ev.PressStepCount == press.LongPress {
					logrus.Debugf("See you!")
					syscall.Kill(syscall.Getpid(), syscall.SIGUSR1)
				}
			case event.WEATHER_BUTTON:
				if ev.ButtonEventType == event.PRESS_EVENT_TYPE && ev.PressStepCount == 1 {
					logrus.Debugf("Ask for fresh weather")
					s.engine.RequestWeather()
				}
			}
		case <-s.eventLoopAskDone:
			s.engine.Destroy()
			loop = false
		}

		// A frame asked for while the panel is off is drawn when it comes back.
		if loop && s.dirty && s.displayDevice.IsOn() {
			s.refreshDisplay()
		}
	}
	close(s.eventLoopStopped)
	s.eventLoopDone <- true
}

// setVisible turns the panel on or off along with the face.
func (s *ServerApp) setVisible(visible bool) {
	if visible {
		s.displayDevice.SetOn()
		s.dirty = true
	} else {
		s.displayDevice.SetOff()
	}
	s.engine.VisibilityChanged(visible)
}
