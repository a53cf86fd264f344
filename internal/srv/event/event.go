package event

// Internal
type InternalEvent struct {
	Data interface{}
}

// InternalEventTaskData carries a face callback to run on the event loop.
type InternalEventTaskData struct {
	Task func()
}

// Ticker
type TickerEvent struct {
	Data interface{}
}

type TickerEventTickData struct{}

// Display
type DisplayEvent struct {
	Data interface{}
}

type DisplayEventVisibilityData struct {
	Visible bool
}

// Buttons
type ButtonId int

const (
	MODE_BUTTON ButtonId = iota
	SCREEN_BUTTON
	WEATHER_BUTTON
)

type ButtonEventType int

const (
	PRESS_EVENT_TYPE ButtonEventType = iota
	RELEASE_EVENT_TYPE
)

type ButtonEvent struct {
	ButtonId        ButtonId
	ButtonEventType ButtonEventType
	PressStepCount  int64
}

// Api
type ApiEvent struct {
	Result chan ApiResult
	Data   interface{}
}

// ApiResult is sent back by the event loop. Body, when set, is returned as JSON.
type ApiResult struct {
	Err  error
	Body interface{}
}

type ApiEventStatusData struct{}

type ApiEventModeData struct {
	Ambient bool
}

type ApiEventVisibilityData struct {
	Visible bool
}

type ApiEventWeatherRequestData struct{}
