package mode

import (
	"github.com/sirupsen/logrus"
)

type Mode int64

const (
	INTERACTIVE_MODE Mode = iota
	AMBIENT_MODE
)

func (m Mode) String() string {
	switch m {
	case INTERACTIVE_MODE:
		return "interactive"
	case AMBIENT_MODE:
		return "ambient"
	}
	return "undefined"
}

type Signal int64

const (
	MODE_CHANGED Signal = iota
	VISIBILITY_CHANGED
	PROPERTIES_CHANGED
)

// Properties are the static capabilities reported by the display.
type Properties struct {
	LowBitColor      bool
	BurnInProtection bool
}

// Policy is what the renderer needs to know about the current state.
type Policy struct {
	Mode              Mode
	AntiAlias         bool
	ShowSeconds       bool
	ShowWeather       bool
	ShowWeatherIcon   bool
	AmbientBackground bool
	LowBitColor       bool
	BurnInProtection  bool
}

// Machine tracks the two independent axes (ambient and visible) plus the
// display properties, and notifies observers on every effective change.
type Machine struct {
	ambient bool
	visible bool

	properties    Properties
	propertiesSet bool

	ambientWeather bool

	observers []func(Signal)
}

func NewMachine(ambientWeather bool) *Machine {
	return &Machine{ambientWeather: ambientWeather}
}

// OnChange registers an observer. Observers are called in registration order.
func (m *Machine) OnChange(observer func(Signal)) {
	m.observers = append(m.observers, observer)
}

func (m *Machine) notify(signal Signal) {
	for _, observer := range m.observers {
		observer(signal)
	}
}

// SetAmbient returns true when the state actually changed.
func (m *Machine) SetAmbient(ambient bool) bool {
	if m.ambient == ambient {
		return false
	}
	m.ambient = ambient
	logrus.Debugf("Display mode: %s", m.Mode())
	m.notify(MODE_CHANGED)
	return true
}

func (m *Machine) SetVisible(visible bool) bool {
	if m.visible == visible {
		return false
	}
	m.visible = visible
	logrus.Debugf("Display visible: %t", visible)
	m.notify(VISIBILITY_CHANGED)
	return true
}

// SetProperties accepts the first report only; the capabilities of a display
// do not change while it is alive.
func (m *Machine) SetProperties(properties Properties) bool {
	if m.propertiesSet {
		if properties != m.properties {
			logrus.Warnf("Ignoring display properties change %+v, keeping %+v", properties, m.properties)
		}
		return false
	}
	m.properties = properties
	m.propertiesSet = true
	logrus.Infof("Display properties: low bit color %t, burn-in protection %t", properties.LowBitColor, properties.BurnInProtection)
	m.notify(PROPERTIES_CHANGED)
	return true
}

func (m *Machine) Mode() Mode {
	if m.ambient {
		return AMBIENT_MODE
	}
	return INTERACTIVE_MODE
}

func (m *Machine) IsAmbient() bool {
	return m.ambient
}

func (m *Machine) IsVisible() bool {
	return m.visible
}

func (m *Machine) Properties() Properties {
	return m.properties
}

// ShouldRun tells whether the periodic redraw timer should be armed.
func (m *Machine) ShouldRun() bool {
	return m.visible && !m.ambient
}

func (m *Machine) Policy() Policy {
	return Policy{
		Mode:              m.Mode(),
		AntiAlias:         !(m.ambient && m.properties.LowBitColor),
		ShowSeconds:       !m.ambient,
		ShowWeather:       !m.ambient || m.ambientWeather,
		ShowWeatherIcon:   !m.ambient,
		AmbientBackground: !m.properties.LowBitColor && !m.properties.BurnInProtection,
		LowBitColor:       m.properties.LowBitColor,
		BurnInProtection:  m.properties.BurnInProtection,
	}
}
