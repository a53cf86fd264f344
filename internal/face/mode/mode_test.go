package mode

import (
	"math/rand"
	"testing"
)

func TestShouldRunFollowsLastCalls(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		m := NewMachine(false)
		lastVisible := false
		lastAmbient := false

		for step := 0; step < 20; step++ {
			value := rng.Intn(2) == 0
			if rng.Intn(2) == 0 {
				m.SetVisible(value)
				lastVisible = value
			} else {
				m.SetAmbient(value)
				lastAmbient = value
			}

			expected := lastVisible && !lastAmbient
			if m.ShouldRun() != expected {
				t.Fatalf("run %d step %d: expected ShouldRun %t, got %t", run, step, expected, m.ShouldRun())
			}
		}
	}
}

func TestSetAmbientIsIdempotent(t *testing.T) {
	m := NewMachine(false)

	var signals []Signal
	m.OnChange(func(s Signal) { signals = append(signals, s) })

	if m.SetAmbient(false) {
		t.Errorf("Expected no change when already interactive")
	}
	if !m.SetAmbient(true) {
		t.Errorf("Expected change to ambient")
	}
	if m.SetAmbient(true) {
		t.Errorf("Expected no change when already ambient")
	}

	if len(signals) != 1 || signals[0] != MODE_CHANGED {
		t.Fatalf("Expected exactly one MODE_CHANGED signal, got %v", signals)
	}
	if m.Mode() != AMBIENT_MODE {
		t.Errorf("Expected ambient mode, got %s", m.Mode())
	}
}

func TestSetVisibleRaisesVisibilityChanged(t *testing.T) {
	m := NewMachine(false)

	var signals []Signal
	m.OnChange(func(s Signal) { signals = append(signals, s) })

	m.SetVisible(true)
	m.SetVisible(true)
	m.SetVisible(false)

	if len(signals) != 2 {
		t.Fatalf("Expected 2 signals, got %d", len(signals))
	}
	for _, s := range signals {
		if s != VISIBILITY_CHANGED {
			t.Errorf("Expected VISIBILITY_CHANGED, got %d", s)
		}
	}
}

func TestPropertiesAreSetOnce(t *testing.T) {
	m := NewMachine(false)

	if !m.SetProperties(Properties{LowBitColor: true}) {
		t.Fatalf("Expected first properties report to be accepted")
	}
	if m.SetProperties(Properties{BurnInProtection: true}) {
		t.Errorf("Expected second properties report to be ignored")
	}

	props := m.Properties()
	if !props.LowBitColor || props.BurnInProtection {
		t.Errorf("Expected first properties to stick, got %+v", props)
	}
}

func TestPolicy(t *testing.T) {
	m := NewMachine(false)
	m.SetProperties(Properties{LowBitColor: true})

	policy := m.Policy()
	if !policy.AntiAlias || !policy.ShowSeconds || !policy.ShowWeather || !policy.ShowWeatherIcon {
		t.Errorf("Unexpected interactive policy: %+v", policy)
	}
	if policy.AmbientBackground {
		t.Errorf("Ambient background must be off on low bit displays")
	}

	m.SetAmbient(true)
	policy = m.Policy()
	if policy.AntiAlias {
		t.Errorf("Anti-aliasing must be off in low bit ambient mode")
	}
	if policy.ShowSeconds {
		t.Errorf("Second hand must be hidden in ambient mode")
	}
	if policy.ShowWeather {
		t.Errorf("Weather must be hidden in ambient mode by default")
	}
}

func TestPolicyAmbientWeatherToggle(t *testing.T) {
	m := NewMachine(true)
	m.SetAmbient(true)

	policy := m.Policy()
	if !policy.ShowWeather {
		t.Errorf("Expected weather labels in ambient mode when enabled")
	}
	if policy.ShowWeatherIcon {
		t.Errorf("Weather icon must stay hidden in ambient mode")
	}
	if !policy.AntiAlias {
		t.Errorf("Anti-aliasing must stay on without low bit color")
	}
	if !policy.AmbientBackground {
		t.Errorf("Ambient background allowed without low bit or burn-in protection")
	}
}
