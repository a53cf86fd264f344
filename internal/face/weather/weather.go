package weather

import (
	"math"

	"github.com/sirupsen/logrus"
)

const (
	Placeholder = "--"
	UnknownIcon = 0
)

// Payload keys of the weather-info path.
const (
	KeyHigh   = "high"
	KeyLow    = "low"
	KeyIconId = "icon_id"
)

type Snapshot struct {
	High   string
	Low    string
	IconId int
}

func DefaultSnapshot() Snapshot {
	return Snapshot{High: Placeholder, Low: Placeholder, IconId: UnknownIcon}
}

// State holds the last known weather. It is owned by the engine loop and is
// not safe for concurrent use.
type State struct {
	snapshot Snapshot
	updates  uint64
}

func NewState() *State {
	return &State{snapshot: DefaultSnapshot()}
}

func (s *State) Snapshot() Snapshot {
	return s.snapshot
}

// Updates counts the messages that changed at least one field.
func (s *State) Updates() uint64 {
	return s.updates
}

// Apply merges the fields present in payload, one by one. A field that is
// missing or has the wrong type is skipped without affecting the others.
// It returns the keys that were applied.
func (s *State) Apply(payload map[string]interface{}) []string {
	var applied []string

	if raw, ok := payload[KeyHigh]; ok {
		if high, ok := raw.(string); ok {
			s.snapshot.High = high
			applied = append(applied, KeyHigh)
		} else {
			logrus.Debugf("Skip weather field %s: unexpected type %T", KeyHigh, raw)
		}
	}

	if raw, ok := payload[KeyLow]; ok {
		if low, ok := raw.(string); ok {
			s.snapshot.Low = low
			applied = append(applied, KeyLow)
		} else {
			logrus.Debugf("Skip weather field %s: unexpected type %T", KeyLow, raw)
		}
	}

	if raw, ok := payload[KeyIconId]; ok {
		if iconId, ok := toInt(raw); ok {
			s.snapshot.IconId = iconId
			applied = append(applied, KeyIconId)
		} else {
			logrus.Debugf("Skip weather field %s: unexpected value %v (%T)", KeyIconId, raw, raw)
		}
	}

	if len(applied) > 0 {
		s.updates++
		logrus.Infof("Weather updated: high %s, low %s, icon %d", s.snapshot.High, s.snapshot.Low, s.snapshot.IconId)
	}

	return applied
}

// Reset goes back to the placeholders.
func (s *State) Reset() {
	s.snapshot = DefaultSnapshot()
}

// toInt accepts every integer kind a decoder may produce, as long as the value
// fits in an int.
func toInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case uint64:
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case uint:
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}
