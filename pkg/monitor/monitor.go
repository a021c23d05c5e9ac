// Package monitor holds the threshold-crossing state machine. Evaluate is
// a pure function so the daemon loop and the tests share exactly the same
// transition rules.
package monitor

import (
	"github.com/battguard/battguard/pkg/sensor"
)

// State tracks which threshold alert is currently suppressed. It is the
// daemon's only durable state.
type State string

const (
	StateNeutral      State = "neutral"
	StateNotifiedHigh State = "notified_high"
	StateNotifiedLow  State = "notified_low"
)

// ParseState maps a persisted token back to a State. Unknown or corrupt
// tokens fall back to neutral, which at worst repeats one alert.
func ParseState(s string) State {
	switch State(s) {
	case StateNotifiedHigh, StateNotifiedLow:
		return State(s)
	default:
		return StateNeutral
	}
}

// Action is what the daemon should do after a cycle.
type Action int

const (
	ActionNone Action = iota
	ActionNotifyHigh
	ActionNotifyLow
)

func (a Action) String() string {
	switch a {
	case ActionNotifyHigh:
		return "notify high"
	case ActionNotifyLow:
		return "notify low"
	default:
		return "none"
	}
}

// Thresholds is the immutable per-run band configuration. Margin is the
// re-arm hysteresis: once notified, the charge must come back Margin
// percent inside the band before the alert re-arms, so a reading
// hovering right at a threshold cannot flap between notified and neutral.
type Thresholds struct {
	High   int
	Low    int
	Margin int
}

// rearmed reports whether pct is far enough inside the neutral band to
// reset a notified state.
func (t Thresholds) rearmed(pct int) bool {
	return pct < t.High-t.Margin && pct > t.Low+t.Margin
}

// Evaluate maps one reading onto the previous notify state. It is pure and
// deterministic: no I/O, no clock, no hidden state.
//
// The high check only applies while charging and the low check only while
// discharging, so a rapid plug/unplug flip can never fire both. Once
// notified, no further action is produced until the charge returns to the
// neutral band (see Thresholds.rearmed) and crosses again.
func Evaluate(r sensor.Reading, t Thresholds, prev State) (State, Action) {
	switch prev {
	case StateNotifiedHigh, StateNotifiedLow:
		if t.rearmed(r.Percent) {
			return StateNeutral, ActionNone
		}
		return prev, ActionNone
	default:
		if r.Status == sensor.StatusCharging && r.Percent >= t.High {
			return StateNotifiedHigh, ActionNotifyHigh
		}
		if r.Status == sensor.StatusDischarging && r.Percent <= t.Low {
			return StateNotifiedLow, ActionNotifyLow
		}
		return StateNeutral, ActionNone
	}
}
