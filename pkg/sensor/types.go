package sensor

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrNoBattery is returned when no readable battery device exists, e.g. on
// a desktop machine or inside a container without a power-supply tree.
var ErrNoBattery = errors.New("no battery devices found")

// Status is the charging state as reported by the kernel.
type Status string

const (
	StatusCharging    Status = "Charging"
	StatusDischarging Status = "Discharging"
	StatusFull        Status = "Full"
	StatusUnknown     Status = "Unknown"
)

func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "charging":
		return StatusCharging
	case "discharging":
		return StatusDischarging
	case "full":
		return StatusFull
	default:
		return StatusUnknown
	}
}

// Reading is a point-in-time battery snapshot. Produced fresh each poll.
type Reading struct {
	Percent int    `json:"percent"`
	Status  Status `json:"status"`
}

func (r Reading) Charging() bool {
	return r.Status == StatusCharging
}

// Reader reads the current battery charge and status. Implementations have
// no side effects; transient failures surface as errors so the caller can
// decide whether to skip the cycle.
type Reader interface {
	Read() (Reading, error)
}

// overallStatus reduces per-device statuses to one value. Any charging
// device wins, then discharging, then full, then the first seen.
func overallStatus(statuses []Status) Status {
	for _, want := range []Status{StatusCharging, StatusDischarging, StatusFull} {
		for _, s := range statuses {
			if s == want {
				return want
			}
		}
	}
	if len(statuses) > 0 {
		return statuses[0]
	}
	return StatusUnknown
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
