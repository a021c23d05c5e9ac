package sensor

import (
	"math"
	"os"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
)

var _ Reader = PortableReader{}

// PortableReader reads batteries through the distatus/battery library. It
// is the fallback for hosts without a power-supply sysfs tree.
type PortableReader struct{}

func (PortableReader) Read() (Reading, error) {
	batteries, err := battery.GetAll()
	if err != nil {
		return Reading{}, pkgerrors.Wrap(err, "failed to read batteries")
	}
	if len(batteries) == 0 {
		return Reading{}, ErrNoBattery
	}

	var current, full float64
	var statuses []Status
	for _, bat := range batteries {
		current += bat.Current
		full += bat.Full

		switch bat.State {
		case battery.Charging:
			statuses = append(statuses, StatusCharging)
		case battery.Discharging:
			statuses = append(statuses, StatusDischarging)
		case battery.Full:
			statuses = append(statuses, StatusFull)
		default:
			statuses = append(statuses, StatusUnknown)
		}
	}

	percent := 0
	if full > 0 {
		percent = int(math.Round(current / full * 100))
	}

	return Reading{
		Percent: clampPercent(percent),
		Status:  overallStatus(statuses),
	}, nil
}

// NewReader picks the sysfs reader when the kernel power-supply tree
// exists and the portable reader otherwise.
func NewReader() Reader {
	if _, err := os.Stat(DefaultSysfsRoot); err == nil {
		return NewSysfsReader()
	}
	return PortableReader{}
}
