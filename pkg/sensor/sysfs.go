package sensor

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// DefaultSysfsRoot is the kernel power-supply class directory.
const DefaultSysfsRoot = "/sys/class/power_supply"

var _ Reader = &SysfsReader{}

// SysfsReader reads battery devices from the power-supply sysfs tree.
//
// Aggregation policy for hosts with more than one battery: each device's
// percentage is weighted by its full energy (energy_full or charge_full)
// so a large main battery dominates a small auxiliary one. Devices exposing
// only a capacity file contribute that percentage with weight 1.
type SysfsReader struct {
	root string
}

func NewSysfsReader() *SysfsReader {
	return &SysfsReader{root: DefaultSysfsRoot}
}

// NewSysfsReaderAt reads from an alternate root. Used by tests.
func NewSysfsReaderAt(root string) *SysfsReader {
	return &SysfsReader{root: root}
}

func (r *SysfsReader) Read() (Reading, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return Reading{}, ErrNoBattery
		}
		return Reading{}, pkgerrors.Wrapf(err, "failed to list %s", r.root)
	}

	var (
		weightedSum float64
		totalWeight float64
		statuses    []Status
		found       bool
	)

	for _, entry := range entries {
		dir := filepath.Join(r.root, entry.Name())

		// A battery is any supply with a capacity file. AC adapters and
		// USB ports do not have one.
		capacity, capOK := readInt(filepath.Join(dir, "capacity"))
		if !capOK {
			continue
		}
		found = true

		if raw, ok := readTrimmed(filepath.Join(dir, "status")); ok {
			statuses = append(statuses, ParseStatus(raw))
		}

		energyNow, nowOK := readFloat(filepath.Join(dir, "energy_now"))
		if !nowOK {
			energyNow, nowOK = readFloat(filepath.Join(dir, "charge_now"))
		}
		energyFull, fullOK := readFloat(filepath.Join(dir, "energy_full"))
		if !fullOK {
			energyFull, fullOK = readFloat(filepath.Join(dir, "charge_full"))
		}

		if nowOK && fullOK && energyFull > 0 {
			pct := energyNow / energyFull * 100
			weightedSum += pct * energyFull
			totalWeight += energyFull
		} else {
			weightedSum += float64(capacity)
			totalWeight++
		}
	}

	if !found {
		return Reading{}, ErrNoBattery
	}

	percent := 0
	if totalWeight > 0 {
		percent = int(math.Round(weightedSum / totalWeight))
	}

	return Reading{
		Percent: clampPercent(percent),
		Status:  overallStatus(statuses),
	}, nil
}

func readTrimmed(path string) (string, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

func readInt(path string) (int, bool) {
	s, ok := readTrimmed(path)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func readFloat(path string) (float64, bool) {
	s, ok := readTrimmed(path)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
