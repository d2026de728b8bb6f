// sim/size.go
package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// Pre-flight ceilings.
const (
	MaxTimeSteps     = 1e8
	MaxGridCells     = 4e9
	MaxCellTimeSteps = 1e15
	MaxMonitorGB     = 10.0
)

// Check3DLists verifies that every named list has exactly three finite
// values. Keys are checked in sorted order so the reported key is stable.
func Check3DLists(lists map[string][]float64) error {
	keys := make([]string, 0, len(lists))
	for k := range lists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := lists[k]
		if len(v) != 3 {
			return fail(ErrInvalidArgument, "%q must be a list of three numbers, got %d values", k, len(v))
		}
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fail(ErrInvalidArgument, "%q must hold finite numbers, got %v", k, v)
			}
		}
	}
	return nil
}

// CheckSize rejects simulations whose time steps, grid cells or their
// product exceed the pre-flight ceilings.
func CheckSize(s *Simulation) error {
	return checkSizes(float64(s.Grid.NumCells()), float64(s.Nt()))
}

func checkSizes(cells, nt float64) error {
	logrus.Infof("simulation has %.3g grid cells and %.3g time steps", cells, nt)
	if nt > MaxTimeSteps {
		return fail(ErrSize, "%.3g time steps exceed the limit of %.0e; shorten run_time or coarsen the grid", nt, MaxTimeSteps)
	}
	if cells > MaxGridCells {
		return fail(ErrSize, "%.3g grid cells exceed the limit of %.0e; increase grid_step or shrink the domain", cells, MaxGridCells)
	}
	if cells*nt > MaxCellTimeSteps {
		return fail(ErrSize, "grid cells x time steps = %.3g exceeds the limit of %.0e; reduce run_time, the domain size or the resolution",
			cells*nt, MaxCellTimeSteps)
	}
	return nil
}

// MonitorSizeGB estimates the storage of a monitor in GB: 4 bytes per real
// time-domain value, 8 per complex frequency-domain value, three components
// for each recorded field.
func MonitorSizeGB(s *Simulation, m Monitor) (float64, error) {
	md, err := s.MonitorData(m)
	if err != nil {
		return 0, err
	}
	points := 1.0
	for _, r := range md.GridInds {
		points *= float64(r.Len())
	}
	bytesPer, samples := 8.0, float64(len(md.Freqs))
	if _, ok := m.(*TimeMonitor); ok {
		bytesPer, samples = 4, float64(md.Nt)
	}
	nfields := float64(len(m.Base().StoredFields()))
	return bytesPer * points * samples * 3 * nfields / 1e9, nil
}

// CheckMonitorSize rejects a monitor whose estimated storage exceeds
// MaxMonitorGB.
func CheckMonitorSize(s *Simulation, m Monitor) error {
	gb, err := MonitorSizeGB(s, m)
	if err != nil {
		return err
	}
	if gb > MaxMonitorGB {
		return fail(ErrSize, "monitor %q would store %.2f GB, above the %.0f GB limit; record fewer frequencies, fewer time steps or a smaller region",
			monitorName(m), gb, MaxMonitorGB)
	}
	logrus.Debugf("monitor %q: estimated size %.3f GB", monitorName(m), gb)
	return nil
}
