package sim

import (
	"strings"

	"github.com/yeesim/yeesim/sim/geom"
)

// MonitorBase holds what every monitor kind has in common.
type MonitorBase struct {
	Name   string
	Center [3]float64
	Size   [3]float64
	// Fields lists the recorded fields, a subset of {"E", "H"}. Empty means both.
	Fields []string
}

// Base returns the shared monitor fields.
func (b *MonitorBase) Base() *MonitorBase { return b }

// Span returns the monitor box.
func (b *MonitorBase) Span() geom.Span { return geom.CS2Span(b.Center, b.Size) }

// StoredFields returns the normalised list of recorded fields.
func (b *MonitorBase) StoredFields() []string {
	if len(b.Fields) == 0 {
		return []string{"E", "H"}
	}
	out := make([]string, len(b.Fields))
	for i, f := range b.Fields {
		out[i] = strings.ToUpper(f)
	}
	return out
}

// Monitor is one of *TimeMonitor, *FreqMonitor or *ModeMonitor.
type Monitor interface {
	Base() *MonitorBase
	Span() geom.Span
}

// TimeMonitor records fields in the time domain between TStart and TStop.
// A nil TStop records until the end of the run.
type TimeMonitor struct {
	MonitorBase
	TStart float64
	TStop  *float64
}

// FreqMonitor records the discrete Fourier transform of the fields at Freqs.
type FreqMonitor struct {
	MonitorBase
	Freqs []float64
}

// ModeMonitor is a planar frequency monitor whose fields are decomposed into
// the eigenmodes of its cross-section.
type ModeMonitor struct {
	MonitorBase
	Freqs []float64
}

func monitorFreqs(m Monitor) []float64 {
	switch m := m.(type) {
	case *FreqMonitor:
		return m.Freqs
	case *ModeMonitor:
		return m.Freqs
	}
	return nil
}
