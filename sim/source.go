package sim

import (
	"fmt"
	"strings"

	"github.com/yeesim/yeesim/sim/geom"
	"github.com/yeesim/yeesim/sim/pulse"
)

// SourceBase holds what every source kind has in common.
type SourceBase struct {
	Name      string
	Center    [3]float64
	Size      [3]float64
	Amplitude float64
	Pulse     pulse.Gaussian
}

// Base returns the shared source fields.
func (b *SourceBase) Base() *SourceBase { return b }

// Span returns the source box.
func (b *SourceBase) Span() geom.Span { return geom.CS2Span(b.Center, b.Size) }

// SourceKind is the closed set of source variants: *VolumeSource,
// *ModeSource, *PlaneWave and *PlaneSource.
type SourceKind interface {
	Base() *SourceBase
	Span() geom.Span
}

// VolumeSource injects a uniform current on the listed components, any of
// "Jx", "Jy", "Jz", "Mx", "My", "Mz".
type VolumeSource struct {
	SourceBase
	Components []string
}

// ModeSource injects an eigenmode computed by the external solver on its
// plane. Direction is "+" or "-" along the plane normal.
type ModeSource struct {
	SourceBase
	Direction string
}

// PlaneWave injects a normally incident plane wave with E along the in-plane
// axis Polarization (0, 1 or 2).
type PlaneWave struct {
	SourceBase
	Direction    string
	Polarization int
}

// PlaneSource injects an obliquely propagating plane wave selected by a
// diffraction order of the periodic cross-section. The E polarization is
// cos(PolAngle)*P + sin(PolAngle)*S unless PolVector is set, in which case its
// component transverse to the propagation direction is used.
type PlaneSource struct {
	SourceBase
	Direction string
	Order     [2]int
	PolAngle  float64
	PolVector *[3]float64
}

func sourceDirection(s SourceKind) string {
	switch s := s.(type) {
	case *ModeSource:
		return s.Direction
	case *PlaneWave:
		return s.Direction
	case *PlaneSource:
		return s.Direction
	}
	return ""
}

// dirInd maps "+"/"-" to +1/-1.
func dirInd(dir string) (int, error) {
	switch dir {
	case "+", "":
		return 1, nil
	case "-":
		return -1, nil
	}
	return 0, fmt.Errorf("%w: direction %q, expected + or -", ErrInvalidArgument, dir)
}

var currentComponents = map[string]int{"jx": 0, "jy": 1, "jz": 2, "mx": 3, "my": 4, "mz": 5}

func componentIndex(name string) (int, error) {
	i, ok := currentComponents[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: current component %q, expected one of Jx Jy Jz Mx My Mz", ErrInvalidArgument, name)
	}
	return i, nil
}
