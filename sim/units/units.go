// Package units holds the physical constants shared by the field engine.
// Lengths are in micrometres and times in seconds, so C0 is in um/s.
package units

import "math"

const (
	// C0 is the speed of light in vacuum (um/s).
	C0 = 2.99792458e14
	// EPS0 is the vacuum permittivity (F/um).
	EPS0 = 8.8541878128e-18
	// MU0 is the vacuum permeability (H/um).
	MU0 = 1.25663706212e-12
)

// ETA0 is the impedance of free space (ohm).
var ETA0 = math.Sqrt(MU0 / EPS0)
