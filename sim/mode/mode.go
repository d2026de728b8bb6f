// Package mode holds eigenmode value types, the reciprocity overlap integral,
// and the ModePlane cross-section that owns a table of computed modes.
package mode

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
)

// Mode is a single eigenmode on a ModePlane cross-section.
type Mode struct {
	E, H Field
	// Neff is the real effective index, Keff the loss index.
	Neff, Keff float64
	// KVector is nil until the caller sets the propagation direction; E and H
	// alone do not determine it.
	KVector *[3]complex128
}

// New stores the field pair and indices. E and H must have the same shape.
func New(e, h Field, neff, keff float64) *Mode {
	return &Mode{E: e, H: h, Neff: neff, Keff: keff}
}

// Fields returns the raw (E, H) pair.
func (m *Mode) Fields() Fields { return Fields{E: m.E, H: m.H} }

// FieldsToCenter returns copies of E and H interpolated from the staggered
// Yee positions to the cell centres. The normal component is unchanged.
//
// The averaging follows how the eigensolver stores a mode: in-plane E
// component a is offset half a cell along in-plane axis a, H component a
// along the other in-plane axis. MeshE1 and MeshE2 on ModePlane describe the
// simulation grid's Yee positions instead and are only used to stamp
// closed-form modes.
func (m *Mode) FieldsToCenter() Fields {
	e, h := m.E.Clone(), m.H.Clone()
	e.rollAvg(0, 0)
	e.rollAvg(1, 1)
	h.rollAvg(0, 1)
	h.rollAvg(1, 0)
	return Fields{E: e, H: h}
}

// FixEfieldPhase rotates E and H by a global phase so that the E value of
// largest magnitude becomes real and positive.
func (m *Mode) FixEfieldPhase() {
	var peak complex128
	for c := range m.E.C {
		for _, v := range m.E.C[c] {
			if cmplx.Abs(v) > cmplx.Abs(peak) {
				peak = v
			}
		}
	}
	if peak == 0 {
		return
	}
	rot := cmplx.Exp(complex(0, -cmplx.Phase(peak)))
	m.Scale(rot)
}

// Scale multiplies E and H in place by s.
func (m *Mode) Scale(s complex128) {
	for c := 0; c < 3; c++ {
		cmplxs.Scale(s, m.E.C[c])
		cmplxs.Scale(s, m.H.C[c])
	}
}

// MaxImag returns the largest |imag| over every component of E and H.
func (m *Mode) MaxImag() float64 {
	var mx float64
	for _, f := range []Field{m.E, m.H} {
		for c := range f.C {
			for _, v := range f.C[c] {
				mx = max(mx, math.Abs(imag(v)))
			}
		}
	}
	return mx
}

// DropImag discards the imaginary part of E and H.
func (m *Mode) DropImag() {
	for _, f := range []Field{m.E, m.H} {
		for c := range f.C {
			for i, v := range f.C[c] {
				f.C[c][i] = complex(real(v), 0)
			}
		}
	}
}

// EdgeEnergyFraction returns the share of total |E|^2 found on the four edge
// rows/columns of the cross-section. A zero field gives 0.
func (m *Mode) EdgeEnergyFraction() float64 {
	var total, edge float64
	f := m.E
	for c := range f.C {
		for i := 0; i < f.N1; i++ {
			for j := 0; j < f.N2; j++ {
				v := f.C[c][i*f.N2+j]
				p := real(v)*real(v) + imag(v)*imag(v)
				total += p
				if i == 0 || j == 0 || i == f.N1-1 || j == f.N2-1 {
					edge += p
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return edge / total
}
