package testutil

import (
	"fmt"
	"math"

	"github.com/yeesim/yeesim/sim/mode"
	"github.com/yeesim/yeesim/sim/units"
)

// UniformSolver returns modes with uniform E along the first in-plane axis
// and matching H along the second, normalized to unit self-overlap. Mode i has
// Neff = sqrt(eps) + i. Calls counts Solve invocations.
type UniformSolver struct {
	Calls int
	// Edge, when set, zeroes the interior so every mode sits on the plane
	// boundary.
	Edge bool
	// Imag adds this imaginary part to every E value before normalization.
	Imag float64
	// Fail makes Solve return an error.
	Fail bool
}

// Solve implements mode.EigenSolver.
func (s *UniformSolver) Solve(p *mode.ModePlane, freqInd, nmodes int) ([]*mode.Mode, error) {
	s.Calls++
	if s.Fail {
		return nil, fmt.Errorf("uniform solver: forced failure at frequency %d", freqInd)
	}
	n1, n2 := p.Shape()
	_, epsMax := p.EpsHomogeneous(0)
	out := make([]*mode.Mode, nmodes)
	for i := range out {
		neff := math.Sqrt(epsMax) + float64(i)
		e, h := mode.NewField(n1, n2), mode.NewField(n1, n2)
		for a := 0; a < n1; a++ {
			for b := 0; b < n2; b++ {
				if s.Edge && a > 0 && b > 0 && a < n1-1 && b < n2-1 {
					continue
				}
				q := e.Idx(a, b)
				e.C[0][q] = complex(1, s.Imag)
				h.C[1][q] = complex(neff/units.ETA0, 0)
			}
		}
		m := mode.New(e, h, neff, 0)
		pow := real(mode.DotProduct(m.Fields(), m.Fields(), p.MeshStep))
		if pow > 0 {
			m.Scale(complex(1/math.Sqrt(pow), 0))
		}
		out[i] = m
	}
	return out, nil
}
