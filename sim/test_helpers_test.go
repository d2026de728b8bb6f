package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yeesim/yeesim/sim/fields"
	"github.com/yeesim/yeesim/sim/geom"
	"github.com/yeesim/yeesim/sim/pulse"
)

// testPulse is a 2e14 Hz carrier (1.5 um in vacuum).
var testPulse = pulse.Gaussian{Frequency: 2e14, FWidth: 2e13}

// newTestSim returns a simulation on a 1 x 0.8 x 2 um grid with 0.1 um cells.
func newTestSim(t *testing.T) *Simulation {
	t.Helper()
	g, err := geom.NewUniformGrid(geom.Span{{0, 1}, {0, 0.8}, {0, 2}}, [3]float64{0.1, 0.1, 0.1})
	require.NoError(t, err)
	s, err := New(g, 1e-13, 0)
	require.NoError(t, err)
	return s
}

// zPlane is the full x-y cross-section at z = 1.
func zPlane() MonitorBase {
	return MonitorBase{Center: [3]float64{0.5, 0.4, 1}, Size: [3]float64{1, 0.8, 0}}
}

// gridPoints expands index ranges into x-major points.
func gridPoints(r [3]geom.Range) [][3]int {
	var out [][3]int
	for i := r[0].Start; i < r[0].Stop; i++ {
		for j := r[1].Start; j < r[1].Stop; j++ {
			for k := r[2].Start; k < r[2].Stop; k++ {
				out = append(out, [3]int{i, j, k})
			}
		}
	}
	return out
}

// uniformSamples repeats the same three components at every point and sample.
func uniformSamples(npts, ns int, v [3]complex128) [][3][]complex128 {
	out := make([][3][]complex128, npts)
	for p := range out {
		for c := 0; c < 3; c++ {
			out[p][c] = make([]complex128, ns)
			for s := range out[p][c] {
				out[p][c][s] = v[c]
			}
		}
	}
	return out
}

// rampArray fills an array with values unique to each (c, i, j, k, s).
func rampArray(nx, ny, nz, ns int) *fields.Array {
	a := fields.New(nx, ny, nz, ns)
	for c := 0; c < 3; c++ {
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				for k := 0; k < nz; k++ {
					for s := 0; s < ns; s++ {
						a.Set(c, i, j, k, s, complex(float64(1000*c+100*i+10*j+k), float64(s+1)))
					}
				}
			}
		}
	}
	return a
}
