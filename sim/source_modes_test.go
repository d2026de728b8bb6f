package sim

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeesim/yeesim/sim/mode"
	"github.com/yeesim/yeesim/sim/pulse"
	"github.com/yeesim/yeesim/sim/units"
)

func planeBase(name string, freq float64) SourceBase {
	p := zPlane()
	return SourceBase{Name: name, Center: p.Center, Size: p.Size, Amplitude: 1,
		Pulse: pulse.Gaussian{Frequency: freq, FWidth: freq / 10}}
}

func onlyMode(t *testing.T, sd *SourceData) *mode.Mode {
	t.Helper()
	require.Equal(t, 1, sd.ModePlane.NumModes())
	return sd.ModePlane.Modes[0][0]
}

func selfOverlap(m *mode.Mode, step [2]float64) complex128 {
	return mode.DotProduct(m.Fields(), m.Fields(), step)
}

func TestPlaneWaveModes_UnitPowerAndDirection(t *testing.T) {
	for _, dir := range []string{"+", "-"} {
		t.Run(dir, func(t *testing.T) {
			s := newTestSim(t)
			s.EpsBackground = 2.25
			pw := &PlaneWave{SourceBase: planeBase("pw", 2e14), Direction: dir, Polarization: 1}
			sd, err := s.AddSource(pw)
			require.NoError(t, err)

			require.NoError(t, s.ComputeModes(pw, 1))

			m := onlyMode(t, sd)
			ov := selfOverlap(m, sd.ModePlane.MeshStep)
			assert.InDelta(t, 1, real(ov), 1e-12)
			assert.InDelta(t, 0, imag(ov), 1e-12)
			assert.InDelta(t, 1.5, m.Neff, 1e-12)
			// E along y, H along -x for propagation along +z
			assert.NotZero(t, m.E.C[1][0])
			assert.Zero(t, m.E.C[0][0])
			assert.InDelta(t, -1.5/units.ETA0, real(m.H.C[0][0]/m.E.C[1][0]), 1e-15)

			k0 := 2 * math.Pi * 2e14 / units.C0
			want := 1.5 * k0
			if dir == "-" {
				want = -want
			}
			require.NotNil(t, m.KVector)
			assert.InDelta(t, want, real(m.KVector[2]), 1e-9)
			assert.Zero(t, m.KVector[0])
		})
	}
}

func TestPlaneWaveModes_SingleModeOnly(t *testing.T) {
	// GIVEN a plane wave over a homogeneous cross-section
	s := newTestSim(t)
	pw := &PlaneWave{SourceBase: planeBase("pw", 2e14), Direction: "+"}
	_, err := s.AddSource(pw)
	require.NoError(t, err)

	// WHEN two modes are requested
	err = s.ComputeModes(pw, 2)

	// THEN it is a source error
	assert.ErrorIs(t, err, ErrSource)
	assert.ErrorContains(t, err, "only a single mode")
}

func TestPlaneWaveModes_RequiresHomogeneousCrossSection(t *testing.T) {
	s := newTestSim(t)
	pw := &PlaneWave{SourceBase: planeBase("pw", 2e14), Direction: "+"}
	sd, err := s.AddSource(pw)
	require.NoError(t, err)
	sd.ModePlane.Eps[5] = 4

	err = s.ComputeModes(pw, 1)

	assert.ErrorIs(t, err, ErrSource)
	assert.ErrorContains(t, err, "homogeneous")
	assert.Equal(t, 0, sd.ModePlane.NumModes())
}

func TestPlaneWaveModes_PolarizationAlongNormal(t *testing.T) {
	s := newTestSim(t)
	pw := &PlaneWave{SourceBase: planeBase("pw", 2e14), Direction: "+", Polarization: 2}
	_, err := s.AddSource(pw)
	require.NoError(t, err)

	assert.ErrorIs(t, s.ComputeModes(pw, 1), ErrSource)
}

func TestPlaneSourceModes_NormalIncidence(t *testing.T) {
	s := newTestSim(t)
	ps := &PlaneSource{SourceBase: planeBase("ps", 2e14), Direction: "+"}
	sd, err := s.AddSource(ps)
	require.NoError(t, err)

	require.NoError(t, s.ComputeModes(ps, 1))

	m := onlyMode(t, sd)
	assert.False(t, sd.Complex)
	assert.InDelta(t, 1, real(selfOverlap(m, sd.ModePlane.MeshStep)), 1e-12)
	// P polarization at normal incidence is the first in-plane axis
	assert.InDelta(t, 0, cmplx.Abs(m.E.C[1][3]), 1e-15)
	assert.InDelta(t, 0, cmplx.Abs(m.E.C[2][3]), 1e-15)
	assert.Greater(t, real(m.E.C[0][3]), 0.0)
	assert.Greater(t, real(m.H.C[1][3]), 0.0)
	assert.Zero(t, m.KVector[0])
	assert.Zero(t, m.KVector[1])
	assert.InDelta(t, 2*math.Pi*2e14/units.C0, real(m.KVector[2]), 1e-9)
}

func TestPlaneSourceModes_EvanescentOrder(t *testing.T) {
	// GIVEN order (5,5) on a 1 x 0.8 um period at 1.5 um wavelength
	s := newTestSim(t)
	ps := &PlaneSource{SourceBase: planeBase("ps", 2e14), Direction: "+", Order: [2]int{5, 5}}
	_, err := s.AddSource(ps)
	require.NoError(t, err)

	// WHEN its mode is computed
	err = s.ComputeModes(ps, 1)

	// THEN the order is reported as unavailable
	assert.ErrorIs(t, err, ErrSource)
	assert.ErrorContains(t, err, "evanescent")
}

func TestPlaneSourceModes_ObliqueOrder(t *testing.T) {
	const f = 4e14
	k0 := 2 * math.Pi * f / units.C0
	k1 := 2 * math.Pi // first order over a 1 um period
	kn := math.Sqrt(k0*k0 - k1*k1)

	t.Run("p polarization", func(t *testing.T) {
		s := newTestSim(t)
		ps := &PlaneSource{SourceBase: planeBase("ps", f), Direction: "-", Order: [2]int{1, 0}}
		sd, err := s.AddSource(ps)
		require.NoError(t, err)

		require.NoError(t, s.ComputeModes(ps, 1))

		m := onlyMode(t, sd)
		assert.True(t, sd.Complex)
		assert.InDelta(t, k1, real(m.KVector[0]), 1e-9)
		assert.Zero(t, m.KVector[1])
		assert.InDelta(t, -kn, real(m.KVector[2]), 1e-9)
		assert.InDelta(t, 1, real(selfOverlap(m, sd.ModePlane.MeshStep)), 1e-9)
		// P lies in the plane of incidence
		assert.InDelta(t, 0, cmplx.Abs(m.E.C[1][0]), 1e-15)
		assert.InDelta(t, kn/k1, cmplx.Abs(m.E.C[0][0])/cmplx.Abs(m.E.C[2][0]), 1e-9)
	})

	t.Run("s polarization carries the phase ramp", func(t *testing.T) {
		s := newTestSim(t)
		ps := &PlaneSource{SourceBase: planeBase("ps", f), Direction: "+", Order: [2]int{1, 0}, PolAngle: math.Pi / 2}
		sd, err := s.AddSource(ps)
		require.NoError(t, err)

		require.NoError(t, s.ComputeModes(ps, 1))

		m := onlyMode(t, sd)
		assert.InDelta(t, 0, cmplx.Abs(m.E.C[0][0]), 1e-12)
		assert.InDelta(t, 0, cmplx.Abs(m.E.C[2][0]), 1e-12)
		e := m.E
		ratio := e.C[1][e.Idx(1, 0)] / e.C[1][e.Idx(0, 0)]
		want := cmplx.Exp(complex(0, k1*sd.ModePlane.MeshStep[0]))
		assert.InDelta(t, real(want), real(ratio), 1e-9)
		assert.InDelta(t, imag(want), imag(ratio), 1e-9)
	})
}

func TestPlaneSourceModes_PolVector(t *testing.T) {
	s := newTestSim(t)
	ps := &PlaneSource{SourceBase: planeBase("ps", 2e14), Direction: "+", PolVector: &[3]float64{0, 2, 0}}
	sd, err := s.AddSource(ps)
	require.NoError(t, err)
	require.NoError(t, s.ComputeModes(ps, 1))
	m := onlyMode(t, sd)
	assert.InDelta(t, 0, cmplx.Abs(m.E.C[0][0]), 1e-15)
	assert.NotZero(t, m.E.C[1][0])

	parallel := &PlaneSource{SourceBase: planeBase("par", 2e14), Direction: "+", PolVector: &[3]float64{0, 0, 1}}
	_, err = s.AddSource(parallel)
	require.NoError(t, err)
	assert.ErrorIs(t, s.ComputeModes(parallel, 1), ErrSource)
}
