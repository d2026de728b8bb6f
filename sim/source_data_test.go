package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeesim/yeesim/sim/geom"
	"github.com/yeesim/yeesim/sim/units"
)

func TestMeshNorm_DividesByZeroThicknessSteps(t *testing.T) {
	tests := []struct {
		name string
		size [3]float64
		want float64
	}{
		{name: "volume", size: [3]float64{0.5, 0.5, 0.5}, want: 1},
		{name: "sheet", size: [3]float64{0.5, 0, 0.3}, want: 10},
		{name: "line", size: [3]float64{0, 0, 0.3}, want: 100},
		{name: "point", size: [3]float64{}, want: 1000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSim(t)
			src := &VolumeSource{SourceBase: SourceBase{Center: [3]float64{0.5, 0.4, 1}, Size: tc.size, Amplitude: 1, Pulse: testPulse}}
			sd, err := s.AddSource(src)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, sd.MeshNorm, 1e-9*tc.want)
		})
	}
}

func TestMeshNorm_UsesLocalCellWidth(t *testing.T) {
	// GIVEN x cells of 0.1 and 0.2 and a sheet inside the wide one
	g, err := geom.NewGrid([3][]float64{{0, 0.1, 0.3}, {0, 0.1}, {0, 0.1}})
	require.NoError(t, err)
	s, err := New(g, 1e-14, 0)
	require.NoError(t, err)
	src := &VolumeSource{SourceBase: SourceBase{
		Center: [3]float64{0.2, 0.05, 0.05}, Size: [3]float64{0, 0.1, 0.1}, Amplitude: 1, Pulse: testPulse,
	}}

	sd, err := s.AddSource(src)

	// THEN the norm divides by that cell's width, not the mean step
	require.NoError(t, err)
	assert.InDelta(t, 5, sd.MeshNorm, 1e-9)
}

func TestSetTdep_ShiftsMagneticProfile(t *testing.T) {
	s := newTestSim(t)
	sd, err := s.AddSource(&VolumeSource{SourceBase: SourceBase{Name: "v", Amplitude: 1, Pulse: testPulse}})
	require.NoError(t, err)

	// GIVEN the M profile shifted by half a period
	sd.SetTdep(s.Tmesh, math.Pi)

	// THEN it is the negated J profile, and the quadrature pair matches Time
	require.Len(t, sd.TimeDep[0], s.Nt())
	for i := range s.Tmesh {
		assert.InDelta(t, -sd.TimeDep[0][i], sd.TimeDep[1][i], 1e-12)
	}
	assert.Equal(t, testPulse.Time(s.Tmesh, math.Pi/2), sd.TimeDepIm[0])
	assert.Equal(t, math.Pi, sd.PhaseM)
}

func TestCurrents_VolumeSource(t *testing.T) {
	s := newTestSim(t)
	src := &VolumeSource{
		SourceBase: SourceBase{Name: "v", Center: [3]float64{0.5, 0.4, 1}, Size: [3]float64{0.4, 0.4, 0}, Amplitude: 2, Pulse: testPulse},
		Components: []string{"Jx", "mz"},
	}
	sd, err := s.AddSource(src)
	require.NoError(t, err)
	inds, err := s.SourceIndices(src)
	require.NoError(t, err)
	require.Len(t, inds, 16)

	cur, err := sd.Currents(inds)
	require.NoError(t, err)

	for _, c := range cur {
		assert.Equal(t, [6]complex128{20, 0, 0, 0, 0, 20}, c)
	}
}

func TestAddSource_RejectsUnknownComponent(t *testing.T) {
	s := newTestSim(t)
	src := &VolumeSource{SourceBase: SourceBase{Name: "v", Amplitude: 1, Pulse: testPulse}, Components: []string{"Ex"}}

	_, err := s.AddSource(src)

	assert.ErrorIs(t, err, ErrSource)
	assert.Empty(t, s.Sources())
}

func TestAddSource_RejectsBadDirectionAndPulse(t *testing.T) {
	s := newTestSim(t)

	_, err := s.AddSource(&ModeSource{SourceBase: planeBase("m", 2e14), Direction: "up"})
	assert.ErrorIs(t, err, ErrSource)

	_, err = s.AddSource(&PlaneWave{SourceBase: SourceBase{Name: "p", Size: [3]float64{1, 0.8, 0}}, Direction: "+"})
	assert.ErrorIs(t, err, ErrSource)

	_, err = s.AddSource(&PlaneWave{SourceBase: SourceBase{Name: "thick", Size: [3]float64{1, 0.8, 0.2}, Pulse: testPulse}})
	assert.ErrorIs(t, err, ErrSource, "mode-type source needs a plane")
}

func TestCurrents_ModeSourceNeedsSelectedMode(t *testing.T) {
	s := newTestSim(t)
	pw := &PlaneWave{SourceBase: planeBase("pw", 2e14), Direction: "+"}
	sd, err := s.AddSource(pw)
	require.NoError(t, err)

	_, err = sd.Currents([][3]int{{0, 0, 10}})

	assert.ErrorIs(t, err, ErrSource)
}

func TestCurrents_PlaneWaveEquivalenceCurrents(t *testing.T) {
	for _, tc := range []struct {
		dir   string
		msign float64
	}{{"+", 1}, {"-", -1}} {
		t.Run(tc.dir, func(t *testing.T) {
			// GIVEN an x-polarized plane wave on the z = 1 plane
			s := newTestSim(t)
			pw := &PlaneWave{SourceBase: planeBase("pw", 2e14), Direction: tc.dir, Polarization: 0}
			sd, err := s.AddSource(pw)
			require.NoError(t, err)
			require.NoError(t, s.SetMode(pw, 0, false))
			inds, err := s.SourceIndices(pw)
			require.NoError(t, err)
			require.Len(t, inds, 80)

			// WHEN the currents are synthesized
			cur, err := sd.Currents(inds)
			require.NoError(t, err)

			// THEN J = n x H is along x and M = -n x E along y
			m, _, ok := sd.Mode()
			require.True(t, ok)
			scale := sd.MeshNorm / math.Sqrt(math.Abs(math.Cos(sd.PhaseMJs)))
			ex := real(m.E.C[0][0])
			for _, c := range cur {
				assert.InDelta(t, -ex*scale/units.ETA0, real(c[0]), 1e-9)
				assert.Zero(t, c[1])
				assert.Zero(t, c[2])
				assert.Zero(t, c[3])
				assert.InDelta(t, -tc.msign*ex*scale, real(c[4]), 1e-9)
				assert.Zero(t, c[5])
			}
		})
	}
}

func TestCurrents_IndexOutsidePlane(t *testing.T) {
	s := newTestSim(t)
	pw := &PlaneWave{SourceBase: planeBase("pw", 2e14), Direction: "+"}
	sd, err := s.AddSource(pw)
	require.NoError(t, err)
	require.NoError(t, s.SetMode(pw, 0, false))

	_, err = sd.Currents([][3]int{{10, 0, 10}})

	assert.ErrorIs(t, err, ErrInvalidArgument)
}
