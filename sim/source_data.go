package sim

import (
	"math"

	"github.com/yeesim/yeesim/sim/geom"
	"github.com/yeesim/yeesim/sim/mode"
	"github.com/yeesim/yeesim/sim/pulse"
)

// SourceData is the runtime state of one source: its sampled time profiles,
// phase bookkeeping and, for mode-type sources, the plane and selected mode.
type SourceData struct {
	source SourceKind

	// MeshNorm keeps the radiated power of sources thinner than a cell
	// independent of the discretization.
	MeshNorm float64

	Tmesh []float64
	// TimeDep holds the J and M profiles; TimeDepIm the same pair a quarter
	// period later, needed when Complex is set.
	TimeDep   [2][]float64
	TimeDepIm [2][]float64
	Complex   bool

	PhaseJ   float64
	PhaseM   float64
	PhaseMJs float64
	PhaseMJt float64

	ModePlane *mode.ModePlane
	dirInd    int
	mode      *mode.Mode
	modeInd   int
}

func newSourceData(s SourceKind) *SourceData {
	return &SourceData{source: s, MeshNorm: 1, modeInd: -1}
}

// Source returns the source this data belongs to.
func (sd *SourceData) Source() SourceKind { return sd.source }

// Mode returns the selected mode and its index, ok is false until SetMode
// has selected one.
func (sd *SourceData) Mode() (m *mode.Mode, ind int, ok bool) {
	if sd.mode == nil {
		return nil, -1, false
	}
	return sd.mode, sd.modeInd, true
}

// DirInd is +1 for forward and -1 for backward injection.
func (sd *SourceData) DirInd() int { return sd.dirInd }

// meshNorm divides MeshNorm by the grid step of every axis along which the
// source has zero thickness.
func (sd *SourceData) meshNorm(step [3]float64) {
	size := sd.source.Span().Size()
	for d := 0; d < 3; d++ {
		if size[d] == 0 {
			sd.MeshNorm /= step[d]
		}
	}
}

// SetTdep samples the J profile at PhaseJ and the M profile at PhaseJ+phaseM,
// plus both again shifted by pi/2.
func (sd *SourceData) SetTdep(tmesh []float64, phaseM float64) {
	p := sd.source.Base().Pulse
	sd.Tmesh = tmesh
	sd.PhaseM = phaseM
	sd.TimeDep = [2][]float64{p.Time(tmesh, sd.PhaseJ), p.Time(tmesh, sd.PhaseJ+phaseM)}
	sd.TimeDepIm = [2][]float64{
		p.Time(tmesh, sd.PhaseJ+math.Pi/2),
		p.Time(tmesh, sd.PhaseJ+phaseM+math.Pi/2),
	}
}

// Spectrum returns the Fourier transform of the J time profile at freqs.
func (sd *SourceData) Spectrum(freqs []float64) []complex128 {
	return pulse.Spectrum(freqs, sd.Tmesh, sd.TimeDep[0])
}

// Currents returns the (Jx, Jy, Jz, Mx, My, Mz) current at each grid index.
func (sd *SourceData) Currents(srcInds [][3]int) ([][6]complex128, error) {
	b := sd.source.Base()
	amp := complex(b.Amplitude*sd.MeshNorm, 0)
	out := make([][6]complex128, len(srcInds))
	switch s := sd.source.(type) {
	case *VolumeSource:
		comps := make([]int, 0, len(s.Components))
		for _, name := range s.Components {
			i, err := componentIndex(name)
			if err != nil {
				return nil, fail(ErrSource, "source %q: %w", b.Name, err)
			}
			comps = append(comps, i)
		}
		for p := range out {
			for _, c := range comps {
				out[p][c] = amp
			}
		}
		return out, nil
	case *ModeSource, *PlaneWave, *PlaneSource:
		return sd.modeCurrents(srcInds, amp, out)
	}
	return nil, fail(ErrSource, "source %q: unsupported kind %T", b.Name, sd.source)
}

// modeCurrents applies the equivalence currents J = n x H and M = -n x E of
// the selected mode at the plane positions of srcInds.
func (sd *SourceData) modeCurrents(srcInds [][3]int, amp complex128, out [][6]complex128) ([][6]complex128, error) {
	name := sd.source.Base().Name
	if sd.mode == nil || sd.modeInd < 0 {
		return nil, fail(ErrSource, "source %q: no mode selected, call SetMode first", name)
	}
	p := sd.ModePlane
	c1, c2, n := p.CrossInds[0], p.CrossInds[1], p.NormInd
	handed, err := geom.AxesHanded([3]int{c1, c2, n})
	if err != nil {
		return nil, fail(ErrSource, "source %q: %w", name, err)
	}
	mSign := complex(float64(handed*sd.dirInd), 0)
	scale := amp / complex(math.Sqrt(math.Abs(math.Cos(sd.PhaseMJs))), 0)
	e, h := sd.mode.E, sd.mode.H
	n1, n2 := p.Shape()
	for k, ind := range srcInds {
		i := ind[c1] - p.SpanInds[c1].Start
		j := ind[c2] - p.SpanInds[c2].Start
		if i < 0 || i >= n1 || j < 0 || j >= n2 {
			return nil, fail(ErrInvalidArgument, "source %q: index %v outside mode plane", name, ind)
		}
		q := e.Idx(i, j)
		out[k][c1] = -h.C[1][q] * scale
		out[k][c2] = h.C[0][q] * scale
		out[k][3+c1] = e.C[1][q] * mSign * scale
		out[k][3+c2] = -e.C[0][q] * mSign * scale
	}
	return out, nil
}
