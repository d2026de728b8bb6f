package sim

import (
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yeesim/yeesim/sim/fields"
	"github.com/yeesim/yeesim/sim/mode"
	"github.com/yeesim/yeesim/sim/units"
)

const (
	// edgeEnergyLimit is the share of |E|^2 allowed on the plane boundary
	// before a mode is reported as not decaying.
	edgeEnergyLimit = 1e-3
	// imagLimit is the imaginary field content tolerated on a general mode
	// source before it is discarded.
	imagLimit = 1e-5
)

// AutoNormal asks Flux to pick the monitor's thinnest axis.
const AutoNormal = -1

// ComputeModes computes nmodes modes for a mode monitor or a mode-type
// source (*ModeSource, *PlaneWave, *PlaneSource).
func (s *Simulation) ComputeModes(target any, nmodes int) error {
	switch t := target.(type) {
	case *ModeMonitor:
		md, err := s.MonitorData(t)
		if err != nil {
			return err
		}
		if err := md.ModePlane.ComputeModes(nmodes); err != nil {
			return fail(ErrMonitor, "monitor %q: %w", t.Name, err)
		}
		return nil
	case Monitor:
		return fail(ErrMonitor, "monitor %q of kind %T has no mode plane", monitorName(t), t)
	case SourceKind:
		sd, err := s.SourceData(t)
		if err != nil {
			return err
		}
		return sd.computeModes(nmodes)
	}
	return fail(ErrInvalidArgument, "cannot compute modes for %T", target)
}

// SetMode selects which computed mode a mode-type source injects. Plane wave
// and plane sources only have mode 0. For a general mode source, an index
// beyond the computed modes triggers a recompute when computeMode is set and
// otherwise leaves the selection unset.
func (s *Simulation) SetMode(src SourceKind, modeInd int, computeMode bool) error {
	sd, err := s.SourceData(src)
	if err != nil {
		return err
	}
	name := sourceName(src)
	plane := sd.ModePlane
	switch src.(type) {
	case *PlaneWave, *PlaneSource:
		if modeInd != 0 {
			return fail(ErrSource, "source %q: plane wave sources only have mode index 0, got %d", name, modeInd)
		}
		if plane.NumModes() == 0 {
			if err := sd.computeModes(1); err != nil {
				return err
			}
		}
	case *ModeSource:
		if modeInd < 0 {
			return fail(ErrSource, "source %q: negative mode index %d", name, modeInd)
		}
		if modeInd >= plane.NumModes() {
			if !computeMode {
				logrus.Infof("source %q: mode %d not computed yet, selection left unset", name, modeInd)
				return nil
			}
			if err := sd.computeModes(modeInd + 1); err != nil {
				return fail(ErrSource, "source %q: %w", name, err)
			}
			if modeInd >= plane.NumModes() {
				return fail(ErrSource, "source %q: solver returned %d modes, mode %d requested", name, plane.NumModes(), modeInd)
			}
		}
	default:
		return fail(ErrSource, "source %q of kind %T has no modes", name, src)
	}

	m := plane.Modes[0][modeInd]
	freq := plane.Freqs[0]
	if _, general := src.(*ModeSource); general {
		if frac := m.EdgeEnergyFraction(); frac > edgeEnergyLimit {
			logrus.Warnf("source %q: mode %d does not decay at the boundaries of the source plane (%.2f%% of |E|^2 on the edges)",
				name, modeInd, 100*frac)
		}
		if mi := m.MaxImag(); mi > imagLimit {
			logrus.Warnf("source %q: mode %d has an imaginary part up to %g, discarding it", name, modeInd, mi)
			m.DropImag()
		}
		if m.KVector == nil {
			var kv [3]complex128
			kv[plane.NormInd] = complex(float64(sd.dirInd)*2*math.Pi*m.Neff*freq/units.C0, 0)
			m.KVector = &kv
		}
	}
	sd.mode, sd.modeInd = m, modeInd

	kn := real(m.KVector[plane.NormInd])
	sd.PhaseMJt = math.Pi * freq * s.Dt
	sd.PhaseMJs = -kn * plane.NormStep / 2
	sd.SetTdep(s.Tmesh, sd.PhaseMJt+sd.PhaseMJs)
	logrus.Debugf("source %q: selected mode %d (neff=%.4f), phaseMJ_t=%g phaseMJ_s=%g", name, modeInd, m.Neff, sd.PhaseMJt, sd.PhaseMJs)
	return nil
}

// Poynting computes Re(E x conj(H)) on the monitor and caches it.
func (s *Simulation) Poynting(mnt Monitor) (*fields.Array, error) {
	md, err := s.MonitorData(mnt)
	if err != nil {
		return nil, err
	}
	if md.e.Empty() || md.h.Empty() {
		return nil, fail(ErrInvalidArgument, "monitor %q: Poynting vector needs both E and H", monitorName(mnt))
	}
	sv, err := fields.Poynting(md.e, md.h)
	if err != nil {
		return nil, fail(ErrInvalidArgument, "monitor %q: %w", monitorName(mnt), err)
	}
	md.s = sv
	return sv, nil
}

// Flux integrates the normal Poynting component over the two in-plane axes,
// weighting each cell by its own area. With normal == AutoNormal the axis
// with the fewest stored cells is used. The result is indexed
// [sample][normal layer].
func (s *Simulation) Flux(mnt Monitor, normal int) ([][]float64, error) {
	sv, err := s.Poynting(mnt)
	if err != nil {
		return nil, err
	}
	md, err := s.MonitorData(mnt)
	if err != nil {
		return nil, err
	}
	shape := sv.Spatial()
	if normal == AutoNormal {
		normal = 0
		for d := 1; d < 3; d++ {
			if shape[d] < shape[normal] {
				normal = d
			}
		}
	}
	if normal < 0 || normal > 2 {
		return nil, fail(ErrInvalidArgument, "flux normal axis %d, expected 0, 1 or 2", normal)
	}
	var widths [3][]float64
	for d := range widths {
		widths[d] = md.cellWidths(d, shape[d])
	}
	ns := sv.Samples()
	out := make([][]float64, ns)
	for si := range out {
		out[si] = make([]float64, shape[normal])
	}
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				idx := [3]int{i, j, k}
				area := 1.0
				for d := range idx {
					if d != normal {
						area *= widths[d][idx[d]]
					}
				}
				o := sv.Idx(normal, i, j, k, 0)
				for si := 0; si < ns; si++ {
					out[si][idx[normal]] += area * real(sv.Data[o+si])
				}
			}
		}
	}
	return out, nil
}

// Decompose projects the recorded fields of a mode monitor onto its modes.
// It returns forward and backward coefficients indexed [freq][mode]. When
// nmodes exceeds the computed modes they are recomputed; nmodes <= 0 uses
// whatever is available.
func (s *Simulation) Decompose(mnt Monitor, nmodes int) (fwd, bwd [][]complex128, err error) {
	mm, ok := mnt.(*ModeMonitor)
	if !ok {
		return nil, nil, fail(ErrMonitor, "monitor %q of kind %T is not a mode monitor", monitorName(mnt), mnt)
	}
	md, err := s.MonitorData(mm)
	if err != nil {
		return nil, nil, err
	}
	if !md.Loaded() {
		return nil, nil, fail(ErrMonitor, "monitor %q: Solver results not loaded", mm.Name)
	}
	if md.e.Empty() || md.h.Empty() {
		return nil, nil, fail(ErrMonitor, "monitor %q: decomposition needs both E and H", mm.Name)
	}
	plane := md.ModePlane
	if nmodes > plane.NumModes() {
		if err := s.ComputeModes(mm, nmodes); err != nil {
			return nil, nil, err
		}
	}
	if nmodes <= 0 {
		nmodes = plane.NumModes()
	}
	if nmodes == 0 {
		return nil, nil, fail(ErrMonitor, "monitor %q: no modes computed", mm.Name)
	}
	if nmodes > plane.NumModes() {
		return nil, nil, fail(ErrMonitor, "monitor %q: %d modes requested, %d available", mm.Name, nmodes, plane.NumModes())
	}

	n1, n2 := plane.Shape()
	shape := md.e.Spatial()
	c1, c2, n := plane.CrossInds[0], plane.CrossInds[1], plane.NormInd
	if shape[n] != 1 || shape[c1] != n1 || shape[c2] != n2 || md.e.Samples() != len(plane.Freqs) {
		return nil, nil, fail(ErrMonitor, "monitor %q: stored fields %v x %d samples do not match mode plane %dx%d x %d frequencies",
			mm.Name, shape, md.e.Samples(), n1, n2, len(plane.Freqs))
	}

	nf := len(plane.Freqs)
	fwd = make([][]complex128, nf)
	bwd = make([][]complex128, nf)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for fi := 0; fi < nf; fi++ {
		g.Go(func() error {
			field := mode.Fields{
				E: planeSlice(md.e, plane.CrossInds, n, fi),
				H: planeSlice(md.h, plane.CrossInds, n, fi),
			}
			fwd[fi] = make([]complex128, nmodes)
			bwd[fi] = make([]complex128, nmodes)
			for mi := 0; mi < nmodes; mi++ {
				c := plane.Modes[fi][mi].FieldsToCenter()
				fwd[fi][mi] = mode.DotProduct(c, field, plane.MeshStep)
				back := mode.Fields{E: c.E.Conj(false), H: c.H.Conj(true)}
				bwd[fi][mi] = mode.DotProduct(back, field, plane.MeshStep)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fwd, bwd, nil
}

// planeSlice extracts sample s of a single-layer array as a mode.Field with
// components ordered (cross0, cross1, normal).
func planeSlice(a *fields.Array, cross [2]int, normal, s int) mode.Field {
	sh := a.Spatial()
	n1, n2 := sh[cross[0]], sh[cross[1]]
	f := mode.NewField(n1, n2)
	comps := [3]int{cross[0], cross[1], normal}
	for ci, comp := range comps {
		for i := 0; i < n1; i++ {
			for j := 0; j < n2; j++ {
				var idx [3]int
				idx[cross[0]], idx[cross[1]] = i, j
				f.C[ci][f.Idx(i, j)] = a.At(comp, idx[0], idx[1], idx[2], s)
			}
		}
	}
	return f
}
