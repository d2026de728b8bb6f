// sim/monitor_data.go
package sim

import (
	"math"
	"math/cmplx"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yeesim/yeesim/sim/fields"
	"github.com/yeesim/yeesim/sim/geom"
	"github.com/yeesim/yeesim/sim/mode"
)

// MonitorState tracks whether solver results have been stored on a monitor.
type MonitorState int

const (
	// Unloaded is the state of a freshly bound monitor.
	Unloaded MonitorState = iota
	// Loaded means solver fields are present. There is no way back.
	Loaded
)

// tmeshPlaceholderStep stands in for dt when the time mesh has fewer than two
// points, so the start/stop collapse test below stays well defined.
const tmeshPlaceholderStep = 1e-20

// MonitorData is the runtime state of one monitor within a simulation:
// raw stored fields, sampling windows, derived Poynting vector and, for
// mode monitors, the mode plane used for decomposition.
type MonitorData struct {
	monitor Monitor
	grid    *geom.Grid
	state   MonitorState

	e, h, s *fields.Array

	// GridInds are the grid cells covered by the monitor box.
	GridInds [3]geom.Range

	Xmesh, Ymesh, Zmesh []float64

	// Time monitors.
	Tmesh            []float64
	TindBeg, TindEnd int
	Nt               int

	// Frequency and mode monitors.
	Freqs []float64

	// MntInds is the sparse index list given to StoreData; IndsBeg/IndsEnd
	// bound the stored block in global grid indices.
	MntInds          [][3]int
	IndsBeg, IndsEnd [3]int

	sourceNorm []float64

	// Mode monitors.
	NormInd   int
	CrossInds [2]int
	ModePlane *mode.ModePlane
}

func newMonitorData(m Monitor, grid *geom.Grid) *MonitorData {
	return &MonitorData{monitor: m, grid: grid, Freqs: append([]float64(nil), monitorFreqs(m)...)}
}

// Monitor returns the monitor this data belongs to.
func (md *MonitorData) Monitor() Monitor { return md.monitor }

// State returns the load state.
func (md *MonitorData) State() MonitorState { return md.state }

// Loaded reports whether solver fields have been stored.
func (md *MonitorData) Loaded() bool { return md.state == Loaded }

// E returns the stored electric field, nil if not recorded.
func (md *MonitorData) E() *fields.Array { return md.e }

// H returns the stored magnetic field, nil if not recorded.
func (md *MonitorData) H() *fields.Array { return md.h }

// S returns the cached Poynting vector, nil until Poynting is called.
func (md *MonitorData) S() *fields.Array { return md.s }

// SourceNorm returns the per-sample normalization, nil if not set.
func (md *MonitorData) SourceNorm() []float64 { return md.sourceNorm }

// SetTmesh selects the window of the global time mesh recorded by a time
// monitor. If start and stop fall within one step, exactly one sample is kept.
func (md *MonitorData) SetTmesh(tmesh []float64) error {
	tm, ok := md.monitor.(*TimeMonitor)
	if !ok {
		return fail(ErrMonitor, "SetTmesh on %T %q, only time monitors have a time mesh", md.monitor, md.monitor.Base().Name)
	}
	n := len(tmesh)
	dt := tmeshPlaceholderStep
	if n > 1 {
		dt = tmesh[1] - tmesh[0]
	}
	var tStop float64
	if tm.TStop == nil {
		md.TindEnd = n
		if n > 0 {
			tStop = tmesh[n-1]
		}
	} else {
		tStop = *tm.TStop
		md.TindEnd = sort.Search(n, func(i int) bool { return tmesh[i] > tStop })
	}
	md.TindBeg = sort.Search(n, func(i int) bool { return tmesh[i] >= tm.TStart })
	if math.Abs(tStop-tm.TStart) < dt {
		md.TindBeg = max(md.TindEnd-1, 0)
	}
	md.TindBeg = min(md.TindBeg, md.TindEnd)
	md.Tmesh = tmesh[md.TindBeg:md.TindEnd]
	md.Nt = md.TindEnd - md.TindBeg
	return nil
}

// StoreData scatters a dense solver buffer into the monitor's bounding box.
// samples[p][c] holds the Nsample values of component c at point inds[p].
// field selects E or H, case-insensitively; any other tag is rejected.
func (md *MonitorData) StoreData(samples [][3][]complex128, inds [][3]int, field string) error {
	name := md.monitor.Base().Name
	var target **fields.Array
	switch strings.ToLower(field) {
	case "e":
		target = &md.e
	case "h":
		target = &md.h
	default:
		return fail(ErrUnknownField, "monitor %q: field %q, expected e or h", name, field)
	}
	if *target != nil {
		return fail(ErrMonitor, "monitor %q: field %s already stored", name, strings.ToUpper(field))
	}
	if len(samples) == 0 || len(samples) != len(inds) {
		return fail(ErrInvalidArgument, "monitor %q: %d samples for %d indices", name, len(samples), len(inds))
	}

	ns := len(samples[0][0])
	beg, end := inds[0], inds[0]
	for _, ind := range inds {
		for d := 0; d < 3; d++ {
			beg[d] = min(beg[d], ind[d])
			end[d] = max(end[d], ind[d])
		}
	}
	for d := range end {
		end[d]++
	}
	if md.state == Loaded && (beg != md.IndsBeg || end != md.IndsEnd) {
		return fail(ErrInvalidArgument, "monitor %q: %s indices span %v..%v, stored block is %v..%v",
			name, strings.ToUpper(field), beg, end, md.IndsBeg, md.IndsEnd)
	}

	arr := fields.New(end[0]-beg[0], end[1]-beg[1], end[2]-beg[2], ns)
	for p, ind := range inds {
		for c := 0; c < 3; c++ {
			if len(samples[p][c]) != ns {
				return fail(ErrInvalidArgument, "monitor %q: point %d component %d has %d samples, want %d",
					name, p, c, len(samples[p][c]), ns)
			}
			o := arr.Idx(c, ind[0]-beg[0], ind[1]-beg[1], ind[2]-beg[2], 0)
			copy(arr.Data[o:o+ns], samples[p][c])
		}
	}
	*target = arr
	md.MntInds = inds
	md.IndsBeg, md.IndsEnd = beg, end
	md.setMeshes()
	md.state = Loaded
	logrus.Debugf("monitor %q: stored %s on %v..%v with %d samples", name, strings.ToUpper(field), beg, end, ns)
	return nil
}

// LoadFields stores fields the solver wrote in compact form and undoes the
// mirror symmetries it exploited. indsBeg/indsEnd are the compact indices of
// the block, symmetries holds -1, 0 or +1 per axis and nxyz the full-domain
// cell counts. E or H may be nil when that field was not recorded.
func (md *MonitorData) LoadFields(indsBeg, indsEnd [3]int, e, h *fields.Array, symmetries, nxyz [3]int) error {
	name := md.monitor.Base().Name
	if md.state == Loaded {
		return fail(ErrMonitor, "monitor %q: solver results already loaded", name)
	}
	for d, sym := range symmetries {
		if sym < -1 || sym > 1 {
			return fail(ErrInvalidArgument, "monitor %q: symmetry %d on axis %d, expected -1, 0 or 1", name, sym, d)
		}
	}
	var want [3]int
	for d := range want {
		want[d] = indsEnd[d] - indsBeg[d]
	}
	for _, a := range []*fields.Array{e, h} {
		if !a.Empty() && a.Spatial() != want {
			return fail(ErrInvalidArgument, "monitor %q: field shape %v does not match index box %v", name, a.Spatial(), want)
		}
	}

	beg, end := indsBeg, indsEnd
	if !e.Empty() {
		e = e.Clone()
		if err := md.applySourceNorm(e); err != nil {
			return err
		}
	}
	if !h.Empty() {
		h = h.Clone()
		if err := md.applySourceNorm(h); err != nil {
			return err
		}
	}

	for d, sym := range symmetries {
		if sym == 0 {
			continue
		}
		half := nxyz[d] / 2
		atPlane := beg[d] == 0
		beg[d] += half
		end[d] += half
		if !atPlane {
			continue
		}
		// svals flips the component along the mirrored axis.
		svals := [3]float64{1, 1, 1}
		svals[d] = -1
		neg := [3]float64{-svals[0], -svals[1], -svals[2]}
		eEig, hEig := neg, svals
		skip := false
		if sym == 1 {
			eEig, hEig = svals, neg
			skip = true
		}
		size := end[d] - beg[d]
		if skip {
			beg[d] = half - max(size-1, 0)
		} else {
			beg[d] = half - size
		}
		if !e.Empty() {
			e = fields.MirrorSplice(e, d, eEig, skip)
		}
		if !h.Empty() {
			h = fields.MirrorSplice(h, d, hEig, skip)
		}
	}

	md.e, md.h = e, h
	md.IndsBeg, md.IndsEnd = beg, end
	md.setMeshes()
	md.state = Loaded
	logrus.Debugf("monitor %q: loaded fields on %v..%v (symmetries %v)", name, beg, end, symmetries)
	return nil
}

func (md *MonitorData) applySourceNorm(a *fields.Array) error {
	if md.sourceNorm == nil {
		return nil
	}
	if err := a.ScaleSamples(md.sourceNorm); err != nil {
		return fail(ErrInvalidArgument, "monitor %q: %w", md.monitor.Base().Name, err)
	}
	return nil
}

// setMeshes records the cell-centre coordinates of the stored block.
func (md *MonitorData) setMeshes() {
	if md.grid == nil {
		return
	}
	meshes := [3]*[]float64{&md.Xmesh, &md.Ymesh, &md.Zmesh}
	for d, dst := range meshes {
		m := md.grid.Mesh[d]
		lo := min(max(md.IndsBeg[d], 0), len(m))
		hi := min(max(md.IndsEnd[d], lo), len(m))
		*dst = m[lo:hi]
	}
}

// cellWidths returns the widths of the n stored cells along axis d, falling
// back to the mean step outside the grid.
func (md *MonitorData) cellWidths(d, n int) []float64 {
	out := make([]float64, n)
	w := md.grid.CellWidths(d)
	for i := range out {
		g := md.IndsBeg[d] + i
		if g >= 0 && g < len(w) {
			out[i] = w[g]
		} else {
			out[i] = md.grid.MeshStep[d]
		}
	}
	return out
}

// SetSourceNorm fixes the per-sample normalization applied by LoadFields.
// Time monitors and frequency monitors without a source are not rescaled;
// otherwise each frequency is divided by the source spectrum magnitude. It
// may be called once, before the fields are loaded.
func (md *MonitorData) SetSourceNorm(src *SourceData) error {
	name := md.monitor.Base().Name
	if md.sourceNorm != nil {
		return fail(ErrMonitor, "monitor %q: source normalization already set", name)
	}
	if md.state == Loaded {
		return fail(ErrMonitor, "monitor %q: source normalization must be set before loading fields", name)
	}
	if _, ok := md.monitor.(*TimeMonitor); ok {
		md.sourceNorm = ones(md.Nt)
		return nil
	}
	if src == nil {
		md.sourceNorm = ones(len(md.Freqs))
		return nil
	}
	spectrum := src.Spectrum(md.Freqs)
	norm := make([]float64, len(spectrum))
	for i, s := range spectrum {
		a := cmplx.Abs(s)
		if a == 0 {
			return fail(ErrInvalidArgument, "monitor %q: source spectrum vanishes at %g Hz", name, md.Freqs[i])
		}
		norm[i] = 1 / a
	}
	md.sourceNorm = norm
	return nil
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
