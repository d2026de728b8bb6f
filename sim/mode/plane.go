package mode

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/sirupsen/logrus"

	"github.com/yeesim/yeesim/sim/geom"
)

var (
	// ErrNotPlanar is returned when a mode plane span is not exactly one
	// zero-size axis or does not intersect the grid.
	ErrNotPlanar = errors.New("mode: span is not a plane inside the grid")

	// ErrNonUniform is returned when the cells of a mode plane differ in
	// width along an in-plane axis.
	ErrNonUniform = errors.New("mode: mode plane cells are not uniform")

	// ErrNoSolver is returned by ComputeModes when no EigenSolver is attached.
	ErrNoSolver = errors.New("mode: no eigenmode solver attached")
)

// EigenSolver computes the lowest nmodes eigenmodes of a plane at one of its
// frequencies. Implementations live outside this module.
type EigenSolver interface {
	Solve(plane *ModePlane, freqInd, nmodes int) ([]*Mode, error)
}

// ModePlane is a 2D cross-section of the simulation grid on which modes are
// computed. It exclusively owns its Modes table, indexed [freq][mode].
type ModePlane struct {
	Span      geom.Span
	NormInd   int
	CrossInds [2]int
	// SpanInds are the global grid index ranges covered by the plane.
	SpanInds [3]geom.Range
	// MeshStep holds the in-plane steps, NormStep the width of the cell the
	// plane sits in. In-plane cells are uniform.
	MeshStep [2]float64
	NormStep float64
	// Mesh holds cell-centre coordinates along the two in-plane axes. MeshE1
	// and MeshE2 hold the simulation-grid Yee positions of in-plane components
	// 0 and 1: the cell centre along the component's own axis, the lower cell
	// boundary along the other. They are not the solver storage offsets that
	// Mode.FieldsToCenter undoes.
	Mesh   [2][]float64
	MeshE1 [2][]float64
	MeshE2 [2][]float64
	// Eps is the relative permittivity slice, row-major N1 x N2.
	Eps    []complex128
	Freqs  []float64
	Modes  [][]*Mode
	Solver EigenSolver
}

// NewModePlane places a plane with the given span on grid. The span must have
// zero size along exactly one axis, which becomes the plane normal.
func NewModePlane(span geom.Span, grid *geom.Grid, freqs []float64) (*ModePlane, error) {
	size := span.Size()
	norm := -1
	for d := 0; d < 3; d++ {
		if size[d] == 0 {
			if norm >= 0 {
				return nil, fmt.Errorf("%w: more than one zero-size axis in %v", ErrNotPlanar, span)
			}
			norm = d
		}
	}
	if norm < 0 {
		return nil, fmt.Errorf("%w: no zero-size axis in %v", ErrNotPlanar, span)
	}
	inds, err := geom.InsideBoxCoords(span, grid.Coords, true)
	if err != nil {
		return nil, err
	}
	p := &ModePlane{Span: span, NormInd: norm, SpanInds: inds, Freqs: freqs}
	p.CrossInds = crossInds(norm)
	for i, c := range p.CrossInds {
		r := inds[c]
		if r.Len() == 0 {
			return nil, fmt.Errorf("%w: axis %d selects no cells", ErrNotPlanar, c)
		}
		if !grid.Uniform(c, r) {
			return nil, fmt.Errorf("%w: axis %d over cells %d..%d", ErrNonUniform, c, r.Start, r.Stop)
		}
		p.MeshStep[i] = grid.CellWidths(c)[r.Start]
		p.Mesh[i] = grid.Mesh[c][r.Start:r.Stop]
	}
	if inds[norm].Len() == 0 {
		return nil, fmt.Errorf("%w: normal position %g outside grid", ErrNotPlanar, span[norm][0])
	}
	p.NormStep = grid.CellWidths(norm)[inds[norm].Start]
	c1, c2 := p.CrossInds[0], p.CrossInds[1]
	r1, r2 := inds[c1], inds[c2]
	p.MeshE1 = [2][]float64{p.Mesh[0], grid.Coords[c2][r2.Start:r2.Stop]}
	p.MeshE2 = [2][]float64{grid.Coords[c1][r1.Start:r1.Stop], p.Mesh[1]}
	p.SetEps(1)
	p.Modes = make([][]*Mode, len(freqs))
	return p, nil
}

// crossInds returns the two in-plane axes for a normal, in ascending order.
func crossInds(norm int) [2]int {
	switch norm {
	case 0:
		return [2]int{1, 2}
	case 1:
		return [2]int{0, 2}
	}
	return [2]int{0, 1}
}

// Shape returns the in-plane cell counts (N1, N2).
func (p *ModePlane) Shape() (int, int) {
	return p.SpanInds[p.CrossInds[0]].Len(), p.SpanInds[p.CrossInds[1]].Len()
}

// SetEps fills the permittivity slice with a uniform value.
func (p *ModePlane) SetEps(eps complex128) {
	n1, n2 := p.Shape()
	p.Eps = make([]complex128, n1*n2)
	for i := range p.Eps {
		p.Eps[i] = eps
	}
}

// EpsHomogeneous reports whether every Eps value lies within tol of the
// first, and returns the largest real part seen.
func (p *ModePlane) EpsHomogeneous(tol float64) (bool, float64) {
	if len(p.Eps) == 0 {
		return true, 1
	}
	ref := p.Eps[0]
	homog, epsMax := true, real(ref)
	for _, e := range p.Eps {
		if cmplx.Abs(e-ref) > tol {
			homog = false
		}
		epsMax = max(epsMax, real(e))
	}
	return homog, epsMax
}

// NumModes returns the number of modes computed at every frequency (the
// minimum across frequencies).
func (p *ModePlane) NumModes() int {
	if len(p.Modes) == 0 {
		return 0
	}
	n := len(p.Modes[0])
	for _, ms := range p.Modes[1:] {
		n = min(n, len(ms))
	}
	return n
}

// ComputeModes asks the attached solver for nmodes modes at every frequency
// and replaces the Modes table.
func (p *ModePlane) ComputeModes(nmodes int) error {
	if p.Solver == nil {
		logrus.Errorf("ComputeModes: %v", ErrNoSolver)
		return ErrNoSolver
	}
	n1, n2 := p.Shape()
	modes := make([][]*Mode, len(p.Freqs))
	for find := range p.Freqs {
		ms, err := p.Solver.Solve(p, find, nmodes)
		if err != nil {
			return fmt.Errorf("solving modes at frequency %d: %w", find, err)
		}
		for mind, m := range ms {
			if m.E.N1 != n1 || m.E.N2 != n2 || m.H.N1 != n1 || m.H.N2 != n2 {
				return fmt.Errorf("solver returned mode %d at frequency %d with shape %dx%d, plane is %dx%d",
					mind, find, m.E.N1, m.E.N2, n1, n2)
			}
		}
		modes[find] = ms
	}
	p.Modes = modes
	logrus.Debugf("computed %d modes at %d frequencies on plane normal to axis %d", nmodes, len(p.Freqs), p.NormInd)
	return nil
}
