// sim/simulation.go
package sim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yeesim/yeesim/sim/fields"
	"github.com/yeesim/yeesim/sim/geom"
	"github.com/yeesim/yeesim/sim/mode"
	"github.com/yeesim/yeesim/sim/units"
)

// DefaultCourant is the Courant stability factor used when none is given.
const DefaultCourant = 0.9

// Simulation binds monitors and sources to the grid and time mesh of one run
// and exposes the field operations on them. It is not safe for concurrent
// mutation; read-only operations on distinct monitors may run in parallel.
type Simulation struct {
	Grid    *geom.Grid
	RunTime float64
	Courant float64
	Dt      float64
	Tmesh   []float64
	// Symmetries holds -1, 0 or +1 per axis; LoadFields expands compact
	// solver output with it.
	Symmetries [3]int
	// EpsBackground fills the permittivity slice of every mode plane.
	EpsBackground complex128
	// Solver computes modes for mode monitors and general mode sources.
	Solver mode.EigenSolver

	monitors    []Monitor
	monitorData map[Monitor]*MonitorData
	sources     []SourceKind
	sourceData  map[SourceKind]*SourceData
}

// New builds a simulation over grid, deriving the time step from the Courant
// condition and sampling the time mesh up to runTime.
func New(grid *geom.Grid, runTime, courant float64) (*Simulation, error) {
	if grid == nil {
		return nil, fail(ErrInvalidArgument, "simulation grid is nil")
	}
	if runTime <= 0 {
		return nil, fail(ErrInvalidArgument, "run time must be positive, got %g", runTime)
	}
	if courant == 0 {
		courant = DefaultCourant
	}
	if courant < 0 || courant > 1 {
		return nil, fail(ErrInvalidArgument, "courant factor must be in (0, 1], got %g", courant)
	}
	var inv float64
	for _, st := range grid.MinStep() {
		inv += 1 / (st * st)
	}
	dt := courant / (units.C0 * math.Sqrt(inv))
	nt := int(math.Ceil(runTime/dt)) + 1
	tmesh := make([]float64, nt)
	for i := range tmesh {
		tmesh[i] = float64(i) * dt
	}
	s := &Simulation{
		Grid:          grid,
		RunTime:       runTime,
		Courant:       courant,
		Dt:            dt,
		Tmesh:         tmesh,
		EpsBackground: 1,
		monitorData:   make(map[Monitor]*MonitorData),
		sourceData:    make(map[SourceKind]*SourceData),
	}
	logrus.Debugf("simulation: grid %v, dt=%g s, %d time steps", grid.Shape(), dt, nt)
	return s, nil
}

// Nt returns the number of time steps.
func (s *Simulation) Nt() int { return len(s.Tmesh) }

// Monitors returns the bound monitors in insertion order.
func (s *Simulation) Monitors() []Monitor { return s.monitors }

// Sources returns the bound sources in insertion order.
func (s *Simulation) Sources() []SourceKind { return s.sources }

// MonitorData returns the runtime data bound to m.
func (s *Simulation) MonitorData(m Monitor) (*MonitorData, error) {
	md, ok := s.monitorData[m]
	if !ok {
		return nil, fail(ErrMonitor, "monitor %q is not bound to this simulation", monitorName(m))
	}
	return md, nil
}

// LoadFields loads compact solver output for m, expanding it with the
// simulation's Symmetries over the full grid.
func (s *Simulation) LoadFields(m Monitor, indsBeg, indsEnd [3]int, e, h *fields.Array) error {
	md, err := s.MonitorData(m)
	if err != nil {
		return err
	}
	return md.LoadFields(indsBeg, indsEnd, e, h, s.Symmetries, s.Grid.Shape())
}

// SourceData returns the runtime data bound to src.
func (s *Simulation) SourceData(src SourceKind) (*SourceData, error) {
	sd, ok := s.sourceData[src]
	if !ok {
		return nil, fail(ErrSource, "source %q is not bound to this simulation", sourceName(src))
	}
	return sd, nil
}

// AddMonitor validates m and binds a fresh MonitorData to it.
func (s *Simulation) AddMonitor(m Monitor) (*MonitorData, error) {
	if m == nil {
		return nil, fail(ErrInvalidArgument, "nil monitor")
	}
	name := monitorName(m)
	if _, dup := s.monitorData[m]; dup {
		return nil, fail(ErrMonitor, "monitor %q already added", name)
	}
	span := m.Span()
	if err := span.Validate(); err != nil {
		return nil, err
	}
	for _, f := range m.Base().StoredFields() {
		if f != "E" && f != "H" {
			return nil, fail(ErrInvalidArgument, "monitor %q: field %q, expected E or H", name, f)
		}
	}
	inds, err := geom.InsideBoxCoords(span, s.Grid.Coords, true)
	if err != nil {
		return nil, err
	}
	md := newMonitorData(m, s.Grid)
	md.GridInds = inds

	switch mt := m.(type) {
	case *TimeMonitor:
		if err := md.SetTmesh(s.Tmesh); err != nil {
			return nil, err
		}
	case *FreqMonitor:
		if len(mt.Freqs) == 0 {
			return nil, fail(ErrInvalidArgument, "monitor %q: no frequencies", name)
		}
	case *ModeMonitor:
		if len(mt.Freqs) == 0 {
			return nil, fail(ErrInvalidArgument, "monitor %q: no frequencies", name)
		}
		plane, err := mode.NewModePlane(span, s.Grid, md.Freqs)
		if err != nil {
			return nil, fail(ErrMonitor, "monitor %q: %w", name, err)
		}
		plane.SetEps(s.EpsBackground)
		plane.Solver = s.Solver
		md.ModePlane = plane
		md.NormInd = plane.NormInd
		md.CrossInds = plane.CrossInds
	default:
		return nil, fail(ErrInvalidArgument, "monitor %q: unsupported kind %T", name, m)
	}
	s.monitors = append(s.monitors, m)
	s.monitorData[m] = md
	return md, nil
}

// AddSource validates src and binds a fresh SourceData to it, with the
// mesh normalization and time profiles already set.
func (s *Simulation) AddSource(src SourceKind) (*SourceData, error) {
	if src == nil {
		return nil, fail(ErrInvalidArgument, "nil source")
	}
	b := src.Base()
	if _, dup := s.sourceData[src]; dup {
		return nil, fail(ErrSource, "source %q already added", b.Name)
	}
	if err := src.Span().Validate(); err != nil {
		return nil, err
	}
	if err := b.Pulse.Validate(); err != nil {
		return nil, fail(ErrSource, "source %q: %w", b.Name, err)
	}
	sd := newSourceData(src)
	switch st := src.(type) {
	case *VolumeSource:
		for _, c := range st.Components {
			if _, err := componentIndex(c); err != nil {
				return nil, fail(ErrSource, "source %q: %w", b.Name, err)
			}
		}
	case *ModeSource, *PlaneWave, *PlaneSource:
		dir, err := dirInd(sourceDirection(src))
		if err != nil {
			return nil, fail(ErrSource, "source %q: %w", b.Name, err)
		}
		sd.dirInd = dir
		plane, err := mode.NewModePlane(src.Span(), s.Grid, []float64{b.Pulse.Frequency})
		if err != nil {
			return nil, fail(ErrSource, "source %q: %w", b.Name, err)
		}
		plane.SetEps(s.EpsBackground)
		if _, ok := src.(*ModeSource); ok {
			plane.Solver = s.Solver
		}
		sd.ModePlane = plane
	default:
		return nil, fail(ErrInvalidArgument, "source %q: unsupported kind %T", b.Name, src)
	}
	step := s.Grid.MeshStep
	if inds, err := geom.InsideBoxCoords(src.Span(), s.Grid.Coords, true); err == nil {
		for d, r := range inds {
			if r.Len() > 0 {
				step[d] = s.Grid.CellWidths(d)[r.Start]
			}
		}
	}
	sd.meshNorm(step)
	sd.SetTdep(s.Tmesh, 0)
	s.sources = append(s.sources, src)
	s.sourceData[src] = sd
	return sd, nil
}

// SourceIndices lists the grid indices covered by a source, x-major.
func (s *Simulation) SourceIndices(src SourceKind) ([][3]int, error) {
	inds, err := geom.InsideBoxCoords(src.Span(), s.Grid.Coords, true)
	if err != nil {
		return nil, err
	}
	out := make([][3]int, 0, inds[0].Len()*inds[1].Len()*inds[2].Len())
	for i := inds[0].Start; i < inds[0].Stop; i++ {
		for j := inds[1].Start; j < inds[1].Stop; j++ {
			for k := inds[2].Start; k < inds[2].Stop; k++ {
				out = append(out, [3]int{i, j, k})
			}
		}
	}
	return out, nil
}

func monitorName(m Monitor) string {
	if m == nil {
		return ""
	}
	return m.Base().Name
}

func sourceName(src SourceKind) string {
	if src == nil {
		return ""
	}
	return src.Base().Name
}
