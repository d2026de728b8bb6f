// Package sim binds monitors and sources to a rectilinear Yee grid and
// provides the field operations applied around an external FDTD solver run.
//
// # Reading Guide
//
// Start with these files to understand the data flow:
//   - simulation.go: grid, time mesh and the binding of monitors and sources
//   - monitor_data.go: storing solver output and undoing mirror symmetries
//   - source_data.go: time profiles and equivalence currents of each source
//   - facade.go: mode selection, Poynting flux and modal decomposition
//
// # Architecture
//
// The sim package owns the runtime state; value types and kernels live in
// sub-packages:
//   - sim/geom/: spans, grids and index selection inside boxes
//   - sim/fields/: dense 5D field arrays, mirror splicing, Poynting vector
//   - sim/mode/: eigenmodes, the reciprocity overlap and mode planes
//   - sim/pulse/: Gaussian source pulses and their spectra
//   - sim/units/: physical constants in solver units
//
// # Key Interfaces
//
// The extension points are small:
//   - Monitor: *TimeMonitor, *FreqMonitor, *ModeMonitor
//   - SourceKind: *VolumeSource, *ModeSource, *PlaneWave, *PlaneSource
//   - mode.EigenSolver: computes modes on a plane; supplied by the caller
//
// Simulations are described in YAML and loaded with LoadConfig; see
// Config.Build.
package sim
