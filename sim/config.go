package sim

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yeesim/yeesim/sim/geom"
	"github.com/yeesim/yeesim/sim/pulse"
)

// Config is the YAML description of a simulation.
// Loaded with LoadConfig; unknown keys are rejected.
type Config struct {
	Center       []float64       `yaml:"center"`
	Size         []float64       `yaml:"size"`
	GridStep     []float64       `yaml:"grid_step"`
	RunTime      float64         `yaml:"run_time"`
	Courant      float64         `yaml:"courant,omitempty"` // 0 = DefaultCourant
	Symmetries   []int           `yaml:"symmetries,omitempty"`
	Permittivity float64         `yaml:"permittivity,omitempty"` // 0 = vacuum
	Monitors     []MonitorConfig `yaml:"monitors,omitempty"`
	Sources      []SourceConfig  `yaml:"sources,omitempty"`
}

// MonitorConfig describes one monitor. Type is "time", "frequency" or "mode".
type MonitorConfig struct {
	Name   string    `yaml:"name"`
	Type   string    `yaml:"type"`
	Center []float64 `yaml:"center"`
	Size   []float64 `yaml:"size"`
	Fields []string  `yaml:"fields,omitempty"`
	Freqs  []float64 `yaml:"freqs,omitempty"`
	TStart float64   `yaml:"t_start,omitempty"`
	TStop  *float64  `yaml:"t_stop,omitempty"`
}

// SourceConfig describes one source. Type is "volume", "mode", "planewave"
// or "plane".
type SourceConfig struct {
	Name         string         `yaml:"name"`
	Type         string         `yaml:"type"`
	Center       []float64      `yaml:"center"`
	Size         []float64      `yaml:"size"`
	Amplitude    float64        `yaml:"amplitude,omitempty"` // 0 = 1
	Pulse        pulse.Gaussian `yaml:"pulse"`
	Components   []string       `yaml:"components,omitempty"`
	Direction    string         `yaml:"direction,omitempty"`
	Polarization string         `yaml:"polarization,omitempty"` // planewave: x, y or z
	PolAngle     float64        `yaml:"pol_angle,omitempty"`
	PolVector    []float64      `yaml:"pol_vector,omitempty"`
	Order        []int          `yaml:"order,omitempty"`
}

// LoadConfig reads a YAML simulation description with strict field checking.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading simulation config: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing simulation config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the shape of every field without building anything.
func (c *Config) Validate() error {
	lists := map[string][]float64{"center": c.Center, "size": c.Size, "grid_step": c.GridStep}
	for i, m := range c.Monitors {
		lists[fmt.Sprintf("monitors[%d].center", i)] = m.Center
		lists[fmt.Sprintf("monitors[%d].size", i)] = m.Size
	}
	for i, s := range c.Sources {
		lists[fmt.Sprintf("sources[%d].center", i)] = s.Center
		lists[fmt.Sprintf("sources[%d].size", i)] = s.Size
		if s.PolVector != nil {
			lists[fmt.Sprintf("sources[%d].pol_vector", i)] = s.PolVector
		}
	}
	if err := Check3DLists(lists); err != nil {
		return err
	}
	if c.RunTime <= 0 {
		return fmt.Errorf("%w: run_time must be positive, got %g", ErrInvalidArgument, c.RunTime)
	}
	if len(c.Symmetries) != 0 && len(c.Symmetries) != 3 {
		return fmt.Errorf("%w: symmetries must have three entries, got %d", ErrInvalidArgument, len(c.Symmetries))
	}
	for _, sym := range c.Symmetries {
		if sym < -1 || sym > 1 {
			return fmt.Errorf("%w: symmetry %d, expected -1, 0 or 1", ErrInvalidArgument, sym)
		}
	}
	return nil
}

// Build validates the config and constructs the simulation with every
// monitor and source bound.
func (c *Config) Build() (*Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	span := geom.CS2Span(to3(c.Center), to3(c.Size))
	grid, err := geom.NewUniformGrid(span, to3(c.GridStep))
	if err != nil {
		return nil, fmt.Errorf("building grid: %w", err)
	}
	s, err := New(grid, c.RunTime, c.Courant)
	if err != nil {
		return nil, err
	}
	if c.Permittivity != 0 {
		s.EpsBackground = complex(c.Permittivity, 0)
	}
	if len(c.Symmetries) == 3 {
		s.Symmetries = [3]int{c.Symmetries[0], c.Symmetries[1], c.Symmetries[2]}
	}
	for _, mc := range c.Monitors {
		m, err := mc.Monitor()
		if err != nil {
			return nil, err
		}
		if _, err := s.AddMonitor(m); err != nil {
			return nil, fmt.Errorf("monitor %q: %w", mc.Name, err)
		}
	}
	for _, sc := range c.Sources {
		src, err := sc.Source()
		if err != nil {
			return nil, err
		}
		if _, err := s.AddSource(src); err != nil {
			return nil, fmt.Errorf("source %q: %w", sc.Name, err)
		}
	}
	return s, nil
}

// Monitor converts the config entry into a monitor value.
func (mc MonitorConfig) Monitor() (Monitor, error) {
	base := MonitorBase{Name: mc.Name, Center: to3(mc.Center), Size: to3(mc.Size), Fields: mc.Fields}
	switch strings.ToLower(mc.Type) {
	case "time":
		return &TimeMonitor{MonitorBase: base, TStart: mc.TStart, TStop: mc.TStop}, nil
	case "frequency", "freq":
		return &FreqMonitor{MonitorBase: base, Freqs: mc.Freqs}, nil
	case "mode":
		return &ModeMonitor{MonitorBase: base, Freqs: mc.Freqs}, nil
	}
	return nil, fmt.Errorf("%w: monitor %q has unknown type %q; valid: time, frequency, mode", ErrInvalidArgument, mc.Name, mc.Type)
}

// Source converts the config entry into a source value.
func (sc SourceConfig) Source() (SourceKind, error) {
	amp := sc.Amplitude
	if amp == 0 {
		amp = 1
	}
	base := SourceBase{Name: sc.Name, Center: to3(sc.Center), Size: to3(sc.Size), Amplitude: amp, Pulse: sc.Pulse}
	switch strings.ToLower(sc.Type) {
	case "volume":
		return &VolumeSource{SourceBase: base, Components: sc.Components}, nil
	case "mode":
		return &ModeSource{SourceBase: base, Direction: sc.Direction}, nil
	case "planewave":
		axis, ok := map[string]int{"x": 0, "y": 1, "z": 2}[strings.ToLower(sc.Polarization)]
		if !ok {
			return nil, fmt.Errorf("%w: source %q polarization %q, expected x, y or z", ErrInvalidArgument, sc.Name, sc.Polarization)
		}
		return &PlaneWave{SourceBase: base, Direction: sc.Direction, Polarization: axis}, nil
	case "plane":
		ps := &PlaneSource{SourceBase: base, Direction: sc.Direction, PolAngle: sc.PolAngle}
		switch len(sc.Order) {
		case 0:
		case 2:
			ps.Order = [2]int{sc.Order[0], sc.Order[1]}
		default:
			return nil, fmt.Errorf("%w: source %q order must have two entries, got %d", ErrInvalidArgument, sc.Name, len(sc.Order))
		}
		if sc.PolVector != nil {
			v := to3(sc.PolVector)
			ps.PolVector = &v
		}
		return ps, nil
	}
	return nil, fmt.Errorf("%w: source %q has unknown type %q; valid: volume, mode, planewave, plane", ErrInvalidArgument, sc.Name, sc.Type)
}

// to3 converts a list already checked by Check3DLists.
func to3(v []float64) [3]float64 {
	var out [3]float64
	copy(out[:], v)
	return out
}
