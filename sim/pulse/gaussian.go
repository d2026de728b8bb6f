// Package pulse implements the source time profiles and their spectra.
package pulse

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// ErrInvalidPulse is returned by Validate for non-physical parameters.
var ErrInvalidPulse = errors.New("pulse: invalid parameters")

// DefaultOffset is the pulse delay in units of its width.
const DefaultOffset = 5.0

// Gaussian is a Gaussian-envelope carrier:
//
//	cos(2*pi*f0*(t - t0) + phase) * exp(-(t - t0)^2 / (2*tau^2))
//
// with tau = 1/(2*pi*FWidth) and t0 = Offset*tau.
type Gaussian struct {
	Frequency float64 `yaml:"frequency"`
	FWidth    float64 `yaml:"fwidth"`
	Offset    float64 `yaml:"offset,omitempty"`
}

// Validate checks that the carrier and bandwidth are positive.
func (g Gaussian) Validate() error {
	if g.Frequency <= 0 || g.FWidth <= 0 {
		return fmt.Errorf("%w: frequency=%g fwidth=%g must be positive", ErrInvalidPulse, g.Frequency, g.FWidth)
	}
	if g.Offset < 0 {
		return fmt.Errorf("%w: offset=%g must be non-negative", ErrInvalidPulse, g.Offset)
	}
	return nil
}

// Width returns tau, the standard deviation of the envelope.
func (g Gaussian) Width() float64 { return 1 / (2 * math.Pi * g.FWidth) }

// Delay returns t0.
func (g Gaussian) Delay() float64 {
	off := g.Offset
	if off == 0 {
		off = DefaultOffset
	}
	return off * g.Width()
}

// Time samples the profile on tmesh with an extra carrier phase.
func (g Gaussian) Time(tmesh []float64, phase float64) []float64 {
	tau, t0 := g.Width(), g.Delay()
	w0 := 2 * math.Pi * g.Frequency
	out := make([]float64, len(tmesh))
	for i, t := range tmesh {
		dt := t - t0
		out[i] = math.Cos(w0*dt+phase) * math.Exp(-dt*dt/(2*tau*tau))
	}
	return out
}

// Spectrum is the discrete Fourier transform of a sampled time profile,
//
//	dt/sqrt(2*pi) * sum_n timeDep[n] * exp(2*pi*i*f*t_n)
//
// evaluated at each of freqs. tmesh must be uniformly spaced.
func Spectrum(freqs, tmesh, timeDep []float64) []complex128 {
	out := make([]complex128, len(freqs))
	if len(tmesh) < 2 {
		return out
	}
	dt := tmesh[1] - tmesh[0]
	norm := complex(dt/math.Sqrt(2*math.Pi), 0)
	for fi, f := range freqs {
		var sum complex128
		for n, t := range tmesh {
			sum += complex(timeDep[n], 0) * cmplx.Exp(complex(0, 2*math.Pi*f*t))
		}
		out[fi] = norm * sum
	}
	return out
}
