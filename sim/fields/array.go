// Package fields provides the dense 5D field arrays recorded by monitors,
// indexed [component][x][y][z][sample], and the array operations the monitor
// reconstruction and Poynting computations are built from.
package fields

import (
	"errors"
	"fmt"
)

// ErrShape is returned when two arrays that must match do not.
var ErrShape = errors.New("fields: shape mismatch")

// Array is a dense complex array of shape [3][Nx][Ny][Nz][Ns].
type Array struct {
	Shape [5]int
	Data  []complex128
}

// New allocates a zero array with three components.
func New(nx, ny, nz, ns int) *Array {
	a := &Array{Shape: [5]int{3, nx, ny, nz, ns}}
	a.Data = make([]complex128, 3*nx*ny*nz*ns)
	return a
}

// Empty reports whether the array is nil or has no elements.
func (a *Array) Empty() bool { return a == nil || len(a.Data) == 0 }

// Idx returns the flat index of (c, i, j, k, s).
func (a *Array) Idx(c, i, j, k, s int) int {
	sh := a.Shape
	return (((c*sh[1]+i)*sh[2]+j)*sh[3]+k)*sh[4] + s
}

// At returns the value at (c, i, j, k, s).
func (a *Array) At(c, i, j, k, s int) complex128 { return a.Data[a.Idx(c, i, j, k, s)] }

// Set stores v at (c, i, j, k, s).
func (a *Array) Set(c, i, j, k, s int, v complex128) { a.Data[a.Idx(c, i, j, k, s)] = v }

// Spatial returns the (Nx, Ny, Nz) part of the shape.
func (a *Array) Spatial() [3]int { return [3]int{a.Shape[1], a.Shape[2], a.Shape[3]} }

// Samples returns the length of the sample axis.
func (a *Array) Samples() int { return a.Shape[4] }

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{Shape: a.Shape, Data: append([]complex128(nil), a.Data...)}
}

// Scale multiplies every element by s in place.
func (a *Array) Scale(s complex128) {
	for i := range a.Data {
		a.Data[i] *= s
	}
}

// ScaleSamples multiplies sample s of every point by norm[s] in place.
func (a *Array) ScaleSamples(norm []float64) error {
	ns := a.Shape[4]
	if len(norm) != ns {
		return fmt.Errorf("%w: %d normalization values for %d samples", ErrShape, len(norm), ns)
	}
	for i := range a.Data {
		a.Data[i] *= complex(norm[i%ns], 0)
	}
	return nil
}

// MirrorSplice returns a new array with the mirror image of a prepended along
// the spatial axis. The mirrored block is a reversed copy of a with component
// c multiplied by eig[c]; with skipBoundary the layer at index 0, which lies on
// the mirror plane, is not duplicated.
func MirrorSplice(a *Array, axis int, eig [3]float64, skipBoundary bool) *Array {
	l := a.Shape[axis+1]
	m := l
	if skipBoundary {
		m = l - 1
	}
	m = max(m, 0)
	shape := a.Shape
	shape[axis+1] = l + m
	out := &Array{Shape: shape, Data: make([]complex128, len(a.Data)/max(l, 1)*(l+m))}
	var src [5]int
	for c := 0; c < shape[0]; c++ {
		for i := 0; i < shape[1]; i++ {
			for j := 0; j < shape[2]; j++ {
				for k := 0; k < shape[3]; k++ {
					dst := [5]int{c, i, j, k, 0}
					src = dst
					pos := dst[axis+1]
					scale := complex(1, 0)
					if pos < m {
						src[axis+1] = l - 1 - pos
						scale = complex(eig[c], 0)
					} else {
						src[axis+1] = pos - m
					}
					o := out.Idx(c, i, j, k, 0)
					n := a.Idx(src[0], src[1], src[2], src[3], 0)
					for s := 0; s < shape[4]; s++ {
						out.Data[o+s] = scale * a.Data[n+s]
					}
				}
			}
		}
	}
	return out
}

// Poynting returns Re(E x conj(H)) at every point and sample, stored with a
// zero imaginary part.
func Poynting(e, h *Array) (*Array, error) {
	if e.Shape != h.Shape {
		return nil, fmt.Errorf("%w: E %v, H %v", ErrShape, e.Shape, h.Shape)
	}
	s := &Array{Shape: e.Shape, Data: make([]complex128, len(e.Data))}
	stride := len(e.Data) / 3
	for p := 0; p < stride; p++ {
		ex, ey, ez := e.Data[p], e.Data[stride+p], e.Data[2*stride+p]
		hx, hy, hz := conj(h.Data[p]), conj(h.Data[stride+p]), conj(h.Data[2*stride+p])
		s.Data[p] = complex(real(ey*hz-ez*hy), 0)
		s.Data[stride+p] = complex(real(ez*hx-ex*hz), 0)
		s.Data[2*stride+p] = complex(real(ex*hy-ey*hx), 0)
	}
	return s, nil
}

func conj(v complex128) complex128 { return complex(real(v), -imag(v)) }
