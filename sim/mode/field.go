package mode

// Field is a 3-component complex vector field on an N1 x N2 cross-section.
// Components 0 and 1 are the in-plane axes, 2 is the plane normal. Values are
// stored row-major, so point (i, j) is at index i*N2 + j.
type Field struct {
	N1, N2 int
	C      [3][]complex128
}

// NewField allocates a zero field of the given in-plane shape.
func NewField(n1, n2 int) Field {
	f := Field{N1: n1, N2: n2}
	for c := range f.C {
		f.C[c] = make([]complex128, n1*n2)
	}
	return f
}

// Idx returns the flat index of point (i, j).
func (f Field) Idx(i, j int) int { return i*f.N2 + j }

// At returns component c at (i, j).
func (f Field) At(c, i, j int) complex128 { return f.C[c][i*f.N2+j] }

// Clone returns a deep copy.
func (f Field) Clone() Field {
	out := Field{N1: f.N1, N2: f.N2}
	for c := range f.C {
		out.C[c] = append([]complex128(nil), f.C[c]...)
	}
	return out
}

// Conj returns the elementwise complex conjugate, optionally negated.
func (f Field) Conj(negate bool) Field {
	out := f.Clone()
	s := complex(1, 0)
	if negate {
		s = -1
	}
	for c := range out.C {
		for i, v := range out.C[c] {
			out.C[c][i] = s * complex(real(v), -imag(v))
		}
	}
	return out
}

// rollAvg averages each value with its neighbour one step further along the
// given in-plane axis, wrapping at the end.
func (f Field) rollAvg(c, axis int) {
	src := append([]complex128(nil), f.C[c]...)
	for i := 0; i < f.N1; i++ {
		for j := 0; j < f.N2; j++ {
			ni, nj := i, j
			if axis == 0 {
				ni = (i + 1) % f.N1
			} else {
				nj = (j + 1) % f.N2
			}
			f.C[c][i*f.N2+j] = (src[i*f.N2+j] + src[ni*f.N2+nj]) / 2
		}
	}
}

// Fields pairs an electric and magnetic field on the same cross-section.
type Fields struct {
	E, H Field
}
