package mode

// DotProduct is the reciprocity overlap integral between two field pairs on a
// cross-section with in-plane steps step[0], step[1]:
//
//	1/4 * sum(conj(E1) x H2 + E2 x conj(H1)) * d1 * d2
//
// where x is the 2D cross product of the in-plane components. fields1 and
// fields2 must have the same shape; this is not checked.
func DotProduct(fields1, fields2 Fields, step [2]float64) complex128 {
	e1, h1 := fields1.E, fields1.H
	e2, h2 := fields2.E, fields2.H
	var sum complex128
	for p := range e1.C[0] {
		ce0, ce1 := conj(e1.C[0][p]), conj(e1.C[1][p])
		ch0, ch1 := conj(h1.C[0][p]), conj(h1.C[1][p])
		sum += ce0*h2.C[1][p] - ce1*h2.C[0][p]
		sum += e2.C[0][p]*ch1 - e2.C[1][p]*ch0
	}
	return sum * complex(step[0]*step[1]/4, 0)
}

func conj(v complex128) complex128 { return complex(real(v), -imag(v)) }
