package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is a rectilinear simulation grid. Coords holds cell boundaries and
// Mesh the cell centres. MeshStep is the mean cell size along each axis; it
// equals every cell width only when the axis is uniform.
type Grid struct {
	Span     Span
	Coords   [3][]float64
	Mesh     [3][]float64
	MeshStep [3]float64
}

// NewGrid builds a grid from explicit, ascending boundary arrays.
func NewGrid(coords [3][]float64) (*Grid, error) {
	g := &Grid{Coords: coords}
	for d := 0; d < 3; d++ {
		c := coords[d]
		if len(c) < 2 {
			return nil, fmt.Errorf("%w: axis %d needs at least 2 boundaries, got %d", ErrInvalidBox, d, len(c))
		}
		if !sortedStrict(c) {
			return nil, fmt.Errorf("%w: axis %d boundaries are not strictly ascending", ErrInvalidBox, d)
		}
		g.Mesh[d] = Centers(c)
		g.MeshStep[d] = (c[len(c)-1] - c[0]) / float64(len(c)-1)
		g.Span[d] = [2]float64{floats.Min(c), floats.Max(c)}
	}
	return g, nil
}

// NewUniformGrid covers span with cells of the given step, rounding the cell
// count per axis to the nearest integer (at least one cell).
func NewUniformGrid(span Span, step [3]float64) (*Grid, error) {
	if err := span.Validate(); err != nil {
		return nil, err
	}
	var coords [3][]float64
	for d := 0; d < 3; d++ {
		if step[d] <= 0 {
			return nil, fmt.Errorf("%w: axis %d step must be positive, got %g", ErrInvalidBox, d, step[d])
		}
		n := max(int(math.Round((span[d][1]-span[d][0])/step[d])), 1)
		coords[d] = floats.Span(make([]float64, n+1), span[d][0], span[d][0]+float64(n)*step[d])
	}
	return NewGrid(coords)
}

// Shape returns the number of cells along each axis.
func (g *Grid) Shape() [3]int {
	return [3]int{len(g.Mesh[0]), len(g.Mesh[1]), len(g.Mesh[2])}
}

// NumCells returns the total number of cells.
func (g *Grid) NumCells() int {
	s := g.Shape()
	return s[0] * s[1] * s[2]
}

// CellWidths returns the width of every cell along axis d.
func (g *Grid) CellWidths(d int) []float64 {
	c := g.Coords[d]
	w := make([]float64, len(c)-1)
	floats.SubTo(w, c[1:], c[:len(c)-1])
	return w
}

// MinStep returns the smallest cell width along each axis.
func (g *Grid) MinStep() [3]float64 {
	var out [3]float64
	for d := range out {
		out[d] = floats.Min(g.CellWidths(d))
	}
	return out
}

// Uniform reports whether the cells r selects along axis d all share one
// width, to a relative tolerance of 1e-9.
func (g *Grid) Uniform(d int, r Range) bool {
	w := g.CellWidths(d)
	if r.Len() == 0 {
		return true
	}
	ref := w[r.Start]
	for _, x := range w[r.Start:r.Stop] {
		if math.Abs(x-ref) > 1e-9*ref {
			return false
		}
	}
	return true
}

func sortedStrict(c []float64) bool {
	for i := 1; i < len(c); i++ {
		if c[i] <= c[i-1] {
			return false
		}
	}
	return true
}
