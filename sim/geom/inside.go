package geom

import "sort"

// Range is a half-open index range [Start, Stop).
type Range struct {
	Start, Stop int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.Stop - r.Start }

// InsideBoxMesh returns, per axis, the range of mesh points strictly inside
// span. Mesh arrays must be sorted ascending. If any mesh axis is empty, all
// three ranges are zero.
func InsideBoxMesh(span Span, mesh [3][]float64) ([3]Range, error) {
	var inds [3]Range
	if err := span.Validate(); err != nil {
		return inds, err
	}
	for d := 0; d < 3; d++ {
		if len(mesh[d]) == 0 {
			return [3]Range{}, nil
		}
	}
	for d := 0; d < 3; d++ {
		m := mesh[d]
		beg := sort.Search(len(m), func(i int) bool { return m[i] > span[d][0] })
		end := sort.Search(len(m), func(i int) bool { return m[i] >= span[d][1] })
		if end > beg {
			inds[d] = Range{beg, end}
		}
	}
	return inds, nil
}

// Mask is a dense 0/1 array over a 3D mesh, stored x-major.
type Mask struct {
	Shape [3]int
	Data  []uint8
}

// At returns the mask value at (i, j, k).
func (m *Mask) At(i, j, k int) uint8 {
	return m.Data[(i*m.Shape[1]+j)*m.Shape[2]+k]
}

// Count returns the number of set points.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		n += int(v)
	}
	return n
}

// InsideBox returns a mask of the mesh points selected by InsideBoxMesh.
func InsideBox(span Span, mesh [3][]float64) (*Mask, error) {
	inds, err := InsideBoxMesh(span, mesh)
	if err != nil {
		return nil, err
	}
	m := &Mask{Shape: [3]int{len(mesh[0]), len(mesh[1]), len(mesh[2])}}
	m.Data = make([]uint8, m.Shape[0]*m.Shape[1]*m.Shape[2])
	for i := inds[0].Start; i < inds[0].Stop; i++ {
		for j := inds[1].Start; j < inds[1].Stop; j++ {
			for k := inds[2].Start; k < inds[2].Stop; k++ {
				m.Data[(i*m.Shape[1]+j)*m.Shape[2]+k] = 1
			}
		}
	}
	return m, nil
}

// InsideBoxCoords is InsideBoxMesh over cell boundary arrays: the cell centres
// are tested against span. With includeZeroSize, an axis where the span has
// zero thickness and no centre matched snaps to the cell containing it.
func InsideBoxCoords(span Span, coords [3][]float64, includeZeroSize bool) ([3]Range, error) {
	var mesh [3][]float64
	for d := 0; d < 3; d++ {
		if len(coords[d]) < 2 {
			if err := span.Validate(); err != nil {
				return [3]Range{}, err
			}
			return [3]Range{}, nil
		}
		mesh[d] = Centers(coords[d])
	}
	inds, err := InsideBoxMesh(span, mesh)
	if err != nil {
		return inds, err
	}
	if !includeZeroSize {
		return inds, nil
	}
	for d := 0; d < 3; d++ {
		if span[d][1]-span[d][0] != 0 || inds[d].Len() > 0 {
			continue
		}
		c := coords[d]
		v := span[d][0]
		// first boundary strictly above v, so c[i-1] <= v < c[i]
		i := sort.Search(len(c), func(i int) bool { return c[i] > v })
		if i > 0 && i < len(c) {
			inds[d] = Range{i - 1, i}
		}
	}
	return inds, nil
}

// Centers returns the midpoints of consecutive boundary values.
func Centers(coords []float64) []float64 {
	if len(coords) < 2 {
		return nil
	}
	mesh := make([]float64, len(coords)-1)
	for i := range mesh {
		mesh[i] = (coords[i] + coords[i+1]) / 2
	}
	return mesh
}
