package geom

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformMesh(n int, lo, step float64) []float64 {
	m := make([]float64, n)
	for i := range m {
		m[i] = lo + (float64(i)+0.5)*step
	}
	return m
}

func TestInsideBoxMesh_StrictContainment(t *testing.T) {
	// GIVEN random spans inside a 10x12x8 unit mesh
	rng := rand.New(rand.NewSource(7))
	mesh := [3][]float64{uniformMesh(10, 0, 1), uniformMesh(12, 0, 1), uniformMesh(8, 0, 1)}

	for trial := 0; trial < 200; trial++ {
		var span Span
		for d := 0; d < 3; d++ {
			lim := float64(len(mesh[d]))
			a, b := rng.Float64()*lim, rng.Float64()*lim
			span[d] = [2]float64{min(a, b), max(a, b)}
		}

		// WHEN the inside ranges are computed
		inds, err := InsideBoxMesh(span, mesh)
		require.NoError(t, err)

		// THEN every selected point is strictly inside and no excluded point is
		for d := 0; d < 3; d++ {
			for i, p := range mesh[d] {
				inside := span[d][0] < p && p < span[d][1]
				selected := i >= inds[d].Start && i < inds[d].Stop
				assert.Equal(t, inside, selected, "trial %d axis %d point %d (%g in %v)", trial, d, i, p, span[d])
			}
		}
	}
}

func TestInsideBoxMesh_InvalidBox(t *testing.T) {
	mesh := [3][]float64{{0.5}, {0.5}, {0.5}}
	span := Span{{0, 1}, {1, 0}, {0, 1}}

	_, err := InsideBoxMesh(span, mesh)

	assert.ErrorIs(t, err, ErrInvalidBox)
}

func TestInsideBoxMesh_EmptyAxisReturnsZeroRanges(t *testing.T) {
	mesh := [3][]float64{uniformMesh(4, 0, 1), nil, uniformMesh(4, 0, 1)}
	span := Span{{0, 4}, {0, 4}, {0, 4}}

	inds, err := InsideBoxMesh(span, mesh)

	require.NoError(t, err)
	assert.Equal(t, [3]Range{}, inds)
}

func TestInsideBox_MaskMatchesRanges(t *testing.T) {
	mesh := [3][]float64{uniformMesh(5, 0, 1), uniformMesh(4, 0, 1), uniformMesh(3, 0, 1)}
	span := Span{{1, 3}, {0, 4}, {2, 3}}

	m, err := InsideBox(span, mesh)
	require.NoError(t, err)

	assert.Equal(t, [3]int{5, 4, 3}, m.Shape)
	assert.Equal(t, 2*4*1, m.Count())
	assert.Equal(t, uint8(1), m.At(1, 0, 2))
	assert.Equal(t, uint8(0), m.At(0, 0, 2))
	assert.Equal(t, uint8(0), m.At(1, 0, 1))
}

func TestInsideBoxCoords_ZeroSizeSnapsToOneCell(t *testing.T) {
	// GIVEN boundaries 0..6 along each axis and a plane exactly on boundary 3 in z
	c := []float64{0, 1, 2, 3, 4, 5, 6}
	coords := [3][]float64{c, c, c}
	span := Span{{0, 6}, {0, 6}, {3, 3}}

	// WHEN zero-size snapping is enabled
	snapped, err := InsideBoxCoords(span, coords, true)
	require.NoError(t, err)

	// THEN exactly the cell [3, 4) is selected on z
	want := [3]Range{{0, 6}, {0, 6}, {3, 4}}
	if diff := cmp.Diff(want, snapped); diff != "" {
		t.Errorf("InsideBoxCoords(include) mismatch (-want +got):\n%s", diff)
	}

	// AND without snapping, z selects nothing
	plain, err := InsideBoxCoords(span, coords, false)
	require.NoError(t, err)
	assert.Equal(t, 0, plain[2].Len())
	assert.Equal(t, 6, plain[0].Len())
}

func TestInsideBoxCoords_ZeroSizeInsideCell(t *testing.T) {
	c := []float64{0, 1, 2, 3}
	span := Span{{1.2, 1.2}, {0, 3}, {0, 3}}

	inds, err := InsideBoxCoords(span, [3][]float64{c, c, c}, true)

	require.NoError(t, err)
	assert.Equal(t, Range{1, 2}, inds[0])
}

func TestInsideBoxCoords_OutsideGridStaysEmpty(t *testing.T) {
	c := []float64{0, 1, 2, 3}
	span := Span{{5, 5}, {0, 3}, {0, 3}}

	inds, err := InsideBoxCoords(span, [3][]float64{c, c, c}, true)

	require.NoError(t, err)
	assert.Equal(t, 0, inds[0].Len())
}

func TestInsideBoxCoords_TooFewBoundaries(t *testing.T) {
	c := []float64{0, 1, 2, 3}
	span := Span{{0, 3}, {0, 3}, {0, 3}}

	inds, err := InsideBoxCoords(span, [3][]float64{c, {0}, c}, true)

	require.NoError(t, err)
	assert.Equal(t, [3]Range{}, inds)
}

func TestIntersectBox(t *testing.T) {
	a := Span{{0, 2}, {0, 2}, {0, 2}}
	b := Span{{1, 3}, {-1, 1}, {3, 4}}

	got := IntersectBox(a, b)

	assert.Equal(t, Span{{1, 2}, {0, 1}, {3, 2}}, got)
	assert.True(t, got.Empty(), "disjoint z must give an empty intersection")
	assert.False(t, IntersectBox(a, a).Empty())
}

func TestCS2Span_RoundTrip(t *testing.T) {
	center := [3]float64{0.1, -2.5, 3}
	size := [3]float64{1.5, 0, 7.25}

	c, s := Span2CS(CS2Span(center, size))

	approx := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff(center, c, approx); diff != "" {
		t.Errorf("center mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(size, s, approx); diff != "" {
		t.Errorf("size mismatch (-want +got):\n%s", diff)
	}
}

func TestAxesHanded(t *testing.T) {
	tests := []struct {
		axes [3]int
		want int
	}{
		{[3]int{0, 1, 2}, 1},
		{[3]int{1, 2, 0}, 1},
		{[3]int{2, 0, 1}, 1},
		{[3]int{0, 2, 1}, -1},
		{[3]int{2, 1, 0}, -1},
		{[3]int{1, 0, 2}, -1},
	}
	for _, tt := range tests {
		got, err := AxesHanded(tt.axes)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "axes %v", tt.axes)
	}

	_, err := AxesHanded([3]int{0, 0, 1})
	assert.ErrorIs(t, err, ErrInvalidAxes)
	_, err = AxesHanded([3]int{0, 1, 3})
	assert.ErrorIs(t, err, ErrInvalidAxes)
}

func TestNewUniformGrid(t *testing.T) {
	g, err := NewUniformGrid(Span{{-1, 1}, {0, 0.5}, {0, 0.05}}, [3]float64{0.1, 0.1, 0.1})
	require.NoError(t, err)

	assert.Equal(t, [3]int{20, 5, 1}, g.Shape())
	assert.Equal(t, 100, g.NumCells())
	assert.InDelta(t, -0.95, g.Mesh[0][0], 1e-12)
	assert.InDelta(t, 0.1, g.MeshStep[1], 1e-12)

	_, err = NewUniformGrid(Span{{0, 1}, {0, 1}, {0, 1}}, [3]float64{0.1, 0, 0.1})
	assert.ErrorIs(t, err, ErrInvalidBox)
}

func TestGrid_NonUniformCellWidths(t *testing.T) {
	g, err := NewGrid([3][]float64{{0, 0.1, 0.2, 0.5}, {0, 1}, {0, 0.5, 1}})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0.1, 0.1, 0.3}, g.CellWidths(0), 1e-12)
	assert.InDelta(t, 0.5/3, g.MeshStep[0], 1e-12, "MeshStep is the mean")
	assert.InDelta(t, 0.1, g.MinStep()[0], 1e-12)
	assert.True(t, g.Uniform(0, Range{0, 2}))
	assert.False(t, g.Uniform(0, Range{0, 3}))
	assert.True(t, g.Uniform(2, Range{0, 2}))
}
