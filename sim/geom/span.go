// Package geom selects the cells of a rectilinear grid that lie inside
// axis-aligned boxes.
package geom

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Span is an axis-aligned box stored as [axis][min, max].
type Span [3][2]float64

// CS2Span converts a center/size pair into a Span.
func CS2Span(center, size [3]float64) Span {
	var s Span
	for d := 0; d < 3; d++ {
		s[d] = [2]float64{center[d] - size[d]/2, center[d] + size[d]/2}
	}
	return s
}

// Span2CS converts a Span back into its center and size.
func Span2CS(s Span) (center, size [3]float64) {
	for d := 0; d < 3; d++ {
		center[d] = (s[d][0] + s[d][1]) / 2
		size[d] = s[d][1] - s[d][0]
	}
	return center, size
}

// Validate reports ErrInvalidBox if any axis has max < min.
func (s Span) Validate() error {
	for d := 0; d < 3; d++ {
		if s[d][1] < s[d][0] {
			logrus.Errorf("span axis %d has max %g below min %g", d, s[d][1], s[d][0])
			return fmt.Errorf("%w: axis %d max %g < min %g", ErrInvalidBox, d, s[d][1], s[d][0])
		}
	}
	return nil
}

// Empty reports whether the span has min > max on any axis, which is how an
// empty IntersectBox result shows up.
func (s Span) Empty() bool {
	for d := 0; d < 3; d++ {
		if s[d][0] > s[d][1] {
			return true
		}
	}
	return false
}

// Size returns the extent of the span along each axis.
func (s Span) Size() [3]float64 {
	_, size := Span2CS(s)
	return size
}

// IntersectBox returns the elementwise intersection of two spans. The result
// may have min > max on some axis; callers check with Empty.
func IntersectBox(a, b Span) Span {
	var s Span
	for d := 0; d < 3; d++ {
		s[d] = [2]float64{max(a[d][0], b[d][0]), min(a[d][1], b[d][1])}
	}
	return s
}

// AxesHanded returns +1 if axes is a cyclic permutation of (0, 1, 2) and -1
// if it is an odd one.
func AxesHanded(axes [3]int) (int, error) {
	switch axes {
	case [3]int{0, 1, 2}, [3]int{1, 2, 0}, [3]int{2, 0, 1}:
		return 1, nil
	case [3]int{0, 2, 1}, [3]int{2, 1, 0}, [3]int{1, 0, 2}:
		return -1, nil
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidAxes, axes)
}
