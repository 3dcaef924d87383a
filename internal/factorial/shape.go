package factorial

import "math/rand/v2"

const (
	largeBase = 1 << 20
	smallBase = 1 << 7
	jitter    = 10
)

// Shape is the concrete size and universe of one bitmap.
type Shape struct {
	Size     uint64
	Universe uint64
}

// DeriveShape draws a bitmap shape for the large and dense levels. Sizes sit
// within ±10 of 2^20 (large) or 2^7 (small); a dense bitmap fills two thirds
// of its universe, a sparse one a sixty-fourth.
func DeriveShape(r *rand.Rand, large, dense bool) Shape {
	base := uint64(smallBase)
	if large {
		base = largeBase
	}
	size := base - jitter + r.Uint64N(2*jitter+1)

	ub := 64 * size
	if dense {
		ub = 3 * size / 2
	}
	return Shape{Size: size, Universe: ub + r.Uint64N(jitter+1)}
}

// Shapes draws bitmap 1 then bitmap 2.
func (a Assignment) Shapes(r *rand.Rand) (Shape, Shape) {
	s1 := DeriveShape(r, a[Large1], a[Dense1])
	s2 := DeriveShape(r, a[Large2], a[Dense2])
	return s1, s2
}
