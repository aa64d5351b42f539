package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvexHull_SquareWithInteriorPoint(t *testing.T) {
	pts := []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2}}
	hull := ConvexHull(pts)

	require.Len(t, hull, 4)
	assert.Equal(t, []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, hull)
}

func TestConvexHull_Triangle(t *testing.T) {
	hull := ConvexHull([]Point{{0, 0}, {3, 0}, {1, 2}})

	require.Len(t, hull, 3)
	assert.Positive(t, SignedArea(hull), "hull must wind counter-clockwise")
	assert.ElementsMatch(t, []Point{{0, 0}, {3, 0}, {1, 2}}, hull)
}

func TestConvexHull_CollinearPointsPruned(t *testing.T) {
	hull := ConvexHull([]Point{{0, 0}, {1, 0}, {2, 0}})

	assert.Equal(t, []Point{{0, 0}, {2, 0}}, hull,
		"collinear input keeps only the two extremes")
}

func TestConvexHull_CollinearEdgeMidpointExcluded(t *testing.T) {
	// (2,0) sits on the bottom edge of the square and is not a vertex.
	pts := []Point{{0, 0}, {2, 0}, {4, 0}, {4, 4}, {0, 4}}
	hull := ConvexHull(pts)

	assert.Equal(t, []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, hull)
}

func TestConvexHull_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
	}{
		{"empty", nil},
		{"single", []Point{{1, 1}}},
		{"two distinct", []Point{{0, 0}, {1, 1}}},
		{"all identical", []Point{{1, 1}, {1, 1}, {1, 1}}},
		{"two distinct with duplicates", []Point{{0, 0}, {0, 0}, {1, 1}, {1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ConvexHull(tt.pts))
		})
	}
}

func TestConvexHull_DuplicatesIgnored(t *testing.T) {
	base := []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2}}
	dup := append([]Point{}, base...)
	dup = append(dup, base...)
	dup = append(dup, Point{2, 2}, Point{4, 4})

	assert.Equal(t, ConvexHull(base), ConvexHull(dup))
}

func TestConvexHull_OrderInvariant(t *testing.T) {
	pts := []Point{
		{0, 0}, {4, 0}, {4, 4}, {0, 4},
		{2, 2}, {1, 3}, {3, 1}, {2, 0.5},
	}
	want := ConvexHull(pts)
	require.NotEmpty(t, want)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Point{}, pts...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		// The chains always start from the lexicographic minimum, so the
		// result is identical, not merely a rotation.
		assert.Equal(t, want, ConvexHull(shuffled))
	}
}

func TestConvexHull_Idempotent(t *testing.T) {
	pts := []Point{{0, 0}, {5, 1}, {6, 4}, {2, 6}, {-1, 3}, {2, 2}, {3, 3}}
	hull := ConvexHull(pts)
	require.NotEmpty(t, hull)

	assert.Equal(t, hull, ConvexHull(hull))
}

func TestConvexHull_SubsetOfInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := make([]Point, 200)
	seen := make(map[Point]bool, len(pts))
	for i := range pts {
		pts[i] = Point{rng.Float64() * 10, rng.Float64() * 10}
		seen[pts[i]] = true
	}

	for _, v := range ConvexHull(pts) {
		assert.True(t, seen[v], "hull vertex %v not in input", v)
	}
}

func TestConvexHull_InputUnmodified(t *testing.T) {
	pts := []Point{{3, 1}, {0, 0}, {1, 2}, {3, 1}}
	orig := append([]Point{}, pts...)

	ConvexHull(pts)

	assert.Equal(t, orig, pts)
}

func TestConvexHull_AllVerticesAreExtreme(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	pts := make([]Point, 100)
	for i := range pts {
		pts[i] = Point{rng.Float64() * 100, rng.Float64() * 100}
	}

	hull := ConvexHull(pts)
	require.GreaterOrEqual(t, len(hull), 3)
	assert.Positive(t, SignedArea(hull))

	// Every consecutive triple must be a strict left turn; a zero cross
	// would mean a redundant midpoint survived pruning.
	n := len(hull)
	for i := 0; i < n; i++ {
		c := Cross(hull[i], hull[(i+1)%n], hull[(i+2)%n])
		assert.Positive(t, c, "vertices %d..%d are not a strict left turn", i, i+2)
	}
}

func TestCross(t *testing.T) {
	o, a, b := Point{0, 0}, Point{1, 0}, Point{0, 1}

	assert.Positive(t, Cross(o, a, b), "counter-clockwise")
	assert.Negative(t, Cross(o, b, a), "clockwise")
	assert.Zero(t, Cross(o, a, Point{2, 0}), "collinear")
}

func TestSignedArea(t *testing.T) {
	ccw := []Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	assert.InDelta(t, 8.0, SignedArea(ccw), 1e-12)

	cw := []Point{{0, 2}, {2, 2}, {2, 0}, {0, 0}}
	assert.InDelta(t, -8.0, SignedArea(cw), 1e-12)
}
