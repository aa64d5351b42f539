// Package geometry provides exact 2D primitives for cluster boundary
// construction. All comparisons are exact; no epsilon is applied, so
// near-collinear floating-point inputs are classified by the raw sign of
// the cross product.
package geometry

import "sort"

// Point is a 2D coordinate pair. Equality is value-based.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Less orders points lexicographically by X, then Y.
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

// Cross returns the 2D cross product of the vectors OA and OB.
// Positive means O->A->B is a counter-clockwise turn, negative clockwise,
// zero collinear.
func Cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// ConvexHull computes the convex hull of a point set using Andrew's
// monotone chain. Duplicates are removed first; if fewer than 3 distinct
// points remain, the hull is nil. The result is an open counter-clockwise
// ring containing only strict turning vertices: collinear boundary points
// are pruned, so a fully collinear input yields just its two extremes.
// The input slice is not modified.
func ConvexHull(points []Point) []Point {
	pts := sortedUnique(points)
	if len(pts) < 3 {
		return nil
	}

	lower := chain(pts)

	rev := make([]Point, len(pts))
	for i, p := range pts {
		rev[len(pts)-1-i] = p
	}
	upper := chain(rev)

	hull := make([]Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

// chain builds one half-hull over lexicographically ordered points,
// popping the tail while the last three points fail to make a strict
// left turn.
func chain(pts []Point) []Point {
	var c []Point
	for _, p := range pts {
		for len(c) >= 2 && Cross(c[len(c)-2], c[len(c)-1], p) <= 0 {
			c = c[:len(c)-1]
		}
		c = append(c, p)
	}
	return c
}

// sortedUnique returns a copy of points, sorted by (X, Y) with exact
// duplicates removed.
func sortedUnique(points []Point) []Point {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Less(pts[j]) })

	out := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			out = append(out, p)
		}
	}
	return out
}

// SignedArea returns twice the signed area of the ring formed by closing
// the vertex sequence. Positive for counter-clockwise winding.
func SignedArea(ring []Point) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum
}
