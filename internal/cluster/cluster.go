// Package cluster groups labeled geospatial points and summarizes their
// descriptive tags.
package cluster

import (
	"sort"

	"github.com/sells-group/clustermap/internal/geometry"
)

// Noise is the conventional cluster ID for unclustered points.
const Noise = -1

// Point is one record from a clustered point table.
type Point struct {
	Cluster     int      `json:"cluster"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Tags        []string `json:"tags,omitempty"`
	URL         string   `json:"url,omitempty"`
	SimilarYear bool     `json:"similar_year"`
}

// Group partitions points by cluster ID, preserving input order within
// each group.
func Group(points []Point) map[int][]Point {
	groups := make(map[int][]Point)
	for _, p := range points {
		groups[p.Cluster] = append(groups[p.Cluster], p)
	}
	return groups
}

// IDs returns the sorted cluster IDs present in groups, excluding noise.
func IDs(groups map[int][]Point) []int {
	ids := make([]int, 0, len(groups))
	for id := range groups {
		if id == Noise {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// XY projects a group onto geometry points with X=longitude, Y=latitude.
func XY(points []Point) []geometry.Point {
	pts := make([]geometry.Point, len(points))
	for i, p := range points {
		pts[i] = geometry.Point{X: p.Lng, Y: p.Lat}
	}
	return pts
}
