package render

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/clustermap/internal/geometry"
)

// HullPolygon converts an open hull ring to a go-geom polygon, closing
// the ring explicitly. Returns nil for degenerate hulls.
func HullPolygon(hull []geometry.Point) *geom.Polygon {
	if len(hull) < 3 {
		return nil
	}

	flat := make([]float64, 0, (len(hull)+1)*2)
	for _, p := range hull {
		flat = append(flat, p.X, p.Y)
	}
	flat = append(flat, hull[0].X, hull[0].Y)

	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(4326)
}

// FeatureCollection builds a GeoJSON feature collection from cluster
// layers, one polygon feature per cluster with id, size and tags
// properties.
func FeatureCollection(layers []ClusterLayer) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, l := range layers {
		poly := HullPolygon(l.Hull)
		if poly == nil {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: poly,
			Properties: map[string]any{
				"cluster": l.ID,
				"count":   l.Count,
				"tags":    l.Tags,
				"color":   l.Color,
			},
		})
	}
	return fc
}

// WriteGeoJSON serializes the cluster layers as a GeoJSON feature
// collection.
func WriteGeoJSON(w io.Writer, layers []ClusterLayer) error {
	data, err := FeatureCollection(layers).MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "render: marshal geojson")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "render: write geojson")
	}
	return nil
}
