package render

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/clustermap/internal/geometry"
)

// WriteShapefile writes the cluster hulls as a polygon shapefile with
// CLUSTER, COUNT and TAGS attributes. Shapefile outer rings wind
// clockwise, so each hull ring is reversed on the way out.
func WriteShapefile(path string, layers []ClusterLayer) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrap(err, "render: create shapefile")
	}
	defer w.Close()

	fields := []shp.Field{
		shp.NumberField("CLUSTER", 10),
		shp.NumberField("COUNT", 10),
		shp.StringField("TAGS", 254),
	}
	w.SetFields(fields)

	row := 0
	for _, l := range layers {
		poly := shapePolygon(l.Hull)
		if poly == nil {
			continue
		}
		w.Write(poly)

		if err := w.WriteAttribute(row, 0, l.ID); err != nil {
			return eris.Wrap(err, "render: write cluster attribute")
		}
		if err := w.WriteAttribute(row, 1, l.Count); err != nil {
			return eris.Wrap(err, "render: write count attribute")
		}
		if err := w.WriteAttribute(row, 2, strings.Join(l.Tags, ", ")); err != nil {
			return eris.Wrap(err, "render: write tags attribute")
		}
		row++
	}

	return nil
}

// shapePolygon converts an open CCW hull ring to a closed clockwise
// shapefile polygon. Returns nil for degenerate hulls.
func shapePolygon(hull []geometry.Point) *shp.Polygon {
	if len(hull) < 3 {
		return nil
	}

	ring := make([]shp.Point, 0, len(hull)+1)
	for i := len(hull) - 1; i >= 0; i-- {
		ring = append(ring, shp.Point{X: hull[i].X, Y: hull[i].Y})
	}
	ring = append(ring, ring[0])

	pl := shp.NewPolyLine([][]shp.Point{ring})
	poly := shp.Polygon(*pl)
	return &poly
}
