package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/clustermap/internal/cluster"
	"github.com/sells-group/clustermap/internal/geometry"
)

// Options selects what goes on the map.
type Options struct {
	Title      string
	ShowPoints bool
	ShowNoise  bool
}

// ClusterLayer is one cluster's polygon layer.
type ClusterLayer struct {
	ID    int              `json:"id"`
	Color string           `json:"color"`
	Hull  []geometry.Point `json:"hull"` // open CCW ring, X=lng Y=lat
	Count int              `json:"count"`
	Tags  []string         `json:"tags"`
}

// Tooltip is the polygon hover text.
func (l ClusterLayer) Tooltip() string {
	return fmt.Sprintf("Cluster %d (n=%d)<br/>Tags: %s", l.ID, l.Count, strings.Join(l.Tags, ", "))
}

// Marker is one point marker.
type Marker struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Color   string  `json:"color"`
	Cluster int     `json:"cluster"`
	URL     string  `json:"url,omitempty"`
	Similar bool    `json:"similar"`
}

// Artifact is a fully assembled map, ready to serialize.
type Artifact struct {
	Title   string
	Style   Style
	Layers  []ClusterLayer
	Markers []Marker
}

// Layers computes one polygon layer per cluster whose convex hull is
// non-degenerate: clusters whose hull collapses to fewer than 3 vertices
// (too few distinct points, or all collinear) draw no polygon.
func Layers(points []cluster.Point, topTags map[int][]string) []ClusterLayer {
	groups := cluster.Group(points)
	ids := cluster.IDs(groups)

	var cm *Colormap
	if len(ids) > 0 {
		cm = Paired12(float64(ids[0]), float64(ids[len(ids)-1]))
	}

	var layers []ClusterLayer
	for _, id := range ids {
		group := groups[id]
		hull := geometry.ConvexHull(cluster.XY(group))
		if len(hull) < 3 {
			continue
		}
		layers = append(layers, ClusterLayer{
			ID:    id,
			Color: cm.Color(float64(id)),
			Hull:  hull,
			Count: len(group),
			Tags:  topTags[id],
		})
	}
	return layers
}

// Build assembles the map artifact: cluster polygon layers plus point
// markers. Noise points are excluded unless opts.ShowNoise is set; a
// degenerate cluster keeps its markers even without a polygon.
func Build(points []cluster.Point, topTags map[int][]string, style Style, opts Options) *Artifact {
	a := &Artifact{Title: opts.Title, Style: style}
	a.Layers = Layers(points, topTags)

	if !opts.ShowPoints {
		return a
	}

	ids := cluster.IDs(cluster.Group(points))
	var cm *Colormap
	if len(ids) > 0 {
		cm = Paired12(float64(ids[0]), float64(ids[len(ids)-1]))
	}

	for _, p := range points {
		if p.Cluster == cluster.Noise && !opts.ShowNoise {
			continue
		}
		color := style.NoiseColor
		if p.Cluster != cluster.Noise {
			color = cm.Color(float64(p.Cluster))
		}
		a.Markers = append(a.Markers, Marker{
			Lat:     p.Lat,
			Lng:     p.Lng,
			Color:   color,
			Cluster: p.Cluster,
			URL:     p.URL,
			Similar: p.SimilarYear,
		})
	}

	return a
}

// mapPayload is the JSON handed to the page script.
type mapPayload struct {
	CenterLat   float64        `json:"center_lat"`
	CenterLng   float64        `json:"center_lng"`
	Zoom        int            `json:"zoom"`
	TileURL     string         `json:"tile_url"`
	Attribution string         `json:"attribution"`
	Weight      int            `json:"weight"`
	FillOpacity float64        `json:"fill_opacity"`
	Radius      int            `json:"radius"`
	Opacity     float64        `json:"opacity"`
	Layers      []layerPayload `json:"layers"`
	Markers     []Marker       `json:"markers"`
}

type layerPayload struct {
	ClusterLayer
	LatLngs [][2]float64 `json:"latlngs"`
	Tooltip string       `json:"tooltip"`
}

// WriteHTML renders the Leaflet page.
func (a *Artifact) WriteHTML(w io.Writer) error {
	payload := mapPayload{
		CenterLat:   a.Style.CenterLat,
		CenterLng:   a.Style.CenterLng,
		Zoom:        a.Style.Zoom,
		TileURL:     a.Style.TileURL,
		Attribution: a.Style.Attribution,
		Weight:      a.Style.PolygonWeight,
		FillOpacity: a.Style.FillOpacity,
		Radius:      a.Style.MarkerRadius,
		Opacity:     a.Style.MarkerOpacity,
		Markers:     a.Markers,
	}
	for _, l := range a.Layers {
		lp := layerPayload{ClusterLayer: l, Tooltip: l.Tooltip()}
		for _, v := range l.Hull {
			// Leaflet wants [lat, lng] and closes the polygon itself.
			lp.LatLngs = append(lp.LatLngs, [2]float64{v.Y, v.X})
		}
		payload.Layers = append(payload.Layers, lp)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "render: marshal map payload")
	}

	return mapTemplate.Execute(w, map[string]any{
		"Title": a.Title,
		"Data":  template.JS(data),
	})
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1.0"/>
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var data = {{.Data}};

var map = L.map('map').setView([data.center_lat, data.center_lng], data.zoom);
L.tileLayer(data.tile_url, {attribution: data.attribution}).addTo(map);

data.layers.forEach(function (layer) {
  L.polygon(layer.latlngs, {
    color: layer.color,
    weight: data.weight,
    fill: true,
    fillColor: layer.color,
    fillOpacity: data.fill_opacity
  }).bindTooltip(layer.tooltip).addTo(map);
});

var similar = L.featureGroup();
var nonSimilar = L.featureGroup();

data.markers.forEach(function (m) {
  var opts = {
    radius: data.radius,
    color: m.color,
    fill: true,
    fillColor: m.color,
    fillOpacity: data.opacity
  };
  var popup = 'Cluster: ' + m.cluster;
  if (m.url) {
    popup += '<br/><a href="' + m.url + '" target="_blank">link</a>';
  }
  if (m.similar) {
    L.circleMarker([m.lat, m.lng], opts).bindPopup(popup).addTo(similar);
  } else {
    var r = data.radius;
    L.rectangle([[m.lat, m.lng], [m.lat, m.lng]], opts)
      .setBounds(L.latLng(m.lat, m.lng).toBounds(r * 4))
      .bindPopup(popup)
      .addTo(nonSimilar);
  }
});

similar.addTo(map);
nonSimilar.addTo(map);

L.control.layers(null, {
  'Similar year (circles)': similar,
  'Not similar year (squares)': nonSimilar
}).addTo(map);
</script>
</body>
</html>
`))
