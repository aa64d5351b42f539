package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/clustermap/internal/cluster"
)

func samplePoints() []cluster.Point {
	return []cluster.Point{
		{Cluster: 0, Lat: 45.760, Lng: 4.830, Tags: []string{"bar"}, SimilarYear: true},
		{Cluster: 0, Lat: 45.762, Lng: 4.830},
		{Cluster: 0, Lat: 45.761, Lng: 4.834, URL: "https://example.com/p"},
		{Cluster: 1, Lat: 45.770, Lng: 4.840},
		{Cluster: 1, Lat: 45.772, Lng: 4.840},
		{Cluster: 1, Lat: 45.771, Lng: 4.844},
		{Cluster: cluster.Noise, Lat: 45.750, Lng: 4.820},
	}
}

func TestBuild_LayersAndMarkers(t *testing.T) {
	a := Build(samplePoints(), map[int][]string{0: {"bar"}}, DefaultStyle(), Options{
		Title:      "2017 clusters",
		ShowPoints: true,
	})

	require.Len(t, a.Layers, 2)
	assert.Equal(t, 0, a.Layers[0].ID)
	assert.Equal(t, 3, a.Layers[0].Count)
	assert.Equal(t, []string{"bar"}, a.Layers[0].Tags)
	assert.Len(t, a.Layers[0].Hull, 3)

	// Noise excluded by default.
	assert.Len(t, a.Markers, 6)
	for _, m := range a.Markers {
		assert.NotEqual(t, cluster.Noise, m.Cluster)
	}
}

func TestBuild_ShowNoise(t *testing.T) {
	style := DefaultStyle()
	a := Build(samplePoints(), nil, style, Options{ShowPoints: true, ShowNoise: true})

	require.Len(t, a.Markers, 7)
	var noise *Marker
	for i := range a.Markers {
		if a.Markers[i].Cluster == cluster.Noise {
			noise = &a.Markers[i]
		}
	}
	require.NotNil(t, noise)
	assert.Equal(t, style.NoiseColor, noise.Color)
}

func TestBuild_NoPoints(t *testing.T) {
	a := Build(samplePoints(), nil, DefaultStyle(), Options{ShowPoints: false})

	assert.Len(t, a.Layers, 2)
	assert.Empty(t, a.Markers)
}

func TestBuild_DegenerateClusterSkipped(t *testing.T) {
	pts := []cluster.Point{
		// Two distinct points: no polygon possible.
		{Cluster: 0, Lat: 45.76, Lng: 4.83},
		{Cluster: 0, Lat: 45.77, Lng: 4.84},
		// Collinear: hull collapses to two extremes, still no polygon.
		{Cluster: 1, Lat: 45.70, Lng: 4.80},
		{Cluster: 1, Lat: 45.71, Lng: 4.80},
		{Cluster: 1, Lat: 45.72, Lng: 4.80},
	}

	a := Build(pts, nil, DefaultStyle(), Options{ShowPoints: true})

	assert.Empty(t, a.Layers)
	assert.Len(t, a.Markers, 5)
}

func TestBuild_DistinctClusterColors(t *testing.T) {
	a := Build(samplePoints(), nil, DefaultStyle(), Options{})

	require.Len(t, a.Layers, 2)
	assert.NotEqual(t, a.Layers[0].Color, a.Layers[1].Color)
}

func TestClusterLayerTooltip(t *testing.T) {
	l := ClusterLayer{ID: 3, Count: 12, Tags: []string{"bar", "cafe"}}

	assert.Equal(t, "Cluster 3 (n=12)<br/>Tags: bar, cafe", l.Tooltip())
}

func TestWriteHTML(t *testing.T) {
	a := Build(samplePoints(), map[int][]string{0: {"bar"}}, DefaultStyle(), Options{
		Title:      "2017 clusters",
		ShowPoints: true,
	})

	var buf bytes.Buffer
	require.NoError(t, a.WriteHTML(&buf))

	html := buf.String()
	assert.Contains(t, html, "<title>2017 clusters</title>")
	assert.Contains(t, html, "leaflet@1.9.4")
	assert.Contains(t, html, "L.polygon")
	assert.Contains(t, html, "L.circleMarker")
	assert.Contains(t, html, `"cluster":0`)
	// Both cluster polygons made it into the payload.
	assert.Equal(t, 2, strings.Count(html, `"latlngs"`))
}

func TestWriteHTML_EmptyMap(t *testing.T) {
	a := Build(nil, nil, DefaultStyle(), Options{Title: "empty"})

	var buf bytes.Buffer
	require.NoError(t, a.WriteHTML(&buf))
	assert.Contains(t, buf.String(), "<title>empty</title>")
}
