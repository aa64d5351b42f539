package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/clustermap/internal/cluster"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPoints_CSV(t *testing.T) {
	path := writeTempCSV(t, `cluster,lat,long,tags,url,similar_year
0,45.76,4.83,bar;restaurant,https://example.com/a,true
0,45.77,4.84,bar,https://example.com/b,false
-1,45.70,4.80,,,false
`)

	points, err := ReadPoints(context.Background(), path, CSVOptions{}, DefaultSchema())
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, cluster.Point{
		Cluster:     0,
		Lat:         45.76,
		Lng:         4.83,
		Tags:        []string{"bar", "restaurant"},
		URL:         "https://example.com/a",
		SimilarYear: true,
	}, points[0])

	assert.False(t, points[1].SimilarYear)
	assert.Equal(t, cluster.Noise, points[2].Cluster)
	assert.Nil(t, points[2].Tags)
}

func TestReadPoints_SkipsMalformedRows(t *testing.T) {
	path := writeTempCSV(t, `cluster,lat,long
0,45.76,4.83
0,not-a-lat,4.84
oops,45.77,4.85
1,45.78,4.86
`)

	points, err := ReadPoints(context.Background(), path, CSVOptions{}, DefaultSchema())
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, 0, points[0].Cluster)
	assert.Equal(t, 1, points[1].Cluster)
}

func TestReadPoints_FloatClusterIDs(t *testing.T) {
	path := writeTempCSV(t, `cluster,lat,long
3.0,45.76,4.83
`)

	points, err := ReadPoints(context.Background(), path, CSVOptions{}, DefaultSchema())
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.Equal(t, 3, points[0].Cluster)
}

func TestReadPoints_MissingRequiredColumn(t *testing.T) {
	path := writeTempCSV(t, `cluster,lat
0,45.76
`)

	_, err := ReadPoints(context.Background(), path, CSVOptions{}, DefaultSchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "long")
}

func TestReadPoints_HeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "cluster,lat,long\n")

	points, err := ReadPoints(context.Background(), path, CSVOptions{}, DefaultSchema())
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestReadPoints_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.parquet")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := ReadPoints(context.Background(), path, CSVOptions{}, DefaultSchema())
	assert.Error(t, err)
}

func TestReadPoints_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("points")
	require.NoError(t, err)

	addRow := func(cells ...string) {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().Value = c
		}
	}
	addRow("cluster", "lat", "long", "tags", "url", "similar_year")
	addRow("2", "45.76", "4.83", "museum", "https://example.com/m", "1")
	addRow("2", "45.77", "4.84", "museum;garden", "", "0")

	path := filepath.Join(t.TempDir(), "points.xlsx")
	require.NoError(t, f.Save(path))

	points, err := ReadPoints(context.Background(), path, CSVOptions{}, DefaultSchema())
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, 2, points[0].Cluster)
	assert.True(t, points[0].SimilarYear)
	assert.Equal(t, []string{"museum", "garden"}, points[1].Tags)
}

func TestReadPoints_CustomSchema(t *testing.T) {
	path := writeTempCSV(t, `group_id,latitude,longitude,labels
5,45.76,4.83,"a|b|c"
`)

	schema := Schema{
		Cluster:      "group_id",
		Lat:          "latitude",
		Lng:          "longitude",
		Tags:         "labels",
		TagSeparator: "|",
	}

	points, err := ReadPoints(context.Background(), path, CSVOptions{}, schema)
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.Equal(t, 5, points[0].Cluster)
	assert.Equal(t, []string{"a", "b", "c"}, points[0].Tags)
}
