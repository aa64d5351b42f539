package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/clustermap/internal/cluster"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run, err := s.CreateRun(ctx, "points.csv", "2017")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusPending, run.Status)

	require.NoError(t, s.CompleteRun(ctx, run.ID, "/tmp/2017_clusters_map.html", 4, 120))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusComplete, got.Status)
	assert.Equal(t, "/tmp/2017_clusters_map.html", got.ArtifactPath)
	assert.Equal(t, 4, got.Clusters)
	assert.Equal(t, 120, got.Points)
}

func TestFailRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run, err := s.CreateRun(ctx, "points.csv", "2018")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
}

func TestRunNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetRun(ctx, "missing")
	assert.Error(t, err)
	assert.Error(t, s.CompleteRun(ctx, "missing", "", 0, 0))
	assert.Error(t, s.FailRun(ctx, "missing"))
}

func TestListRuns_Filtered(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateRun(ctx, "a.csv", "2017")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "b.csv", "2018")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, a.ID, "a.html", 2, 10))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	byYear, err := s.ListRuns(ctx, RunFilter{Year: "2018"})
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	assert.Equal(t, "b.csv", byYear[0].Source)
}

func TestImportAndLoadPoints(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pts := []cluster.Point{
		{Cluster: 0, Lat: 45.76, Lng: 4.83, Tags: []string{"bar", "cafe"}, URL: "https://example.com/a", SimilarYear: true},
		{Cluster: cluster.Noise, Lat: 45.70, Lng: 4.80},
	}

	n, err := s.ImportPoints(ctx, "points.csv", "2017", pts)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := s.LoadPoints(ctx, "2017")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, pts[0], loaded[0])
	assert.Equal(t, pts[1], loaded[1])

	years, err := s.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2017"}, years)
}

func TestImportPoints_ReplacesYear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.ImportPoints(ctx, "old.csv", "2017", []cluster.Point{
		{Cluster: 0, Lat: 1, Lng: 1},
		{Cluster: 0, Lat: 2, Lng: 2},
	})
	require.NoError(t, err)

	_, err = s.ImportPoints(ctx, "new.csv", "2017", []cluster.Point{
		{Cluster: 1, Lat: 3, Lng: 3},
	})
	require.NoError(t, err)

	loaded, err := s.LoadPoints(ctx, "2017")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 1, loaded[0].Cluster)
}

func TestLoadPoints_EmptyYear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	loaded, err := s.LoadPoints(ctx, "1999")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
