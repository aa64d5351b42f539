package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/clustermap/internal/cluster"
	"github.com/sells-group/clustermap/internal/geometry"
	"github.com/sells-group/clustermap/internal/ingest"
	"github.com/sells-group/clustermap/internal/render"
)

var (
	hullInput   string
	hullCluster int
)

var hullCmd = &cobra.Command{
	Use:   "hull",
	Short: "Print one cluster's convex hull as GeoJSON",
	Long: `Computes the convex hull of a single cluster's points and writes it
to stdout as a GeoJSON feature collection. A cluster whose hull is
degenerate (fewer than 3 distinct, non-collinear points) yields an
empty collection.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if hullInput == "" {
			return eris.New("hull: --input is required")
		}

		points, err := ingest.ReadPoints(ctx, hullInput, ingestCSVOptions(cfg), ingestSchema(cfg))
		if err != nil {
			return err
		}

		groups := cluster.Group(points)
		group, ok := groups[hullCluster]
		if !ok {
			return eris.Errorf("hull: cluster %d not present in %s", hullCluster, hullInput)
		}

		hull := geometry.ConvexHull(cluster.XY(group))
		if len(hull) < 3 {
			zap.L().Warn("degenerate hull",
				zap.Int("cluster", hullCluster),
				zap.Int("points", len(group)),
				zap.Int("hull_vertices", len(hull)),
			)
		}

		layer := render.ClusterLayer{ID: hullCluster, Hull: hull, Count: len(group)}
		return render.WriteGeoJSON(os.Stdout, []render.ClusterLayer{layer})
	},
}

func init() {
	hullCmd.Flags().StringVarP(&hullInput, "input", "i", "", "point table file (.csv or .xlsx)")
	hullCmd.Flags().IntVarP(&hullCluster, "cluster", "c", 0, "cluster ID")
	rootCmd.AddCommand(hullCmd)
}
