package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/clustermap/internal/cluster"
	"github.com/sells-group/clustermap/internal/ingest"
	"github.com/sells-group/clustermap/internal/render"
	"github.com/sells-group/clustermap/internal/store"
)

var (
	renderInputs      []string
	renderYear        string
	renderOutputDir   string
	renderStylePath   string
	renderGeoJSON     bool
	renderShapefile   bool
	renderShowNoise   bool
	renderNoPoints    bool
	renderSaveRun     bool
	renderConcurrency int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render cluster maps from point tables",
	Long: `Reads clustered point tables (CSV or XLSX), computes a convex hull
polygon per cluster, annotates each polygon with the cluster's most
frequent tags, and writes an interactive HTML map per input file.

Examples:
  # Single file, HTML map only
  clustermap render --input 2017_points.csv

  # All formats, noise layer included
  clustermap render --input 2017_points.csv --geojson --shapefile --show-noise

  # Batch render with explicit output directory
  clustermap render --input 2016.csv --input 2017.csv --input 2018.csv -o ./maps`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if len(renderInputs) == 0 {
			return eris.New("render: at least one --input is required")
		}

		outputDir := renderOutputDir
		if outputDir == "" {
			outputDir = cfg.Render.OutputDir
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return eris.Wrap(err, "render: create output dir")
		}

		style, err := loadStyle(cfg, renderStylePath)
		if err != nil {
			return err
		}

		var st store.Store
		if renderSaveRun {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(renderConcurrency)

		for _, input := range renderInputs {
			g.Go(func() error {
				return renderOne(gctx, st, input, outputDir, style)
			})
		}
		return g.Wait()
	},
}

func init() {
	renderCmd.Flags().StringSliceVarP(&renderInputs, "input", "i", nil, "point table file (.csv or .xlsx); repeatable")
	renderCmd.Flags().StringVar(&renderYear, "year", "", "year label for the map title and file name (default: derived from the file name)")
	renderCmd.Flags().StringVarP(&renderOutputDir, "output-dir", "o", "", "output directory (default from config)")
	renderCmd.Flags().StringVar(&renderStylePath, "style", "", "YAML style file")
	renderCmd.Flags().BoolVar(&renderGeoJSON, "geojson", false, "also write a GeoJSON feature collection of the hulls")
	renderCmd.Flags().BoolVar(&renderShapefile, "shapefile", false, "also write a polygon shapefile of the hulls")
	renderCmd.Flags().BoolVar(&renderShowNoise, "show-noise", false, "include noise points (cluster -1)")
	renderCmd.Flags().BoolVar(&renderNoPoints, "no-points", false, "draw polygons only, no point markers")
	renderCmd.Flags().BoolVar(&renderSaveRun, "save-run", false, "record the render in the run store")
	renderCmd.Flags().IntVar(&renderConcurrency, "concurrency", 4, "max concurrent input files")
	rootCmd.AddCommand(renderCmd)
}

// renderOne processes a single input file end to end.
func renderOne(ctx context.Context, st store.Store, input, outputDir string, style render.Style) error {
	year := renderYear
	if year == "" {
		year = yearFromPath(input)
	}
	log := zap.L().With(zap.String("input", input), zap.String("year", year))

	var run *store.Run
	if st != nil {
		var err error
		run, err = st.CreateRun(ctx, input, year)
		if err != nil {
			return err
		}
	}

	artifactPath, clusters, points, err := renderFile(ctx, input, outputDir, year, style)
	if st != nil && run != nil {
		if err != nil {
			if ferr := st.FailRun(ctx, run.ID); ferr != nil {
				log.Warn("failed to mark run failed", zap.Error(ferr))
			}
		} else if cerr := st.CompleteRun(ctx, run.ID, artifactPath, clusters, points); cerr != nil {
			log.Warn("failed to mark run complete", zap.Error(cerr))
		}
	}
	if err != nil {
		return err
	}

	log.Info("cluster map saved",
		zap.String("path", artifactPath),
		zap.Int("clusters", clusters),
		zap.Int("points", points),
	)
	return nil
}

// renderFile ingests one point table and writes the requested artifacts.
func renderFile(ctx context.Context, input, outputDir, year string, style render.Style) (string, int, int, error) {
	points, err := ingest.ReadPoints(ctx, input, ingestCSVOptions(cfg), ingestSchema(cfg))
	if err != nil {
		return "", 0, 0, err
	}

	topTags := cluster.TopTags(points, cluster.ExcludeSet(cfg.Tags.Exclude), cfg.Tags.TopN)

	artifact := render.Build(points, topTags, style, render.Options{
		Title:      year + " clusters",
		ShowPoints: !renderNoPoints,
		ShowNoise:  renderShowNoise,
	})

	htmlPath := filepath.Join(outputDir, year+"_clusters_map.html")
	if err := writeArtifact(htmlPath, artifact.WriteHTML); err != nil {
		return "", 0, 0, err
	}

	if renderGeoJSON {
		path := strings.TrimSuffix(htmlPath, ".html") + ".geojson"
		if err := writeArtifact(path, func(w io.Writer) error {
			return render.WriteGeoJSON(w, artifact.Layers)
		}); err != nil {
			return "", 0, 0, err
		}
	}

	if renderShapefile {
		path := strings.TrimSuffix(htmlPath, ".html") + ".shp"
		if err := render.WriteShapefile(path, artifact.Layers); err != nil {
			return "", 0, 0, err
		}
	}

	return htmlPath, len(artifact.Layers), len(points), nil
}

func writeArtifact(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	if err := write(f); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "render: close %s", path)
	}
	return nil
}
