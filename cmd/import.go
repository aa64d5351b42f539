package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/clustermap/internal/ingest"
)

var (
	importInput string
	importYear  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a point table into the run store",
	Long:  "Parses a point table and stores it under a year label, replacing any previous import for that year.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importInput == "" {
			return eris.New("import: --input is required")
		}
		year := importYear
		if year == "" {
			year = yearFromPath(importInput)
		}

		points, err := ingest.ReadPoints(ctx, importInput, ingestCSVOptions(cfg), ingestSchema(cfg))
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.ImportPoints(ctx, importInput, year, points)
		if err != nil {
			return err
		}

		zap.L().Info("points imported",
			zap.String("source", importInput),
			zap.String("year", year),
			zap.Int("points", n),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "point table file (.csv or .xlsx)")
	importCmd.Flags().StringVar(&importYear, "year", "", "year label (default: derived from the file name)")
	rootCmd.AddCommand(importCmd)
}
