package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/clustermap/internal/cluster"
	"github.com/sells-group/clustermap/internal/ingest"
)

var (
	tagsInput  string
	tagsTopN   int
	tagsFormat string
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Summarize the most frequent tags per cluster",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if tagsInput == "" {
			return eris.New("tags: --input is required")
		}

		points, err := ingest.ReadPoints(ctx, tagsInput, ingestCSVOptions(cfg), ingestSchema(cfg))
		if err != nil {
			return err
		}

		n := tagsTopN
		if n <= 0 {
			n = cfg.Tags.TopN
		}
		top := cluster.TopTags(points, cluster.ExcludeSet(cfg.Tags.Exclude), n)

		switch tagsFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(top)
		case "text":
			formatTopTags(top)
			return nil
		default:
			return eris.Errorf("tags: unknown format %q", tagsFormat)
		}
	},
}

func init() {
	tagsCmd.Flags().StringVarP(&tagsInput, "input", "i", "", "point table file (.csv or .xlsx)")
	tagsCmd.Flags().IntVarP(&tagsTopN, "top", "n", 0, "number of tags per cluster (default from config)")
	tagsCmd.Flags().StringVar(&tagsFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(tagsCmd)
}

func formatTopTags(top map[int][]string) {
	ids := make([]int, 0, len(top))
	for id := range top {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CLUSTER\tTAGS")
	for _, id := range ids {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", id, strings.Join(top[id], ", "))
	}
	_ = w.Flush()
}
