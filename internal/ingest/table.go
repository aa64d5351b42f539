package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/clustermap/internal/cluster"
)

// Schema names the point-table columns and how list-valued cells are split.
type Schema struct {
	Cluster      string
	Lat          string
	Lng          string
	Tags         string
	URL          string
	SimilarYear  string
	TagSeparator string
}

// DefaultSchema matches the exploration exports this tool was built for.
func DefaultSchema() Schema {
	return Schema{
		Cluster:      "cluster",
		Lat:          "lat",
		Lng:          "long",
		Tags:         "tags",
		URL:          "url",
		SimilarYear:  "similar_year",
		TagSeparator: ";",
	}
}

// ReadPoints loads a point table from path, dispatching on the file
// extension (.csv or .xlsx). Rows with unparseable coordinates or cluster
// IDs are skipped with a warning rather than failing the load.
func ReadPoints(ctx context.Context, path string, csvOpts CSVOptions, schema Schema) ([]cluster.Point, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readPointsCSV(ctx, path, csvOpts, schema)
	case ".xlsx":
		return readPointsXLSX(path, schema)
	default:
		return nil, eris.Errorf("ingest: unsupported file type %q", filepath.Ext(path))
	}
}

func readPointsCSV(ctx context.Context, path string, opts CSVOptions, schema Schema) ([]cluster.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open csv")
	}
	defer f.Close()

	headerCh := make(chan []string, 1)
	opts.HasHeader = true
	opts.HeaderCh = headerCh
	opts.TrimSpace = true

	rowCh, errCh := StreamCSV(ctx, f, opts)

	var (
		cols    map[string]int
		points  []cluster.Point
		skipped int
	)
	for row := range rowCh {
		if cols == nil {
			select {
			case header := <-headerCh:
				cols, err = columnIndex(header, schema)
				if err != nil {
					return nil, err
				}
			default:
				return nil, eris.New("ingest: csv missing header row")
			}
		}

		p, ok := parseRow(cols, row, schema)
		if !ok {
			skipped++
			continue
		}
		points = append(points, p)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}

	// A header-only file never saw a data row, so cols was never resolved;
	// still validate the header.
	if cols == nil {
		select {
		case header := <-headerCh:
			if _, err := columnIndex(header, schema); err != nil {
				return nil, err
			}
		default:
			return nil, eris.New("ingest: csv missing header row")
		}
	}

	if skipped > 0 {
		zap.L().Warn("skipped malformed rows", zap.String("path", path), zap.Int("skipped", skipped))
	}
	return points, nil
}

func readPointsXLSX(path string, schema Schema) ([]cluster.Point, error) {
	rows, err := ReadXLSX(path, XLSXOptions{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.New("ingest: xlsx missing header row")
	}

	cols, err := columnIndex(rows[0], schema)
	if err != nil {
		return nil, err
	}

	var (
		points  []cluster.Point
		skipped int
	)
	for _, row := range rows[1:] {
		p, ok := parseRow(cols, row, schema)
		if !ok {
			skipped++
			continue
		}
		points = append(points, p)
	}
	if skipped > 0 {
		zap.L().Warn("skipped malformed rows", zap.String("path", path), zap.Int("skipped", skipped))
	}
	return points, nil
}

// columnIndex maps header names to column positions and verifies the
// required columns are present. Tags, URL and similar-year are optional.
func columnIndex(header []string, schema Schema) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{schema.Cluster, schema.Lat, schema.Lng} {
		if _, ok := idx[required]; !ok {
			return nil, eris.Errorf("ingest: missing required column %q", required)
		}
	}
	return idx, nil
}

// parseRow coerces one row into a point. Returns ok=false when the
// cluster ID or either coordinate fails to parse.
func parseRow(cols map[string]int, row []string, schema Schema) (cluster.Point, bool) {
	var p cluster.Point

	id, ok := intField(cols, row, schema.Cluster)
	if !ok {
		return p, false
	}
	lat, ok := floatField(cols, row, schema.Lat)
	if !ok {
		return p, false
	}
	lng, ok := floatField(cols, row, schema.Lng)
	if !ok {
		return p, false
	}

	p.Cluster = id
	p.Lat = lat
	p.Lng = lng
	p.URL = stringField(cols, row, schema.URL)
	p.SimilarYear = boolField(cols, row, schema.SimilarYear)

	if raw := stringField(cols, row, schema.Tags); raw != "" {
		sep := schema.TagSeparator
		if sep == "" {
			sep = ";"
		}
		for _, tag := range strings.Split(raw, sep) {
			if tag = strings.TrimSpace(tag); tag != "" {
				p.Tags = append(p.Tags, tag)
			}
		}
	}

	return p, true
}

func stringField(cols map[string]int, row []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func intField(cols map[string]int, row []string, name string) (int, bool) {
	s := stringField(cols, row, name)
	if s == "" {
		return 0, false
	}
	// Some exports serialize cluster IDs as floats ("3.0").
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func floatField(cols map[string]int, row []string, name string) (float64, bool) {
	s := stringField(cols, row, name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func boolField(cols map[string]int, row []string, name string) bool {
	switch strings.ToLower(stringField(cols, row, name)) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}
