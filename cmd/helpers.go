package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sells-group/clustermap/internal/config"
	"github.com/sells-group/clustermap/internal/ingest"
	"github.com/sells-group/clustermap/internal/render"
	"github.com/sells-group/clustermap/internal/store"
)

// initStore opens and migrates the run store configured in cfg.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// ingestSchema builds the point-table schema from config.
func ingestSchema(cfg *config.Config) ingest.Schema {
	schema := ingest.DefaultSchema()
	if cfg.Ingest.TagSeparator != "" {
		schema.TagSeparator = cfg.Ingest.TagSeparator
	}
	return schema
}

// ingestCSVOptions builds CSV parser options from config.
func ingestCSVOptions(cfg *config.Config) ingest.CSVOptions {
	return ingest.CSVOptions{Encoding: cfg.Ingest.Encoding}
}

// loadStyle resolves the map style: defaults, overridden by the config
// viewport, overridden by an explicit style file.
func loadStyle(cfg *config.Config, stylePath string) (render.Style, error) {
	style := render.DefaultStyle()
	style.CenterLat = cfg.Map.CenterLat
	style.CenterLng = cfg.Map.CenterLng
	style.Zoom = cfg.Map.Zoom

	if stylePath == "" {
		stylePath = cfg.Render.StylePath
	}
	if stylePath == "" {
		return style, nil
	}

	loaded, err := render.LoadStyle(stylePath)
	if err != nil {
		return style, err
	}
	// The style file wins over the config viewport only for keys it sets;
	// LoadStyle starts from DefaultStyle, so re-apply the config viewport
	// when the file left it untouched.
	def := render.DefaultStyle()
	if loaded.CenterLat == def.CenterLat && loaded.CenterLng == def.CenterLng {
		loaded.CenterLat = style.CenterLat
		loaded.CenterLng = style.CenterLng
	}
	if loaded.Zoom == def.Zoom {
		loaded.Zoom = style.Zoom
	}
	return loaded, nil
}

// yearFromPath guesses a year label from a file name like
// "2017_points.csv"; falls back to the bare file name.
func yearFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.IndexAny(base, "_-"); i > 0 {
		prefix := base[:i]
		if len(prefix) == 4 && strings.Trim(prefix, "0123456789") == "" {
			return prefix
		}
	}
	return base
}
