package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/clustermap/internal/cluster"
	"github.com/sells-group/clustermap/internal/render"
	"github.com/sells-group/clustermap/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rendered maps and cluster GeoJSON over HTTP",
	Long: `Starts an HTTP server exposing rendered map artifacts under /maps/,
run history at /api/runs, and per-year cluster hulls as GeoJSON at
/api/clusters/{year} (computed from the imported point store).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, err := st.ListRuns(req.Context(), store.RunFilter{Limit: 100})
			if err != nil {
				zap.L().Error("list runs failed", zap.Error(err))
				http.Error(w, `{"error":"list runs failed"}`, http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(runs)
		})

		r.Get("/api/years", func(w http.ResponseWriter, req *http.Request) {
			years, err := st.Years(req.Context())
			if err != nil {
				zap.L().Error("list years failed", zap.Error(err))
				http.Error(w, `{"error":"list years failed"}`, http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(years)
		})

		r.Get("/api/clusters/{year}", func(w http.ResponseWriter, req *http.Request) {
			serveClusters(w, req, st)
		})

		if dir := cfg.Render.OutputDir; dir != "" {
			if _, err := os.Stat(dir); err == nil {
				r.Handle("/maps/*", http.StripPrefix("/maps/", http.FileServer(http.Dir(dir))))
			}
		}

		addr := fmt.Sprintf(":%d", port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		zap.L().Info("starting artifact server", zap.String("addr", addr))

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down artifact server")
			_ = srv.Close()
		}()

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "artifact server")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// serveClusters computes hulls for a stored year and writes them as a
// GeoJSON feature collection.
func serveClusters(w http.ResponseWriter, req *http.Request, st store.Store) {
	year := chi.URLParam(req, "year")

	points, err := st.LoadPoints(req.Context(), year)
	if err != nil {
		zap.L().Error("load points failed", zap.String("year", year), zap.Error(err))
		http.Error(w, `{"error":"load points failed"}`, http.StatusInternalServerError)
		return
	}
	if len(points) == 0 {
		http.Error(w, `{"error":"year not found"}`, http.StatusNotFound)
		return
	}

	topTags := cluster.TopTags(points, cluster.ExcludeSet(cfg.Tags.Exclude), cfg.Tags.TopN)
	layers := render.Layers(points, topTags)

	w.Header().Set("Content-Type", "application/geo+json")
	if err := render.WriteGeoJSON(w, layers); err != nil {
		zap.L().Error("write geojson failed", zap.String("year", year), zap.Error(err))
	}
}
