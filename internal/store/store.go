// Package store persists render runs and imported point sets in a local
// SQLite database.
package store

import (
	"context"
	"time"

	"github.com/sells-group/clustermap/internal/cluster"
)

// RunStatus tracks a render run through its lifecycle.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one render invocation.
type Run struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Year         string    `json:"year"`
	Clusters     int       `json:"clusters"`
	Points       int       `json:"points"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
	Status       RunStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status RunStatus `json:"status,omitempty"`
	Year   string    `json:"year,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for the renderer.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, source, year string) (*Run, error)
	CompleteRun(ctx context.Context, runID, artifactPath string, clusters, points int) error
	FailRun(ctx context.Context, runID string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// Point sets
	ImportPoints(ctx context.Context, source, year string, points []cluster.Point) (int, error)
	LoadPoints(ctx context.Context, year string) ([]cluster.Point, error)
	Years(ctx context.Context) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
