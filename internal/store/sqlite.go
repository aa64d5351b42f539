package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/clustermap/internal/cluster"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens a SQLite database at the given path and configures WAL mode.
func Open(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS render_runs (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	year          TEXT NOT NULL,
	clusters      INTEGER NOT NULL DEFAULT 0,
	points        INTEGER NOT NULL DEFAULT 0,
	artifact_path TEXT,
	status        TEXT NOT NULL DEFAULT 'pending',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS points (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	source       TEXT NOT NULL,
	year         TEXT NOT NULL,
	cluster      INTEGER NOT NULL,
	lat          REAL NOT NULL,
	lng          REAL NOT NULL,
	tags         TEXT,
	url          TEXT,
	similar_year INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_render_runs_status ON render_runs(status);
CREATE INDEX IF NOT EXISTS idx_render_runs_year ON render_runs(year);
CREATE INDEX IF NOT EXISTS idx_points_year ON points(year);
CREATE INDEX IF NOT EXISTS idx_points_cluster ON points(year, cluster);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, source, year string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO render_runs (id, source, year, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, source, year, string(RunStatusPending), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{
		ID:        id,
		Source:    source,
		Year:      year,
		Status:    RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID, artifactPath string, clusters, points int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE render_runs SET status = ?, artifact_path = ?, clusters = ?, points = ?, updated_at = ? WHERE id = ?`,
		string(RunStatusComplete), artifactPath, clusters, points, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE render_runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, year, clusters, points, artifact_path, status, created_at, updated_at
		 FROM render_runs WHERE id = ?`, runID,
	)
	run, err := scanRun(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("sqlite: run %s not found", runID)
		}
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Year != "" {
		conds = append(conds, "year = ?")
		args = append(args, filter.Year)
	}

	query := `SELECT id, source, year, clusters, points, artifact_path, status, created_at, updated_at FROM render_runs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate runs")
	}
	return runs, nil
}

func (s *SQLiteStore) ImportPoints(ctx context.Context, source, year string, points []cluster.Point) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin import")
	}
	defer tx.Rollback() //nolint:errcheck

	// Re-importing a year replaces its point set.
	if _, err := tx.ExecContext(ctx, `DELETE FROM points WHERE year = ?`, year); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear points")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO points (source, year, cluster, lat, lng, tags, url, similar_year) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert point")
	}
	defer stmt.Close()

	for _, p := range points {
		var tags any
		if len(p.Tags) > 0 {
			data, err := json.Marshal(p.Tags)
			if err != nil {
				return 0, eris.Wrap(err, "sqlite: marshal tags")
			}
			tags = string(data)
		}
		similar := 0
		if p.SimilarYear {
			similar = 1
		}
		if _, err := stmt.ExecContext(ctx, source, year, p.Cluster, p.Lat, p.Lng, tags, p.URL, similar); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert point")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit import")
	}
	return len(points), nil
}

func (s *SQLiteStore) LoadPoints(ctx context.Context, year string) ([]cluster.Point, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cluster, lat, lng, tags, url, similar_year FROM points WHERE year = ? ORDER BY id`, year,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load points")
	}
	defer rows.Close()

	var points []cluster.Point
	for rows.Next() {
		var (
			p       cluster.Point
			tags    sql.NullString
			url     sql.NullString
			similar int
		)
		if err := rows.Scan(&p.Cluster, &p.Lat, &p.Lng, &tags, &url, &similar); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan point")
		}
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &p.Tags); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal tags")
			}
		}
		p.URL = url.String
		p.SimilarYear = similar != 0
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate points")
	}
	return points, nil
}

func (s *SQLiteStore) Years(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM points ORDER BY year`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list years")
	}
	defer rows.Close()

	var years []string
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan year")
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate years")
	}
	return years, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run      Run
		artifact sql.NullString
		status   string
	)
	if err := row.Scan(
		&run.ID, &run.Source, &run.Year, &run.Clusters, &run.Points,
		&artifact, &status, &run.CreatedAt, &run.UpdatedAt,
	); err != nil {
		return nil, err
	}
	run.ArtifactPath = artifact.String
	run.Status = RunStatus(status)
	return &run, nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}
