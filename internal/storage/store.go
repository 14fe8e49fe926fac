// Package storage persists pipeline run reports to a single-file SQLite
// database: the volume report, per-zone summaries and classes as columns,
// and the produced grids as msgpack blobs for later re-aggregation.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"
)

// Store is a run report database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the report database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping report database: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_reports (
			id               TEXT PRIMARY KEY,
			created_at       TIMESTAMP NOT NULL,
			site             TEXT NOT NULL,
			estimator        TEXT NOT NULL,
			volume_aggregate REAL,
			cell_count       INTEGER,
			nodata_count     INTEGER,
			degraded_count   INTEGER,
			confidence       TEXT,
			zone_summaries   BLOB,
			depth_grid       BLOB,
			change_grid      BLOB
		);
		CREATE INDEX IF NOT EXISTS idx_run_reports_site
			ON run_reports (site, created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create report schema: %w", err)
	}
	return nil
}

// SaveReport inserts a report, assigning its ID and timestamp if unset.
func (s *Store) SaveReport(r *RunReport) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	summaries, err := msgpack.Marshal(r.Summaries)
	if err != nil {
		return fmt.Errorf("failed to encode zone summaries: %w", err)
	}
	var depthBlob, changeBlob []byte
	if r.DepthGrid != nil {
		if depthBlob, err = msgpack.Marshal(r.DepthGrid); err != nil {
			return fmt.Errorf("failed to encode depth grid: %w", err)
		}
	}
	if r.ChangeGrid != nil {
		if changeBlob, err = msgpack.Marshal(r.ChangeGrid); err != nil {
			return fmt.Errorf("failed to encode change grid: %w", err)
		}
	}

	_, err = s.db.Exec(`
		INSERT INTO run_reports
			(id, created_at, site, estimator, volume_aggregate, cell_count,
			 nodata_count, degraded_count, confidence, zone_summaries,
			 depth_grid, change_grid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.Site, r.Estimator,
		r.VolumeAggregate, r.CellCount, r.NoDataCount, r.DegradedCount,
		r.Confidence, summaries, depthBlob, changeBlob,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report %s: %w", r.ID, err)
	}
	return nil
}

// LoadReport fetches one report by ID.
func (s *Store) LoadReport(id string) (*RunReport, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, site, estimator, volume_aggregate, cell_count,
		       nodata_count, degraded_count, confidence, zone_summaries,
		       depth_grid, change_grid
		FROM run_reports WHERE id = ?`, id)

	r := &RunReport{}
	var summaries, depthBlob, changeBlob []byte
	err := row.Scan(&r.ID, &r.CreatedAt, &r.Site, &r.Estimator,
		&r.VolumeAggregate, &r.CellCount, &r.NoDataCount, &r.DegradedCount,
		&r.Confidence, &summaries, &depthBlob, &changeBlob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}

	if len(summaries) > 0 {
		if err := msgpack.Unmarshal(summaries, &r.Summaries); err != nil {
			return nil, fmt.Errorf("failed to decode zone summaries: %w", err)
		}
	}
	if len(depthBlob) > 0 {
		r.DepthGrid = &GridBlob{}
		if err := msgpack.Unmarshal(depthBlob, r.DepthGrid); err != nil {
			return nil, fmt.Errorf("failed to decode depth grid: %w", err)
		}
	}
	if len(changeBlob) > 0 {
		r.ChangeGrid = &GridBlob{}
		if err := msgpack.Unmarshal(changeBlob, r.ChangeGrid); err != nil {
			return nil, fmt.Errorf("failed to decode change grid: %w", err)
		}
	}
	return r, nil
}

// ListReports returns report metadata for a site, newest first. An empty
// site lists everything.
func (s *Store) ListReports(site string) ([]ReportMeta, error) {
	query := `SELECT id, created_at, site, estimator, confidence FROM run_reports`
	args := []any{}
	if site != "" {
		query += ` WHERE site = ?`
		args = append(args, site)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var metas []ReportMeta
	for rows.Next() {
		var m ReportMeta
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.Site, &m.Estimator, &m.Confidence); err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}
