// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package poi

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jihop-dev/gilro/internal/config"
	"github.com/jihop-dev/gilro/internal/metrics"
	"github.com/jihop-dev/gilro/internal/models"
)

// PostgresRepository reads POI candidates from the places table.
//
// Expected schema:
//
//	CREATE TABLE places (
//	    id          TEXT PRIMARY KEY,
//	    address     TEXT NOT NULL DEFAULT '',
//	    lat         DOUBLE PRECISION,
//	    lng         DOUBLE PRECISION,
//	    has_coords  BOOLEAN NOT NULL DEFAULT false,
//	    description TEXT NOT NULL DEFAULT '',
//	    embedding   DOUBLE PRECISION[] NOT NULL DEFAULT '{}'
//	);
//
// Rows without resolved coordinates (has_coords = false) are never
// candidates; routing from a zero-value location would misprice every
// leg.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository opens a connection pool against the configured
// DSN and verifies connectivity.
func NewPostgresRepository(ctx context.Context, cfg config.DatabaseConfig) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection pool.
// Useful for tests driving a sqlmock or a shared pool.
func NewPostgresRepositoryFromDB(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// fetchCandidatesQuery selects candidates with resolved coordinates,
// ordered by id so pagination is stable across calls.
const fetchCandidatesQuery = `
	SELECT id, address, lat, lng, description, embedding
	FROM places
	WHERE has_coords = true
	ORDER BY id
	LIMIT $1 OFFSET $2`

// FetchCandidates implements Repository.
func (r *PostgresRepository) FetchCandidates(ctx context.Context, limit, offset int) ([]models.POICandidate, error) {
	start := time.Now()

	rows, err := r.db.QueryContext(ctx, fetchCandidatesQuery, limit, offset)
	metrics.RecordDBQuery("fetch_candidates", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []models.POICandidate
	for rows.Next() {
		var (
			c         models.POICandidate
			embedding pq.Float64Array
		)
		if err := rows.Scan(&c.ID, &c.Address, &c.Location.Lat, &c.Location.Lng, &c.Description, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		c.Embedding = []float64(embedding)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate place rows: %w", err)
	}

	return candidates, nil
}

// Ping verifies database connectivity, for readiness checks.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
