// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

// Package postgres implements the catalog repository using PostgreSQL
// full-text search.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tonguedex/tonguedex/internal/catalog"
	"github.com/tonguedex/tonguedex/internal/store"
)

// Relevance weights. A name hit is worth twice a description hit.
const (
	nameWeight        = 2
	descriptionWeight = 1
)

// TongueRepository implements catalog.Repository using PostgreSQL.
type TongueRepository struct {
	db store.Querier
}

// NewTongueRepository creates a TongueRepository.
func NewTongueRepository(db store.Querier) *TongueRepository {
	return &TongueRepository{db: db}
}

// Search returns one page of entries plus the total match count.
//
// Count and page are separate queries on purpose: a zero limit or an
// offset past the end must still report the correct total, which a
// window-function total on the page query cannot do once the page is
// empty. The 'simple' text search configuration keeps matching
// language-neutral; terms arrive lower-cased from Query.Normalized.
func (r *TongueRepository) Search(ctx context.Context, q catalog.Query) (*catalog.Page, error) {
	q = q.Normalized()
	if q.Term == "" {
		return r.browse(ctx, q)
	}
	catalog.Searches.WithLabelValues("term").Inc()

	var total uint64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM mother_tongues
		WHERE to_tsvector('simple', lower(name) || ' ' || lower(description))
		      @@ plainto_tsquery('simple', $1)
	`, q.Term).Scan(&total)
	if err != nil {
		return nil, oops.Code("CATALOG_COUNT_FAILED").
			With("operation", "count matching tongues").
			Wrap(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, is_vetted, created_at
		FROM mother_tongues
		WHERE to_tsvector('simple', lower(name) || ' ' || lower(description))
		      @@ plainto_tsquery('simple', $1)
		ORDER BY $4 * ts_rank(to_tsvector('simple', lower(name)), plainto_tsquery('simple', $1))
		       + $5 * ts_rank(to_tsvector('simple', lower(description)), plainto_tsquery('simple', $1)) DESC,
		         id
		LIMIT $2 OFFSET $3
	`, q.Term, q.Limit, q.Offset, nameWeight, descriptionWeight)
	if err != nil {
		return nil, oops.Code("CATALOG_SEARCH_FAILED").
			With("operation", "search tongues").
			Wrap(err)
	}
	defer rows.Close()

	entries, err := collectTongues(rows)
	if err != nil {
		return nil, err
	}
	return &catalog.Page{Entries: entries, Total: total}, nil
}

// browse pages through the whole catalog in id order.
func (r *TongueRepository) browse(ctx context.Context, q catalog.Query) (*catalog.Page, error) {
	catalog.Searches.WithLabelValues("browse").Inc()

	var total uint64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM mother_tongues
	`).Scan(&total)
	if err != nil {
		return nil, oops.Code("CATALOG_COUNT_FAILED").
			With("operation", "count tongues").
			Wrap(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, is_vetted, created_at
		FROM mother_tongues
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, q.Limit, q.Offset)
	if err != nil {
		return nil, oops.Code("CATALOG_BROWSE_FAILED").
			With("operation", "browse tongues").
			Wrap(err)
	}
	defer rows.Close()

	entries, err := collectTongues(rows)
	if err != nil {
		return nil, err
	}
	return &catalog.Page{Entries: entries, Total: total}, nil
}

// GetByID retrieves one catalog entry.
func (r *TongueRepository) GetByID(ctx context.Context, id ulid.ULID) (*catalog.MotherTongue, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, is_vetted, created_at
		FROM mother_tongues
		WHERE id = $1
	`, id.String())

	tongue, err := scanTongue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CATALOG_NOT_FOUND").
			With("id", id.String()).
			Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CATALOG_GET_BY_ID_FAILED").
			With("operation", "get tongue by id").
			With("id", id.String()).
			Wrap(err)
	}
	return tongue, nil
}

// Insert stores a new catalog entry.
func (r *TongueRepository) Insert(ctx context.Context, tongue *catalog.MotherTongue) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO mother_tongues (id, name, description, is_vetted, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		tongue.ID.String(),
		tongue.Name,
		tongue.Description,
		tongue.IsVetted,
		tongue.CreatedAt,
	)
	if err != nil {
		return oops.Code("CATALOG_INSERT_FAILED").
			With("operation", "insert tongue").
			With("id", tongue.ID.String()).
			Wrap(err)
	}
	return nil
}

// collectTongues drains a row iterator into entries.
func collectTongues(rows pgx.Rows) ([]*catalog.MotherTongue, error) {
	var entries []*catalog.MotherTongue
	for rows.Next() {
		tongue, err := scanTongue(rows)
		if err != nil {
			return nil, oops.Code("CATALOG_SCAN_FAILED").
				With("operation", "scan tongue row").
				Wrap(err)
		}
		entries = append(entries, tongue)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CATALOG_ROWS_ERROR").
			With("operation", "iterate tongue rows").
			Wrap(err)
	}
	return entries, nil
}

// scanTongue scans one row into a MotherTongue. Callers handle pgx.ErrNoRows.
func scanTongue(row pgx.Row) (*catalog.MotherTongue, error) {
	var (
		idStr       string
		name        string
		description string
		isVetted    bool
		createdAt   time.Time
	)

	if err := row.Scan(&idStr, &name, &description, &isVetted, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("CATALOG_SCAN_FAILED").
			With("operation", "scan tongue").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("CATALOG_INVALID_ID").
			With("operation", "parse tongue id").
			With("id", idStr).
			Wrap(err)
	}

	return &catalog.MotherTongue{
		ID:          id,
		Name:        name,
		Description: description,
		IsVetted:    isVetted,
		CreatedAt:   createdAt,
	}, nil
}

// Compile-time interface check.
var _ catalog.Repository = (*TongueRepository)(nil)
