// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

// Package catalog defines the mother-tongue catalog and its search
// contract. Entries are created by an out-of-band ingestion process and
// are read-only from everything else's perspective.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested catalog entry does not exist.
var ErrNotFound = errors.New("not found")

// MotherTongue is one catalog entry.
type MotherTongue struct {
	ID          ulid.ULID
	Name        string
	Description string
	IsVetted    bool
	CreatedAt   time.Time
}

// NewMotherTongue creates a validated MotherTongue with a fresh ID.
func NewMotherTongue(name, description string, vetted bool) (*MotherTongue, error) {
	if name == "" {
		return nil, oops.Code("CATALOG_INVALID_ENTRY").Errorf("name cannot be empty")
	}
	return &MotherTongue{
		ID:          ulid.Make(),
		Name:        name,
		Description: description,
		IsVetted:    vetted,
		CreatedAt:   time.Now(),
	}, nil
}

// Query is one search/pagination request.
type Query struct {
	// Term is the free-text search term. Empty means "everything in
	// default order".
	Term string

	Offset uint32
	Limit  uint32
}

// Normalized returns the query with the term lower-cased and trimmed.
// Matching is case-insensitive by contract, so the engine normalizes
// once here rather than trusting every caller.
func (q Query) Normalized() Query {
	q.Term = strings.ToLower(strings.TrimSpace(q.Term))
	return q
}

// Page is one page of results plus the total match count the caller
// needs to render pagination.
type Page struct {
	Entries []*MotherTongue

	// Total is the number of entries matching the query across the
	// whole table, not the number on this page. With no term it is the
	// full table cardinality; with a term it counts only entries with
	// a positive relevance score.
	Total uint64
}

// Repository is the catalog store.
//
// Search ranks term queries by weighted relevance: a name match counts
// double a description match, descending, ties broken by id. Without a
// term, entries come back in id order (ULIDs sort by creation time, so
// this is insertion order). Offsets past the end and zero limits yield
// an empty page with a correct Total, never an error.
type Repository interface {
	Search(ctx context.Context, q Query) (*Page, error)

	// GetByID retrieves one entry for the detail page. Returns
	// ErrNotFound when no entry exists.
	GetByID(ctx context.Context, id ulid.ULID) (*MotherTongue, error)

	// Insert stores a new entry. Used by ingestion and seeding only.
	Insert(ctx context.Context, tongue *MotherTongue) error
}
