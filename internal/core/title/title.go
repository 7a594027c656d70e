// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package title manages the works that reviews are written about.

# Shapes

Reads return [Title] with the category and genres expanded into objects and a
rating computed from the reviews at read time. Writes accept and return slugs
([WriteView]). The asymmetry is part of the public API.
*/
package title

import (
	"context"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/core/reference"
)

// # Domain Entities

// Title is the read model of a work.
type Title struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Year        *int               `json:"year"`
	Rating      *float64           `json:"rating"`
	Description string             `json:"description"`
	Genre       []*reference.Entry `json:"genre"`
	Category    *reference.Entry   `json:"category"`
}

// WriteView is returned by create and update.
type WriteView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Year        *int     `json:"year"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

// Record is the persisted shape of a title.
type Record struct {
	ID          int64
	Name        string
	Year        *int
	Description string
	CategoryID  *int64
	GenreIDs    []int64
}

// ScoreSummary aggregates the review scores of one title.
type ScoreSummary struct {
	Count int
	Sum   int64
}

// Mean returns the arithmetic mean of the scores, or nil when there are none.
func (summary ScoreSummary) Mean() *float64 {
	if summary.Count == 0 {
		return nil
	}
	mean := float64(summary.Sum) / float64(summary.Count)
	return &mean
}

// # Search Params

// Filter narrows a title listing. Empty fields do not filter.
type Filter struct {
	Category string // Category slug
	Genre    string // Genre slug
	Name     string // Case-insensitive substring
	Year     *int
}

// # Contracts

// Repository defines the persistence contract for titles.
type Repository interface {
	/*
		List retrieves a page of titles, newest first, with category and genres
		expanded. Rating is left unset.

		Returns:
		  - []*Title: The page
		  - int: Total matching count
		  - error: Storage failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error)

	// GetByID retrieves one title with category and genres expanded.
	// Returns apperr.NotFound when absent.
	GetByID(context context.Context, id int64) (*Title, error)

	// Exists reports whether a title with id is stored.
	Exists(context context.Context, id int64) (bool, error)

	// Create inserts the record with its genre links and fills in its id.
	Create(context context.Context, record *Record) error

	// Update rewrites the record. Genre links are replaced only when replaceGenres is set.
	Update(context context.Context, record *Record, replaceGenres bool) error

	// Delete removes a title. Its reviews and comments go with it.
	Delete(context context.Context, id int64) error

	// ScoreSummaries returns review aggregates keyed by title id. Titles
	// without reviews are absent from the map.
	ScoreSummaries(context context.Context, ids []int64) (map[int64]ScoreSummary, error)
}

// TaxonomyResolver turns slugs on a write into stored taxonomy entries.
type TaxonomyResolver interface {
	Resolve(context context.Context, field string, slugs []string) ([]*reference.Entry, error)
}

// Authorizer is the access check the service depends on.
type Authorizer interface {
	Authorize(request access.Request) error
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldYear        = "year"
	FieldDescription = "description"
	FieldGenre       = "genre"
	FieldCategory    = "category"
)

// # Field Limits

const (
	MaxNameLength = 200

	// MinYear and MaxYear bound the stored release year. Writes additionally
	// reject years after the current one.
	MinYear = 0
	MaxYear = 32767
)
