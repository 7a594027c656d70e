/*
Package reference manages the taxonomies titles are filed under: categories
(film, book, music) and genres.

Both are flat name/slug lists. The slug is the external identifier; numeric ids
never leave the storage layer.

# Core Responsibility

  - Lookup: Listing with name search and retrieval by slug.
  - Curation: Admin-only creation and deletion.
  - Resolution: Translating slugs supplied on title writes into rows.
*/
package reference

import (
	"context"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
)

// # Taxonomy Domain

// Entry is a single category or genre.
type Entry struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Kind describes one taxonomy: its table and the resource name used for
// access checks.
type Kind struct {
	Label    string
	Table    schema.RefTaxonomyTable
	Resource access.Resource
}

var (
	// Categories is the single-valued taxonomy of a title.
	Categories = Kind{Label: "Category", Table: schema.CoreCategory, Resource: access.ResourceCategory}

	// Genres is the multi-valued taxonomy of a title.
	Genres = Kind{Label: "Genre", Table: schema.CoreGenre, Resource: access.ResourceGenre}
)

// # Search Params

// Filter narrows a listing.
type Filter struct {
	// Search matches names case-insensitively by substring.
	Search string
}

// # Repository Contract

// Repository defines the data access contract for one taxonomy table.
type Repository interface {
	/*
		List retrieves a page of entries, newest first.

		Returns:
		  - []*Entry: The page
		  - int: Total matching count for pagination metadata
		  - error: Database execution errors
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Entry, int, error)

	// GetBySlug retrieves one entry. Returns apperr.NotFound when absent.
	GetBySlug(context context.Context, slug string) (*Entry, error)

	// FindBySlugs returns the entries whose slug is in slugs, in no particular order.
	FindBySlugs(context context.Context, slugs []string) ([]*Entry, error)

	// Create persists a new entry. A taken slug is an apperr.Conflict.
	Create(context context.Context, entry *Entry) error

	// DeleteBySlug removes an entry. Returns apperr.NotFound when absent.
	DeleteBySlug(context context.Context, slug string) error
}

// # Field Identifiers

const (
	FieldName   = "name"
	FieldSlug   = "slug"
	FieldSearch = "search"
)

// # Field Limits

const (
	MaxNameLength = 200
	MaxSlugLength = 50
)
