package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/pkg/query"
)

func init() {
	dberr.RegisterConstraint(schema.CoreCategory.SlugKey, apperr.Conflict("A category with that slug already exists"))
	dberr.RegisterConstraint(schema.CoreGenre.SlugKey, apperr.Conflict("A genre with that slug already exists"))
}

// PostgresRepository implements [Repository] for one taxonomy table.
type PostgresRepository struct {
	pool *pgxpool.Pool
	kind Kind
}

// NewRepository creates a repository bound to kind's table.
func NewRepository(pool *pgxpool.Pool, kind Kind) *PostgresRepository {
	return &PostgresRepository{pool: pool, kind: kind}
}

/*
List retrieves a page of entries, newest first.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Entry: The page
  - int: Total matching count (window count)
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	table := repository.kind.Table

	var fromWhere strings.Builder
	var args []any
	argID := 1

	fromWhere.WriteString(fmt.Sprintf("FROM %s WHERE 1=1", table.Table))

	if filter.Search != "" {
		fromWhere.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", table.Name, argID))
		args = append(args, query.Contains(filter.Search))
		argID++
	}

	listQuery := fmt.Sprintf("SELECT %s, %s, %s, COUNT(*) OVER() AS total_count %s ORDER BY %s DESC LIMIT $%d OFFSET $%d",
		table.ID, table.Name, table.Slug,
		fromWhere.String(),
		table.ID,
		argID, argID+1,
	)

	rows, err := repository.pool.Query(context, listQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_taxonomy")
	}
	defer rows.Close()

	var entries []*Entry
	var totalCount int
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Slug, &totalCount); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_taxonomy")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_taxonomy")
	}

	totalCount, err = postgres.PageTotal(context, repository.pool, totalCount, len(entries), offset, fromWhere.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "count_taxonomy")
	}
	return entries, totalCount, nil
}

func (repository *PostgresRepository) GetBySlug(context context.Context, slug string) (*Entry, error) {
	table := repository.kind.Table
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		table.ID, table.Name, table.Slug, table.Table, table.Slug)

	entry := &Entry{}
	err := repository.pool.QueryRow(context, query, slug).Scan(&entry.ID, &entry.Name, &entry.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(repository.kind.Label)
		}
		return nil, dberr.Wrap(err, "get_taxonomy")
	}
	return entry, nil
}

func (repository *PostgresRepository) FindBySlugs(context context.Context, slugs []string) ([]*Entry, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	table := repository.kind.Table
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = ANY($1)`,
		table.ID, table.Name, table.Slug, table.Table, table.Slug)

	rows, err := repository.pool.Query(context, query, slugs)
	if err != nil {
		return nil, dberr.Wrap(err, "find_taxonomy_by_slugs")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Slug); err != nil {
			return nil, dberr.Wrap(err, "scan_taxonomy")
		}
		entries = append(entries, entry)
	}
	return entries, dberr.Wrap(rows.Err(), "find_taxonomy_by_slugs")
}

/*
Create persists a new entry and fills in its id.

Returns:
  - error: apperr.Conflict on a taken slug
*/
func (repository *PostgresRepository) Create(context context.Context, entry *Entry) error {
	table := repository.kind.Table
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s`,
		table.Table, table.Name, table.Slug, table.ID)

	err := repository.pool.QueryRow(context, query, entry.Name, entry.Slug).Scan(&entry.ID)
	return dberr.Wrap(err, "create_taxonomy")
}

/*
DeleteBySlug removes an entry. Titles filed under a deleted category keep
existing with no category; genre links are dropped.
*/
func (repository *PostgresRepository) DeleteBySlug(context context.Context, slug string) error {
	table := repository.kind.Table
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.Table, table.Slug)

	tag, err := repository.pool.Exec(context, query, slug)
	if err != nil {
		return dberr.Wrap(err, "delete_taxonomy")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(repository.kind.Label)
	}
	return nil
}
