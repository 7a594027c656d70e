// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/pkg/query"
)

func init() {
	dberr.RegisterConstraint(schema.CoreTitle.YearCheck, apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: FieldYear, Message: fmt.Sprintf("Must not be less than %d", MinYear)},
	))
}

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL title repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// titleColumns and titleFrom form the projection shared by List and GetByID.
// The category columns are NULL for uncategorised titles.
var (
	titleColumns = fmt.Sprintf(`t.%s, t.%s, t.%s, t.%s, c.%s, c.%s, c.%s`,
		schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.Description,
		schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.Slug,
	)
	titleFrom = fmt.Sprintf(`
		FROM %s t
		LEFT JOIN %s c ON c.%s = t.%s`,
		schema.CoreTitle.Table,
		schema.CoreCategory.Table, schema.CoreCategory.ID, schema.CoreTitle.CategoryID,
	)
)

func scanTitle(row pgx.Row, extra ...any) (*Title, error) {
	var (
		title        Title
		categoryID   *int64
		categoryName *string
		categorySlug *string
	)
	dest := []any{&title.ID, &title.Name, &title.Year, &title.Description, &categoryID, &categoryName, &categorySlug}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if categoryID != nil {
		title.Category = &reference.Entry{ID: *categoryID, Name: *categoryName, Slug: *categorySlug}
	}
	title.Genre = []*reference.Entry{}
	return &title, nil
}

/*
List retrieves a filtered page of titles ordered by id, newest first.

Description: Genre filtering uses EXISTS so a title matching through several
links is returned once. Genres are loaded with one follow-up query for the page.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Title: The page
  - int: Total matching count (window count)
  - error: Database errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error) {
	var fromWhere strings.Builder
	var args []any
	argID := 1

	fromWhere.WriteString(titleFrom)
	fromWhere.WriteString(" WHERE 1=1")

	if filter.Category != "" {
		fromWhere.WriteString(fmt.Sprintf(" AND c.%s = $%d", schema.CoreCategory.Slug, argID))
		args = append(args, filter.Category)
		argID++
	}

	if filter.Genre != "" {
		fromWhere.WriteString(fmt.Sprintf(`
			AND EXISTS (
				SELECT 1 FROM %s tg
				JOIN %s g ON g.%s = tg.%s
				WHERE tg.%s = t.%s AND g.%s = $%d
			)`,
			schema.TitleGenre.Table,
			schema.CoreGenre.Table, schema.CoreGenre.ID, schema.TitleGenre.GenreID,
			schema.TitleGenre.TitleID, schema.CoreTitle.ID, schema.CoreGenre.Slug, argID,
		))
		args = append(args, filter.Genre)
		argID++
	}

	if filter.Name != "" {
		fromWhere.WriteString(fmt.Sprintf(" AND t.%s ILIKE $%d", schema.CoreTitle.Name, argID))
		args = append(args, query.Contains(filter.Name))
		argID++
	}

	if filter.Year != nil {
		fromWhere.WriteString(fmt.Sprintf(" AND t.%s = $%d", schema.CoreTitle.Year, argID))
		args = append(args, *filter.Year)
		argID++
	}

	listQuery := fmt.Sprintf("SELECT %s, COUNT(*) OVER() AS total_count %s ORDER BY t.%s DESC LIMIT $%d OFFSET $%d",
		titleColumns, fromWhere.String(), schema.CoreTitle.ID, argID, argID+1,
	)

	rows, err := repository.pool.Query(context, listQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_titles")
	}
	defer rows.Close()

	var titles []*Title
	var totalCount int
	for rows.Next() {
		title, err := scanTitle(rows, &totalCount)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_title")
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_titles")
	}

	totalCount, err = postgres.PageTotal(context, repository.pool, totalCount, len(titles), offset, fromWhere.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "count_titles")
	}

	if err := repository.attachGenres(context, titles); err != nil {
		return nil, 0, err
	}
	return titles, totalCount, nil
}

/*
GetByID retrieves a single title with its category and genres.

Returns:
  - *Title: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) GetByID(context context.Context, id int64) (*Title, error) {
	query := "SELECT " + titleColumns + titleFrom + fmt.Sprintf(" WHERE t.%s = $1", schema.CoreTitle.ID)

	title, err := scanTitle(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Title")
		}
		return nil, dberr.Wrap(err, "get_title")
	}

	if err := repository.attachGenres(context, []*Title{title}); err != nil {
		return nil, err
	}
	return title, nil
}

func (repository *PostgresRepository) Exists(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, schema.CoreTitle.Table, schema.CoreTitle.ID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "title_exists")
	}
	return exists, nil
}

// attachGenres loads the genre links of titles in one query, ordered by genre name.
func (repository *PostgresRepository) attachGenres(context context.Context, titles []*Title) error {
	if len(titles) == 0 {
		return nil
	}

	byID := make(map[int64]*Title, len(titles))
	ids := make([]int64, 0, len(titles))
	for _, title := range titles {
		byID[title.ID] = title
		ids = append(ids, title.ID)
	}

	query := fmt.Sprintf(`
		SELECT tg.%s, g.%s, g.%s, g.%s
		FROM %s tg
		JOIN %s g ON g.%s = tg.%s
		WHERE tg.%s = ANY($1)
		ORDER BY g.%s ASC`,
		schema.TitleGenre.TitleID, schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.TitleGenre.Table,
		schema.CoreGenre.Table, schema.CoreGenre.ID, schema.TitleGenre.GenreID,
		schema.TitleGenre.TitleID,
		schema.CoreGenre.Name,
	)

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return dberr.Wrap(err, "list_title_genres")
	}
	defer rows.Close()

	for rows.Next() {
		var titleID int64
		genre := &reference.Entry{}
		if err := rows.Scan(&titleID, &genre.ID, &genre.Name, &genre.Slug); err != nil {
			return dberr.Wrap(err, "scan_title_genre")
		}
		if title, ok := byID[titleID]; ok {
			title.Genre = append(title.Genre, genre)
		}
	}
	return dberr.Wrap(rows.Err(), "list_title_genres")
}

/*
Create inserts a title and its genre links in one transaction.

Parameters:
  - context: context.Context
  - record: *Record (ID is filled in)

Returns:
  - error: Database or constraint failures
*/
func (repository *PostgresRepository) Create(context context.Context, record *Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`,
		schema.CoreTitle.Table,
		schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.Description, schema.CoreTitle.CategoryID,
		schema.CoreTitle.ID,
	)

	return postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		err := transaction.QueryRow(context, query,
			record.Name, record.Year, record.Description, record.CategoryID,
		).Scan(&record.ID)
		if err != nil {
			return dberr.Wrap(err, "create_title")
		}
		return repository.updateJunction(context, transaction, record.ID, record.GenreIDs)
	})
}

/*
Update rewrites a title's columns and, when asked, its genre links.

Returns:
  - error: apperr.NotFound if the title vanished, or database failures
*/
func (repository *PostgresRepository) Update(context context.Context, record *Record, replaceGenres bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5
		WHERE %s = $1`,
		schema.CoreTitle.Table,
		schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.Description, schema.CoreTitle.CategoryID,
		schema.CoreTitle.ID,
	)

	return postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		tag, err := transaction.Exec(context, query,
			record.ID, record.Name, record.Year, record.Description, record.CategoryID,
		)
		if err != nil {
			return dberr.Wrap(err, "update_title")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Title")
		}
		if !replaceGenres {
			return nil
		}
		return repository.updateJunction(context, transaction, record.ID, record.GenreIDs)
	})
}

/*
updateJunction synchronizes the genre links of a title.

Description: Clears existing links, then queues one INSERT per genre in a
single batch on the caller's transaction.
*/
func (repository *PostgresRepository) updateJunction(context context.Context, transaction pgx.Tx, titleID int64, genreIDs []int64) error {
	delQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.TitleGenre.Table, schema.TitleGenre.TitleID)
	if _, err := transaction.Exec(context, delQuery, titleID); err != nil {
		return dberr.Wrap(err, "clear_title_genres")
	}

	if len(genreIDs) == 0 {
		return nil
	}

	insQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2)",
		schema.TitleGenre.Table, schema.TitleGenre.TitleID, schema.TitleGenre.GenreID)
	batch := &pgx.Batch{}
	for _, genreID := range genreIDs {
		batch.Queue(insQuery, titleID, genreID)
	}

	if err := transaction.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, "insert_title_genres")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreTitle.Table, schema.CoreTitle.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_title")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Title")
	}
	return nil
}

/*
ScoreSummaries aggregates review scores per title.

Parameters:
  - context: context.Context
  - ids: []int64

Returns:
  - map[int64]ScoreSummary: Count and sum per reviewed title
  - error: Database errors
*/
func (repository *PostgresRepository) ScoreSummaries(context context.Context, ids []int64) (map[int64]ScoreSummary, error) {
	summaries := make(map[int64]ScoreSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*), COALESCE(SUM(%s), 0)
		FROM %s
		WHERE %s = ANY($1)
		GROUP BY %s`,
		schema.CoreReview.TitleID, schema.CoreReview.Score,
		schema.CoreReview.Table,
		schema.CoreReview.TitleID,
		schema.CoreReview.TitleID,
	)

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "score_summaries")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			titleID int64
			summary ScoreSummary
		)
		if err := rows.Scan(&titleID, &summary.Count, &summary.Sum); err != nil {
			return nil, dberr.Wrap(err, "scan_score_summary")
		}
		summaries[titleID] = summary
	}
	return summaries, dberr.Wrap(rows.Err(), "score_summaries")
}
