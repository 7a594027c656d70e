// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
)

func init() {
	dberr.RegisterConstraint(schema.CoreReview.AuthorTitleKey, apperr.Conflict(DuplicateReviewMessage))
	dberr.RegisterConstraint(schema.CoreReview.ScoreRange, apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: FieldScore, Message: fmt.Sprintf("Must be between %d and %d", MinScore, MaxScore)},
	))
}

// # Reviews

// PostgresReviewRepository implements [ReviewRepository] using pgx.
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new PostgreSQL review repository.
func NewReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

var (
	reviewColumns = fmt.Sprintf(`r.%s, r.%s, r.%s, COALESCE(a.%s, ''), r.%s, r.%s, r.%s`,
		schema.CoreReview.ID, schema.CoreReview.TitleID, schema.CoreReview.AuthorID,
		schema.UserAccount.Username,
		schema.CoreReview.Text, schema.CoreReview.Score, schema.CoreReview.PubDate,
	)
	reviewFrom = fmt.Sprintf(`
		FROM %s r
		JOIN %s a ON a.%s = r.%s`,
		schema.CoreReview.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreReview.AuthorID,
	)
)

func scanReview(row pgx.Row, extra ...any) (*Review, error) {
	var review Review
	dest := []any{&review.ID, &review.TitleID, &review.AuthorID, &review.Author, &review.Text, &review.Score, &review.PubDate}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &review, nil
}

/*
List retrieves a page of a title's reviews, newest first.

Parameters:
  - context: context.Context
  - titleID: int64
  - limit, offset: int

Returns:
  - []*Review: The page
  - int: Total count (window count)
  - error: Database errors
*/
func (repository *PostgresReviewRepository) List(context context.Context, titleID int64, limit, offset int) ([]*Review, int, error) {
	fromWhere := fmt.Sprintf("%s WHERE r.%s = $1", reviewFrom, schema.CoreReview.TitleID)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		%s
		ORDER BY r.%s DESC, r.%s DESC
		LIMIT $2 OFFSET $3`,
		reviewColumns, fromWhere,
		schema.CoreReview.PubDate, schema.CoreReview.ID,
	)

	rows, err := repository.pool.Query(context, query, titleID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_reviews")
	}
	defer rows.Close()

	var reviews []*Review
	var totalCount int
	for rows.Next() {
		review, err := scanReview(rows, &totalCount)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_review")
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_reviews")
	}

	totalCount, err = postgres.PageTotal(context, repository.pool, totalCount, len(reviews), offset, fromWhere, titleID)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "count_reviews")
	}
	return reviews, totalCount, nil
}

/*
Get fetches a review by id, scoped to its title.

Returns:
  - *Review: The review
  - error: apperr.NotFound when the id is unknown or belongs to another title
*/
func (repository *PostgresReviewRepository) Get(context context.Context, titleID, reviewID int64) (*Review, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.%s = $1 AND r.%s = $2`,
		reviewColumns, reviewFrom, schema.CoreReview.ID, schema.CoreReview.TitleID,
	)

	review, err := scanReview(repository.pool.QueryRow(context, query, reviewID, titleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Review")
		}
		return nil, dberr.Wrap(err, "get_review")
	}
	return review, nil
}

// ExistsForAuthor reports whether authorID already reviewed titleID.
func (repository *PostgresReviewRepository) ExistsForAuthor(context context.Context, titleID int64, authorID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.CoreReview.Table, schema.CoreReview.TitleID, schema.CoreReview.AuthorID,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, titleID, authorID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check_review_exists")
	}
	return exists, nil
}

/*
Create inserts a review and fills in its id, publication date and author name.

Description: A concurrent duplicate is caught by the (author, title) unique
constraint and surfaces as the same Conflict as the service pre-check.
*/
func (repository *PostgresReviewRepository) Create(context context.Context, review *Review) error {
	query := fmt.Sprintf(`
		WITH inserted AS (
			INSERT INTO %s (%s, %s, %s, %s)
			VALUES ($1, $2, $3, $4)
			RETURNING %s, %s, %s
		)
		SELECT i.%s, i.%s, COALESCE(a.%s, '')
		FROM inserted i
		JOIN %s a ON a.%s = i.%s`,
		schema.CoreReview.Table,
		schema.CoreReview.TitleID, schema.CoreReview.AuthorID, schema.CoreReview.Text, schema.CoreReview.Score,
		schema.CoreReview.ID, schema.CoreReview.PubDate, schema.CoreReview.AuthorID,
		schema.CoreReview.ID, schema.CoreReview.PubDate, schema.UserAccount.Username,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreReview.AuthorID,
	)

	err := repository.pool.QueryRow(context, query,
		review.TitleID, review.AuthorID, review.Text, review.Score,
	).Scan(&review.ID, &review.PubDate, &review.Author)
	if err != nil {
		return dberr.Wrap(err, "create_review")
	}
	return nil
}

// Update rewrites the text and score. Author, title and pub date are immutable.
func (repository *PostgresReviewRepository) Update(context context.Context, review *Review) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		schema.CoreReview.Table, schema.CoreReview.Text, schema.CoreReview.Score, schema.CoreReview.ID,
	)

	tag, err := repository.pool.Exec(context, query, review.Text, review.Score, review.ID)
	if err != nil {
		return dberr.Wrap(err, "update_review")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}
	return nil
}

// Delete removes a review. Its comments cascade.
func (repository *PostgresReviewRepository) Delete(context context.Context, reviewID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreReview.Table, schema.CoreReview.ID)

	tag, err := repository.pool.Exec(context, query, reviewID)
	if err != nil {
		return dberr.Wrap(err, "delete_review")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}
	return nil
}

// # Comments

// PostgresCommentRepository implements [CommentRepository] using pgx.
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new PostgreSQL comment repository.
func NewCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

var (
	commentColumns = fmt.Sprintf(`c.%s, c.%s, c.%s, COALESCE(a.%s, ''), c.%s, c.%s`,
		schema.CoreComment.ID, schema.CoreComment.ReviewID, schema.CoreComment.AuthorID,
		schema.UserAccount.Username,
		schema.CoreComment.Text, schema.CoreComment.PubDate,
	)
	commentFrom = fmt.Sprintf(`
		FROM %s c
		JOIN %s a ON a.%s = c.%s`,
		schema.CoreComment.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreComment.AuthorID,
	)
)

func scanComment(row pgx.Row, extra ...any) (*Comment, error) {
	var comment Comment
	dest := []any{&comment.ID, &comment.ReviewID, &comment.AuthorID, &comment.Author, &comment.Text, &comment.PubDate}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &comment, nil
}

// List retrieves a page of a review's comments, newest first.
func (repository *PostgresCommentRepository) List(context context.Context, reviewID int64, limit, offset int) ([]*Comment, int, error) {
	fromWhere := fmt.Sprintf("%s WHERE c.%s = $1", commentFrom, schema.CoreComment.ReviewID)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		%s
		ORDER BY c.%s DESC, c.%s DESC
		LIMIT $2 OFFSET $3`,
		commentColumns, fromWhere,
		schema.CoreComment.PubDate, schema.CoreComment.ID,
	)

	rows, err := repository.pool.Query(context, query, reviewID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_comments")
	}
	defer rows.Close()

	var comments []*Comment
	var totalCount int
	for rows.Next() {
		comment, err := scanComment(rows, &totalCount)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_comment")
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_comments")
	}

	totalCount, err = postgres.PageTotal(context, repository.pool, totalCount, len(comments), offset, fromWhere, reviewID)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "count_comments")
	}
	return comments, totalCount, nil
}

// Get fetches a comment by id, scoped to its review.
func (repository *PostgresCommentRepository) Get(context context.Context, reviewID, commentID int64) (*Comment, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE c.%s = $1 AND c.%s = $2`,
		commentColumns, commentFrom, schema.CoreComment.ID, schema.CoreComment.ReviewID,
	)

	comment, err := scanComment(repository.pool.QueryRow(context, query, commentID, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comment")
		}
		return nil, dberr.Wrap(err, "get_comment")
	}
	return comment, nil
}

// Create inserts a comment and fills in its id, publication date and author name.
func (repository *PostgresCommentRepository) Create(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`
		WITH inserted AS (
			INSERT INTO %s (%s, %s, %s)
			VALUES ($1, $2, $3)
			RETURNING %s, %s, %s
		)
		SELECT i.%s, i.%s, COALESCE(a.%s, '')
		FROM inserted i
		JOIN %s a ON a.%s = i.%s`,
		schema.CoreComment.Table,
		schema.CoreComment.ReviewID, schema.CoreComment.AuthorID, schema.CoreComment.Text,
		schema.CoreComment.ID, schema.CoreComment.PubDate, schema.CoreComment.AuthorID,
		schema.CoreComment.ID, schema.CoreComment.PubDate, schema.UserAccount.Username,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreComment.AuthorID,
	)

	err := repository.pool.QueryRow(context, query,
		comment.ReviewID, comment.AuthorID, comment.Text,
	).Scan(&comment.ID, &comment.PubDate, &comment.Author)
	if err != nil {
		return dberr.Wrap(err, "create_comment")
	}
	return nil
}

// Update rewrites the text of a comment.
func (repository *PostgresCommentRepository) Update(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`,
		schema.CoreComment.Table, schema.CoreComment.Text, schema.CoreComment.ID,
	)

	tag, err := repository.pool.Exec(context, query, comment.Text, comment.ID)
	if err != nil {
		return dberr.Wrap(err, "update_comment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}
	return nil
}

// Delete removes a comment.
func (repository *PostgresCommentRepository) Delete(context context.Context, commentID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreComment.Table, schema.CoreComment.ID)

	tag, err := repository.pool.Exec(context, query, commentID)
	if err != nil {
		return dberr.Wrap(err, "delete_comment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}
	return nil
}
