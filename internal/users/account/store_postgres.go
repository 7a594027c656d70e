// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/auth"
	"github.com/taibuivan/yamdb/pkg/query"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # Repository Implementation

// PostgresAccountRepository implements [AccountRepository] on top of the auth
// lookups, adding the administrative writes.
type PostgresAccountRepository struct {
	*auth.PostgresUserRepository
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new Postgres implementation for account management.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{
		PostgresUserRepository: auth.NewUserRepository(pool),
		pool:                   pool,
	}
}

/*
List retrieves a page of accounts ordered by username, blank handles last.

Parameters:
  - context: context.Context
  - filter: ListFilter

Returns:
  - []*auth.User: The page
  - int: Total matching rows (window count)
  - error: Database errors
*/
func (repository *PostgresAccountRepository) List(context context.Context, filter ListFilter) ([]*auth.User, int, error) {
	var fromWhere strings.Builder
	var args []any
	argID := 1

	fromWhere.WriteString(fmt.Sprintf("FROM %s WHERE 1=1", schema.UserAccount.Table))

	if filter.Search != "" {
		fromWhere.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", schema.UserAccount.Username, argID))
		args = append(args, query.Contains(filter.Search))
		argID++
	}

	listQuery := fmt.Sprintf("SELECT %s, COUNT(*) OVER() AS total_count %s ORDER BY %s ASC NULLS LAST, %s ASC LIMIT $%d OFFSET $%d",
		auth.UserColumns,
		fromWhere.String(),
		schema.UserAccount.Username, schema.UserAccount.CreatedAt,
		argID, argID+1,
	)

	rows, err := repository.pool.Query(context, listQuery, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_users")
	}
	defer rows.Close()

	var (
		users      []*auth.User
		totalCount int
	)
	for rows.Next() {
		user, err := auth.ScanUser(rows, &totalCount)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_users")
	}

	totalCount, err = postgres.PageTotal(context, repository.pool, totalCount, len(users), filter.Offset, fromWhere.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "count_users")
	}
	return users, totalCount, nil
}

/*
Create inserts a new account row.

Returns:
  - error: apperr.Conflict on a taken email or username
*/
func (repository *PostgresAccountRepository) Create(context context.Context, user *auth.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.FirstName, schema.UserAccount.LastName, schema.UserAccount.Bio,
		schema.UserAccount.Role, schema.UserAccount.IsSuperuser,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		user.ID,
		auth.NullableUsername(user.Username),
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.IsSuperuser,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	return dberr.Wrap(err, "create_user")
}

/*
Update rewrites the profile fields and role of an existing account.

Description: The confirmation code and superuser flag are not touched.
*/
func (repository *PostgresAccountRepository) Update(context context.Context, user *auth.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.Email, schema.UserAccount.FirstName,
		schema.UserAccount.LastName, schema.UserAccount.Bio, schema.UserAccount.Role,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(context, query,
		user.ID,
		auth.NullableUsername(user.Username),
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_user")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

/*
Delete hard-deletes an account. Reviews and comments go with it by cascade.
*/
func (repository *PostgresAccountRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserAccount.Table, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_user")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

/*
EnsureSuperuser creates an admin superuser or promotes the account that
already owns email.

Description: Used by the admin CLI. An existing username is kept when the
supplied one is blank.

Returns:
  - *auth.User: The account after the write
  - error: apperr.Conflict when the username belongs to someone else
*/
func (repository *PostgresAccountRepository) EnsureSuperuser(context context.Context, email, username string) (*auth.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s AS existing (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (%s) DO UPDATE
		SET %s = EXCLUDED.%s,
		    %s = TRUE,
		    %s = COALESCE(EXCLUDED.%s, existing.%s),
		    %s = NOW()
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.Username,
		schema.UserAccount.Role, schema.UserAccount.IsSuperuser,
		schema.UserAccount.Email,
		schema.UserAccount.Role, schema.UserAccount.Role,
		schema.UserAccount.IsSuperuser,
		schema.UserAccount.Username, schema.UserAccount.Username, schema.UserAccount.Username,
		schema.UserAccount.UpdatedAt,
		auth.UserColumns,
	)

	user, err := auth.ScanUser(repository.pool.QueryRow(context, query,
		uuid.New(), email, auth.NullableUsername(username), sec.RoleAdmin,
	))
	if err != nil {
		return nil, dberr.Wrap(err, "ensure_superuser")
	}
	return user, nil
}
