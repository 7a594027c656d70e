// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

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
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/pkg/pointer"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

func init() {
	dberr.RegisterConstraint(schema.UserAccount.EmailKey, apperr.Conflict("A user with that email already exists"))
	dberr.RegisterConstraint(schema.UserAccount.UsernameKey, apperr.Conflict("A user with that username already exists"))
}

// UserColumns is the select list matching [ScanUser].
var UserColumns = strings.Join(append(schema.UserAccount.Columns(), schema.UserAccount.ConfirmationCode), ", ")

// ScanUser hydrates a [User] from a row selected with [UserColumns]. Columns
// selected after them are scanned into extra. A NULL username is returned as
// the empty string.
func ScanUser(row pgx.Row, extra ...any) (*User, error) {
	var (
		user     User
		username *string
	)
	dest := []any{
		&user.ID,
		&username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Bio,
		&user.Role,
		&user.IsSuperuser,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.ConfirmationCodeHash,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if username != nil {
		user.Username = *username
	}
	return &user, nil
}

// NullableUsername maps a blank handle to SQL NULL so the unique index only
// covers accounts that chose one.
func NullableUsername(username string) *string {
	if username == "" {
		return nil
	}
	return pointer.To(username)
}

// # User Repository

// PostgresUserRepository implements [UserRepository] and the actor lookup used
// by the authentication middleware.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Pool exposes the connection pool to repositories layered on top of this one.
func (repository *PostgresUserRepository) Pool() *pgxpool.Pool {
	return repository.pool
}

/*
FindByID retrieves an account by primary key.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, schema.UserAccount.ID, id, "find_user_by_id")
}

/*
FindByEmail retrieves an account by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, schema.UserAccount.Email, email, "find_user_by_email")
}

/*
FindByUsername retrieves an account by its unique username.
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, schema.UserAccount.Username, username, "find_user_by_username")
}

func (repository *PostgresUserRepository) findOne(context context.Context, column, value, action string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, UserColumns, schema.UserAccount.Table, column)

	user, err := ScanUser(repository.pool.QueryRow(context, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, action)
	}
	return user, nil
}

/*
UpsertConfirmationCode performs the get-or-create step of the sign-in flow.

Description: Inserts a fresh account with role user when the email is unknown,
otherwise overwrites the stored code hash. Concurrent calls for the same email
resolve to one row; the last writer's code wins.

Parameters:
  - context: context.Context
  - email: string
  - username: string (applied on insert only; blank stores NULL)
  - codeHash: string (bcrypt digest of the mailed code)

Returns:
  - *User: The account after the write
  - error: Conflict on a taken username, or database errors
*/
func (repository *PostgresUserRepository) UpsertConfirmationCode(context context.Context, email, username, codeHash string) (*User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = NOW()
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.Username,
		schema.UserAccount.Role, schema.UserAccount.ConfirmationCode,
		schema.UserAccount.Email,
		schema.UserAccount.ConfirmationCode, schema.UserAccount.ConfirmationCode,
		schema.UserAccount.UpdatedAt,
		UserColumns,
	)

	user, err := ScanUser(repository.pool.QueryRow(context, query,
		uuid.New(), email, NullableUsername(username), sec.RoleUser, codeHash,
	))
	if err != nil {
		return nil, dberr.Wrap(err, "upsert_confirmation_code")
	}
	return user, nil
}

/*
ResolveActor loads the live role and superuser flag behind a verified token.

Returns:
  - sec.Actor: Identity for permission checks
  - error: apperr.NotFound when the account no longer exists
*/
func (repository *PostgresUserRepository) ResolveActor(context context.Context, userID string) (sec.Actor, error) {
	user, err := repository.FindByID(context, userID)
	if err != nil {
		return sec.Anonymous(), err
	}
	return user.Actor(), nil
}
