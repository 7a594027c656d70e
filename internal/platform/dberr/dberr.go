// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// SQLSTATE codes are classified with jackc/pgerrcode. Unique violations are
// resolved through a registry of constraint names so that a race caught by the
// database surfaces with the same message as the application-level pre-check.
package dberr

import (
	"errors"
	"sync"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

var (
	mu          sync.RWMutex
	constraints = map[string]*apperr.AppError{}
)

// RegisterConstraint associates a constraint name with the error returned when
// it is violated. Repositories call it from an init block.
func RegisterConstraint(name string, err *apperr.AppError) {
	mu.Lock()
	defer mu.Unlock()
	constraints[name] = err
}

func lookupConstraint(name string) (*apperr.AppError, bool) {
	mu.RLock()
	defer mu.RUnlock()
	err, ok := constraints[name]
	return err, ok
}

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Already classified upstream
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. SQLSTATE classification
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case pgerrcode.UniqueViolation:
			if known, ok := lookupConstraint(pgError.ConstraintName); ok {
				return known.WithCause(err)
			}
			return apperr.Conflict("Resource already exists").WithCause(err)

		case pgerrcode.ForeignKeyViolation:
			return apperr.ValidationError("Referenced resource does not exist").WithCause(err)

		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.StringDataRightTruncationDataException:
			if known, ok := lookupConstraint(pgError.ConstraintName); ok {
				return known.WithCause(err)
			}
			return apperr.ValidationError("Invalid value for " + action).WithCause(err)

		case pgerrcode.NumericValueOutOfRange, pgerrcode.InvalidRowCountInResultOffsetClause:
			return apperr.ValidationError("Value out of range for " + action).WithCause(err)
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a unique violation on the named constraint.
// An empty name matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var pgError *pgconn.PgError
	if !errors.As(err, &pgError) || pgError.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgError.ConstraintName == constraint
}
