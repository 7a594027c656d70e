// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// RowQuerier runs single-row queries. Satisfied by [*pgxpool.Pool] and [pgx.Tx].
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

/*
PageTotal returns the total row count behind a paginated list.

Description: List queries read the total from COUNT(*) OVER(), which yields
no row at all once the offset runs past the end. In that case the filter is
counted again so the metadata still reports the real collection size.

Parameters:
  - windowTotal: total_count scanned from the page rows
  - rows: number of rows the page returned
  - offset: OFFSET the page used
  - fromWhere: the list's FROM ... WHERE ... clause, without ORDER BY or LIMIT
  - args: the arguments fromWhere references

Returns:
  - int: Total matching rows
  - error: Count query failures
*/
func PageTotal(ctx context.Context, db RowQuerier, windowTotal, rows, offset int, fromWhere string, args ...any) (int, error) {
	if rows > 0 || offset == 0 {
		return windowTotal, nil
	}

	var total int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) "+fromWhere, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres: count past last page: %w", err)
	}
	return total, nil
}
