// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countRow struct {
	total int
	err   error
}

func (row countRow) Scan(dest ...any) error {
	if row.err != nil {
		return row.err
	}
	*dest[0].(*int) = row.total
	return nil
}

type recordingQuerier struct {
	row   countRow
	calls int
	sql   string
	args  []any
}

func (querier *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	querier.calls++
	querier.sql = sql
	querier.args = args
	return querier.row
}

func TestPageTotal_UsesWindowCountWhenPageHasRows(t *testing.T) {
	querier := &recordingQuerier{}

	total, err := PageTotal(context.Background(), querier, 41, 1, 40, "FROM core.title t WHERE 1=1")
	require.NoError(t, err)
	assert.Equal(t, 41, total)
	assert.Zero(t, querier.calls)

	total, err = PageTotal(context.Background(), querier, 0, 0, 0, "FROM core.title t WHERE 1=1")
	require.NoError(t, err)
	assert.Zero(t, total, "an empty first page is an empty collection")
	assert.Zero(t, querier.calls)
}

func TestPageTotal_CountsAgainPastTheEnd(t *testing.T) {
	querier := &recordingQuerier{row: countRow{total: 3}}

	total, err := PageTotal(context.Background(), querier, 0, 0, 200, "FROM core.review r WHERE r.titleid = $1", int64(7))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, querier.calls)
	assert.Equal(t, "SELECT COUNT(*) FROM core.review r WHERE r.titleid = $1", querier.sql)
	assert.Equal(t, []any{int64(7)}, querier.args)
}

func TestPageTotal_PropagatesCountFailure(t *testing.T) {
	querier := &recordingQuerier{row: countRow{err: errors.New("connection reset")}}

	_, err := PageTotal(context.Background(), querier, 0, 0, 20, "FROM core.genre WHERE 1=1")
	assert.ErrorContains(t, err, "connection reset")
}
