// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yamdb/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		page  int
		limit int
	}{
		{"defaults", "", 1, pagination.DefaultLimit},
		{"explicit", "?page=3&limit=5", 3, 5},
		{"negative page", "?page=-2", 1, pagination.DefaultLimit},
		{"limit clamped", "?limit=1000", 1, pagination.MaxLimit},
		{"zero limit", "?limit=0", 1, pagination.DefaultLimit},
		{"garbage", "?page=abc&limit=xyz", 1, pagination.DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := pagination.FromRequest(httptest.NewRequest("GET", "/titles"+tt.query, nil))
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
		})
	}
}

func TestOffsetAndMeta(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, pagination.Params{Page: 3, Limit: 20}.Offset())

	huge := pagination.FromRequest(httptest.NewRequest("GET", "/titles?page=9223372036854775807&limit=100", nil))
	assert.Equal(t, math.MaxInt, huge.Offset())
	assert.Equal(t, math.MaxInt, pagination.Params{Page: math.MaxInt, Limit: 2}.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 5, Limit: 0}.Offset())

	meta := pagination.NewMeta(2, 20, 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 41, meta.Total)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)

	last := pagination.NewMeta(3, 20, 41)
	assert.False(t, last.HasNext)

	empty := pagination.NewMeta(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrevious)
}
