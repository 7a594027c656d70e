// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination turns ?page=&limit= into SQL LIMIT/OFFSET pairs and
// describes the resulting window in list responses.
//
// Pages are 1-indexed. A limit above [MaxLimit] is clamped to it; anything
// unparsable falls back to the defaults instead of failing the request.
package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultPage  = 1
)

// Params is one requested page window.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the number of rows skipped before this page. It saturates
// at [math.MaxInt] instead of overflowing for absurd page numbers.
func (params Params) Offset() int {
	if params.Page <= 1 || params.Limit <= 0 {
		return 0
	}
	if params.Page-1 > math.MaxInt/params.Limit {
		return math.MaxInt
	}
	return (params.Page - 1) * params.Limit
}

// Meta accompanies every paginated "data" array.
type Meta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewMeta derives page counts from the total row count.
func NewMeta(page, limit, total int) Meta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}

	return Meta{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrevious: page > 1,
	}
}

// FromRequest reads the page window from the query string.
func FromRequest(request *http.Request) Params {
	values := request.URL.Query()

	page := intOr(values.Get("page"), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := intOr(values.Get("limit"), DefaultLimit)
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

func intOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
