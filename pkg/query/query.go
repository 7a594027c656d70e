// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query parses list filters from URL query strings and prepares them
for SQL.
*/
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Contains builds an ILIKE pattern matching value anywhere, with the LIKE
// wildcards in value escaped.
func Contains(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
	return "%" + escaped + "%"
}

// String returns the trimmed value of key.
func String(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

// OptionalInt parses key as an integer. A missing or blank key yields nil.
func OptionalInt(values url.Values, key string) (*int, error) {
	raw := String(values, key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("query: %s must be an integer", key)
	}
	return &parsed, nil
}
