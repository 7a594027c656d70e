// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer holds generic helpers for the optional fields of PATCH
// payloads and nullable columns.
package pointer

// To returns &v, for literals that cannot be addressed directly.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, yielding the zero value for nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Fallback dereferences p, yielding fallback for nil.
func Fallback[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}
