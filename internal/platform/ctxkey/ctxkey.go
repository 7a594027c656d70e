// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the context keys read through ctxutil. The key type is
// unexported so no other package can collide with them.
package ctxkey

type key string

const (
	KeyRequestID key = "request_id"

	// KeyUser holds the verified [sec.AuthClaims].
	KeyUser key = "auth_claims"

	// KeyActor holds the [sec.Actor] with its stored role.
	KeyActor key = "actor"

	KeyLogger key = "request_logger"
)
