// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "github.com/taibuivan/yamdb/internal/platform/sec"

// # Account Constraints

const (
	// MaxUsernameLength bounds the public handle.
	MaxUsernameLength = 30

	// MaxEmailLength follows the RFC 5321 path limit.
	MaxEmailLength = 254

	// MaxNameLength bounds first and last name.
	MaxNameLength = 150

	// ReservedUsername collides with the self-service route and may not be claimed.
	ReservedUsername = "me"

	// ConfirmationCodeBytes is the entropy of a mailed code (128 bits).
	ConfirmationCodeBytes = sec.ConfirmationCodeBytes
)

// # Confirmation Mail

const (
	ConfirmationSubject = "Confirm your registration on YaMDb."
	confirmationBody    = "Your confirmation code: %s\n\nExchange it together with your email at /api/v1/auth/token to receive an access token."
)
