// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Repository Contracts

// UserRepository covers the account lookups and writes the sign-in flow needs.
type UserRepository interface {
	// FindByID resolves an account by primary key. Returns apperr.NotFound when absent.
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail resolves an account by its identity email. Returns apperr.NotFound when absent.
	FindByEmail(context context.Context, email string) (*User, error)

	// FindByUsername resolves an account by public handle. Returns apperr.NotFound when absent.
	FindByUsername(context context.Context, username string) (*User, error)

	// UpsertConfirmationCode creates the account for email if it does not exist
	// and overwrites its confirmation code hash. username is applied only when
	// the row is created.
	UpsertConfirmationCode(context context.Context, email, username, codeHash string) (*User, error)
}

// CooldownRepository throttles repeated code requests for the same email.
type CooldownRepository interface {
	// Acquire claims the cooldown window for email. It returns false when a
	// window is already running.
	Acquire(context context.Context, email string, ttl time.Duration) (bool, error)
}
