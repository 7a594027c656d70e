// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile self-service and administrative user management.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Access: Every operation receives the acting [sec.Actor] explicitly and is
    checked by the access evaluator before touching storage.
  - Role guard: The self-service path never changes a role, whatever the payload says.
*/
package account

import (
	"context"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

// # Repository Contracts

// ListFilter narrows an administrative user listing.
type ListFilter struct {
	// Search matches usernames case-insensitively by substring.
	Search string
	Limit  int
	Offset int
}

// AccountRepository defines the persistence contract for user accounts.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	// FindByUsername retrieves a user record by handle.
	FindByUsername(context context.Context, username string) (*auth.User, error)

	/*
		List returns one page of accounts ordered by username.

		Returns:
		  - []*auth.User: The page
		  - int: Total rows matching the filter
		  - error: Storage failures
	*/
	List(context context.Context, filter ListFilter) ([]*auth.User, int, error)

	// Create inserts a new account. Unique violations surface as apperr.Conflict.
	Create(context context.Context, user *auth.User) error

	// Update writes every mutable field of an existing account.
	Update(context context.Context, user *auth.User) error

	// Delete removes the account and, by cascade, its reviews and comments.
	Delete(context context.Context, id string) error
}

// Authorizer is the access check the service depends on.
type Authorizer interface {
	Authorize(request access.Request) error
}

// # Field Limits

const (
	MaxBioLength = 2000
)
