// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/auth"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # Service Layer

// Service orchestrates profile and user administration use cases.
type Service struct {
	accountRepository AccountRepository
	authorizer        Authorizer
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accountRepo AccountRepository, authorizer Authorizer, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		authorizer:        authorizer,
		logger:            logger,
	}
}

// ProfileInput is a partial update. Nil fields are left unchanged.
type ProfileInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *sec.UserRole
}

// CreateUserInput holds the fields an administrator supplies for a new account.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      sec.UserRole
}

// # Self Service

/*
GetMe returns the acting user's own account.

Parameters:
  - context: context.Context
  - actor: sec.Actor

Returns:
  - *auth.User: The hydrated profile
  - error: Unauthorized for anonymous actors
*/
func (service *Service) GetMe(context context.Context, actor sec.Actor) (*auth.User, error) {
	if err := service.authorizer.Authorize(access.Request{
		Actor: actor, Action: access.ActionRead, Resource: access.ResourceProfile,
	}); err != nil {
		return nil, err
	}
	return service.accountRepository.FindByID(context, actor.UserID)
}

/*
UpdateMe applies a partial profile update to the acting user's account.

Description: Any role in the input is discarded. The stored role is written
back unchanged, so a user cannot promote themself through this path.

Parameters:
  - context: context.Context
  - actor: sec.Actor
  - input: ProfileInput

Returns:
  - *auth.User: The updated profile
  - error: Unauthorized, Conflict (taken username or email), or storage errors
*/
func (service *Service) UpdateMe(context context.Context, actor sec.Actor, input ProfileInput) (*auth.User, error) {
	if err := service.authorizer.Authorize(access.Request{
		Actor: actor, Action: access.ActionUpdate, Resource: access.ResourceProfile,
	}); err != nil {
		return nil, err
	}

	user, err := service.accountRepository.FindByID(context, actor.UserID)
	if err != nil {
		return nil, err
	}

	input.Role = nil
	applyProfile(user, input)

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, err
	}
	return user, nil
}

// # Administration

/*
List returns a page of accounts for an administrator.

Returns:
  - []*auth.User: The page
  - int: Total matching rows
  - error: Unauthorized or Forbidden for non-admins
*/
func (service *Service) List(context context.Context, actor sec.Actor, filter ListFilter) ([]*auth.User, int, error) {
	if err := service.authorizeUser(actor, access.ActionRead); err != nil {
		return nil, 0, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return service.accountRepository.List(context, filter)
}

/*
Get loads one account by username for an administrator.
*/
func (service *Service) Get(context context.Context, actor sec.Actor, username string) (*auth.User, error) {
	if err := service.authorizeUser(actor, access.ActionRead); err != nil {
		return nil, err
	}
	return service.accountRepository.FindByUsername(context, username)
}

/*
Create inserts an account on behalf of an administrator.

Parameters:
  - context: context.Context
  - actor: sec.Actor
  - input: CreateUserInput (already validated; blank role defaults to user)

Returns:
  - *auth.User: The created account
  - error: Forbidden, Conflict, or storage errors
*/
func (service *Service) Create(context context.Context, actor sec.Actor, input CreateUserInput) (*auth.User, error) {
	if err := service.authorizeUser(actor, access.ActionCreate); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = sec.RoleUser
	}

	user := &auth.User{
		ID:        uuid.New(),
		Username:  input.Username,
		Email:     auth.NormalizeEmail(input.Email),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		Role:      role,
	}

	if err := service.accountRepository.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role.String()),
		slog.String("actor_id", actor.UserID),
	)
	return user, nil
}

/*
Update applies a partial update, including role changes, on behalf of an administrator.
*/
func (service *Service) Update(context context.Context, actor sec.Actor, username string, input ProfileInput) (*auth.User, error) {
	if err := service.authorizeUser(actor, access.ActionUpdate); err != nil {
		return nil, err
	}

	user, err := service.accountRepository.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	previousRole := user.Role
	applyProfile(user, input)

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, err
	}

	if user.Role != previousRole {
		service.logger.Info("user_role_changed",
			slog.String("user_id", user.ID),
			slog.String("from", previousRole.String()),
			slog.String("to", user.Role.String()),
			slog.String("actor_id", actor.UserID),
		)
	}
	return user, nil
}

/*
Delete removes an account on behalf of an administrator.
*/
func (service *Service) Delete(context context.Context, actor sec.Actor, username string) error {
	if err := service.authorizeUser(actor, access.ActionDelete); err != nil {
		return err
	}

	user, err := service.accountRepository.FindByUsername(context, username)
	if err != nil {
		return err
	}

	if err := service.accountRepository.Delete(context, user.ID); err != nil {
		return err
	}

	service.logger.Info("user_deleted", slog.String("user_id", user.ID), slog.String("actor_id", actor.UserID))
	return nil
}

// # Internal

func (service *Service) authorizeUser(actor sec.Actor, action access.Action) error {
	return service.authorizer.Authorize(access.Request{
		Actor: actor, Action: action, Resource: access.ResourceUser,
	})
}

func applyProfile(user *auth.User, input ProfileInput) {
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = auth.NormalizeEmail(*input.Email)
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
}
