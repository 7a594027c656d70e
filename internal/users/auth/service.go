// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/mail"
	"github.com/taibuivan/yamdb/internal/platform/metrics"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT bound to the account id.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username string, timeToLive time.Duration) (string, error)
}

// Options tunes the sign-in flow.
type Options struct {
	// AccessTokenTTL is the lifetime of issued bearer tokens.
	AccessTokenTTL time.Duration
	// CodeRequestCooldown throttles code requests per email. Zero disables it.
	CodeRequestCooldown time.Duration
}

// Service implements the confirmation-code sign-in use cases.
type Service struct {
	userRepository     UserRepository
	cooldownRepository CooldownRepository
	sender             mail.Sender
	tokenProvider      TokenProvider
	options            Options
	logger             *slog.Logger
}

// NewService constructs a new [Service]. cooldownRepo may be nil when
// [Options.CodeRequestCooldown] is zero.
func NewService(
	userRepo UserRepository,
	cooldownRepo CooldownRepository,
	sender mail.Sender,
	tokenProv TokenProvider,
	options Options,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:     userRepo,
		cooldownRepository: cooldownRepo,
		sender:             sender,
		tokenProvider:      tokenProv,
		options:            options,
		logger:             logger,
	}
}

// # Code Issuance

// RequestCodeInput carries the sign-up payload.
type RequestCodeInput struct {
	Email    string
	Username string
}

// RequestCodeResult echoes the accepted identity back to the caller.
type RequestCodeResult struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

/*
RequestCode issues a fresh confirmation code for an email address.

Description: Generates a 128-bit code, hands it to the delivery channel and,
only after a successful handoff, stores its hash on the (possibly new) account.
Any previous code for the email stops working.

Parameters:
  - context: context.Context
  - input: RequestCodeInput (already syntactically validated)

Returns:
  - *RequestCodeResult: The accepted email and username
  - error: Conflict (username held by another email), RateLimited,
    UpstreamFailure (delivery failed), or storage errors
*/
func (service *Service) RequestCode(context context.Context, input RequestCodeInput) (*RequestCodeResult, error) {
	email := NormalizeEmail(input.Email)

	// A handle owned by a different account would fail the insert after the
	// mail went out. Reject it first.
	if input.Username != "" {
		owner, err := service.userRepository.FindByUsername(context, input.Username)
		if err != nil && !apperr.HasCode(err, "NOT_FOUND") {
			return nil, err
		}
		if owner != nil && owner.Email != email {
			return nil, apperr.Conflict("A user with that username already exists")
		}
	}

	if err := service.acquireCooldown(context, email); err != nil {
		return nil, err
	}

	code, err := sec.GenerateSecureToken(ConfirmationCodeBytes)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_generate_code_failed: %w", err))
	}

	codeHash, err := sec.HashSecret(code)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_code_failed: %w", err))
	}

	message := mail.Message{
		To:      email,
		Subject: ConfirmationSubject,
		Body:    fmt.Sprintf(confirmationBody, code),
	}
	if err := service.sender.Send(context, message); err != nil {
		return nil, apperr.UpstreamFailure("Could not deliver the confirmation code", err)
	}

	user, err := service.userRepository.UpsertConfirmationCode(context, email, input.Username, codeHash)
	if err != nil {
		return nil, err
	}

	metrics.ConfirmationCodesIssued.Inc()
	service.logger.Info("confirmation_code_issued", slog.String("user_id", user.ID))

	return &RequestCodeResult{Email: user.Email, Username: user.Username}, nil
}

func (service *Service) acquireCooldown(context context.Context, email string) error {
	window := service.options.CodeRequestCooldown
	if window <= 0 || service.cooldownRepository == nil {
		return nil
	}

	acquired, err := service.cooldownRepository.Acquire(context, email, window)
	if err != nil {
		return apperr.Internal(err)
	}
	if !acquired {
		return apperr.RateLimited(int(window.Seconds()))
	}
	return nil
}

// # Token Exchange

// ExchangeTokenInput carries the code redemption payload.
type ExchangeTokenInput struct {
	Email            string
	ConfirmationCode string
}

// TokenResult is the body returned on a successful exchange.
type TokenResult struct {
	Token string `json:"token"`
}

/*
ExchangeToken trades a confirmation code for a signed access token.

Description: The stored code is left in place, so the same code can be
redeemed again until a new one is requested.

Parameters:
  - context: context.Context
  - input: ExchangeTokenInput

Returns:
  - *TokenResult: Signed bearer token
  - error: NotFound (unknown email) or InvalidCredentials (code mismatch)
*/
func (service *Service) ExchangeToken(context context.Context, input ExchangeTokenInput) (*TokenResult, error) {
	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}

	if !sec.CheckSecretHash(input.ConfirmationCode, user.ConfirmationCodeHash) {
		return nil, apperr.InvalidCredentials("Invalid confirmation code")
	}

	token, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, service.options.AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_sign_token_failed: %w", err))
	}

	return &TokenResult{Token: token}, nil
}
