// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the sign-in HTTP endpoints. Both are public.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /email : Mails a confirmation code.
//   - POST /token : Exchanges the code for a JWT.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/email", handler.requestCode)
	router.Post("/token", handler.exchangeToken)

	return router
}

// # Request Payloads

type requestCodeRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type exchangeTokenRequest struct {
	Email            string `json:"email"`
	ConfirmationCode string `json:"confirmation_code"`
}

/*
POST /api/v1/auth/email

Description: Generates a confirmation code and mails it to the address. The
account is created on first use. The response does not reveal whether the
account already existed.

Request:
  - Body: requestCodeRequest (Email, optional Username)

Response:
  - 200: RequestCodeResult
  - 400: ErrValidation: Malformed email or username
  - 409: ErrConflict: Username belongs to another account
  - 429: ErrRateLimited: Cooldown window still running
  - 502: ErrUpstreamFailure: Mail relay rejected or unreachable
*/
func (handler *Handler) requestCode(writer http.ResponseWriter, request *http.Request) {
	var input requestCodeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, MaxEmailLength).
		Email(FieldEmail, input.Email)

	if input.Username != "" {
		validator.MaxLen(FieldUsername, input.Username, MaxUsernameLength).
			Username(FieldUsername, input.Username).
			Custom(FieldUsername, strings.EqualFold(input.Username, ReservedUsername), "This username is reserved")
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.RequestCode(request.Context(), RequestCodeInput{
		Email:    input.Email,
		Username: input.Username,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
POST /api/v1/auth/token

Description: Verifies the confirmation code for an email and returns a signed
access token.

Request:
  - Body: exchangeTokenRequest (Email, ConfirmationCode)

Response:
  - 200: TokenResult
  - 400: ErrInvalidCredentials: Code does not match
  - 404: ErrNotFound: No account with that email
*/
func (handler *Handler) exchangeToken(writer http.ResponseWriter, request *http.Request) {
	var input exchangeTokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldConfirmationCode, input.ConfirmationCode)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.ExchangeToken(request.Context(), ExchangeTokenInput{
		Email:            strings.TrimSpace(input.Email),
		ConfirmationCode: strings.TrimSpace(input.ConfirmationCode),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
