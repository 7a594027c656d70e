// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/internal/users/auth"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
	"github.com/taibuivan/yamdb/pkg/query"
)

// # Handler Definition

// Handler manages account-related HTTP interactions.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] mounted at /users.
//
// # Endpoints
//   - GET/PATCH /me            : Self service.
//   - GET/POST  /              : Admin listing and creation.
//   - GET/PATCH/DELETE /{username} : Admin management.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.RequireAuth).Get("/me", handler.getMe)
	router.With(middleware.RequireAuth).Patch("/me", handler.updateMe)

	router.Group(func(r chi.Router) {
		r.Use(handler.requireUserAdmin)
		r.Get("/", handler.list)
		r.Post("/", handler.create)
		r.Get("/{username}", handler.get)
		r.Patch("/{username}", handler.update)
		r.Delete("/{username}", handler.delete)
	})

	return router
}

// requireUserAdmin rejects non-admins before the body is read, so they see
// 401/403 rather than validation errors.
func (handler *Handler) requireUserAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		action := access.ActionFromMethod(request.Method)
		if err := handler.accountService.authorizeUser(requestutil.Actor(request), action); err != nil {
			respond.Error(writer, request, err)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Request Payloads

// profileRequest is shared by create and both PATCH paths. Role is honoured
// only on administrative requests.
type profileRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

func (input *profileRequest) trim() {
	for _, field := range []*string{input.Username, input.Email, input.FirstName, input.LastName, input.Role} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

// validate checks every supplied field.
func (input *profileRequest) validate(validator *validate.Validator) {
	if input.Username != nil && *input.Username != "" {
		validator.MaxLen(auth.FieldUsername, *input.Username, auth.MaxUsernameLength).
			Username(auth.FieldUsername, *input.Username).
			Custom(auth.FieldUsername, strings.EqualFold(*input.Username, auth.ReservedUsername), "This username is reserved")
	}
	if input.Email != nil {
		validator.Required(auth.FieldEmail, *input.Email).
			MaxLen(auth.FieldEmail, *input.Email, auth.MaxEmailLength).
			Email(auth.FieldEmail, *input.Email)
	}
	if input.FirstName != nil {
		validator.MaxLen(auth.FieldFirstName, *input.FirstName, auth.MaxNameLength)
	}
	if input.LastName != nil {
		validator.MaxLen(auth.FieldLastName, *input.LastName, auth.MaxNameLength)
	}
	if input.Bio != nil {
		validator.MaxLen(auth.FieldBio, *input.Bio, MaxBioLength)
	}
	if input.Role != nil {
		validator.OneOf(auth.FieldRole, *input.Role, roleNames()...)
	}
}

func (input *profileRequest) toInput() ProfileInput {
	result := ProfileInput{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
	}
	if input.Role != nil {
		role := sec.UserRole(*input.Role)
		result.Role = &role
	}
	return result
}

func roleNames() []string {
	names := make([]string, len(sec.Roles))
	for i, role := range sec.Roles {
		names[i] = role.String()
	}
	return names
}

// # Self Service

/*
GET /api/v1/users/me

Description: Returns the authenticated user's own profile.

Response:
  - 200: User
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.accountService.GetMe(request.Context(), requestutil.Actor(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

/*
PATCH /api/v1/users/me

Description: Partially updates the authenticated user's profile. A role in
the body is accepted but has no effect.

Request:
  - Body: profileRequest (Partial JSON)

Response:
  - 200: User: The updated profile
  - 400: ErrValidation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
  - 409: ErrConflict: Username or email taken
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input profileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.trim()

	// The role is dropped before validation so a junk value cannot fail the request either.
	input.Role = nil

	validator := &validate.Validator{}
	input.validate(validator)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateMe(request.Context(), actor, input.toInput())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Administration

/*
GET /api/v1/users

Description: Lists accounts. Admin only.

Request:
  - search: string (Username substring)
  - page, limit: int

Response:
  - 200: []User (paginated)
  - 401/403: ErrUnauthorized/ErrForbidden
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.List(request.Context(), requestutil.Actor(request), ListFilter{
		Search: query.String(request.URL.Query(), "search"),
		Limit:  params.Limit,
		Offset: params.Offset(),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if users == nil {
		users = []*auth.User{}
	}
	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/users

Description: Creates an account. Admin only. Email is required.

Response:
  - 201: User
  - 400: ErrValidation
  - 409: ErrConflict: Email or username taken
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input profileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.trim()

	validator := &validate.Validator{}
	if input.Email == nil {
		validator.Required(auth.FieldEmail, "")
	}
	input.validate(validator)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile := input.toInput()
	create := CreateUserInput{
		Username:  pointer.Val(profile.Username),
		Email:     pointer.Val(profile.Email),
		FirstName: pointer.Val(profile.FirstName),
		LastName:  pointer.Val(profile.LastName),
		Bio:       pointer.Val(profile.Bio),
		Role:      pointer.Fallback(profile.Role, sec.RoleUser),
	}

	user, err := handler.accountService.Create(request.Context(), requestutil.Actor(request), create)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GET /api/v1/users/{username}

Response:
  - 200: User
  - 404: ErrNotFound
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.accountService.Get(request.Context(), requestutil.Actor(request), requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

/*
PATCH /api/v1/users/{username}

Description: Partially updates an account, including its role. Admin only.
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input profileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.trim()

	validator := &validate.Validator{}
	input.validate(validator)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Update(request.Context(), requestutil.Actor(request),
		requestutil.Param(request, "username"), input.toInput())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/users/{username}

Response:
  - 204: No Content
  - 404: ErrNotFound
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.Delete(request.Context(), requestutil.Actor(request), requestutil.Param(request, "username")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
