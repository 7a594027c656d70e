// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/access"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/query"
)

// Handler implements the title HTTP endpoints.
type Handler struct {
	service *Service
	reviews http.Handler
	now     func() time.Time
}

// NewHandler constructs a new title [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// WithReviews nests the review subtree under /{titleID}/reviews.
func (handler *Handler) WithReviews(reviews http.Handler) *Handler {
	handler.reviews = reviews
	return handler
}

// Routes returns a [chi.Router] mounted at /titles.
//
// # Endpoints
//   - GET    /            : Public listing with filters.
//   - POST   /            : Admin creation.
//   - GET    /{titleID}   : Public detail.
//   - PATCH  /{titleID}   : Admin partial update.
//   - DELETE /{titleID}   : Admin deletion.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{titleID}", handler.get)
	router.Patch("/{titleID}", handler.update)
	router.Delete("/{titleID}", handler.delete)

	if handler.reviews != nil {
		router.Mount("/{titleID}/reviews", handler.reviews)
	}

	return router
}

// # Request Payloads

type createRequest struct {
	Name        string   `json:"name"`
	Year        *int     `json:"year"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

type updateRequest struct {
	Name        *string          `json:"name"`
	Year        nullable[int]    `json:"year"`
	Description *string          `json:"description"`
	Genre       *[]string        `json:"genre"`
	Category    nullable[string] `json:"category"`
}

// nullable distinguishes an absent JSON member from an explicit null.
type nullable[T any] struct {
	Set   bool
	Value *T
}

func (field *nullable[T]) UnmarshalJSON(data []byte) error {
	field.Set = true
	if string(data) == "null" {
		field.Value = nil
		return nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	field.Value = &value
	return nil
}

func (handler *Handler) validateYear(validator *validate.Validator, year *int) {
	if year != nil {
		validator.Range(FieldYear, *year, MinYear, handler.now().Year())
	}
}

func validateSlugs(validator *validate.Validator, field string, slugs []string) {
	for _, slug := range slugs {
		validator.Slug(field, slug)
	}
}

// # Handlers

/*
GET /api/v1/titles

Request:
  - category, genre: string (Slug)
  - name: string (Substring)
  - year: int
  - page, limit: int

Response:
  - 200: []Title (paginated, with rating)
  - 400: ErrValidation: Non-numeric or out-of-range year
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	values := request.URL.Query()

	year, err := query.OptionalInt(values, FieldYear)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldYear, "Must be an integer"))
		return
	}
	if year != nil {
		validator := &validate.Validator{}
		if err := validator.Range(FieldYear, *year, MinYear, MaxYear).Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	titles, total, err := handler.service.List(request.Context(), requestutil.Actor(request), Filter{
		Category: query.String(values, FieldCategory),
		Genre:    query.String(values, FieldGenre),
		Name:     query.String(values, FieldName),
		Year:     year,
	}, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if titles == nil {
		titles = []*Title{}
	}
	respond.Paginated(writer, titles, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/titles/{titleID}

Response:
  - 200: Title
  - 404: ErrNotFound
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "titleID", "Title")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, err := handler.service.Get(request.Context(), requestutil.Actor(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, title)
}

/*
POST /api/v1/titles

Description: Creates a title. Category and genres are referenced by slug.

Request:
  - Body: createRequest

Response:
  - 201: WriteView
  - 400: ErrValidation: Missing name, future year, unknown slug
  - 401/403: Not an admin
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	if err := handler.service.authorize(actor, access.ActionCreate); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.Name = strings.TrimSpace(input.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, MaxNameLength)
	handler.validateYear(validator, input.Year)
	validateSlugs(validator, FieldGenre, input.Genre)
	if input.Category != nil && *input.Category != "" {
		validator.Slug(FieldCategory, *input.Category)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Create(request.Context(), actor, CreateInput{
		Name:        input.Name,
		Year:        input.Year,
		Description: input.Description,
		Genre:       input.Genre,
		Category:    input.Category,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, view)
}

/*
PATCH /api/v1/titles/{titleID}

Description: Partial update. "genre" replaces the genre set; "category": null
clears the category.

Response:
  - 200: WriteView
  - 400: ErrValidation
  - 404: ErrNotFound
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	if err := handler.service.authorize(actor, access.ActionUpdate); err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.Int64Param(request, "titleID", "Title")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		*input.Name = strings.TrimSpace(*input.Name)
		validator.Required(FieldName, *input.Name).
			MaxLen(FieldName, *input.Name, MaxNameLength)
	}
	handler.validateYear(validator, input.Year.Value)
	if input.Genre != nil {
		validateSlugs(validator, FieldGenre, *input.Genre)
	}
	if input.Category.Value != nil && *input.Category.Value != "" {
		validator.Slug(FieldCategory, *input.Category.Value)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Update(request.Context(), actor, id, UpdateInput{
		Name:        input.Name,
		YearSet:     input.Year.Set,
		Year:        input.Year.Value,
		Description: input.Description,
		Genre:       input.Genre,
		CategorySet: input.Category.Set,
		Category:    input.Category.Value,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
DELETE /api/v1/titles/{titleID}

Response:
  - 204: No Content
  - 404: ErrNotFound
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	if err := handler.service.authorize(actor, access.ActionDelete); err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.Int64Param(request, "titleID", "Title")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), actor, id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
