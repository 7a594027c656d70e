package reference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/access"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/query"
)

// Handler implements the HTTP layer for one taxonomy. It is mounted once at
// /categories and once at /genres.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reference [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the taxonomy endpoints.
//
// # Endpoints
//   - GET    /        : Public listing, ?search= on name.
//   - POST   /        : Admin creation.
//   - DELETE /{slug}  : Admin deletion.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Delete("/{slug}", handler.delete)

	return router
}

type createRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

/*
GET /api/v1/{categories|genres}

Request:
  - search: string (Name substring)
  - page, limit: int

Response:
  - 200: []Entry (paginated)
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	entries, total, err := handler.service.List(request.Context(), requestutil.Actor(request), Filter{
		Search: query.String(request.URL.Query(), FieldSearch),
	}, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if entries == nil {
		entries = []*Entry{}
	}
	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/{categories|genres}

Description: Creates an entry. The slug is derived from the name when omitted.

Request:
  - Body: createRequest (Name, optional Slug)

Response:
  - 201: Entry
  - 400: ErrValidation
  - 401/403: Not an admin
  - 409: ErrConflict: Slug taken
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	// Reject non-admins before looking at the body.
	if err := handler.service.authorize(actor, access.ActionCreate); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, MaxNameLength)
	if input.Slug != "" {
		validator.MaxLen(FieldSlug, input.Slug, MaxSlugLength).
			Slug(FieldSlug, input.Slug)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.Create(request.Context(), actor, CreateInput{Name: input.Name, Slug: input.Slug})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

/*
DELETE /api/v1/{categories|genres}/{slug}

Response:
  - 204: No Content
  - 404: ErrNotFound
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Actor(request), requestutil.Param(request, FieldSlug)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
