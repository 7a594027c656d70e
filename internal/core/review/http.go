// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/access"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// Handler implements the review and comment HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new review [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] mounted at /titles/{titleID}/reviews.
//
// # Endpoints
//   - GET    /                                  : Public listing, newest first.
//   - POST   /                                  : Authenticated creation.
//   - GET    /{reviewID}                        : Public detail.
//   - PATCH  /{reviewID}                        : Author, moderator or admin.
//   - DELETE /{reviewID}                        : Author, moderator or admin.
//   - GET    /{reviewID}/comments               : Public listing, newest first.
//   - POST   /{reviewID}/comments               : Authenticated creation.
//   - GET    /{reviewID}/comments/{commentID}   : Public detail.
//   - PATCH  /{reviewID}/comments/{commentID}   : Author, moderator or admin.
//   - DELETE /{reviewID}/comments/{commentID}   : Author, moderator or admin.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listReviews)
	router.Post("/", handler.createReview)

	router.Route("/{reviewID}", func(r chi.Router) {
		r.Get("/", handler.getReview)
		r.Patch("/", handler.updateReview)
		r.Delete("/", handler.deleteReview)

		r.Get("/comments", handler.listComments)
		r.Post("/comments", handler.createComment)
		r.Get("/comments/{commentID}", handler.getComment)
		r.Patch("/comments/{commentID}", handler.updateComment)
		r.Delete("/comments/{commentID}", handler.deleteComment)
	})

	return router
}

// # Request Payloads

type reviewRequest struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

type reviewPatchRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// # Path Parameters

func titleID(request *http.Request) (int64, error) {
	return requestutil.Int64Param(request, "titleID", "Title")
}

func reviewPath(request *http.Request) (int64, int64, error) {
	title, err := titleID(request)
	if err != nil {
		return 0, 0, err
	}
	review, err := requestutil.Int64Param(request, "reviewID", "Review")
	if err != nil {
		return 0, 0, err
	}
	return title, review, nil
}

func commentPath(request *http.Request) (int64, int64, int64, error) {
	title, review, err := reviewPath(request)
	if err != nil {
		return 0, 0, 0, err
	}
	comment, err := requestutil.Int64Param(request, "commentID", "Comment")
	if err != nil {
		return 0, 0, 0, err
	}
	return title, review, comment, nil
}

// # Review Handlers

/*
GET /api/v1/titles/{titleID}/reviews

Response:
  - 200: []Review (paginated, newest first)
  - 404: ErrNotFound: Unknown title
*/
func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	title, err := titleID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	reviews, total, err := handler.service.ListReviews(request.Context(), requestutil.Actor(request), title, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if reviews == nil {
		reviews = []*Review{}
	}
	respond.Paginated(writer, reviews, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/titles/{titleID}/reviews

Description: Publishes the caller's review. One review per work.

Request:
  - Body: reviewRequest

Response:
  - 201: Review
  - 400: ErrValidation: Missing text or score outside 1..10
  - 401: ErrUnauthorized
  - 404: ErrNotFound: Unknown title
  - 409: ErrConflict: Already reviewed
*/
func (handler *Handler) createReview(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	if err := handler.service.authorize(actor, access.ActionCreate, access.ResourceReview); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, err := titleID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.Text = strings.TrimSpace(input.Text)

	validator := &validate.Validator{}
	validator.Required(FieldText, input.Text).
		Range(FieldScore, input.Score, MinScore, MaxScore)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.service.CreateReview(request.Context(), actor, title, ReviewInput{
		Text:  input.Text,
		Score: input.Score,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, review)
}

/*
GET /api/v1/titles/{titleID}/reviews/{reviewID}

Response:
  - 200: Review
  - 404: ErrNotFound: Unknown review or review of another title
*/
func (handler *Handler) getReview(writer http.ResponseWriter, request *http.Request) {
	title, review, err := reviewPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.GetReview(request.Context(), requestutil.Actor(request), title, review)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

/*
PATCH /api/v1/titles/{titleID}/reviews/{reviewID}

Request:
  - Body: reviewPatchRequest

Response:
  - 200: Review
  - 400: ErrValidation
  - 401/403: Not the author, a moderator or an admin
  - 404: ErrNotFound
*/
func (handler *Handler) updateReview(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	if err := handler.service.authorize(actor, access.ActionUpdate, access.ResourceReview); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, review, err := reviewPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reviewPatchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if input.Text != nil {
		*input.Text = strings.TrimSpace(*input.Text)
		validator.Required(FieldText, *input.Text)
	}
	if input.Score != nil {
		validator.Range(FieldScore, *input.Score, MinScore, MaxScore)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateReview(request.Context(), actor, title, review, ReviewPatch{
		Text:  input.Text,
		Score: input.Score,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

/*
DELETE /api/v1/titles/{titleID}/reviews/{reviewID}

Response:
  - 204: No Content
  - 401/403: Not the author, a moderator or an admin
  - 404: ErrNotFound
*/
func (handler *Handler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	title, review, err := reviewPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteReview(request.Context(), requestutil.Actor(request), title, review); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Comment Handlers

/*
GET /api/v1/titles/{titleID}/reviews/{reviewID}/comments

Response:
  - 200: []Comment (paginated, newest first)
  - 404: ErrNotFound: Review not under that title
*/
func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	title, review, err := reviewPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	comments, total, err := handler.service.ListComments(request.Context(), requestutil.Actor(request), title, review, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if comments == nil {
		comments = []*Comment{}
	}
	respond.Paginated(writer, comments, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/titles/{titleID}/reviews/{reviewID}/comments

Request:
  - Body: commentRequest

Response:
  - 201: Comment
  - 400: ErrValidation: Missing text
  - 401: ErrUnauthorized
  - 404: ErrNotFound: Review not under that title
*/
func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	if err := handler.service.authorize(actor, access.ActionCreate, access.ResourceComment); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, review, err := reviewPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	text, err := decodeCommentText(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.CreateComment(request.Context(), actor, title, review, text)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, comment)
}

/*
GET /api/v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}

Response:
  - 200: Comment
  - 404: ErrNotFound
*/
func (handler *Handler) getComment(writer http.ResponseWriter, request *http.Request) {
	title, review, comment, err := commentPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.GetComment(request.Context(), requestutil.Actor(request), title, review, comment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

/*
PATCH /api/v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}

Response:
  - 200: Comment
  - 401/403: Not the author, a moderator or an admin
  - 404: ErrNotFound
*/
func (handler *Handler) updateComment(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	if err := handler.service.authorize(actor, access.ActionUpdate, access.ResourceComment); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, review, comment, err := commentPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	text, err := decodeCommentText(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateComment(request.Context(), actor, title, review, comment, text)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

/*
DELETE /api/v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}

Response:
  - 204: No Content
  - 401/403: Not the author, a moderator or an admin
  - 404: ErrNotFound
*/
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	title, review, comment, err := commentPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteComment(request.Context(), requestutil.Actor(request), title, review, comment); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func decodeCommentText(request *http.Request) (string, error) {
	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return "", err
	}
	input.Text = strings.TrimSpace(input.Text)

	validator := &validate.Validator{}
	validator.Required(FieldText, input.Text)
	if err := validator.Err(); err != nil {
		return "", err
	}
	return input.Text, nil
}
