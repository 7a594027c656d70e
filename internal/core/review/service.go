// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/metrics"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// Service implements review and comment use cases.
type Service struct {
	reviews    ReviewRepository
	comments   CommentRepository
	titles     TitleLookup
	authorizer Authorizer
	logger     *slog.Logger
}

// NewService constructs a new review [Service].
func NewService(reviews ReviewRepository, comments CommentRepository, titles TitleLookup, authorizer Authorizer, logger *slog.Logger) *Service {
	return &Service{
		reviews:    reviews,
		comments:   comments,
		titles:     titles,
		authorizer: authorizer,
		logger:     logger,
	}
}

// ReviewInput is the payload of a new review.
type ReviewInput struct {
	Text  string
	Score int
}

// ReviewPatch is a partial review update. Nil fields are kept.
type ReviewPatch struct {
	Text  *string
	Score *int
}

// # Reviews

/*
ListReviews returns a page of a title's reviews, newest first. Public.

Returns:
  - error: apperr.NotFound when the title does not exist
*/
func (service *Service) ListReviews(context context.Context, actor sec.Actor, titleID int64, limit, offset int) ([]*Review, int, error) {
	if err := service.authorize(actor, access.ActionRead, access.ResourceReview); err != nil {
		return nil, 0, err
	}
	if err := service.ensureTitle(context, titleID); err != nil {
		return nil, 0, err
	}
	return service.reviews.List(context, titleID, limit, offset)
}

// GetReview returns one review of a title. Public.
func (service *Service) GetReview(context context.Context, actor sec.Actor, titleID, reviewID int64) (*Review, error) {
	if err := service.authorize(actor, access.ActionRead, access.ResourceReview); err != nil {
		return nil, err
	}
	return service.reviews.Get(context, titleID, reviewID)
}

/*
CreateReview publishes the actor's review of a title.

Description: The title must exist, the score must be in range and the actor
must not have reviewed the title yet. The publication date is set by storage.

Returns:
  - *Review: The stored review
  - error: NotFound, ValidationError, Conflict, 401 for anonymous actors
*/
func (service *Service) CreateReview(context context.Context, actor sec.Actor, titleID int64, input ReviewInput) (*Review, error) {
	if err := service.authorize(actor, access.ActionCreate, access.ResourceReview); err != nil {
		return nil, err
	}
	if err := service.ensureTitle(context, titleID); err != nil {
		return nil, err
	}
	if err := ValidateScore(input.Score); err != nil {
		return nil, err
	}

	exists, err := service.reviews.ExistsForAuthor(context, titleID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict(DuplicateReviewMessage)
	}

	review := &Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     input.Text,
		Score:    input.Score,
	}
	if err := service.reviews.Create(context, review); err != nil {
		return nil, err
	}

	metrics.ReviewsCreated.Inc()
	service.logger.Info("review_created",
		slog.Int64("review_id", review.ID),
		slog.Int64("title_id", titleID),
		slog.String("user_id", actor.UserID),
		slog.Int("score", review.Score),
	)
	return review, nil
}

/*
UpdateReview changes the text or score of a review. Author, moderator or admin.

Returns:
  - error: NotFound, Forbidden, ValidationError
*/
func (service *Service) UpdateReview(context context.Context, actor sec.Actor, titleID, reviewID int64, patch ReviewPatch) (*Review, error) {
	review, err := service.ownedReview(context, actor, access.ActionUpdate, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		review.Text = *patch.Text
	}
	if patch.Score != nil {
		if err := ValidateScore(*patch.Score); err != nil {
			return nil, err
		}
		review.Score = *patch.Score
	}

	if err := service.reviews.Update(context, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review and its comments. Author, moderator or admin.
func (service *Service) DeleteReview(context context.Context, actor sec.Actor, titleID, reviewID int64) error {
	review, err := service.ownedReview(context, actor, access.ActionDelete, titleID, reviewID)
	if err != nil {
		return err
	}
	return service.reviews.Delete(context, review.ID)
}

// # Comments

// ListComments returns a page of a review's comments, newest first. Public.
func (service *Service) ListComments(context context.Context, actor sec.Actor, titleID, reviewID int64, limit, offset int) ([]*Comment, int, error) {
	if err := service.authorize(actor, access.ActionRead, access.ResourceComment); err != nil {
		return nil, 0, err
	}
	if _, err := service.reviews.Get(context, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return service.comments.List(context, reviewID, limit, offset)
}

// GetComment returns one comment. The whole title, review, comment chain must match.
func (service *Service) GetComment(context context.Context, actor sec.Actor, titleID, reviewID, commentID int64) (*Comment, error) {
	if err := service.authorize(actor, access.ActionRead, access.ResourceComment); err != nil {
		return nil, err
	}
	return service.lookupComment(context, titleID, reviewID, commentID)
}

/*
CreateComment replies to a review.

Returns:
  - error: NotFound when the review does not exist under that title
*/
func (service *Service) CreateComment(context context.Context, actor sec.Actor, titleID, reviewID int64, text string) (*Comment, error) {
	if err := service.authorize(actor, access.ActionCreate, access.ResourceComment); err != nil {
		return nil, err
	}

	review, err := service.reviews.Get(context, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	comment := &Comment{
		ReviewID: review.ID,
		AuthorID: actor.UserID,
		Text:     text,
	}
	if err := service.comments.Create(context, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment changes the text of a comment. Author, moderator or admin.
func (service *Service) UpdateComment(context context.Context, actor sec.Actor, titleID, reviewID, commentID int64, text string) (*Comment, error) {
	comment, err := service.ownedComment(context, actor, access.ActionUpdate, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	comment.Text = text
	if err := service.comments.Update(context, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Author, moderator or admin.
func (service *Service) DeleteComment(context context.Context, actor sec.Actor, titleID, reviewID, commentID int64) error {
	comment, err := service.ownedComment(context, actor, access.ActionDelete, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	return service.comments.Delete(context, comment.ID)
}

// # Validation

// ValidateScore rejects scores outside [MinScore, MaxScore].
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldScore,
			Message: fmt.Sprintf("Must be between %d and %d", MinScore, MaxScore),
		})
	}
	return nil
}

// # Internal

func (service *Service) ensureTitle(context context.Context, titleID int64) error {
	exists, err := service.titles.Exists(context, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Title")
	}
	return nil
}

func (service *Service) lookupComment(context context.Context, titleID, reviewID, commentID int64) (*Comment, error) {
	if _, err := service.reviews.Get(context, titleID, reviewID); err != nil {
		return nil, err
	}
	return service.comments.Get(context, reviewID, commentID)
}

// ownedReview authenticates, loads the review, then applies the ownership rule.
func (service *Service) ownedReview(context context.Context, actor sec.Actor, action access.Action, titleID, reviewID int64) (*Review, error) {
	if err := service.authorize(actor, action, access.ResourceReview); err != nil {
		return nil, err
	}

	review, err := service.reviews.Get(context, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if err := service.authorizeObject(actor, action, access.ResourceReview, review.AuthorID); err != nil {
		return nil, err
	}
	return review, nil
}

func (service *Service) ownedComment(context context.Context, actor sec.Actor, action access.Action, titleID, reviewID, commentID int64) (*Comment, error) {
	if err := service.authorize(actor, action, access.ResourceComment); err != nil {
		return nil, err
	}

	comment, err := service.lookupComment(context, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if err := service.authorizeObject(actor, action, access.ResourceComment, comment.AuthorID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (service *Service) authorize(actor sec.Actor, action access.Action, resource access.Resource) error {
	return service.authorizer.Authorize(access.Request{Actor: actor, Action: action, Resource: resource})
}

func (service *Service) authorizeObject(actor sec.Actor, action access.Action, resource access.Resource, ownerID string) error {
	return service.authorizer.Authorize(access.Request{
		Actor:    actor,
		Action:   action,
		Resource: resource,
		Object:   true,
		OwnerID:  ownerID,
	})
}
