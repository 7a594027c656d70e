// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Fakes

var usernames = map[string]string{
	"alice": "alice",
	"bob":   "bob",
	"mod":   "mod",
	"admin": "admin",
}

type memoryStore struct {
	reviews  map[int64]*Review
	comments map[int64]*Comment
	nextID   int64
	clock    time.Time

	// skipPrecheck simulates a concurrent writer winning between the
	// pre-check and the insert.
	skipPrecheck bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		reviews:  map[int64]*Review{},
		comments: map[int64]*Comment{},
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (store *memoryStore) tick() time.Time {
	store.clock = store.clock.Add(time.Minute)
	return store.clock
}

type memoryReviews struct{ *memoryStore }

func (store memoryReviews) List(_ context.Context, titleID int64, limit, offset int) ([]*Review, int, error) {
	var reviews []*Review
	for _, review := range store.reviews {
		if review.TitleID == titleID {
			copied := *review
			reviews = append(reviews, &copied)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].PubDate.After(reviews[j].PubDate) })
	return page(reviews, limit, offset), len(reviews), nil
}

func (store memoryReviews) Get(_ context.Context, titleID, reviewID int64) (*Review, error) {
	review, ok := store.reviews[reviewID]
	if !ok || review.TitleID != titleID {
		return nil, apperr.NotFound("Review")
	}
	copied := *review
	return &copied, nil
}

func (store memoryReviews) ExistsForAuthor(_ context.Context, titleID int64, authorID string) (bool, error) {
	if store.skipPrecheck {
		return false, nil
	}
	for _, review := range store.reviews {
		if review.TitleID == titleID && review.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (store memoryReviews) Create(_ context.Context, review *Review) error {
	for _, existing := range store.reviews {
		if existing.TitleID == review.TitleID && existing.AuthorID == review.AuthorID {
			return dberr.Wrap(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: schema.CoreReview.AuthorTitleKey,
			}, "create_review")
		}
	}
	store.nextID++
	review.ID = store.nextID
	review.PubDate = store.tick()
	review.Author = usernames[review.AuthorID]
	copied := *review
	store.reviews[review.ID] = &copied
	return nil
}

func (store memoryReviews) Update(_ context.Context, review *Review) error {
	if _, ok := store.reviews[review.ID]; !ok {
		return apperr.NotFound("Review")
	}
	copied := *review
	store.reviews[review.ID] = &copied
	return nil
}

func (store memoryReviews) Delete(_ context.Context, reviewID int64) error {
	if _, ok := store.reviews[reviewID]; !ok {
		return apperr.NotFound("Review")
	}
	delete(store.reviews, reviewID)
	for id, comment := range store.comments {
		if comment.ReviewID == reviewID {
			delete(store.comments, id)
		}
	}
	return nil
}

type memoryComments struct{ *memoryStore }

func (store memoryComments) List(_ context.Context, reviewID int64, limit, offset int) ([]*Comment, int, error) {
	var comments []*Comment
	for _, comment := range store.comments {
		if comment.ReviewID == reviewID {
			copied := *comment
			comments = append(comments, &copied)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].PubDate.After(comments[j].PubDate) })
	return page(comments, limit, offset), len(comments), nil
}

func (store memoryComments) Get(_ context.Context, reviewID, commentID int64) (*Comment, error) {
	comment, ok := store.comments[commentID]
	if !ok || comment.ReviewID != reviewID {
		return nil, apperr.NotFound("Comment")
	}
	copied := *comment
	return &copied, nil
}

func (store memoryComments) Create(_ context.Context, comment *Comment) error {
	store.nextID++
	comment.ID = store.nextID
	comment.PubDate = store.tick()
	comment.Author = usernames[comment.AuthorID]
	copied := *comment
	store.comments[comment.ID] = &copied
	return nil
}

func (store memoryComments) Update(_ context.Context, comment *Comment) error {
	if _, ok := store.comments[comment.ID]; !ok {
		return apperr.NotFound("Comment")
	}
	copied := *comment
	store.comments[comment.ID] = &copied
	return nil
}

func (store memoryComments) Delete(_ context.Context, commentID int64) error {
	if _, ok := store.comments[commentID]; !ok {
		return apperr.NotFound("Comment")
	}
	delete(store.comments, commentID)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type knownTitles map[int64]bool

func (titles knownTitles) Exists(_ context.Context, titleID int64) (bool, error) {
	return titles[titleID], nil
}

var (
	alice     = sec.Actor{UserID: "alice", Username: "alice", Role: sec.RoleUser}
	bob       = sec.Actor{UserID: "bob", Username: "bob", Role: sec.RoleUser}
	moderator = sec.Actor{UserID: "mod", Username: "mod", Role: sec.RoleModerator}
	admin     = sec.Actor{UserID: "admin", Username: "admin", Role: sec.RoleAdmin}
	superuser = sec.Actor{UserID: "root", Username: "root", Role: sec.RoleUser, IsSuperuser: true}
)

func newTestService() (*Service, *memoryStore) {
	store := newMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(memoryReviews{store}, memoryComments{store}, knownTitles{5: true, 6: true}, access.MustNewEvaluator(), logger)
	return service, store
}

// # Reviews

func TestService_OneReviewPerWork(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	review, err := service.CreateReview(ctx, alice, 5, ReviewInput{Text: "Great", Score: 8})
	require.NoError(t, err)
	assert.Equal(t, "alice", review.Author)
	assert.False(t, review.PubDate.IsZero())

	_, err = service.CreateReview(ctx, alice, 5, ReviewInput{Text: "Again", Score: 3})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
	assert.Equal(t, DuplicateReviewMessage, err.Error())

	_, err = service.CreateReview(ctx, bob, 5, ReviewInput{Text: "Fine", Score: 6})
	require.NoError(t, err)

	_, err = service.CreateReview(ctx, alice, 6, ReviewInput{Text: "Other work", Score: 6})
	require.NoError(t, err)
}

func TestService_DuplicateCaughtByConstraint(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	_, err := service.CreateReview(ctx, alice, 5, ReviewInput{Text: "First", Score: 8})
	require.NoError(t, err)

	store.skipPrecheck = true
	_, err = service.CreateReview(ctx, alice, 5, ReviewInput{Text: "Racing", Score: 2})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Equal(t, DuplicateReviewMessage, appErr.Message)
}

func TestService_ScoreBounds(t *testing.T) {
	tests := []struct {
		score int
		valid bool
	}{
		{0, false},
		{1, true},
		{10, true},
		{11, false},
		{-3, false},
	}

	for _, tt := range tests {
		err := ValidateScore(tt.score)
		if tt.valid {
			assert.NoError(t, err, "score %d", tt.score)
		} else {
			assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"), "score %d", tt.score)
		}
	}
}

func TestService_CreateReviewErrors(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	_, err := service.CreateReview(ctx, alice, 404, ReviewInput{Text: "x", Score: 5})
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	_, err = service.CreateReview(ctx, alice, 5, ReviewInput{Text: "x", Score: 11})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = service.CreateReview(ctx, sec.Anonymous(), 5, ReviewInput{Text: "x", Score: 5})
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))

	assert.Empty(t, store.reviews)
}

func TestService_ListReviewsNewestFirst(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	for _, actor := range []sec.Actor{alice, bob, moderator} {
		_, err := service.CreateReview(ctx, actor, 5, ReviewInput{Text: "by " + actor.Username, Score: 7})
		require.NoError(t, err)
	}

	reviews, total, err := service.ListReviews(ctx, sec.Anonymous(), 5, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"mod", "bob", "alice"}, []string{reviews[0].Author, reviews[1].Author, reviews[2].Author})

	_, _, err = service.ListReviews(ctx, sec.Anonymous(), 404, 10, 0)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestService_ReviewOwnership(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	review, err := service.CreateReview(ctx, alice, 5, ReviewInput{Text: "Mine", Score: 8})
	require.NoError(t, err)

	text := "Edited"
	updated, err := service.UpdateReview(ctx, alice, 5, review.ID, ReviewPatch{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Text)
	assert.Equal(t, 8, updated.Score)
	assert.Equal(t, review.PubDate, updated.PubDate)

	_, err = service.UpdateReview(ctx, bob, 5, review.ID, ReviewPatch{Text: &text})
	assert.True(t, apperr.HasCode(err, "FORBIDDEN"))

	_, err = service.UpdateReview(ctx, sec.Anonymous(), 5, review.ID, ReviewPatch{Text: &text})
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))

	score := 0
	_, err = service.UpdateReview(ctx, alice, 5, review.ID, ReviewPatch{Score: &score})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	score = 2
	updated, err = service.UpdateReview(ctx, moderator, 5, review.ID, ReviewPatch{Score: &score})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Score)

	assert.True(t, apperr.HasCode(service.DeleteReview(ctx, alice, 6, review.ID), "NOT_FOUND"), "review of another title")
	assert.NoError(t, service.DeleteReview(ctx, superuser, 5, review.ID))
}

// # Comments

func TestService_CommentChainMustMatch(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	review, err := service.CreateReview(ctx, alice, 5, ReviewInput{Text: "Review", Score: 9})
	require.NoError(t, err)

	_, err = service.CreateComment(ctx, bob, 6, review.ID, "Wrong title")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	comment, err := service.CreateComment(ctx, bob, 5, review.ID, "Agreed")
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.Author)

	_, err = service.GetComment(ctx, sec.Anonymous(), 6, review.ID, comment.ID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	other, err := service.CreateReview(ctx, bob, 5, ReviewInput{Text: "Other", Score: 4})
	require.NoError(t, err)
	_, err = service.GetComment(ctx, sec.Anonymous(), 5, other.ID, comment.ID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	found, err := service.GetComment(ctx, sec.Anonymous(), 5, review.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Agreed", found.Text)
}

func TestService_CommentModeration(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	review, err := service.CreateReview(ctx, alice, 5, ReviewInput{Text: "Review", Score: 9})
	require.NoError(t, err)
	comment, err := service.CreateComment(ctx, bob, 5, review.ID, "Reply")
	require.NoError(t, err)

	assert.True(t, apperr.HasCode(service.DeleteComment(ctx, alice, 5, review.ID, comment.ID), "FORBIDDEN"))
	assert.NoError(t, service.DeleteComment(ctx, moderator, 5, review.ID, comment.ID))
	assert.Empty(t, store.comments)

	comment, err = service.CreateComment(ctx, bob, 5, review.ID, "Reply again")
	require.NoError(t, err)

	updated, err := service.UpdateComment(ctx, bob, 5, review.ID, comment.ID, "Edited")
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Text)

	_, err = service.CreateComment(ctx, sec.Anonymous(), 5, review.ID, "Anon")
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))

	require.NoError(t, service.DeleteReview(ctx, admin, 5, review.ID))
	assert.Empty(t, store.comments, "comments go with their review")
}
