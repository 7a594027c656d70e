// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package review holds the reviews users write about titles and the comments
left under those reviews.

# Invariants

  - One review per (author, title). A unique constraint on the pair is the
    source of truth; the service pre-check only exists to fail early with the
    same message.
  - Scores are integers in [1, 10].
  - A comment is only reachable through its own review and title. A review id
    that exists under another title is reported as not found.
  - Deleting a title, a review, or a user cascades in the database.
*/
package review

import (
	"context"
	"time"

	"github.com/taibuivan/yamdb/internal/access"
)

// # Domain Entities

// Review is a user's scored opinion on a title.
type Review struct {
	ID       int64     `json:"id"`
	TitleID  int64     `json:"-"`
	AuthorID string    `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Score    int       `json:"score"`
	PubDate  time.Time `json:"pub_date"`
}

// Comment is a reply under a review.
type Comment struct {
	ID       int64     `json:"id"`
	ReviewID int64     `json:"-"`
	AuthorID string    `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}

// # Contracts

// ReviewRepository persists reviews. Lookups are scoped by title.
type ReviewRepository interface {
	List(context context.Context, titleID int64, limit, offset int) ([]*Review, int, error)
	Get(context context.Context, titleID, reviewID int64) (*Review, error)
	ExistsForAuthor(context context.Context, titleID int64, authorID string) (bool, error)
	Create(context context.Context, review *Review) error
	Update(context context.Context, review *Review) error
	Delete(context context.Context, reviewID int64) error
}

// CommentRepository persists comments. Lookups are scoped by review.
type CommentRepository interface {
	List(context context.Context, reviewID int64, limit, offset int) ([]*Comment, int, error)
	Get(context context.Context, reviewID, commentID int64) (*Comment, error)
	Create(context context.Context, comment *Comment) error
	Update(context context.Context, comment *Comment) error
	Delete(context context.Context, commentID int64) error
}

// TitleLookup reports whether a title exists.
type TitleLookup interface {
	Exists(context context.Context, titleID int64) (bool, error)
}

// Authorizer gates review and comment actions.
type Authorizer interface {
	Authorize(request access.Request) error
}

// # Fields & Limits

const (
	FieldText  = "text"
	FieldScore = "score"

	MinScore = 1
	MaxScore = 10

	// DuplicateReviewMessage is shared by the pre-check and the constraint mapping.
	DuplicateReviewMessage = "You can write only one review per work"
)
