package schema

// CoreReviewTable represents the 'core.review' table
type CoreReviewTable struct {
	Table    string
	ID       string
	TitleID  string
	AuthorID string
	Text     string
	Score    string
	PubDate  string

	// Constraints
	AuthorTitleKey string
	ScoreRange     string
}

// CoreReview is the schema definition for core.review
var CoreReview = CoreReviewTable{
	Table:    "core.review",
	ID:       "id",
	TitleID:  "titleid",
	AuthorID: "authorid",
	Text:     "text",
	Score:    "score",
	PubDate:  "pubdate",

	AuthorTitleKey: "review_author_title_key",
	ScoreRange:     "review_score_range",
}

// CoreCommentTable represents the 'core.comment' table
type CoreCommentTable struct {
	Table    string
	ID       string
	ReviewID string
	AuthorID string
	Text     string
	PubDate  string
}

// CoreComment is the schema definition for core.comment
var CoreComment = CoreCommentTable{
	Table:    "core.comment",
	ID:       "id",
	ReviewID: "reviewid",
	AuthorID: "authorid",
	Text:     "text",
	PubDate:  "pubdate",
}
