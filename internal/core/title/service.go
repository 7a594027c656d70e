// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"context"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/pkg/slice"
)

// Service implements title use cases.
type Service struct {
	repository Repository
	categories TaxonomyResolver
	genres     TaxonomyResolver
	authorizer Authorizer
}

// NewService constructs a new title [Service].
func NewService(repository Repository, categories, genres TaxonomyResolver, authorizer Authorizer) *Service {
	return &Service{
		repository: repository,
		categories: categories,
		genres:     genres,
		authorizer: authorizer,
	}
}

// CreateInput holds the fields of a new title. Genre and Category are slugs.
type CreateInput struct {
	Name        string
	Year        *int
	Description string
	Genre       []string
	Category    *string
}

// UpdateInput is a partial update.
type UpdateInput struct {
	Name        *string
	YearSet     bool
	Year        *int
	Description *string
	// Genre replaces the genre set when non-nil. An empty slice clears it.
	Genre *[]string
	// CategorySet with a nil Category clears the category.
	CategorySet bool
	Category    *string
}

// # Reads

/*
List returns a page of titles with ratings. Public.

Returns:
  - []*Title: The page
  - int: Total matching count
  - error: Storage failures
*/
func (service *Service) List(context context.Context, actor sec.Actor, filter Filter, limit, offset int) ([]*Title, int, error) {
	if err := service.authorize(actor, access.ActionRead); err != nil {
		return nil, 0, err
	}

	titles, total, err := service.repository.List(context, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	if err := service.attachRatings(context, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

/*
Get returns one title with its rating. Public.
*/
func (service *Service) Get(context context.Context, actor sec.Actor, id int64) (*Title, error) {
	if err := service.authorize(actor, access.ActionRead); err != nil {
		return nil, err
	}

	title, err := service.repository.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.attachRatings(context, []*Title{title}); err != nil {
		return nil, err
	}
	return title, nil
}

// attachRatings sets each title's rating to the mean of its review scores.
func (service *Service) attachRatings(context context.Context, titles []*Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := slice.Map(titles, func(title *Title) int64 { return title.ID })
	summaries, err := service.repository.ScoreSummaries(context, ids)
	if err != nil {
		return err
	}

	for _, title := range titles {
		title.Rating = summaries[title.ID].Mean()
	}
	return nil
}

// # Writes

/*
Create adds a title. Admin only.

Description: Category and genre slugs must already exist.

Returns:
  - *WriteView: The stored title in write shape
  - error: Forbidden, ValidationError (unknown slug), or storage failures
*/
func (service *Service) Create(context context.Context, actor sec.Actor, input CreateInput) (*WriteView, error) {
	if err := service.authorize(actor, access.ActionCreate); err != nil {
		return nil, err
	}

	record := &Record{
		Name:        input.Name,
		Year:        input.Year,
		Description: input.Description,
	}

	categoryID, err := service.resolveCategory(context, input.Category)
	if err != nil {
		return nil, err
	}
	record.CategoryID = categoryID

	genreIDs, err := service.resolveGenres(context, input.Genre)
	if err != nil {
		return nil, err
	}
	record.GenreIDs = genreIDs

	if err := service.repository.Create(context, record); err != nil {
		return nil, err
	}
	return service.writeView(context, record.ID)
}

/*
Update applies a partial update. Admin only.

Returns:
  - *WriteView: The stored title in write shape
  - error: Forbidden, NotFound, ValidationError, or storage failures
*/
func (service *Service) Update(context context.Context, actor sec.Actor, id int64, input UpdateInput) (*WriteView, error) {
	if err := service.authorize(actor, access.ActionUpdate); err != nil {
		return nil, err
	}

	current, err := service.repository.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	record := &Record{
		ID:          current.ID,
		Name:        current.Name,
		Year:        current.Year,
		Description: current.Description,
	}
	if current.Category != nil {
		record.CategoryID = &current.Category.ID
	}

	if input.Name != nil {
		record.Name = *input.Name
	}
	if input.YearSet {
		record.Year = input.Year
	}
	if input.Description != nil {
		record.Description = *input.Description
	}
	if input.CategorySet {
		if record.CategoryID, err = service.resolveCategory(context, input.Category); err != nil {
			return nil, err
		}
	}

	replaceGenres := input.Genre != nil
	if replaceGenres {
		if record.GenreIDs, err = service.resolveGenres(context, *input.Genre); err != nil {
			return nil, err
		}
	}

	if err := service.repository.Update(context, record, replaceGenres); err != nil {
		return nil, err
	}
	return service.writeView(context, record.ID)
}

/*
Delete removes a title and, by cascade, its reviews and comments. Admin only.
*/
func (service *Service) Delete(context context.Context, actor sec.Actor, id int64) error {
	if err := service.authorize(actor, access.ActionDelete); err != nil {
		return err
	}
	return service.repository.Delete(context, id)
}

// Exists reports whether a title is stored. Used by the review subsystem.
func (service *Service) Exists(context context.Context, id int64) (bool, error) {
	return service.repository.Exists(context, id)
}

// # Internal

func (service *Service) resolveCategory(context context.Context, slug *string) (*int64, error) {
	if slug == nil || *slug == "" {
		return nil, nil
	}
	entries, err := service.categories.Resolve(context, FieldCategory, []string{*slug})
	if err != nil {
		return nil, err
	}
	return &entries[0].ID, nil
}

func (service *Service) resolveGenres(context context.Context, slugs []string) ([]int64, error) {
	entries, err := service.genres.Resolve(context, FieldGenre, slugs)
	if err != nil {
		return nil, err
	}
	return slice.Map(entries, func(entry *reference.Entry) int64 { return entry.ID }), nil
}

// writeView re-reads a title and projects it onto the write shape.
func (service *Service) writeView(context context.Context, id int64) (*WriteView, error) {
	title, err := service.repository.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	view := &WriteView{
		ID:          title.ID,
		Name:        title.Name,
		Year:        title.Year,
		Description: title.Description,
		Genre:       slice.Map(title.Genre, func(entry *reference.Entry) string { return entry.Slug }),
	}
	if view.Genre == nil {
		view.Genre = []string{}
	}
	if title.Category != nil {
		view.Category = &title.Category.Slug
	}
	return view, nil
}

func (service *Service) authorize(actor sec.Actor, action access.Action) error {
	return service.authorizer.Authorize(access.Request{Actor: actor, Action: action, Resource: access.ResourceTitle})
}
