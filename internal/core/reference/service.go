package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/pkg/slice"
	"github.com/taibuivan/yamdb/pkg/slug"
)

// Authorizer is the access check the service depends on.
type Authorizer interface {
	Authorize(request access.Request) error
}

// Service implements the business logic for one taxonomy.
type Service struct {
	repository Repository
	authorizer Authorizer
	kind       Kind
}

// NewService constructs a new reference [Service] bound to kind.
func NewService(repository Repository, authorizer Authorizer, kind Kind) *Service {
	return &Service{repository: repository, authorizer: authorizer, kind: kind}
}

// Kind returns the taxonomy this service manages.
func (service *Service) Kind() Kind {
	return service.kind
}

/*
List retrieves a page of entries. Public.

Parameters:
  - context: context.Context
  - actor: sec.Actor
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Entry: The page
  - int: Total matching count
  - error: Storage failures
*/
func (service *Service) List(context context.Context, actor sec.Actor, filter Filter, limit, offset int) ([]*Entry, int, error) {
	if err := service.authorize(actor, access.ActionRead); err != nil {
		return nil, 0, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return service.repository.List(context, filter, limit, offset)
}

// CreateInput holds the fields of a new entry. A blank slug is derived from the name.
type CreateInput struct {
	Name string
	Slug string
}

/*
Create adds an entry. Admin only.

Returns:
  - *Entry: The created entry
  - error: Forbidden, ValidationError (no usable slug), or Conflict (slug taken)
*/
func (service *Service) Create(context context.Context, actor sec.Actor, input CreateInput) (*Entry, error) {
	if err := service.authorize(actor, access.ActionCreate); err != nil {
		return nil, err
	}

	entry := &Entry{Name: strings.TrimSpace(input.Name), Slug: strings.TrimSpace(input.Slug)}
	if entry.Slug == "" {
		entry.Slug = slug.FromMax(entry.Name, MaxSlugLength)
		if entry.Slug == "" {
			return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
				Field:   FieldSlug,
				Message: "Cannot be derived from the name; supply one explicitly",
			})
		}
	}

	if err := service.repository.Create(context, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

/*
Delete removes an entry by slug. Admin only.
*/
func (service *Service) Delete(context context.Context, actor sec.Actor, slug string) error {
	if err := service.authorize(actor, access.ActionDelete); err != nil {
		return err
	}
	return service.repository.DeleteBySlug(context, slug)
}

/*
Resolve maps slugs supplied on a title write onto stored entries.

Description: Duplicates are collapsed. Every slug must exist; the first
missing one is reported against field as a validation failure.

Parameters:
  - context: context.Context
  - field: string (Request field the slugs came from)
  - slugs: []string

Returns:
  - []*Entry: Entries in the order of first appearance in slugs
  - error: ValidationError for unknown slugs, or storage failures
*/
func (service *Service) Resolve(context context.Context, field string, slugs []string) ([]*Entry, error) {
	slugs = slice.Unique(slugs)
	if len(slugs) == 0 {
		return nil, nil
	}

	found, err := service.repository.FindBySlugs(context, slugs)
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]*Entry, len(found))
	for _, entry := range found {
		bySlug[entry.Slug] = entry
	}

	entries := make([]*Entry, 0, len(slugs))
	for _, requested := range slugs {
		entry, ok := bySlug[requested]
		if !ok {
			return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
				Field:   field,
				Message: fmt.Sprintf("%s with slug %q does not exist", service.kind.Label, requested),
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (service *Service) authorize(actor sec.Actor, action access.Action) error {
	return service.authorizer.Authorize(access.Request{Actor: actor, Action: action, Resource: service.kind.Resource})
}
