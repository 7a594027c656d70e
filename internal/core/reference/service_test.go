package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

type memoryRepository struct {
	entries map[string]*Entry
	nextID  int64
	label   string
}

func newMemoryRepository(label string, seed ...Entry) *memoryRepository {
	repository := &memoryRepository{entries: map[string]*Entry{}, label: label}
	for _, entry := range seed {
		e := entry
		_ = repository.Create(context.Background(), &e)
	}
	return repository
}

func (repository *memoryRepository) List(_ context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	var matched []*Entry
	for _, entry := range repository.entries {
		if filter.Search == "" || strings.Contains(strings.ToLower(entry.Name), strings.ToLower(filter.Search)) {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (repository *memoryRepository) GetBySlug(_ context.Context, slug string) (*Entry, error) {
	if entry, ok := repository.entries[slug]; ok {
		return entry, nil
	}
	return nil, apperr.NotFound(repository.label)
}

func (repository *memoryRepository) FindBySlugs(_ context.Context, slugs []string) ([]*Entry, error) {
	var found []*Entry
	for _, slug := range slugs {
		if entry, ok := repository.entries[slug]; ok {
			found = append(found, entry)
		}
	}
	return found, nil
}

func (repository *memoryRepository) Create(_ context.Context, entry *Entry) error {
	if _, ok := repository.entries[entry.Slug]; ok {
		return apperr.Conflict("slug taken")
	}
	repository.nextID++
	entry.ID = repository.nextID
	repository.entries[entry.Slug] = entry
	return nil
}

func (repository *memoryRepository) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := repository.entries[slug]; !ok {
		return apperr.NotFound(repository.label)
	}
	delete(repository.entries, slug)
	return nil
}

var (
	adminActor = sec.Actor{UserID: "a", Role: sec.RoleAdmin}
	userActor  = sec.Actor{UserID: "u", Role: sec.RoleUser}
	modActor   = sec.Actor{UserID: "m", Role: sec.RoleModerator}
)

func newGenreService(seed ...Entry) *Service {
	return NewService(newMemoryRepository(Genres.Label, seed...), access.MustNewEvaluator(), Genres)
}

func TestService_CreateDerivesSlug(t *testing.T) {
	service := newGenreService()

	entry, err := service.Create(context.Background(), adminActor, CreateInput{Name: "Science Fiction"})
	require.NoError(t, err)
	assert.Equal(t, "science-fiction", entry.Slug)

	_, err = service.Create(context.Background(), adminActor, CreateInput{Name: "Sci-Fi", Slug: "science-fiction"})
	assert.True(t, apperr.HasCode(err, "CONFLICT"))

	_, err = service.Create(context.Background(), adminActor, CreateInput{Name: "!!!"})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

func TestService_WritesRequireAdmin(t *testing.T) {
	service := newGenreService(Entry{Name: "Drama", Slug: "drama"})
	ctx := context.Background()

	for name, actor := range map[string]sec.Actor{"user": userActor, "moderator": modActor} {
		t.Run(name, func(t *testing.T) {
			_, err := service.Create(ctx, actor, CreateInput{Name: "Horror"})
			assert.True(t, apperr.HasCode(err, "FORBIDDEN"))
			assert.True(t, apperr.HasCode(service.Delete(ctx, actor, "drama"), "FORBIDDEN"))
		})
	}

	_, err := service.Create(ctx, sec.Anonymous(), CreateInput{Name: "Horror"})
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))

	require.NoError(t, service.Delete(ctx, adminActor, "drama"))
	assert.True(t, apperr.HasCode(service.Delete(ctx, adminActor, "drama"), "NOT_FOUND"))
}

func TestService_ListIsPublic(t *testing.T) {
	service := newGenreService(Entry{Name: "Drama", Slug: "drama"}, Entry{Name: "Comedy", Slug: "comedy"})

	entries, total, err := service.List(context.Background(), sec.Anonymous(), Filter{Search: "dra"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "drama", entries[0].Slug)

	entries, _, err = service.List(context.Background(), sec.Anonymous(), Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "comedy", entries[0].Slug, "newest entry first")
}

func TestService_Resolve(t *testing.T) {
	service := newGenreService(Entry{Name: "Drama", Slug: "drama"}, Entry{Name: "Comedy", Slug: "comedy"})
	ctx := context.Background()

	entries, err := service.Resolve(ctx, "genre", []string{"comedy", "drama", "comedy"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "comedy", entries[0].Slug)
	assert.Equal(t, "drama", entries[1].Slug)

	_, err = service.Resolve(ctx, "genre", []string{"drama", "western"})
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "genre", appErr.Details[0].Field)

	none, err := service.Resolve(ctx, "genre", nil)
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestHandler_Routes(t *testing.T) {
	routes := NewHandler(newGenreService(Entry{Name: "Drama", Slug: "drama"})).Routes()

	serve := func(actor sec.Actor, method, path, body string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(method, path, strings.NewReader(body))
		request = request.WithContext(ctxutil.WithActor(request.Context(), actor))
		recorder := httptest.NewRecorder()
		routes.ServeHTTP(recorder, request)
		return recorder
	}

	recorder := serve(sec.Anonymous(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"slug":"drama"`)
	assert.NotContains(t, recorder.Body.String(), `"id"`)

	assert.Equal(t, http.StatusUnauthorized, serve(sec.Anonymous(), http.MethodPost, "/", `{"name":"X"}`).Code)
	assert.Equal(t, http.StatusForbidden, serve(userActor, http.MethodPost, "/", `{"name":"X"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(adminActor, http.MethodPost, "/", `{"name":"X","slug":"bad slug"}`).Code)
	assert.Equal(t, http.StatusCreated, serve(adminActor, http.MethodPost, "/", `{"name":"Thriller"}`).Code)
	assert.Equal(t, http.StatusNoContent, serve(adminActor, http.MethodDelete, "/thriller", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(adminActor, http.MethodDelete, "/thriller", "").Code)
}
