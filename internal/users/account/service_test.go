// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/access"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/mail"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/auth"
	"github.com/taibuivan/yamdb/pkg/pointer"
)

// # Fakes

type memoryAccounts struct {
	byID map[string]*auth.User
}

func newMemoryAccounts(users ...*auth.User) *memoryAccounts {
	store := &memoryAccounts{byID: map[string]*auth.User{}}
	for _, user := range users {
		store.byID[user.ID] = user
	}
	return store
}

func (store *memoryAccounts) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := store.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryAccounts) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range store.byID {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryAccounts) List(_ context.Context, filter ListFilter) ([]*auth.User, int, error) {
	var matched []*auth.User
	for _, user := range store.byID {
		if filter.Search == "" || strings.Contains(strings.ToLower(user.Username), strings.ToLower(filter.Search)) {
			matched = append(matched, user)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Username < matched[j].Username })
	return matched, len(matched), nil
}

func (store *memoryAccounts) Create(_ context.Context, user *auth.User) error {
	for _, existing := range store.byID {
		if existing.Email == user.Email || (user.Username != "" && existing.Username == user.Username) {
			return apperr.Conflict("A user with that email already exists")
		}
	}
	copied := *user
	store.byID[user.ID] = &copied
	return nil
}

func (store *memoryAccounts) Update(_ context.Context, user *auth.User) error {
	if _, ok := store.byID[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	copied := *user
	store.byID[user.ID] = &copied
	return nil
}

// FindByEmail and UpsertConfirmationCode let the sign-in service share the
// store. Emails match exactly, like the unique index.
func (store *memoryAccounts) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range store.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryAccounts) UpsertConfirmationCode(_ context.Context, email, username, codeHash string) (*auth.User, error) {
	for _, user := range store.byID {
		if user.Email == email {
			user.ConfirmationCodeHash = codeHash
			copied := *user
			return &copied, nil
		}
	}
	user := &auth.User{ID: "u-signup", Email: email, Username: username, Role: sec.RoleUser, ConfirmationCodeHash: codeHash}
	store.byID[user.ID] = user
	copied := *user
	return &copied, nil
}

func (store *memoryAccounts) Delete(_ context.Context, id string) error {
	if _, ok := store.byID[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(store.byID, id)
	return nil
}

// # Fixtures

var (
	plainUser = &auth.User{ID: "u-1", Username: "reader", Email: "reader@yamdb.dev", Role: sec.RoleUser}
	moderator = &auth.User{ID: "u-2", Username: "mod", Email: "mod@yamdb.dev", Role: sec.RoleModerator}
	admin     = &auth.User{ID: "u-3", Username: "boss", Email: "boss@yamdb.dev", Role: sec.RoleAdmin}
	superuser = &auth.User{ID: "u-4", Username: "root", Email: "root@yamdb.dev", Role: sec.RoleUser, IsSuperuser: true}
)

func newTestService() (*Service, *memoryAccounts) {
	clone := func(user *auth.User) *auth.User { copied := *user; return &copied }
	store := newMemoryAccounts(clone(plainUser), clone(moderator), clone(admin), clone(superuser))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, access.MustNewEvaluator(), logger), store
}

// # Tests

func TestUpdateMe_IgnoresRole(t *testing.T) {
	for _, user := range []*auth.User{plainUser, moderator} {
		t.Run(user.Username, func(t *testing.T) {
			service, store := newTestService()
			escalate := sec.RoleAdmin

			updated, err := service.UpdateMe(context.Background(), user.Actor(), ProfileInput{
				Bio:  pointer.To("hello"),
				Role: &escalate,
			})
			require.NoError(t, err)
			assert.Equal(t, user.Role, updated.Role)
			assert.Equal(t, "hello", updated.Bio)

			stored, _ := store.FindByID(context.Background(), user.ID)
			assert.Equal(t, user.Role, stored.Role)
		})
	}
}

func TestGetMe_RequiresAuthentication(t *testing.T) {
	service, _ := newTestService()

	_, err := service.GetMe(context.Background(), sec.Anonymous())
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))

	me, err := service.GetMe(context.Background(), plainUser.Actor())
	require.NoError(t, err)
	assert.Equal(t, plainUser.Email, me.Email)
}

func TestAdministration_AccessMatrix(t *testing.T) {
	tests := []struct {
		name  string
		actor sec.Actor
		code  string
	}{
		{"anonymous", sec.Anonymous(), "UNAUTHORIZED"},
		{"user", plainUser.Actor(), "FORBIDDEN"},
		{"moderator", moderator.Actor(), "FORBIDDEN"},
		{"admin", admin.Actor(), ""},
		{"superuser", superuser.Actor(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService()
			ctx := context.Background()

			_, _, listErr := service.List(ctx, tt.actor, ListFilter{Limit: 10})
			_, getErr := service.Get(ctx, tt.actor, "reader")
			deleteErr := service.Delete(ctx, tt.actor, "reader")

			for _, err := range []error{listErr, getErr, deleteErr} {
				if tt.code == "" {
					assert.NoError(t, err)
				} else {
					assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
				}
			}
		})
	}
}

func TestAdminUpdate_ChangesRole(t *testing.T) {
	service, _ := newTestService()
	promoted := sec.RoleModerator

	updated, err := service.Update(context.Background(), admin.Actor(), "reader", ProfileInput{Role: &promoted})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, updated.Role)
}

func TestAdminCreate(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, admin.Actor(), CreateUserInput{Email: "new@yamdb.dev", Username: "newbie"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, sec.RoleUser, created.Role, "blank role defaults to user")

	_, err = service.Create(ctx, admin.Actor(), CreateUserInput{Email: "new@yamdb.dev"})
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
}

func TestAdminCreate_NormalizesEmail(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, admin.Actor(), CreateUserInput{
		Email: " bob@Example.COM ",
		Role:  sec.RoleModerator,
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", created.Email)

	updated, err := service.Update(ctx, admin.Actor(), "reader", ProfileInput{Email: pointer.To("Reader@YAMDB.dev")})
	require.NoError(t, err)
	assert.Equal(t, "Reader@yamdb.dev", updated.Email)
	assert.Equal(t, "Reader@yamdb.dev", store.byID[plainUser.ID].Email)
}

func TestAdminCreatedAccount_ReceivesConfirmationCode(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, admin.Actor(), CreateUserInput{Email: "bob@Example.com", Role: sec.RoleModerator})
	require.NoError(t, err)

	var delivered []string
	sender := mail.SenderFunc(func(_ context.Context, message mail.Message) error {
		delivered = append(delivered, message.To)
		return nil
	})
	signIn := auth.NewService(store, nil, sender, nil, auth.Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = signIn.RequestCode(ctx, auth.RequestCodeInput{Email: "bob@Example.com"})
	require.NoError(t, err)

	assert.Equal(t, []string{"bob@example.com"}, delivered)
	assert.Len(t, store.byID, 5, "no second account is created")
	stored := store.byID[created.ID]
	assert.NotEmpty(t, stored.ConfirmationCodeHash)
	assert.Equal(t, sec.RoleModerator, stored.Role)
}

func TestList_Search(t *testing.T) {
	service, _ := newTestService()

	users, total, err := service.List(context.Background(), admin.Actor(), ListFilter{Search: " O ", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "boss", users[0].Username)
}
