// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/mail"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Fakes

type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*User
	nextID  int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*User{}}
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.byEmail {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user, ok := store.byEmail[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) FindByUsername(_ context.Context, username string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.byEmail {
		if username != "" && user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) UpsertConfirmationCode(_ context.Context, email, username, codeHash string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.byEmail[email]
	if !ok {
		store.nextID++
		user = &User{ID: fmt.Sprintf("user-%d", store.nextID), Email: email, Username: username, Role: sec.RoleUser}
		store.byEmail[email] = user
	}
	user.ConfirmationCodeHash = codeHash
	copied := *user
	return &copied, nil
}

type memoryCooldown struct {
	held map[string]bool
}

func (cooldown *memoryCooldown) Acquire(_ context.Context, email string, _ time.Duration) (bool, error) {
	if cooldown.held[email] {
		return false, nil
	}
	cooldown.held[email] = true
	return true, nil
}

type stubTokens struct {
	lastUserID string
}

func (tokens *stubTokens) GenerateAccessToken(userID, username string, _ time.Duration) (string, error) {
	tokens.lastUserID = userID
	return "token-for-" + userID, nil
}

type outbox struct {
	messages []mail.Message
	failWith error
}

func (box *outbox) Send(_ context.Context, message mail.Message) error {
	if box.failWith != nil {
		return box.failWith
	}
	box.messages = append(box.messages, message)
	return nil
}

var codePattern = regexp.MustCompile(`[0-9a-f]{32}`)

func (box *outbox) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, box.messages)
	code := codePattern.FindString(box.messages[len(box.messages)-1].Body)
	require.NotEmpty(t, code, "mail body carries no code")
	return code
}

type fixture struct {
	service *Service
	users   *memoryUsers
	outbox  *outbox
	tokens  *stubTokens
}

func newFixture(options Options) *fixture {
	fx := &fixture{
		users:  newMemoryUsers(),
		outbox: &outbox{},
		tokens: &stubTokens{},
	}
	if options.AccessTokenTTL == 0 {
		options.AccessTokenTTL = time.Hour
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fx.service = NewService(fx.users, &memoryCooldown{held: map[string]bool{}}, fx.outbox, fx.tokens, options, logger)
	return fx
}

// # Tests

func TestRequestCode_CreatesAccountAndMailsCode(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()

	result, err := fx.service.RequestCode(ctx, RequestCodeInput{Email: "x@y.com", Username: "reader"})
	require.NoError(t, err)
	assert.Equal(t, "x@y.com", result.Email)
	assert.Equal(t, "reader", result.Username)

	require.Len(t, fx.outbox.messages, 1)
	assert.Equal(t, "x@y.com", fx.outbox.messages[0].To)
	assert.Equal(t, ConfirmationSubject, fx.outbox.messages[0].Subject)

	stored, err := fx.users.FindByEmail(ctx, "x@y.com")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, stored.Role)
	assert.True(t, sec.CheckSecretHash(fx.outbox.lastCode(t), stored.ConfirmationCodeHash))
}

func TestRequestCode_DeliveryFailureStoresNothing(t *testing.T) {
	fx := newFixture(Options{})
	fx.outbox.failWith = errors.New("relay down")

	_, err := fx.service.RequestCode(context.Background(), RequestCodeInput{Email: "x@y.com"})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "UPSTREAM_FAILURE"))

	_, err = fx.users.FindByEmail(context.Background(), "x@y.com")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestRequestCode_ReissueReplacesPreviousCode(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()

	_, err := fx.service.RequestCode(ctx, RequestCodeInput{Email: "x@y.com"})
	require.NoError(t, err)
	first := fx.outbox.lastCode(t)

	_, err = fx.service.RequestCode(ctx, RequestCodeInput{Email: "x@y.com"})
	require.NoError(t, err)
	second := fx.outbox.lastCode(t)
	assert.NotEqual(t, first, second)

	_, err = fx.service.ExchangeToken(ctx, ExchangeTokenInput{Email: "x@y.com", ConfirmationCode: first})
	assert.True(t, apperr.HasCode(err, "INVALID_CREDENTIALS"))

	_, err = fx.service.ExchangeToken(ctx, ExchangeTokenInput{Email: "x@y.com", ConfirmationCode: second})
	assert.NoError(t, err)
}

func TestRequestCode_UsernameTakenByAnotherEmail(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()

	_, err := fx.service.RequestCode(ctx, RequestCodeInput{Email: "a@y.com", Username: "reader"})
	require.NoError(t, err)

	_, err = fx.service.RequestCode(ctx, RequestCodeInput{Email: "b@y.com", Username: "reader"})
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
	assert.Len(t, fx.outbox.messages, 1, "no mail for a rejected request")

	_, err = fx.service.RequestCode(ctx, RequestCodeInput{Email: "a@y.com", Username: "reader"})
	assert.NoError(t, err, "the owner may request again")
}

func TestRequestCode_Cooldown(t *testing.T) {
	fx := newFixture(Options{CodeRequestCooldown: time.Minute})
	ctx := context.Background()

	_, err := fx.service.RequestCode(ctx, RequestCodeInput{Email: "x@y.com"})
	require.NoError(t, err)

	_, err = fx.service.RequestCode(ctx, RequestCodeInput{Email: "x@y.com"})
	assert.True(t, apperr.HasCode(err, "RATE_LIMITED"))

	_, err = fx.service.RequestCode(ctx, RequestCodeInput{Email: "z@y.com"})
	assert.NoError(t, err)
}

func TestExchangeToken(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()

	_, err := fx.service.RequestCode(ctx, RequestCodeInput{Email: "x@y.com"})
	require.NoError(t, err)
	code := fx.outbox.lastCode(t)

	t.Run("unknown email", func(t *testing.T) {
		_, err := fx.service.ExchangeToken(ctx, ExchangeTokenInput{Email: "nobody@y.com", ConfirmationCode: code})
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	})

	t.Run("wrong code", func(t *testing.T) {
		_, err := fx.service.ExchangeToken(ctx, ExchangeTokenInput{Email: "x@y.com", ConfirmationCode: "nope"})
		assert.True(t, apperr.HasCode(err, "INVALID_CREDENTIALS"))
	})

	t.Run("correct code is reusable", func(t *testing.T) {
		for range 2 {
			result, err := fx.service.ExchangeToken(ctx, ExchangeTokenInput{Email: "x@y.com", ConfirmationCode: code})
			require.NoError(t, err)
			assert.Equal(t, "token-for-"+fx.tokens.lastUserID, result.Token)
		}
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "John.Doe@example.com", NormalizeEmail("  John.Doe@EXAMPLE.com "))
	assert.Equal(t, "plain", NormalizeEmail("plain"))
}

func TestNullableUsername(t *testing.T) {
	assert.Nil(t, NullableUsername(""))
	stored := NullableUsername("critic")
	require.NotNil(t, stored)
	assert.Equal(t, "critic", *stored)
}
