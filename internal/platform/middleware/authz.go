// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// ActorResolver loads the current role and flags of the account a token was
// issued for.
type ActorResolver interface {
	ResolveActor(context context.Context, userID string) (sec.Actor, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Resolve the [sec.Actor] through [ActorResolver]; a deleted account is rejected.
//  5. Inject claims and actor into the request context for downstream use.
func Authenticate(verifier TokenVerifier, resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// 1. Anonymous Access
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Format Validation
			scheme, tokenStr, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, constants.BearerScheme) || strings.TrimSpace(tokenStr) == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// 3. Token Verification
			claims, err := verifier.VerifyToken(strings.TrimSpace(tokenStr))
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// 4. Actor Resolution
			actor, err := resolver.ResolveActor(request.Context(), claims.UserID)
			if err != nil {
				if apperr.HasCode(err, "NOT_FOUND") {
					respond.Error(writer, request, apperr.Unauthorized("User not found"))
					return
				}
				respond.Error(writer, request, err)
				return
			}

			// 5. Context Injection
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			ctx = ctxutil.WithActor(ctx, actor)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !ctxutil.GetActor(request.Context()).IsAuthenticated() {
			respond.Error(writer, request, apperr.Unauthorized("Authentication credentials were not provided"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
