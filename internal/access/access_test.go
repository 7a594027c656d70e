// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

var (
	anonymous = sec.Anonymous()
	user      = sec.Actor{UserID: "user-1", Role: sec.RoleUser}
	other     = sec.Actor{UserID: "user-2", Role: sec.RoleUser}
	moderator = sec.Actor{UserID: "mod-1", Role: sec.RoleModerator}
	admin     = sec.Actor{UserID: "admin-1", Role: sec.RoleAdmin}
	superuser = sec.Actor{UserID: "root-1", Role: sec.RoleUser, IsSuperuser: true}
)

func TestEvaluate_ReadOnlyCatalog(t *testing.T) {
	evaluator := MustNewEvaluator()

	for _, resource := range []Resource{ResourceCategory, ResourceGenre, ResourceTitle} {
		for _, actor := range []sec.Actor{anonymous, user, moderator, admin, superuser} {
			assert.True(t, evaluator.Evaluate(Request{Actor: actor, Action: ActionRead, Resource: resource}).Allowed,
				"%s read by %s", resource, subjectOf(actor))
		}

		for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
			assert.False(t, evaluator.Evaluate(Request{Actor: anonymous, Action: action, Resource: resource}).Allowed)
			assert.False(t, evaluator.Evaluate(Request{Actor: user, Action: action, Resource: resource}).Allowed)
			assert.False(t, evaluator.Evaluate(Request{Actor: moderator, Action: action, Resource: resource}).Allowed)
			assert.True(t, evaluator.Evaluate(Request{Actor: admin, Action: action, Resource: resource}).Allowed)
			assert.True(t, evaluator.Evaluate(Request{Actor: superuser, Action: action, Resource: resource}).Allowed)
		}
	}
}

func TestEvaluate_Ownership(t *testing.T) {
	evaluator := MustNewEvaluator()

	tests := []struct {
		name     string
		actor    sec.Actor
		action   Action
		object   bool
		owner    string
		resource Resource
		allowed  bool
		rule     string
	}{
		{"anonymous reads review", anonymous, ActionRead, true, "user-1", ResourceReview, true, "policy"},
		{"anonymous creates review", anonymous, ActionCreate, false, "", ResourceReview, false, "policy"},
		{"user creates review", user, ActionCreate, false, "", ResourceReview, true, "policy"},
		{"user creates comment", user, ActionCreate, false, "", ResourceComment, true, "policy"},
		{"collection update anonymous", anonymous, ActionUpdate, false, "", ResourceReview, false, "authenticated"},
		{"collection update user", other, ActionUpdate, false, "", ResourceReview, true, "authenticated"},
		{"author updates own review", user, ActionUpdate, true, "user-1", ResourceReview, true, "owner"},
		{"author deletes own comment", user, ActionDelete, true, "user-1", ResourceComment, true, "owner"},
		{"stranger updates review", other, ActionUpdate, true, "user-1", ResourceReview, false, "policy"},
		{"stranger deletes comment", other, ActionDelete, true, "user-1", ResourceComment, false, "policy"},
		{"moderator deletes review", moderator, ActionDelete, true, "user-1", ResourceReview, true, "policy"},
		{"moderator updates comment", moderator, ActionUpdate, true, "user-1", ResourceComment, true, "policy"},
		{"admin deletes comment", admin, ActionDelete, true, "user-1", ResourceComment, true, "policy"},
		{"superuser updates review", superuser, ActionUpdate, true, "user-1", ResourceReview, true, "policy"},
		{"anonymous with forged owner", anonymous, ActionDelete, true, "", ResourceReview, false, "policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := evaluator.Evaluate(Request{
				Actor:    tt.actor,
				Action:   tt.action,
				Resource: tt.resource,
				Object:   tt.object,
				OwnerID:  tt.owner,
			})
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.rule, decision.Rule)
		})
	}
}

func TestEvaluate_Users(t *testing.T) {
	evaluator := MustNewEvaluator()

	for _, action := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
		assert.False(t, evaluator.Evaluate(Request{Actor: anonymous, Action: action, Resource: ResourceUser}).Allowed)
		assert.False(t, evaluator.Evaluate(Request{Actor: user, Action: action, Resource: ResourceUser}).Allowed)
		assert.False(t, evaluator.Evaluate(Request{Actor: moderator, Action: action, Resource: ResourceUser}).Allowed)
		assert.True(t, evaluator.Evaluate(Request{Actor: admin, Action: action, Resource: ResourceUser}).Allowed)
		assert.True(t, evaluator.Evaluate(Request{Actor: superuser, Action: action, Resource: ResourceUser}).Allowed)
	}
}

func TestEvaluate_Profile(t *testing.T) {
	evaluator := MustNewEvaluator()

	assert.False(t, evaluator.Evaluate(Request{Actor: anonymous, Action: ActionRead, Resource: ResourceProfile}).Allowed)
	assert.True(t, evaluator.Evaluate(Request{Actor: user, Action: ActionRead, Resource: ResourceProfile}).Allowed)
	assert.True(t, evaluator.Evaluate(Request{Actor: moderator, Action: ActionUpdate, Resource: ResourceProfile}).Allowed)
}

func TestAuthorize_StatusMapping(t *testing.T) {
	evaluator := MustNewEvaluator()

	// 1. Anonymous denial is 401
	err := evaluator.Authorize(Request{Actor: anonymous, Action: ActionCreate, Resource: ResourceTitle})
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)

	// 2. Authenticated denial is 403
	err = evaluator.Authorize(Request{Actor: user, Action: ActionCreate, Resource: ResourceTitle})
	appErr = apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)

	// 3. Allowed returns nil
	assert.NoError(t, evaluator.Authorize(Request{Actor: admin, Action: ActionCreate, Resource: ResourceTitle}))
}

func TestActionFromMethod(t *testing.T) {
	assert.Equal(t, ActionRead, ActionFromMethod(http.MethodGet))
	assert.Equal(t, ActionRead, ActionFromMethod(http.MethodHead))
	assert.Equal(t, ActionRead, ActionFromMethod(http.MethodOptions))
	assert.Equal(t, ActionCreate, ActionFromMethod(http.MethodPost))
	assert.Equal(t, ActionUpdate, ActionFromMethod(http.MethodPatch))
	assert.Equal(t, ActionUpdate, ActionFromMethod(http.MethodPut))
	assert.Equal(t, ActionDelete, ActionFromMethod(http.MethodDelete))
	assert.True(t, ActionRead.IsSafe())
	assert.False(t, ActionDelete.IsSafe())
}

func TestLoadPolicy_RejectsMalformedLine(t *testing.T) {
	evaluator := MustNewEvaluator()
	assert.Error(t, loadPolicy(evaluator.enforcer, "p, admin, title"))
}
