// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access decides whether an actor may perform an action on a resource.

The role matrix lives in an embedded casbin model and policy. Ownership of
reviews and comments is checked in code because it depends on the object, not
on the role.

Evaluation order:

 1. Collection-level writes on ownable resources only require authentication.
    The object-level check follows once the object is loaded.
 2. The author of a review or comment may update or delete it.
 3. The casbin policy decides everything else.

A denial for an anonymous actor maps to 401, for an authenticated one to 403.
*/
package access

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/metrics"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// # Vocabulary

// Action is the verb of an access request.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// IsSafe reports whether the action cannot modify state.
func (a Action) IsSafe() bool { return a == ActionRead }

// ActionFromMethod maps an HTTP method to an [Action].
func ActionFromMethod(method string) Action {
	switch method {
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}

// Resource is the kind of object an access request targets.
type Resource string

const (
	ResourceCategory Resource = "category"
	ResourceGenre    Resource = "genre"
	ResourceTitle    Resource = "title"
	ResourceReview   Resource = "review"
	ResourceComment  Resource = "comment"
	ResourceUser     Resource = "user"
	ResourceProfile  Resource = "profile"
)

// ownable reports whether authors hold rights over their own objects.
func (r Resource) ownable() bool {
	return r == ResourceReview || r == ResourceComment
}

// Request is one access question.
type Request struct {
	Actor    sec.Actor
	Action   Action
	Resource Resource

	// Object marks an object-level check. OwnerID is only meaningful then.
	Object  bool
	OwnerID string
}

// Decision is the outcome of [Evaluator.Evaluate].
type Decision struct {
	Allowed bool
	// Rule names the rule that granted access ("authenticated", "owner", "policy").
	Rule string
	// Subject is the policy subject the actor was evaluated as.
	Subject string
}

// # Evaluator

// Evaluator answers access requests. It is safe for concurrent use.
type Evaluator struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEvaluator builds an [Evaluator] from the embedded model and policy.
func NewEvaluator() (*Evaluator, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("access: failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("access: failed to create casbin enforcer: %w", err)
	}

	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Evaluator{enforcer: enforcer}, nil
}

// MustNewEvaluator is [NewEvaluator] for tests and wiring that cannot recover.
func MustNewEvaluator() *Evaluator {
	evaluator, err := NewEvaluator()
	if err != nil {
		panic(err)
	}
	return evaluator
}

// Evaluate applies the rules to request.
func (evaluator *Evaluator) Evaluate(request Request) Decision {
	actor := request.Actor
	subject := subjectOf(actor)

	if request.Resource.ownable() && (request.Action == ActionUpdate || request.Action == ActionDelete) {

		// 1. Collection-level: lookup must happen before ownership is known
		if !request.Object {
			return Decision{Allowed: actor.IsAuthenticated(), Rule: "authenticated", Subject: subject}
		}

		// 2. Authors keep rights over their own content
		if actor.IsAuthenticated() && request.OwnerID != "" && request.OwnerID == actor.UserID {
			return Decision{Allowed: true, Rule: "owner", Subject: subject}
		}
	}

	// 3. Role matrix
	allowed, err := evaluator.enforcer.Enforce(subject, string(request.Resource), string(request.Action))
	if err != nil {
		return Decision{Allowed: false, Rule: "error", Subject: subject}
	}
	return Decision{Allowed: allowed, Rule: "policy", Subject: subject}
}

// Authorize evaluates request and converts a denial into an [apperr.AppError].
func (evaluator *Evaluator) Authorize(request Request) error {
	if evaluator.Evaluate(request).Allowed {
		return nil
	}

	metrics.RecordAuthzDenial(string(request.Resource), string(request.Action))

	if !request.Actor.IsAuthenticated() {
		return apperr.Unauthorized("Authentication credentials were not provided")
	}
	return apperr.Forbidden("You do not have permission to perform this action")
}

// subjectOf maps an actor onto a policy subject.
func subjectOf(actor sec.Actor) string {
	switch {
	case !actor.IsAuthenticated():
		return "anonymous"
	case actor.IsAdmin():
		return string(sec.RoleAdmin)
	case actor.IsModerator():
		return string(sec.RoleModerator)
	default:
		return string(sec.RoleUser)
	}
}

// loadPolicy parses the embedded policy CSV.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("access: failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("access: failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("access: malformed policy line %q", line)
		}
	}
	return nil
}
