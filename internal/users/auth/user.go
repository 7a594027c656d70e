// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account identity and the confirmation-code sign-in flow.

It defines the [User] entity shared by the account administration layer and the
logic that trades a mailed confirmation code for a bearer token.

# Flow

	POST /auth/email  -> code generated, mailed, then stored (hashed)
	POST /auth/token  -> code compared, signed access token returned

A failed delivery aborts the request before anything is written, so a code that
was never received can never be redeemed.
*/
package auth

import (
	"strings"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Domain Entities

// User represents a YaMDb account. Email is the identity; username is an
// optional public handle.
type User struct {
	ID                   string       `json:"id"`
	Username             string       `json:"username"`
	Email                string       `json:"email"`
	FirstName            string       `json:"first_name"`
	LastName             string       `json:"last_name"`
	Bio                  string       `json:"bio"`
	Role                 sec.UserRole `json:"role"`
	IsSuperuser          bool         `json:"-"`
	ConfirmationCodeHash string       `json:"-"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// Actor projects the account onto the identity used by permission checks.
func (user *User) Actor() sec.Actor {
	return sec.Actor{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
	}
}

// # Field Identifiers

const (
	FieldUsername         = "username"
	FieldEmail            = "email"
	FieldFirstName        = "first_name"
	FieldLastName         = "last_name"
	FieldBio              = "bio"
	FieldRole             = "role"
	FieldConfirmationCode = "confirmation_code"
	FieldToken            = "token"
)

// NormalizeEmail trims the address and lowercases its domain part, leaving
// the local part intact. Every path that stores or looks up an email applies
// it so the unique email index sees one spelling per mailbox.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, found := strings.Cut(email, "@")
	if !found {
		return email
	}
	return local + "@" + strings.ToLower(domain)
}
