// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

/*
Package account handles user profile management.

It provides functionalities for users to view and update their private
identity data and for anyone to resolve a member's public profile.

# Architecture

  - Entities: PublicProfile (DTO).
  - Domain: This package depends on the auth package for the User entity.
  - Security: Deletion is soft; issued JWTs stay valid until their expiry.
*/
package account

import (
	"context"
	"time"

	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/internal/users/auth"
)

// # Domain Entities

// PublicProfile is the safety-mapped view of a member visible to anyone.
// It omits email, verification state, and all security fields.
type PublicProfile struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Role        sec.UserRole `json:"role"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewPublicProfile maps a full user entity onto its public view.
func NewPublicProfile(user *auth.User) *PublicProfile {
	return &PublicProfile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
	}
}

// # Repository Contracts

// AccountRepository defines the persistence contract for user accounts.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		FindByUsername retrieves a user record by their unique username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByUsername(context context.Context, username string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		SoftDelete flags an account as logically deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id string) error
}
