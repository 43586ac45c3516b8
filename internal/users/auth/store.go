// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateSecurityState persists the lockout counters and last-login
		timestamp. Callers must hold the account's lockout serialization
		before writing.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	UpdateSecurityState(context context.Context, user *User) error

	/*
		UpdateMfa persists the MFA configuration and transient challenge
		fields (mfaenabled, mfasecret, mfaotphash, mfaotpexpiresat).

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	UpdateMfa(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		MarkVerified updates the user's status to isverified = true.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkVerified(context context.Context, userID string) error

	/*
		SetActive flips the account's isactive flag. Used by moderation to
		ban (false) and unban (true) members.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - active: bool

		Returns:
		  - error: Persistence failures
	*/
	SetActive(context context.Context, userID string, active bool) error
}

// # Password History Data Access

// PasswordHistoryRepository defines the contract for the recent-hash archive
// consulted on every password change.
type PasswordHistoryRepository interface {

	/*
		Add archives a retired password hash and prunes entries beyond the
		retention limit.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - passwordHash: string
		  - limit: int (Retained entry count, newest first)

		Returns:
		  - error: Persistence failures
	*/
	Add(context context.Context, userID, passwordHash string, limit int) error

	/*
		ListRecent returns up to limit archived hashes, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit: int

		Returns:
		  - []string: Archived bcrypt hashes
		  - error: Retrieval failures
	*/
	ListRecent(context context.Context, userID string, limit int) ([]string, error)
}

// # Backup Code Data Access

// BackupCodeRepository defines the contract for single-use MFA recovery codes.
type BackupCodeRepository interface {

	/*
		Replace atomically swaps the user's full recovery code set. Called
		on every MFA setup so stale codes from a previous enrollment can
		never be redeemed.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - codeHashes: []string

		Returns:
		  - error: Persistence failures
	*/
	Replace(context context.Context, userID string, codeHashes []string) error

	/*
		ListActive returns the user's unredeemed recovery codes.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*BackupCode: Codes with UsedAt IS NULL
		  - error: Retrieval failures
	*/
	ListActive(context context.Context, userID string) ([]*BackupCode, error)

	/*
		MarkUsed stamps a recovery code as redeemed. A used code is never
		accepted again.

		Parameters:
		  - context: context.Context
		  - codeID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkUsed(context context.Context, codeID string) error
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password reset tokens.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given reset token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a reset token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}

// VerificationTokenRepository defines the contract for storing volatile email verification tokens.
type VerificationTokenRepository interface {

	/*
		Set stores a verification token associated with a userID.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given verification token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a verification token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}
