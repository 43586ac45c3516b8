// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

/*
Package auth implements the user identity and account security layer.

It defines the core domain entities (User, BackupCode) and the logic for
authentication, lockout tracking, multi-factor challenges, and account
lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/baonguyen/agora/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Agora community.
//
// # Security State
//
// FailedLoginAttempts and LockUntil implement the failed-login lockout policy.
// The MFA fields carry both the durable TOTP configuration (MfaEnabled,
// MfaSecret) and the transient per-login challenge (MfaOtpHash,
// MfaOtpExpiresAt). All of them are omitted from JSON.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	IsVerified   bool         `json:"is_verified"`

	// Lockout state. Mutations must go through the LockoutTracker.
	FailedLoginAttempts int        `json:"-"`
	LockUntil           *time.Time `json:"-"`

	// MFA state.
	MfaEnabled      bool       `json:"mfa_enabled"`
	MfaSecret       string     `json:"-"`
	MfaOtpHash      *string    `json:"-"`
	MfaOtpExpiresAt *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsLocked reports whether the account is locked at the given instant.
//
/// Expiry is lazy: nothing clears LockUntil in the background. A lock that has
// passed its deadline simply stops being reported as locked.
func (user *User) IsLocked(now time.Time) bool {
	return user.LockUntil != nil && now.Before(*user.LockUntil)
}

// HasPendingChallenge reports whether a login-time OTP challenge is live.
func (user *User) HasPendingChallenge() bool {
	return user.MfaOtpHash != nil && user.MfaOtpExpiresAt != nil
}

// BackupCode is a single-use MFA recovery code. Only the bcrypt hash is stored.
type BackupCode struct {
	ID       string     `json:"id"`
	UserID   string     `json:"-"`
	CodeHash string     `json:"-"`
	UsedAt   *time.Time `json:"used_at,omitempty"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldDisplayName     = "display_name"
	FieldLogin           = "login"
	FieldToken           = "token"
	FieldCode            = "code"
	FieldAccountID       = "account_id"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldMfaRequired     = "mfa_required"
	FieldUser            = "user"
	FieldMessage         = "message"
)
