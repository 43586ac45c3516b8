// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

/*
Package audit implements the append-only security audit trail.

Every security-relevant action (registration, lockout, MFA issuance, login,
moderation) produces an immutable [Event]. Recording is best-effort: a failed
audit write is logged locally and NEVER propagated to the triggering
operation.

# Architecture

  - Recorder: Buffered, asynchronous writer consumed by a single worker.
  - Repository: Append/List contract implemented on PostgreSQL.
  - Service/Handler: Read-only moderation view over the trail.
*/
package audit

import "time"

// # Audit Actions

// Canonical action tags. Free-form metadata carries the per-action details.
const (
	ActionUserRegistered  = "User registered"
	ActionUserLoggedIn    = "User logged in"
	ActionLoginFailed     = "Login failed"
	ActionAccountLocked   = "Account locked"
	ActionMfaOtpGenerated = "MFA OTP generated"
	ActionMfaEnabled      = "MFA enabled"
	ActionPasswordChanged = "Password changed"
	ActionUserBanned      = "User banned"
	ActionUserUnbanned    = "User unbanned"
	ActionReportResolved  = "Report resolved"
)

// # Domain Entities

// Event is a single immutable audit record.
//
// # Invariant
//
// Events are write-once. There is no update or delete path anywhere in the
// codebase, and the storage layer exposes none.
type Event struct {
	ID string `json:"id"`

	// ActorID references the account that performed the action. It is empty
	// for unauthenticated failures that could not be resolved to an account.
	ActorID string `json:"actor_id,omitempty"`

	// Action is a short symbolic tag, one of the Action* constants.
	Action string `json:"action"`

	// Metadata is an open key-value payload, free-form per action type.
	Metadata map[string]any `json:"metadata,omitempty"`

	// IPAddress is the client address observed at the HTTP boundary, if any.
	IPAddress string `json:"ip_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
