// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// One hour, fixed at issuance. There is no refresh or revocation path:
	// expiry is the only way a session ends.
	AccessTokenTTL = 1 * time.Hour

	// MaxFailedLoginAttempts is the number of consecutive password failures
	// tolerated before the account is locked.
	MaxFailedLoginAttempts = 5

	// LockoutDuration is how long a locked account rejects all logins.
	LockoutDuration = 15 * time.Minute

	// OtpLength is the digit count of the login-time MFA challenge code.
	OtpLength = 6

	// OtpTTL is the lifetime of a login-time MFA challenge code.
	OtpTTL = 5 * time.Minute

	// BackupCodeCount is how many single-use recovery codes MFA setup issues.
	BackupCodeCount = 10

	// BackupCodeLength is the byte length of each random recovery code.
	// The user-visible code is twice this many hex characters.
	BackupCodeLength = 5

	// PasswordHistoryLimit is how many previous hashes are retained and
	// checked when a user changes or resets their password.
	PasswordHistoryLimit = 5

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// VerificationTokenTTL is the duration an email verification token remains valid.
	// Long-lived (24 hours) as users might not check email immediately.
	VerificationTokenTTL = 24 * time.Hour

	// VerificationTokenLength is the byte length of the random verification token.
	VerificationTokenLength = 32
)
