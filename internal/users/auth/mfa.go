// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/baonguyen/agora/internal/platform/constants"
	"github.com/baonguyen/agora/internal/platform/sec"
)

// # MFA Challenge Management

// ChallengeManager owns the multi-factor authentication flows.
//
// # Two Code Families
//
//   - Login challenge: a 6-digit code generated server-side after the password
//     step, bcrypt-hashed on the entity, valid for five minutes, single-use.
//   - TOTP: the authenticator-app secret enrolled during setup, verified live
//     before MFA is ever enabled.
//
// Backup codes are a third, storage-backed family handled by the Service with
// the hashing helpers below.
type ChallengeManager struct {
	hasher PasswordHasher
	now    func() time.Time
}

// NewChallengeManager constructs a manager with an injectable clock.
func NewChallengeManager(hasher PasswordHasher, now func() time.Time) *ChallengeManager {
	if now == nil {
		now = time.Now
	}
	return &ChallengeManager{hasher: hasher, now: now}
}

/*
IssueChallenge generates a fresh login OTP and arms it on the entity.

Description: Only the bcrypt hash and the expiry instant are stored; the
plain code exists solely in the return value, destined for the delivery
channel. Re-issuing overwrites any previous pending challenge.

Parameters:
  - user: *User

Returns:
  - string: Plain-text code for delivery
  - error: Randomness or hashing failures
*/
func (manager *ChallengeManager) IssueChallenge(user *User) (string, error) {
	code, err := generateOtp()
	if err != nil {
		return "", fmt.Errorf("auth_mfa_generate_otp_failed: %w", err)
	}

	codeHash, err := manager.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("auth_mfa_hash_otp_failed: %w", err)
	}

	expiresAt := manager.now().Add(OtpTTL)
	user.MfaOtpHash = &codeHash
	user.MfaOtpExpiresAt = &expiresAt

	return code, nil
}

/*
VerifyChallenge checks a submitted code against the pending challenge.

Description: Success clears the challenge from the entity so the code can
never be replayed; the caller persists the cleared state. Expired and wrong
codes are reported distinctly so the API can tell the user to restart the
login rather than retype.

Parameters:
  - user: *User
  - submittedCode: string

Returns:
  - error: ErrChallengeExpired, ErrInvalidCode, or nil on success
*/
func (manager *ChallengeManager) VerifyChallenge(user *User, submittedCode string) error {
	if !user.HasPendingChallenge() {
		return ErrInvalidCode
	}

	// Boundary rule: a code submitted exactly at the expiry instant is
	// already expired.
	if !manager.now().Before(*user.MfaOtpExpiresAt) {
		manager.clearChallenge(user)
		return ErrChallengeExpired
	}

	if !manager.hasher.Verify(submittedCode, *user.MfaOtpHash) {
		return ErrInvalidCode
	}

	manager.clearChallenge(user)
	return nil
}

// clearChallenge disarms the pending OTP on the entity.
func (manager *ChallengeManager) clearChallenge(user *User) {
	user.MfaOtpHash = nil
	user.MfaOtpExpiresAt = nil
}

// # TOTP Enrollment

/*
GenerateTotpSecret enrolls a new authenticator-app secret for the account.

Description: The otpauth:// URL is the QR-code payload consumed by
authenticator apps. The secret is persisted unconfirmed; MFA only flips on
after VerifyTotp succeeds with a live code.

Parameters:
  - accountEmail: string (Shown as the account label in authenticator apps)

Returns:
  - string: Base32 shared secret
  - string: otpauth:// provisioning URL
  - error: Generation failures
*/
func (manager *ChallengeManager) GenerateTotpSecret(accountEmail string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      constants.AuthIssuer,
		AccountName: accountEmail,
	})
	if err != nil {
		return "", "", fmt.Errorf("auth_mfa_totp_generate_failed: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

// VerifyTotp reports whether the submitted code matches the shared secret for
// the current time step.
func (manager *ChallengeManager) VerifyTotp(secret, submittedCode string) bool {
	return totp.Validate(submittedCode, secret)
}

// # Backup Codes

/*
GenerateBackupCodes mints a fresh set of single-use recovery codes.

Parameters:
  - count: int

Returns:
  - []string: Plain codes, shown to the user exactly once
  - []string: Matching bcrypt hashes for storage
  - error: Randomness or hashing failures
*/
func (manager *ChallengeManager) GenerateBackupCodes(count int) ([]string, []string, error) {
	plainCodes := make([]string, 0, count)
	codeHashes := make([]string, 0, count)

	for i := 0; i < count; i++ {
		code, err := sec.GenerateSecureToken(BackupCodeLength)
		if err != nil {
			return nil, nil, fmt.Errorf("auth_mfa_backup_code_generate_failed: %w", err)
		}

		codeHash, err := manager.hasher.Hash(code)
		if err != nil {
			return nil, nil, fmt.Errorf("auth_mfa_backup_code_hash_failed: %w", err)
		}

		plainCodes = append(plainCodes, code)
		codeHashes = append(codeHashes, codeHash)
	}

	return plainCodes, codeHashes, nil
}

/*
MatchBackupCode finds the unredeemed recovery code matching the submission.

Parameters:
  - codes: []*BackupCode (Active codes only)
  - submittedCode: string

Returns:
  - string: ID of the matched code, for redemption
  - error: ErrInvalidCode when nothing matches
*/
func (manager *ChallengeManager) MatchBackupCode(codes []*BackupCode, submittedCode string) (string, error) {
	for _, code := range codes {
		if manager.hasher.Verify(submittedCode, code.CodeHash) {
			return code.ID, nil
		}
	}
	return "", ErrInvalidCode
}

// generateOtp draws a uniform 6-digit code from the OS cryptographic source.
//
// Leading zeros are preserved, so the keyspace is the full 000000-999999.
func generateOtp() (string, error) {
	upperBound := big.NewInt(1)
	for i := 0; i < OtpLength; i++ {
		upperBound.Mul(upperBound, big.NewInt(10))
	}

	value, err := rand.Int(rand.Reader, upperBound)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", OtpLength, value), nil
}
