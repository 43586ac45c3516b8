// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

/*
Package auth implements the core identity and account security system.

It handles everything from user registration and secure password hashing to
failed-login lockout, multi-factor challenges, and stateless JWT session
issuance.

Architecture:

  - Service: Orchestrates business logic (Register, Login, MFA, Recovery).
  - LockoutTracker: Serialized per-account failure accounting.
  - ChallengeManager: OTP, TOTP, and backup code handling.
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (Tokens).

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/baonguyen/agora/internal/audit"
	"github.com/baonguyen/agora/internal/platform/apperr"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// PasswordHasher defines the contract for credential hashing.
//
// Production wiring uses [BcryptHasher]. The indirection exists so tests can
// observe that certain paths (locked accounts) never reach the hash comparison.
type PasswordHasher interface {
	// Hash derives a storable hash from the plain-text secret.
	Hash(plainText string) (string, error)

	// Verify reports whether plainText matches the stored hash.
	Verify(plainText, hash string) bool
}

// BcryptHasher is the production [PasswordHasher] backed by [sec].
type BcryptHasher struct{}

// Hash implements [PasswordHasher].
func (BcryptHasher) Hash(plainText string) (string, error) {
	return sec.HashPassword(plainText)
}

// Verify implements [PasswordHasher].
func (BcryptHasher) Verify(plainText, hash string) bool {
	return sec.CheckPasswordHash(plainText, hash)
}

// CodeSender delivers a login challenge code to the account's contact address.
//
// Delivery is an external concern (email, SMS); this service only guarantees
// the code is generated, hashed, and expiring correctly.
type CodeSender interface {
	Send(context context.Context, email, code string) error
}

// Auditor records security events. Satisfied by [audit.Recorder].
//
// Recording is best-effort by contract: implementations never return errors
// and never block the calling operation.
type Auditor interface {
	RecordFrom(actorID, action string, metadata map[string]any, ipAddress string)
}

// # Sentinel Errors

var (
	// ErrInvalidCredentials is the single client-facing rejection for every
	// credential failure. Unknown account, wrong password, and banned account
	// are deliberately indistinguishable to prevent enumeration.
	ErrInvalidCredentials = apperr.Unauthorized("Invalid login credentials")

	// ErrAccountLocked rejects logins during an active lockout window. The
	// message stays generic; see [apperr.Locked].
	ErrAccountLocked = apperr.Locked("Account temporarily locked. Please try again later.")

	// ErrInvalidCode rejects a wrong OTP, TOTP, or backup code.
	ErrInvalidCode = apperr.Unauthorized("Invalid verification code")

	// ErrChallengeExpired rejects an OTP submitted after its five-minute
	// window. The login must be restarted from the password step.
	ErrChallengeExpired = apperr.Unauthorized("Verification code has expired. Please log in again.")
)

// Service implements user authentication and account security use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, lockout,
// or MFA logic must be reviewed by the security team.
type Service struct {
	userRepository              UserRepository
	historyRepository           PasswordHistoryRepository
	backupCodeRepository        BackupCodeRepository
	resetTokenRepository        ResetTokenRepository
	verificationTokenRepository VerificationTokenRepository
	tokenProvider               TokenProvider
	hasher                      PasswordHasher
	codeSender                  CodeSender
	auditor                     Auditor

	lockouts   *LockoutTracker
	challenges *ChallengeManager
	now        func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
//
// The clock parameter feeds the lockout tracker and challenge manager so
// expiry boundaries stay testable; pass nil for time.Now.
func NewService(
	userRepo UserRepository,
	historyRepo PasswordHistoryRepository,
	backupRepo BackupCodeRepository,
	resetRepo ResetTokenRepository,
	verifyRepo VerificationTokenRepository,
	tokenProv TokenProvider,
	hasher PasswordHasher,
	codeSender CodeSender,
	auditor Auditor,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		userRepository:              userRepo,
		historyRepository:           historyRepo,
		backupCodeRepository:        backupRepo,
		resetTokenRepository:        resetRepo,
		verificationTokenRepository: verifyRepo,
		tokenProvider:               tokenProv,
		hasher:                      hasher,
		codeSender:                  codeSender,
		auditor:                     auditor,
		lockouts:                    NewLockoutTracker(now),
		challenges:                  NewChallengeManager(hasher, now),
		now:                         now,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	IPAddress   string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member, handling password hashing and
initial verification token state.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		Role:         sec.RoleMember,
		IsActive:     true,
		IsVerified:   false,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Generate and store a verification token in Redis as an async-ready side effect
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err == nil {
		_ = service.verificationTokenRepository.Set(context, token, user.ID, VerificationTokenTTL)
		// TODO: Trigger email service with the verification link
	}

	service.auditor.RecordFrom(user.ID, audit.ActionUserRegistered, map[string]any{
		"username": user.Username,
	}, input.IPAddress)

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login     string // Can be Username or Email
	Password  string
	IPAddress string
}

// LoginResult is the outcome of a successful password verification.
//
// When MfaRequired is true, no token has been issued yet: the caller must
// complete the challenge via VerifyMfa or VerifyBackupCode using AccountID.
type LoginResult struct {
	MfaRequired bool
	AccountID   string
	AccessToken string
	User        *User
}

/*
Login validates user credentials and issues a stateless access token.

Description: Verifies identity with constant-time password comparison under
the account's lockout serialization, applies the failure/lockout policy, and
either issues a one-hour JWT or arms an MFA challenge.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Token, or an MFA continuation handle
  - err: ErrInvalidCredentials, ErrAccountLocked, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {

	// Flexible login: look up by Email or Username
	user, err := service.userRepository.FindByEmail(context, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(context, input.Login)
	}

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	// Unknown identifiers have no counter to increment.
	if err != nil {
		service.auditor.RecordFrom("", audit.ActionLoginFailed, map[string]any{
			"reason": "unknown_account",
		}, input.IPAddress)
		return nil, ErrInvalidCredentials
	}

	// Serialize the full read-verify-write cycle for this account, then
	// re-read the row inside the window so two concurrent attempts can never
	// base their increments on the same stale counter.
	release := service.lockouts.Acquire(user.ID)
	defer release()

	user, err = service.userRepository.FindByID(context, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Banned accounts fail exactly like bad credentials.
	if !user.IsActive {
		service.auditor.RecordFrom(user.ID, audit.ActionLoginFailed, map[string]any{
			"reason": "account_inactive",
		}, input.IPAddress)
		return nil, ErrInvalidCredentials
	}

	// Locked accounts are rejected BEFORE the password is ever compared, so
	// the lockout also throttles offline-verification oracles.
	if service.lockouts.IsLocked(user) {
		return nil, ErrAccountLocked
	}

	if !service.hasher.Verify(input.Password, user.PasswordHash) {
		lockedNow := service.lockouts.RegisterFailure(user)
		if err := service.userRepository.UpdateSecurityState(context, user); err != nil {
			return nil, fmt.Errorf("auth_service_lockout_persist_failed: %w", err)
		}

		// Exactly one audit record per rejected attempt: the lock event
		// replaces the plain failure event on the transition.
		if lockedNow {
			service.auditor.RecordFrom(user.ID, audit.ActionAccountLocked, map[string]any{
				"failed_attempts": user.FailedLoginAttempts,
			}, input.IPAddress)
		} else {
			service.auditor.RecordFrom(user.ID, audit.ActionLoginFailed, map[string]any{
				"failed_attempts": user.FailedLoginAttempts,
			}, input.IPAddress)
		}

		return nil, ErrInvalidCredentials
	}

	// Password accepted: reset the lockout state and stamp the login.
	service.lockouts.RegisterSuccess(user)
	loginTime := service.now()
	user.LastLoginAt = &loginTime
	if err := service.userRepository.UpdateSecurityState(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_login_persist_failed: %w", err)
	}

	// MFA-enabled accounts get a challenge instead of a token.
	if user.MfaEnabled {
		return service.beginMfaChallenge(context, user, input.IPAddress)
	}

	accessToken, err := service.issueAccessToken(user)
	if err != nil {
		return nil, err
	}

	service.auditor.RecordFrom(user.ID, audit.ActionUserLoggedIn, nil, input.IPAddress)

	return &LoginResult{
		AccessToken: accessToken,
		User:        user,
	}, nil
}

// beginMfaChallenge arms and delivers a login OTP for an MFA-enabled account.
func (service *Service) beginMfaChallenge(context context.Context, user *User, ipAddress string) (*LoginResult, error) {
	code, err := service.challenges.IssueChallenge(user)
	if err != nil {
		return nil, err
	}

	if err := service.userRepository.UpdateMfa(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_challenge_persist_failed: %w", err)
	}

	if err := service.codeSender.Send(context, user.Email, code); err != nil {
		return nil, fmt.Errorf("auth_service_otp_delivery_failed: %w", err)
	}

	service.auditor.RecordFrom(user.ID, audit.ActionMfaOtpGenerated, nil, ipAddress)

	return &LoginResult{
		MfaRequired: true,
		AccountID:   user.ID,
		User:        user,
	}, nil
}

/*
VerifyMfa completes an MFA login by validating the delivered OTP.

Description: On success the challenge is cleared (single-use) and a one-hour
access token is issued. Expired codes require restarting the login.

Parameters:
  - context: context.Context
  - accountID: string
  - code: string
  - ipAddress: string

Returns:
  - *LoginResult: Issued token
  - err: ErrInvalidCode, ErrChallengeExpired, ErrAccountLocked, or internal failures
*/
func (service *Service) VerifyMfa(context context.Context, accountID, code, ipAddress string) (*LoginResult, error) {
	release := service.lockouts.Acquire(accountID)
	defer release()

	user, err := service.userRepository.FindByID(context, accountID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// A lockout acquired while the challenge was live still wins: challenge
	// completion is a login attempt like any other.
	if service.lockouts.IsLocked(user) {
		return nil, ErrAccountLocked
	}

	if err := service.challenges.VerifyChallenge(user, code); err != nil {
		// Expiry also disarms the challenge; persist that cleanup.
		if !user.HasPendingChallenge() {
			_ = service.userRepository.UpdateMfa(context, user)
		}
		return nil, err
	}

	// The challenge is consumed: persist the cleared state before issuing.
	if err := service.userRepository.UpdateMfa(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_challenge_consume_failed: %w", err)
	}

	accessToken, err := service.issueAccessToken(user)
	if err != nil {
		return nil, err
	}

	service.auditor.RecordFrom(user.ID, audit.ActionUserLoggedIn, map[string]any{
		"method": "mfa_otp",
	}, ipAddress)

	return &LoginResult{
		AccessToken: accessToken,
		User:        user,
	}, nil
}

/*
VerifyBackupCode completes an MFA login with a single-use recovery code.

Description: The matched code is stamped as redeemed before the token is
issued, so the same code can never authenticate twice. Any pending OTP
challenge is disarmed as part of the completion.

Parameters:
  - context: context.Context
  - accountID: string
  - code: string
  - ipAddress: string

Returns:
  - *LoginResult: Issued token
  - err: ErrInvalidCode, ErrAccountLocked, or internal failures
*/
func (service *Service) VerifyBackupCode(context context.Context, accountID, code, ipAddress string) (*LoginResult, error) {
	release := service.lockouts.Acquire(accountID)
	defer release()

	user, err := service.userRepository.FindByID(context, accountID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if service.lockouts.IsLocked(user) {
		return nil, ErrAccountLocked
	}

	// Recovery codes complete an MFA login; they are never a password
	// substitute. Accounts that have not confirmed enrollment have nothing
	// to recover, even if setup minted codes.
	if !user.MfaEnabled {
		return nil, ErrInvalidCode
	}

	activeCodes, err := service.backupCodeRepository.ListActive(context, user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_backup_codes_load_failed: %w", err)
	}

	matchedID, err := service.challenges.MatchBackupCode(activeCodes, code)
	if err != nil {
		return nil, err
	}

	// Redeem first. If this write fails the login fails, which is the safe
	// direction: a token is never issued for a code that might be replayable.
	if err := service.backupCodeRepository.MarkUsed(context, matchedID); err != nil {
		return nil, fmt.Errorf("auth_service_backup_code_redeem_failed: %w", err)
	}

	if user.HasPendingChallenge() {
		user.MfaOtpHash = nil
		user.MfaOtpExpiresAt = nil
		_ = service.userRepository.UpdateMfa(context, user)
	}

	accessToken, err := service.issueAccessToken(user)
	if err != nil {
		return nil, err
	}

	service.auditor.RecordFrom(user.ID, audit.ActionUserLoggedIn, map[string]any{
		"method": "backup_code",
	}, ipAddress)

	return &LoginResult{
		AccessToken: accessToken,
		User:        user,
	}, nil
}

// issueAccessToken signs the one-hour stateless JWT for the user.
func (service *Service) issueAccessToken(user *User) (string, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(
		user.ID, user.Username, string(user.Role), AccessTokenTTL,
	)
	if err != nil {
		return "", fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}
	return accessToken, nil
}

// # MFA Enrollment

// SetupMfaResult carries the enrollment material shown to the user once.
type SetupMfaResult struct {
	Secret      string
	QrPayload   string
	BackupCodes []string
}

/*
SetupMfa enrolls a TOTP secret and mints a fresh backup code set.

Description: The secret is stored UNCONFIRMED: MfaEnabled stays (or becomes)
false until EnableMfa verifies one live authenticator code. Re-running setup
replaces both the secret and the entire backup code set.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *SetupMfaResult: Secret, otpauth:// QR payload, and plain backup codes
  - err: Generation or persistence failures
*/
func (service *Service) SetupMfa(context context.Context, accountID string) (*SetupMfaResult, error) {
	user, err := service.userRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	secret, qrPayload, err := service.challenges.GenerateTotpSecret(user.Email)
	if err != nil {
		return nil, err
	}

	plainCodes, codeHashes, err := service.challenges.GenerateBackupCodes(BackupCodeCount)
	if err != nil {
		return nil, err
	}

	// Unconfirmed enrollment: a re-setup on an already-enabled account drops
	// back to disabled until the new secret is verified.
	user.MfaSecret = secret
	user.MfaEnabled = false
	user.MfaOtpHash = nil
	user.MfaOtpExpiresAt = nil

	if err := service.userRepository.UpdateMfa(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_mfa_setup_persist_failed: %w", err)
	}

	if err := service.backupCodeRepository.Replace(context, user.ID, codeHashes); err != nil {
		return nil, fmt.Errorf("auth_service_backup_codes_persist_failed: %w", err)
	}

	return &SetupMfaResult{
		Secret:      secret,
		QrPayload:   qrPayload,
		BackupCodes: plainCodes,
	}, nil
}

/*
EnableMfa confirms enrollment by verifying one live authenticator code.

Description: On failure, MFA remains disabled and no partial state is
persisted as enabled.

Parameters:
  - context: context.Context
  - accountID: string
  - code: string
  - ipAddress: string

Returns:
  - err: ErrInvalidCode, Unprocessable (setup not started), or storage failures
*/
func (service *Service) EnableMfa(context context.Context, accountID, code, ipAddress string) error {
	user, err := service.userRepository.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if user.MfaSecret == "" {
		return apperr.Unprocessable("MFA setup has not been started")
	}

	if !service.challenges.VerifyTotp(user.MfaSecret, code) {
		return ErrInvalidCode
	}

	user.MfaEnabled = true
	if err := service.userRepository.UpdateMfa(context, user); err != nil {
		return fmt.Errorf("auth_service_mfa_enable_persist_failed: %w", err)
	}

	service.auditor.RecordFrom(user.ID, audit.ActionMfaEnabled, nil, ipAddress)
	return nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Discovery token
  - err: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	// Look up user.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return "", nil
	}

	// Generate reset token
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	// Save to Redis
	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, enforces the reuse policy against the last
five hashes, and rotates the credential.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation, reuse, or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Retrieve the userID associated with the reset token from Redis
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if err := service.rotatePassword(context, user, newPassword); err != nil {
		return err
	}

	// Delete the used token from Redis
	_ = service.resetTokenRepository.Delete(context, token)

	service.auditor.RecordFrom(user.ID, audit.ActionPasswordChanged, map[string]any{
		"via": "reset_token",
	}, "")

	return nil
}

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password, enforces the reuse policy, and
archives the retired hash.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - err: Unauthorized, reuse rejection, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !service.hasher.Verify(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	if err := service.rotatePassword(context, user, newPassword); err != nil {
		return err
	}

	service.auditor.RecordFrom(user.ID, audit.ActionPasswordChanged, nil, "")
	return nil
}

// rotatePassword applies the reuse policy, archives the retired hash, and
// persists the new one. Shared by the change and reset flows.
func (service *Service) rotatePassword(context context.Context, user *User, newPassword string) error {

	// Reuse policy: the candidate must differ from the current hash and the
	// retained history.
	history, err := service.historyRepository.ListRecent(context, user.ID, PasswordHistoryLimit)
	if err != nil {
		return fmt.Errorf("auth_service_history_load_failed: %w", err)
	}

	candidates := append([]string{user.PasswordHash}, history...)
	for _, previousHash := range candidates {
		if service.hasher.Verify(newPassword, previousHash) {
			return apperr.Unprocessable(fmt.Sprintf(
				"New password must differ from your last %d passwords", PasswordHistoryLimit,
			))
		}
	}

	newHash, err := service.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_rotate_hash_failed: %w", err)
	}

	// Archive the retired hash before the swap so the history window always
	// covers the most recent credentials.
	if err := service.historyRepository.Add(context, user.ID, user.PasswordHash, PasswordHistoryLimit); err != nil {
		return fmt.Errorf("auth_service_history_archive_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, newHash); err != nil {
		return fmt.Errorf("auth_service_rotate_update_failed: %w", err)
	}

	user.PasswordHash = newHash
	return nil
}

/*
VerifyEmail confirms a user's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {

	// Retrieve the user ID associated with the verification token from Redis
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Update the user's status to verified in persistent storage
	if err := service.userRepository.MarkVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Cleanup the used verification token from Redis
	_ = service.verificationTokenRepository.Delete(context, token)

	return nil
}
