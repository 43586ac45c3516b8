// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baonguyen/agora/internal/audit"
	"github.com/baonguyen/agora/internal/platform/apperr"
	"github.com/baonguyen/agora/internal/users/auth"
	"github.com/baonguyen/agora/pkg/uuidv7"
)

// # Test Doubles

// testClock is a mutable clock shared by the service and the assertions.
type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.current
}

func (clock *testClock) Advance(duration time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.current = clock.current.Add(duration)
}

// fakeHasher is a transparent PasswordHasher that counts Verify calls, so
// tests can prove that locked accounts never reach the comparison.
type fakeHasher struct {
	mu          sync.Mutex
	verifyCalls int
}

func (hasher *fakeHasher) Hash(plainText string) (string, error) {
	return "hashed:" + plainText, nil
}

func (hasher *fakeHasher) Verify(plainText, hash string) bool {
	hasher.mu.Lock()
	hasher.verifyCalls++
	hasher.mu.Unlock()
	return hash == "hashed:"+plainText
}

func (hasher *fakeHasher) VerifyCalls() int {
	hasher.mu.Lock()
	defer hasher.mu.Unlock()
	return hasher.verifyCalls
}

// fakeTokenProvider issues predictable token strings.
type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error) {
	return "token-for-" + userID, nil
}

// fakeSender captures delivered challenge codes.
type fakeSender struct {
	mu    sync.Mutex
	codes []string
}

func (sender *fakeSender) Send(_ context.Context, _, code string) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	sender.codes = append(sender.codes, code)
	return nil
}

func (sender *fakeSender) LastCode() string {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.codes) == 0 {
		return ""
	}
	return sender.codes[len(sender.codes)-1]
}

// fakeAuditor records events synchronously for assertion.
type auditEntry struct {
	ActorID string
	Action  string
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (auditor *fakeAuditor) RecordFrom(actorID, action string, _ map[string]any, _ string) {
	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	auditor.entries = append(auditor.entries, auditEntry{ActorID: actorID, Action: action})
}

func (auditor *fakeAuditor) CountAction(action string) int {
	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	count := 0
	for _, entry := range auditor.entries {
		if entry.Action == action {
			count++
		}
	}
	return count
}

// # In-Memory Repositories

func cloneUser(user *auth.User) *auth.User {
	clone := *user
	if user.LockUntil != nil {
		value := *user.LockUntil
		clone.LockUntil = &value
	}
	if user.MfaOtpHash != nil {
		value := *user.MfaOtpHash
		clone.MfaOtpHash = &value
	}
	if user.MfaOtpExpiresAt != nil {
		value := *user.MfaOtpExpiresAt
		clone.MfaOtpExpiresAt = &value
	}
	if user.LastLoginAt != nil {
		value := *user.LastLoginAt
		clone.LastLoginAt = &value
	}
	return &clone
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*auth.User)}
}

func (repo *memoryUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[id]; ok {
		return cloneUser(user), nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepo) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.users[user.ID] = cloneUser(user)
	return nil
}

func (repo *memoryUserRepo) UpdateSecurityState(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored, ok := repo.users[user.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	stored.FailedLoginAttempts = user.FailedLoginAttempts
	stored.LockUntil = nil
	if user.LockUntil != nil {
		value := *user.LockUntil
		stored.LockUntil = &value
	}
	stored.LastLoginAt = nil
	if user.LastLoginAt != nil {
		value := *user.LastLoginAt
		stored.LastLoginAt = &value
	}
	return nil
}

func (repo *memoryUserRepo) UpdateMfa(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored, ok := repo.users[user.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	stored.MfaEnabled = user.MfaEnabled
	stored.MfaSecret = user.MfaSecret
	stored.MfaOtpHash = nil
	if user.MfaOtpHash != nil {
		value := *user.MfaOtpHash
		stored.MfaOtpHash = &value
	}
	stored.MfaOtpExpiresAt = nil
	if user.MfaOtpExpiresAt != nil {
		value := *user.MfaOtpExpiresAt
		stored.MfaOtpExpiresAt = &value
	}
	return nil
}

func (repo *memoryUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored, ok := repo.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	stored.PasswordHash = newHash
	return nil
}

func (repo *memoryUserRepo) MarkVerified(_ context.Context, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if stored, ok := repo.users[userID]; ok {
		stored.IsVerified = true
	}
	return nil
}

func (repo *memoryUserRepo) SetActive(_ context.Context, userID string, active bool) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if stored, ok := repo.users[userID]; ok {
		stored.IsActive = active
	}
	return nil
}

type memoryHistoryRepo struct {
	mu     sync.Mutex
	hashes map[string][]string // newest first
}

func newMemoryHistoryRepo() *memoryHistoryRepo {
	return &memoryHistoryRepo{hashes: make(map[string][]string)}
}

func (repo *memoryHistoryRepo) Add(_ context.Context, userID, passwordHash string, limit int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	entries := append([]string{passwordHash}, repo.hashes[userID]...)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	repo.hashes[userID] = entries
	return nil
}

func (repo *memoryHistoryRepo) ListRecent(_ context.Context, userID string, limit int) ([]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	entries := repo.hashes[userID]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return append([]string(nil), entries...), nil
}

type memoryBackupRepo struct {
	mu    sync.Mutex
	codes map[string][]*auth.BackupCode
}

func newMemoryBackupRepo() *memoryBackupRepo {
	return &memoryBackupRepo{codes: make(map[string][]*auth.BackupCode)}
}

func (repo *memoryBackupRepo) Replace(_ context.Context, userID string, codeHashes []string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	codes := make([]*auth.BackupCode, 0, len(codeHashes))
	for _, hash := range codeHashes {
		codes = append(codes, &auth.BackupCode{ID: uuidv7.New(), UserID: userID, CodeHash: hash})
	}
	repo.codes[userID] = codes
	return nil
}

func (repo *memoryBackupRepo) ListActive(_ context.Context, userID string) ([]*auth.BackupCode, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	active := make([]*auth.BackupCode, 0)
	for _, code := range repo.codes[userID] {
		if code.UsedAt == nil {
			active = append(active, code)
		}
	}
	return active, nil
}

func (repo *memoryBackupRepo) MarkUsed(_ context.Context, codeID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, codes := range repo.codes {
		for _, code := range codes {
			if code.ID == codeID && code.UsedAt == nil {
				now := time.Now()
				code.UsedAt = &now
			}
		}
	}
	return nil
}

type memoryTokenRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{values: make(map[string]string)}
}

func (repo *memoryTokenRepo) Set(_ context.Context, token, userID string, _ time.Duration) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.values[token] = userID
	return nil
}

func (repo *memoryTokenRepo) Get(_ context.Context, token string) (string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if userID, ok := repo.values[token]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("Token")
}

func (repo *memoryTokenRepo) Delete(_ context.Context, token string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.values, token)
	return nil
}

// # Test Harness

type testEnv struct {
	service *auth.Service
	users   *memoryUserRepo
	history *memoryHistoryRepo
	backups *memoryBackupRepo
	resets  *memoryTokenRepo
	hasher  *fakeHasher
	sender  *fakeSender
	auditor *fakeAuditor
	clock   *testClock
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:   newMemoryUserRepo(),
		history: newMemoryHistoryRepo(),
		backups: newMemoryBackupRepo(),
		resets:  newMemoryTokenRepo(),
		hasher:  &fakeHasher{},
		sender:  &fakeSender{},
		auditor: &fakeAuditor{},
		clock:   newTestClock(),
	}
	env.service = auth.NewService(
		env.users,
		env.history,
		env.backups,
		env.resets,
		newMemoryTokenRepo(),
		fakeTokenProvider{},
		env.hasher,
		env.sender,
		env.auditor,
		env.clock.Now,
	)
	return env
}

func (env *testEnv) createUser(t *testing.T, username, password string, mfaEnabled bool) *auth.User {
	t.Helper()
	hash, err := env.hasher.Hash(password)
	require.NoError(t, err)

	user := &auth.User{
		ID:           uuidv7.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         "member",
		IsActive:     true,
		MfaEnabled:   mfaEnabled,
	}
	require.NoError(t, env.users.Create(context.Background(), user))
	return user
}

func (env *testEnv) login(username, password string) (*auth.LoginResult, error) {
	return env.service.Login(context.Background(), auth.LoginInput{
		Login:     username + "@example.com",
		Password:  password,
		IPAddress: "192.0.2.10",
	})
}

// # Login & Lockout

/*
TestService_Login_Success verifies the happy path: token issuance, counter
reset, and a single audit record.
*/
func TestService_Login_Success(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)

	result, err := env.login("alice", "Sup3r#Pass")
	require.NoError(t, err)
	assert.False(t, result.MfaRequired)
	assert.Equal(t, "token-for-"+user.ID, result.AccessToken)

	stored, err := env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.NotNil(t, stored.LastLoginAt)

	assert.Equal(t, 1, env.auditor.CountAction(audit.ActionUserLoggedIn))
}

/*
TestService_Login_WrongPassword increments the failure counter and records
exactly one audit entry per rejection.
*/
func TestService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)

	_, err := env.login("alice", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	stored, findErr := env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, findErr)
	assert.Equal(t, 1, stored.FailedLoginAttempts)

	assert.Equal(t, 1, env.auditor.CountAction(audit.ActionLoginFailed))
	assert.Equal(t, 0, env.auditor.CountAction(audit.ActionAccountLocked))
}

/*
TestService_Login_LocksAfterThreshold drives five consecutive failures and
verifies the lock, the single lock audit record, and that a subsequent
correct-password attempt is rejected WITHOUT a hash comparison.
*/
func TestService_Login_LocksAfterThreshold(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)

	for i := 0; i < auth.MaxFailedLoginAttempts; i++ {
		_, err := env.login("alice", "wrong-password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	stored, err := env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.MaxFailedLoginAttempts, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockUntil)
	assert.Equal(t, env.clock.Now().Add(auth.LockoutDuration), *stored.LockUntil)

	// The fifth rejection is audited as the lock event, not a plain failure.
	assert.Equal(t, 1, env.auditor.CountAction(audit.ActionAccountLocked))
	assert.Equal(t, auth.MaxFailedLoginAttempts-1, env.auditor.CountAction(audit.ActionLoginFailed))

	// A correct password during the lockout window must fail closed, and the
	// password hash must never be consulted.
	verifyCallsBefore := env.hasher.VerifyCalls()
	_, err = env.login("alice", "Sup3r#Pass")
	assert.ErrorIs(t, err, auth.ErrAccountLocked)
	assert.Equal(t, verifyCallsBefore, env.hasher.VerifyCalls())
}

/*
TestService_Login_LockExpiresLazily verifies that the lock stops applying
once the window elapses, with no background job involved.
*/
func TestService_Login_LockExpiresLazily(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)

	for i := 0; i < auth.MaxFailedLoginAttempts; i++ {
		_, _ = env.login("alice", "wrong-password")
	}

	// One second before expiry: still locked.
	env.clock.Advance(auth.LockoutDuration - time.Second)
	_, err := env.login("alice", "Sup3r#Pass")
	assert.ErrorIs(t, err, auth.ErrAccountLocked)

	// At expiry: the correct password goes through and resets the state.
	env.clock.Advance(time.Second)
	result, err := env.login("alice", "Sup3r#Pass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	stored, err := env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockUntil)
}

/*
TestService_Login_ConcurrentFailures races parallel wrong-password attempts
and verifies that no increment is lost to interleaving.
*/
func TestService_Login_ConcurrentFailures(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)

	const attempts = 4 // Stay below the threshold so every attempt increments.
	var group sync.WaitGroup
	for i := 0; i < attempts; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			_, _ = env.login("alice", "wrong-password")
		}()
	}
	group.Wait()

	stored, err := env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, attempts, stored.FailedLoginAttempts)
}

/*
TestService_Login_InactiveAccount verifies that banned accounts fail exactly
like bad credentials.
*/
func TestService_Login_InactiveAccount(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)
	require.NoError(t, env.users.SetActive(context.Background(), user.ID, false))

	_, err := env.login("alice", "Sup3r#Pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

// # MFA Flows

/*
TestService_Login_MfaChallenge verifies that MFA-enabled accounts receive a
six-digit challenge instead of a token.
*/
func TestService_Login_MfaChallenge(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", true)

	result, err := env.login("alice", "Sup3r#Pass")
	require.NoError(t, err)
	assert.True(t, result.MfaRequired)
	assert.Equal(t, user.ID, result.AccountID)
	assert.Empty(t, result.AccessToken)

	code := env.sender.LastCode()
	assert.Len(t, code, auth.OtpLength)

	stored, err := env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasPendingChallenge())

	assert.Equal(t, 1, env.auditor.CountAction(audit.ActionMfaOtpGenerated))
}

/*
TestService_VerifyMfa_Success completes the challenge and verifies that the
consumed code can never be replayed.
*/
func TestService_VerifyMfa_Success(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", true)

	result, err := env.login("alice", "Sup3r#Pass")
	require.NoError(t, err)
	code := env.sender.LastCode()

	verified, err := env.service.VerifyMfa(context.Background(), result.AccountID, code, "192.0.2.10")
	require.NoError(t, err)
	assert.Equal(t, "token-for-"+user.ID, verified.AccessToken)

	// Single-use: the same code is rejected once consumed.
	_, err = env.service.VerifyMfa(context.Background(), result.AccountID, code, "192.0.2.10")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

/*
TestService_VerifyMfa_Expiry exercises the five-minute boundary on both sides.
*/
func TestService_VerifyMfa_Expiry(t *testing.T) {
	env := newTestEnv()
	env.createUser(t, "alice", "Sup3r#Pass", true)

	result, err := env.login("alice", "Sup3r#Pass")
	require.NoError(t, err)
	code := env.sender.LastCode()

	// One second before expiry: accepted.
	env.clock.Advance(auth.OtpTTL - time.Second)
	_, err = env.service.VerifyMfa(context.Background(), result.AccountID, code, "192.0.2.10")
	require.NoError(t, err)

	// Fresh challenge, then let it expire exactly.
	result, err = env.login("alice", "Sup3r#Pass")
	require.NoError(t, err)
	code = env.sender.LastCode()

	env.clock.Advance(auth.OtpTTL)
	_, err = env.service.VerifyMfa(context.Background(), result.AccountID, code, "192.0.2.10")
	assert.ErrorIs(t, err, auth.ErrChallengeExpired)
}

/*
TestService_VerifyBackupCode_SingleUse redeems a recovery code and verifies
that it never authenticates twice.
*/
func TestService_VerifyBackupCode_SingleUse(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", true)

	setup, err := env.service.SetupMfa(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, setup.BackupCodes, auth.BackupCodeCount)
	recoveryCode := setup.BackupCodes[0]

	verified, err := env.service.VerifyBackupCode(context.Background(), user.ID, recoveryCode, "192.0.2.10")
	require.NoError(t, err)
	assert.NotEmpty(t, verified.AccessToken)

	_, err = env.service.VerifyBackupCode(context.Background(), user.ID, recoveryCode, "192.0.2.10")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

/*
TestService_VerifyMfa_LockedAccount verifies that a lockout acquired while the
challenge was live still blocks its completion: the armed OTP does not outrank
the lock.
*/
func TestService_VerifyMfa_LockedAccount(t *testing.T) {
	env := newTestEnv()
	env.createUser(t, "alice", "Sup3r#Pass", true)

	result, err := env.login("alice", "Sup3r#Pass")
	require.NoError(t, err)
	code := env.sender.LastCode()

	// Five wrong-password attempts lock the account while the OTP is armed.
	for i := 0; i < auth.MaxFailedLoginAttempts; i++ {
		_, _ = env.login("alice", "wrong-password")
	}

	_, err = env.service.VerifyMfa(context.Background(), result.AccountID, code, "192.0.2.10")
	assert.ErrorIs(t, err, auth.ErrAccountLocked)
}

/*
TestService_VerifyBackupCode_LockedAccount verifies that recovery codes cannot
side-step an active lockout, and that the rejected attempt does not consume
the code.
*/
func TestService_VerifyBackupCode_LockedAccount(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", true)

	setup, err := env.service.SetupMfa(context.Background(), user.ID)
	require.NoError(t, err)

	for i := 0; i < auth.MaxFailedLoginAttempts; i++ {
		_, _ = env.login("alice", "wrong-password")
	}

	_, err = env.service.VerifyBackupCode(context.Background(), user.ID, setup.BackupCodes[0], "192.0.2.10")
	assert.ErrorIs(t, err, auth.ErrAccountLocked)

	active, err := env.backups.ListActive(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, active, auth.BackupCodeCount)
}

/*
TestService_VerifyBackupCode_MfaDisabled verifies that recovery codes are
only honored once enrollment is confirmed: setup alone mints codes, but they
must never authenticate an account whose MFA is still off.
*/
func TestService_VerifyBackupCode_MfaDisabled(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)

	setup, err := env.service.SetupMfa(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = env.service.VerifyBackupCode(context.Background(), user.ID, setup.BackupCodes[0], "192.0.2.10")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

/*
TestService_SetupAndEnableMfa walks the TOTP enrollment: setup leaves MFA
disabled, a wrong code keeps it disabled, and one live code enables it.
*/
func TestService_SetupAndEnableMfa(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)

	setup, err := env.service.SetupMfa(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.QrPayload, "otpauth://")

	stored, err := env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, stored.MfaEnabled, "setup alone must not enable MFA")

	// Wrong confirmation code: MFA stays off.
	err = env.service.EnableMfa(context.Background(), user.ID, "000000", "192.0.2.10")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	stored, err = env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, stored.MfaEnabled)

	// Live authenticator code: enrollment confirmed.
	liveCode, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, env.service.EnableMfa(context.Background(), user.ID, liveCode, "192.0.2.10"))

	stored, err = env.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.MfaEnabled)

	assert.Equal(t, 1, env.auditor.CountAction(audit.ActionMfaEnabled))
}

// # Registration & Password Lifecycle

/*
TestService_Register_Conflict rejects duplicate identities with a client-safe
Conflict error.
*/
func TestService_Register_Conflict(t *testing.T) {
	env := newTestEnv()
	env.createUser(t, "alice", "Sup3r#Pass", false)

	_, err := env.service.Register(context.Background(), auth.RegisterInput{
		Username: "someone-else",
		Email:    "alice@example.com",
		Password: "An0ther#Pass",
	})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

/*
TestService_ChangePassword_RejectsReuse verifies the last-5 reuse policy
including the current credential.
*/
func TestService_ChangePassword_RejectsReuse(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)
	ctx := context.Background()

	// Reusing the current password is rejected.
	err := env.service.ChangePassword(ctx, user.ID, "Sup3r#Pass", "Sup3r#Pass")
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	// A genuinely new password is accepted.
	require.NoError(t, env.service.ChangePassword(ctx, user.ID, "Sup3r#Pass", "N3w#Password"))

	// Rotating back to the original is caught by the history.
	err = env.service.ChangePassword(ctx, user.ID, "N3w#Password", "Sup3r#Pass")
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	assert.Equal(t, 1, env.auditor.CountAction(audit.ActionPasswordChanged))
}

/*
TestService_ChangePassword_WrongCurrent rejects rotation without the current
credential.
*/
func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)

	err := env.service.ChangePassword(context.Background(), user.ID, "wrong", "N3w#Password")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestService_ResetPassword_Flow runs the full forgot-password round trip and
verifies the token is single-use.
*/
func TestService_ResetPassword_Flow(t *testing.T) {
	env := newTestEnv()
	user := env.createUser(t, "alice", "Sup3r#Pass", false)
	ctx := context.Background()

	token, err := env.service.RequestPasswordReset(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, env.service.ResetPassword(ctx, token, "N3w#Password"))

	result, err := env.login("alice", "N3w#Password")
	require.NoError(t, err)
	assert.Equal(t, "token-for-"+user.ID, result.AccessToken)

	// The consumed token no longer resolves.
	err = env.service.ResetPassword(ctx, token, "Y3t#Another1")
	require.Error(t, err)
}

/*
TestService_RequestPasswordReset_UnknownEmail stays silent for unknown
addresses to prevent account enumeration.
*/
func TestService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	env := newTestEnv()

	token, err := env.service.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}
