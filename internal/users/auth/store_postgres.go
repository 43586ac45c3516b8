// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

// PostgreSQL implementations of the auth repositories.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # err Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baonguyen/agora/internal/platform/apperr"
	"github.com/baonguyen/agora/pkg/uuidv7"
)

// userColumns is the canonical SELECT column list for users.account.
const userColumns = `id, username, email, passwordhash, displayname, role, isactive, isverified,
		failedloginattempts, lockuntil, mfaenabled, mfasecret, mfaotphash, mfaotpexpiresat,
		lastloginat, createdat, updatedat`

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata including the zeroed security
state, ensuring timestamps are initialized if not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, displayname, role, isactive, isverified,
			failedloginattempts, mfaenabled, mfasecret, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.Role,
		user.IsActive,
		user.IsVerified,
		user.FailedLoginAttempts,
		user.MfaEnabled,
		user.MfaSecret,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Description: Performs a lookup on the account table, filtering out soft-deleted users.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users.account
		WHERE email = $1 AND deletedat IS NULL`, userColumns)

	user, err := repository.scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this email")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by their unique username.

Description: Standard lookup by username for authentication and profile resolution.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users.account
		WHERE username = $1 AND deletedat IS NULL`, userColumns)

	user, err := repository.scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this username")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users.account
		WHERE id = $1 AND deletedat IS NULL`, userColumns)

	user, err := repository.scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// scanUser hydrates a full User entity from a row carrying userColumns.
func (repository *PostgresUserRepository) scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Role,
		&user.IsActive,
		&user.IsVerified,
		&user.FailedLoginAttempts,
		&user.LockUntil,
		&user.MfaEnabled,
		&user.MfaSecret,
		&user.MfaOtpHash,
		&user.MfaOtpExpiresAt,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
UpdateSecurityState persists the lockout counters and last-login timestamp.

Description: Writes failedloginattempts, lockuntil, and lastloginat in one
statement. Callers hold the account's lockout serialization.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Update failures
*/
func (repository *PostgresUserRepository) UpdateSecurityState(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET failedloginattempts = $2, lockuntil = $3, lastloginat = $4, updatedat = $5
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FailedLoginAttempts,
		user.LockUntil,
		user.LastLoginAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_security_failed: %w", err)
	}

	return nil
}

/*
UpdateMfa persists the MFA configuration and transient challenge fields.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Update failures
*/
func (repository *PostgresUserRepository) UpdateMfa(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET mfaenabled = $2, mfasecret = $3, mfaotphash = $4, mfaotpexpiresat = $5, updatedat = $6
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.MfaEnabled,
		user.MfaSecret,
		user.MfaOtpHash,
		user.MfaOtpExpiresAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_mfa_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
MarkVerified updates the user's status to isverified = true.

Description: Post-verification cleanup to activate the account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	const query = "UPDATE users.account SET isverified = TRUE, updatedat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_mark_verified_failed: %w", err)
	}
	return nil
}

/*
SetActive flips the account's isactive flag.

Description: Moderation-driven ban (false) and unban (true). Inactive
accounts fail login like bad credentials.

Parameters:
  - context: context.Context
  - userID: string
  - active: bool

Returns:
  - error: Database errors
*/
func (repository *PostgresUserRepository) SetActive(context context.Context, userID string, active bool) error {
	const query = "UPDATE users.account SET isactive = $2, updatedat = $3 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, active, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_active_failed: %w", err)
	}
	return nil
}

// # Password History Repository

// PostgresPasswordHistoryRepository implements PasswordHistoryRepository using pgx.
type PostgresPasswordHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordHistoryRepository creates a new PostgreSQL implementation of PasswordHistoryRepository.
func NewPasswordHistoryRepository(pool *pgxpool.Pool) *PostgresPasswordHistoryRepository {
	return &PostgresPasswordHistoryRepository{pool: pool}
}

/*
Add archives a retired hash and prunes entries beyond the retention limit.

Description: Insert and prune run in one transaction so the archive can never
exceed the limit even under concurrent changes.

Parameters:
  - context: context.Context
  - userID: string
  - passwordHash: string
  - limit: int

Returns:
  - error: Transaction failures
*/
func (repository *PostgresPasswordHistoryRepository) Add(context context.Context, userID, passwordHash string, limit int) error {
	const insertQuery = `
		INSERT INTO users.passwordhistory (id, userid, passwordhash, createdat)
		VALUES ($1, $2, $3, $4)`

	const pruneQuery = `
		DELETE FROM users.passwordhistory
		WHERE userid = $1 AND id NOT IN (
			SELECT id FROM users.passwordhistory
			WHERE userid = $1
			ORDER BY createdat DESC
			LIMIT $2
		)`

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_history_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	if _, err := transaction.Exec(context, insertQuery, uuidv7.New(), userID, passwordHash, time.Now()); err != nil {
		return fmt.Errorf("postgres_history_repo_insert_failed: %w", err)
	}

	if _, err := transaction.Exec(context, pruneQuery, userID, limit); err != nil {
		return fmt.Errorf("postgres_history_repo_prune_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_history_repo_commit_failed: %w", err)
	}

	return nil
}

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
func (repository *PostgresPasswordHistoryRepository) ListRecent(context context.Context, userID string, limit int) ([]string, error) {
	const query = `
		SELECT passwordhash FROM users.passwordhistory
		WHERE userid = $1
		ORDER BY createdat DESC
		LIMIT $2`

	rows, err := repository.pool.Query(context, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_history_repo_list_failed: %w", err)
	}
	defer rows.Close()

	hashes := make([]string, 0, limit)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("postgres_history_repo_scan_failed: %w", err)
		}
		hashes = append(hashes, hash)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_history_repo_rows_failed: %w", err)
	}

	return hashes, nil
}

// # Backup Code Repository

// PostgresBackupCodeRepository implements BackupCodeRepository using pgx.
type PostgresBackupCodeRepository struct {
	pool *pgxpool.Pool
}

// NewBackupCodeRepository creates a new PostgreSQL implementation of BackupCodeRepository.
func NewBackupCodeRepository(pool *pgxpool.Pool) *PostgresBackupCodeRepository {
	return &PostgresBackupCodeRepository{pool: pool}
}

/*
Replace atomically swaps the user's full recovery code set.

Description: Delete and insert run in one transaction so a failed setup never
leaves a mixed code set behind.

Parameters:
  - context: context.Context
  - userID: string
  - codeHashes: []string

Returns:
  - error: Transaction failures
*/
func (repository *PostgresBackupCodeRepository) Replace(context context.Context, userID string, codeHashes []string) error {
	const deleteQuery = "DELETE FROM users.backupcode WHERE userid = $1"
	const insertQuery = `
		INSERT INTO users.backupcode (id, userid, codehash)
		VALUES ($1, $2, $3)`

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_backup_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	if _, err := transaction.Exec(context, deleteQuery, userID); err != nil {
		return fmt.Errorf("postgres_backup_repo_delete_failed: %w", err)
	}

	for _, codeHash := range codeHashes {
		if _, err := transaction.Exec(context, insertQuery, uuidv7.New(), userID, codeHash); err != nil {
			return fmt.Errorf("postgres_backup_repo_insert_failed: %w", err)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_backup_repo_commit_failed: %w", err)
	}

	return nil
}

/*
ListActive returns the user's unredeemed recovery codes.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*BackupCode: Codes with UsedAt IS NULL
  - error: Retrieval failures
*/
func (repository *PostgresBackupCodeRepository) ListActive(context context.Context, userID string) ([]*BackupCode, error) {
	const query = `
		SELECT id, userid, codehash, usedat FROM users.backupcode
		WHERE userid = $1 AND usedat IS NULL`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_backup_repo_list_failed: %w", err)
	}
	defer rows.Close()

	codes := make([]*BackupCode, 0, BackupCodeCount)
	for rows.Next() {
		code := &BackupCode{}
		if err := rows.Scan(&code.ID, &code.UserID, &code.CodeHash, &code.UsedAt); err != nil {
			return nil, fmt.Errorf("postgres_backup_repo_scan_failed: %w", err)
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_backup_repo_rows_failed: %w", err)
	}

	return codes, nil
}

/*
MarkUsed stamps a recovery code as redeemed.

Description: The WHERE guard keeps redemption idempotent-safe: a code that is
already stamped cannot be stamped again.

Parameters:
  - context: context.Context
  - codeID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresBackupCodeRepository) MarkUsed(context context.Context, codeID string) error {
	const query = "UPDATE users.backupcode SET usedat = $2 WHERE id = $1 AND usedat IS NULL"
	_, err := repository.pool.Exec(context, query, codeID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_backup_repo_mark_used_failed: %w", err)
	}
	return nil
}
