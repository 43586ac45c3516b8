// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package auth

import (
	"sync"
	"time"
)

// # Lockout Tracking

// LockoutTracker owns the failed-login lockout policy and serializes all
// security-state transitions per account.
//
// # Concurrency
//
// Two concurrent login attempts for the same account must not interleave
// their read-increment-write cycles, or one failure would be lost. Acquire
// hands out a per-account mutex (created on demand, reclaimed when idle) so
// callers can bracket the full fetch-mutate-persist sequence.
//
// # Policy
//
// The failure counter is cumulative across the account's lifetime of
// consecutive failures: there is no sliding window. Five failures lock the
// account for fifteen minutes; any successful login resets the counter.
// Expiry is lazy — IsLocked simply stops reporting an expired lock, and the
// stale row is cleaned up on the next successful login.
type LockoutTracker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	now     func() time.Time
}

// lockEntry is a reference-counted per-account mutex.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewLockoutTracker constructs a tracker using the given clock.
//
// The clock is injectable so lock-expiry boundaries can be tested without
// sleeping. Production callers pass time.Now.
func NewLockoutTracker(now func() time.Time) *LockoutTracker {
	if now == nil {
		now = time.Now
	}
	return &LockoutTracker{
		entries: make(map[string]*lockEntry),
		now:     now,
	}
}

/*
Acquire takes the per-account mutex and returns its release function.

Description: The returned release must be deferred immediately. Entries are
reference-counted and removed from the map once no caller holds or waits on
them, so the tracker's memory stays proportional to concurrent logins, not to
the total account population.

Parameters:
  - accountID: string

Returns:
  - func(): Release function
*/
func (tracker *LockoutTracker) Acquire(accountID string) func() {
	tracker.mu.Lock()
	entry, exists := tracker.entries[accountID]
	if !exists {
		entry = &lockEntry{}
		tracker.entries[accountID] = entry
	}
	entry.refs++
	tracker.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		tracker.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(tracker.entries, accountID)
		}
		tracker.mu.Unlock()
	}
}

// IsLocked reports whether the account is currently locked, honoring lazy
// expiry.
func (tracker *LockoutTracker) IsLocked(user *User) bool {
	return user.IsLocked(tracker.now())
}

/*
RegisterFailure records one failed password attempt on the entity.

Description: Increments the counter and, on reaching the threshold, stamps
LockUntil. The caller persists the mutated entity afterwards (while still
holding the account's mutex).

Parameters:
  - user: *User

Returns:
  - bool: true when this failure transitioned the account into the locked state
*/
func (tracker *LockoutTracker) RegisterFailure(user *User) bool {
	user.FailedLoginAttempts++

	if user.FailedLoginAttempts >= MaxFailedLoginAttempts {
		// The counter only resets on success, so a failure after a lazily
		// expired lock re-locks the account immediately.
		if user.LockUntil == nil || !tracker.now().Before(*user.LockUntil) {
			lockUntil := tracker.now().Add(LockoutDuration)
			user.LockUntil = &lockUntil
			return true
		}
	}

	return false
}

/*
RegisterSuccess clears the failure counter and any expired lock.

Parameters:
  - user: *User
*/
func (tracker *LockoutTracker) RegisterSuccess(user *User) {
	user.FailedLoginAttempts = 0
	user.LockUntil = nil
}
