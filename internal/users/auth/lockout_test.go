// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package auth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baonguyen/agora/internal/users/auth"
)

/*
TestLockoutTracker_ThresholdLock verifies that the fifth consecutive failure,
and only the fifth, transitions the account into the locked state.
*/
func TestLockoutTracker_ThresholdLock(t *testing.T) {
	clock := newTestClock()
	tracker := auth.NewLockoutTracker(clock.Now)
	user := &auth.User{ID: "user-1"}

	for i := 1; i < auth.MaxFailedLoginAttempts; i++ {
		locked := tracker.RegisterFailure(user)
		assert.False(t, locked, "failure %d must not lock", i)
		assert.Nil(t, user.LockUntil)
	}

	locked := tracker.RegisterFailure(user)
	assert.True(t, locked)
	require.NotNil(t, user.LockUntil)
	assert.Equal(t, clock.Now().Add(auth.LockoutDuration), *user.LockUntil)
	assert.True(t, tracker.IsLocked(user))
}

/*
TestLockoutTracker_LazyExpiry verifies the boundary semantics of the
fifteen-minute window: locked one second before the deadline, unlocked at it.
*/
func TestLockoutTracker_LazyExpiry(t *testing.T) {
	clock := newTestClock()
	tracker := auth.NewLockoutTracker(clock.Now)
	user := &auth.User{ID: "user-1", FailedLoginAttempts: auth.MaxFailedLoginAttempts - 1}

	require.True(t, tracker.RegisterFailure(user))

	clock.Advance(auth.LockoutDuration - time.Second)
	assert.True(t, tracker.IsLocked(user))

	clock.Advance(time.Second)
	assert.False(t, tracker.IsLocked(user))

	// The stale LockUntil value stays on the entity until a success clears it.
	assert.NotNil(t, user.LockUntil)
}

/*
TestLockoutTracker_RelockAfterExpiry verifies that a failure after a lazily
expired lock re-locks immediately, because the counter only resets on success.
*/
func TestLockoutTracker_RelockAfterExpiry(t *testing.T) {
	clock := newTestClock()
	tracker := auth.NewLockoutTracker(clock.Now)
	user := &auth.User{ID: "user-1", FailedLoginAttempts: auth.MaxFailedLoginAttempts - 1}

	require.True(t, tracker.RegisterFailure(user))
	clock.Advance(auth.LockoutDuration)
	require.False(t, tracker.IsLocked(user))

	locked := tracker.RegisterFailure(user)
	assert.True(t, locked)
	assert.True(t, tracker.IsLocked(user))
	assert.Equal(t, clock.Now().Add(auth.LockoutDuration), *user.LockUntil)
}

/*
TestLockoutTracker_SuccessResets verifies that a successful login clears both
the counter and any lock residue.
*/
func TestLockoutTracker_SuccessResets(t *testing.T) {
	clock := newTestClock()
	tracker := auth.NewLockoutTracker(clock.Now)
	user := &auth.User{ID: "user-1", FailedLoginAttempts: auth.MaxFailedLoginAttempts - 1}

	require.True(t, tracker.RegisterFailure(user))
	clock.Advance(auth.LockoutDuration)

	tracker.RegisterSuccess(user)
	assert.Zero(t, user.FailedLoginAttempts)
	assert.Nil(t, user.LockUntil)
	assert.False(t, tracker.IsLocked(user))
}

/*
TestLockoutTracker_AcquireSerializes races many goroutines through the same
account's critical section and verifies mutual exclusion.
*/
func TestLockoutTracker_AcquireSerializes(t *testing.T) {
	tracker := auth.NewLockoutTracker(nil)

	const goroutines = 64
	counter := 0 // Deliberately unsynchronized; Acquire must protect it.

	var group sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			release := tracker.Acquire("user-1")
			defer release()
			counter++
		}()
	}
	group.Wait()

	assert.Equal(t, goroutines, counter)
}

/*
TestLockoutTracker_AcquireIndependentAccounts verifies that different
accounts do not block each other.
*/
func TestLockoutTracker_AcquireIndependentAccounts(t *testing.T) {
	tracker := auth.NewLockoutTracker(nil)

	releaseFirst := tracker.Acquire("user-1")
	defer releaseFirst()

	done := make(chan struct{})
	go func() {
		release := tracker.Acquire("user-2")
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("acquiring an unrelated account blocked")
	}
}
