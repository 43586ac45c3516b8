// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baonguyen/agora/internal/audit"
)

// memoryEventRepository captures appended events for assertions. failWith, if
// set, makes every Append return that error.
type memoryEventRepository struct {
	mu       sync.Mutex
	events   []*audit.Event
	failWith error
}

func (repo *memoryEventRepository) Append(_ context.Context, event *audit.Event) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.failWith != nil {
		return repo.failWith
	}
	repo.events = append(repo.events, event)
	return nil
}

func (repo *memoryEventRepository) List(_ context.Context, limit, offset int) ([]*audit.Event, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.events, len(repo.events), nil
}

func (repo *memoryEventRepository) captured() []*audit.Event {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return append([]*audit.Event(nil), repo.events...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestRecorder_RecordAndClose verifies that Close drains every queued event.
*/
func TestRecorder_RecordAndClose(t *testing.T) {
	repo := &memoryEventRepository{}
	recorder := audit.NewRecorder(repo, discardLogger())

	for i := 0; i < 20; i++ {
		recorder.Record("actor-1", audit.ActionUserLoggedIn, map[string]any{"n": i})
	}
	recorder.Close()

	events := repo.captured()
	require.Len(t, events, 20)

	first := events[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "actor-1", first.ActorID)
	assert.Equal(t, audit.ActionUserLoggedIn, first.Action)
	assert.False(t, first.CreatedAt.IsZero())
}

/*
TestRecorder_StorageFailureSwallowed verifies that a failing store never
surfaces to callers. Audit persistence is best-effort.
*/
func TestRecorder_StorageFailureSwallowed(t *testing.T) {
	repo := &memoryEventRepository{failWith: errors.New("db down")}
	recorder := audit.NewRecorder(repo, discardLogger())

	// Must not panic or block even though every write fails.
	recorder.RecordFrom("actor-1", audit.ActionLoginFailed, nil, "203.0.113.9")
	recorder.Record("", audit.ActionAccountLocked, nil)
	recorder.Close()

	assert.Empty(t, repo.captured())
}

/*
TestRecorder_CloseIsIdempotent verifies repeated Close calls are safe.
*/
func TestRecorder_CloseIsIdempotent(t *testing.T) {
	recorder := audit.NewRecorder(&memoryEventRepository{}, discardLogger())

	recorder.Close()
	recorder.Close()
}
