// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/baonguyen/agora/pkg/uuidv7"
)

const (
	// queueCapacity bounds the in-flight audit backlog. When the queue is
	// full, new events are dropped (and the drop is logged) rather than
	// blocking the login path.
	queueCapacity = 1024

	// writeTimeout caps each storage write so a stalled database cannot
	// wedge the worker forever.
	writeTimeout = 5 * time.Second
)

// Recorder appends audit events asynchronously.
//
// # Failure Policy
//
// Record never returns an error and never blocks on storage. Writes happen on
// a single background worker; storage failures are observed, logged, and
// discarded. Audit completeness is explicitly NOT guaranteed.
type Recorder struct {
	repository EventRepository
	logger     *slog.Logger

	queue     chan *Event
	workerEnd chan struct{}
	closeOnce sync.Once
}

// NewRecorder constructs a [Recorder] and starts its background worker.
func NewRecorder(repository EventRepository, logger *slog.Logger) *Recorder {
	recorder := &Recorder{
		repository: repository,
		logger:     logger,
		queue:      make(chan *Event, queueCapacity),
		workerEnd:  make(chan struct{}),
	}

	go recorder.worker()
	return recorder
}

/*
Record enqueues a security event for asynchronous persistence.

Description: Fire-and-forget. The event is stamped with an ID and timestamp
here so ordering reflects enqueue time, not write time.

Parameters:
  - actorID: string (empty when the actor could not be resolved)
  - action: string (one of the Action* constants)
  - metadata: map[string]any (free-form per action)
*/
func (recorder *Recorder) Record(actorID, action string, metadata map[string]any) {
	recorder.RecordFrom(actorID, action, metadata, "")
}

// RecordFrom is [Record] with the observed client IP address attached.
func (recorder *Recorder) RecordFrom(actorID, action string, metadata map[string]any, ipAddress string) {
	event := &Event{
		ID:        uuidv7.New(),
		ActorID:   actorID,
		Action:    action,
		Metadata:  metadata,
		IPAddress: ipAddress,
		CreatedAt: time.Now(),
	}

	select {
	case recorder.queue <- event:
	default:
		// Shedding load beats blocking an authentication request.
		recorder.logger.Warn("audit_event_dropped_queue_full",
			slog.String("action", action),
		)
	}
}

// Close stops accepting events, drains the queue, and waits for the worker.
//
// Intended for graceful shutdown only; Record must not be called afterwards.
func (recorder *Recorder) Close() {
	recorder.closeOnce.Do(func() {
		close(recorder.queue)
		<-recorder.workerEnd
	})
}

// worker drains the queue until it is closed.
func (recorder *Recorder) worker() {
	defer close(recorder.workerEnd)

	for event := range recorder.queue {
		writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := recorder.repository.Append(writeCtx, event)
		cancel()

		if err != nil {
			// Observed, logged, not propagated.
			recorder.logger.Error("audit_append_failed",
				slog.String("action", event.Action),
				slog.Any("error", err),
			)
		}
	}
}
