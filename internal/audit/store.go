// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package audit

import "context"

// # Audit Data Access

// EventRepository defines the data access contract for audit events.
type EventRepository interface {

	/*
		Append persists a single audit event. Events are write-once.

		Parameters:
		  - context: context.Context
		  - event: *Event

		Returns:
		  - error: Persistence failures (callers must not propagate them)
	*/
	Append(context context.Context, event *Event) error

	/*
		List returns the newest events first, for the moderation view.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []*Event: Page of events
		  - int: Total event count
		  - error: Retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]*Event, int, error)
}
