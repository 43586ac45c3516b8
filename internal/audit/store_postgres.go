// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baonguyen/agora/internal/platform/database/schema"
)

// PostgresEventRepository implements the EventRepository interface using pgx.
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new PostgreSQL implementation of EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

/*
Append persists an audit event into the system.auditlog table.

Description: Metadata is serialized to JSONB. The actor column is NULL when
the event has no resolved actor.

Parameters:
  - context: context.Context
  - event: *Event

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresEventRepository) Append(context context.Context, event *Event) error {
	table := schema.SystemAuditLog
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6)`,
		table.Table, table.ID, table.ActorID, table.Action, table.Metadata, table.IPAddress, table.CreatedAt,
	)

	metadataJSON, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("postgres_audit_repo_marshal_failed: %w", err)
	}

	var actorID *string
	if event.ActorID != "" {
		actorID = &event.ActorID
	}

	_, err = repository.pool.Exec(context, query,
		event.ID,
		actorID,
		event.Action,
		metadataJSON,
		event.IPAddress,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_audit_repo_append_failed: %w", err)
	}

	return nil
}

/*
List returns a page of audit events, newest first.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []*Event: Hydrated events
  - int: Total event count
  - error: Retrieval failures
*/
func (repository *PostgresEventRepository) List(context context.Context, limit, offset int) ([]*Event, int, error) {
	table := schema.SystemAuditLog

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table.Table)
	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_count_failed: %w", err)
	}

	listQuery := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s FROM %s ORDER BY %s DESC LIMIT $1 OFFSET $2`,
		table.ID, table.ActorID, table.Action, table.Metadata, table.IPAddress, table.CreatedAt,
		table.Table, table.CreatedAt,
	)

	rows, err := repository.pool.Query(context, listQuery, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_list_failed: %w", err)
	}
	defer rows.Close()

	events := make([]*Event, 0, limit)
	for rows.Next() {
		event := &Event{}
		var actorID *string
		var metadataJSON []byte

		if err := rows.Scan(
			&event.ID,
			&actorID,
			&event.Action,
			&metadataJSON,
			&event.IPAddress,
			&event.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_audit_repo_scan_failed: %w", err)
		}

		if actorID != nil {
			event.ActorID = *actorID
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, 0, fmt.Errorf("postgres_audit_repo_unmarshal_failed: %w", err)
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_rows_failed: %w", err)
	}

	return events, total, nil
}
