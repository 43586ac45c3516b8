package moderation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baonguyen/agora/internal/platform/database/schema"
	"github.com/baonguyen/agora/internal/platform/dberr"
	"github.com/baonguyen/agora/pkg/pagination"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Create(context context.Context, report *Report) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.ForumReport.Table,
		schema.ForumReport.ID, schema.ForumReport.ReporterID, schema.ForumReport.TargetType,
		schema.ForumReport.TargetID, schema.ForumReport.Reason, schema.ForumReport.Status,
		schema.ForumReport.CreatedAt)

	_, err := repository.db.Exec(context, query,
		report.ID, report.ReporterID, report.TargetType, report.TargetID,
		report.Reason, report.Status, report.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_report")
	}

	return nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Report, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1`,
		schema.ForumReport.ID, schema.ForumReport.ReporterID, schema.ForumReport.TargetType,
		schema.ForumReport.TargetID, schema.ForumReport.Reason, schema.ForumReport.Status,
		schema.ForumReport.ResolvedBy, schema.ForumReport.ResolvedAt, schema.ForumReport.CreatedAt,
		schema.ForumReport.Table, schema.ForumReport.ID)

	r := &Report{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&r.ID, &r.ReporterID, &r.TargetType, &r.TargetID, &r.Reason,
		&r.Status, &r.ResolvedBy, &r.ResolvedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_report_by_id")
	}

	return r, nil
}

func (repository *PostgresRepository) List(context context.Context, status string, params pagination.Params) ([]*Report, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		where = fmt.Sprintf("%s = $1", schema.ForumReport.Status)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, schema.ForumReport.Table, where)

	total := 0
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_reports")
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s
		ORDER BY %s ASC
		LIMIT %d OFFSET %d`,
		schema.ForumReport.ID, schema.ForumReport.ReporterID, schema.ForumReport.TargetType,
		schema.ForumReport.TargetID, schema.ForumReport.Reason, schema.ForumReport.Status,
		schema.ForumReport.ResolvedBy, schema.ForumReport.ResolvedAt, schema.ForumReport.CreatedAt,
		schema.ForumReport.Table,
		where,
		schema.ForumReport.CreatedAt,
		params.Limit, params.Offset())

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_reports")
	}
	defer rows.Close()

	reports := make([]*Report, 0)
	for rows.Next() {
		r := &Report{}
		err := rows.Scan(
			&r.ID, &r.ReporterID, &r.TargetType, &r.TargetID, &r.Reason,
			&r.Status, &r.ResolvedBy, &r.ResolvedAt, &r.CreatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_report")
		}
		reports = append(reports, r)
	}

	return reports, total, nil
}

func (repository *PostgresRepository) Update(context context.Context, report *Report) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		schema.ForumReport.Table,
		schema.ForumReport.Status, schema.ForumReport.ResolvedBy, schema.ForumReport.ResolvedAt,
		schema.ForumReport.ID)

	_, err := repository.db.Exec(context, query,
		report.ID, report.Status, report.ResolvedBy, report.ResolvedAt)
	if err != nil {
		return dberr.Wrap(err, "update_report")
	}

	return nil
}
