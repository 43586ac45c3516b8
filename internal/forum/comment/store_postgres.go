package comment

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

func (repository *PostgresRepository) ListByPost(context context.Context, postID string, params pagination.Params) ([]*Comment, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.ForumComment.Table, schema.ForumComment.PostID)

	total := 0
	if err := repository.db.QueryRow(context, countQuery, postID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_comments")
	}

	// Deleted comments are kept in the listing with a masked body so reply
	// chains stay navigable.
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s,
		       CASE WHEN c.%s THEN '' ELSE c.%s END,
		       c.%s, c.%s, c.%s, a.%s
		FROM %s c
		JOIN %s a ON c.%s = a.%s
		WHERE c.%s = $1
		ORDER BY c.%s ASC
		LIMIT %d OFFSET %d`,
		schema.ForumComment.ID, schema.ForumComment.PostID, schema.ForumComment.AuthorID, schema.ForumComment.ParentID,
		schema.ForumComment.IsDeleted, schema.ForumComment.Body,
		schema.ForumComment.IsDeleted, schema.ForumComment.CreatedAt, schema.ForumComment.UpdatedAt,
		schema.UserAccount.Username,
		schema.ForumComment.Table, schema.UserAccount.Table,
		schema.ForumComment.AuthorID, schema.UserAccount.ID,
		schema.ForumComment.PostID,
		schema.ForumComment.CreatedAt,
		params.Limit, params.Offset())

	rows, err := repository.db.Query(context, query, postID)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_comments")
	}
	defer rows.Close()

	comments := make([]*Comment, 0)
	for rows.Next() {
		c := &Comment{}
		err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Body,
			&c.IsDeleted, &c.CreatedAt, &c.UpdatedAt, &c.AuthorUsername,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_comment")
		}
		comments = append(comments, c)
	}

	return comments, total, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1`,
		schema.ForumComment.ID, schema.ForumComment.PostID, schema.ForumComment.AuthorID,
		schema.ForumComment.ParentID, schema.ForumComment.Body, schema.ForumComment.IsDeleted,
		schema.ForumComment.CreatedAt, schema.ForumComment.UpdatedAt,
		schema.ForumComment.Table, schema.ForumComment.ID)

	c := &Comment{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Body,
		&c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_comment_by_id")
	}

	return c, nil
}

func (repository *PostgresRepository) Create(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.ForumComment.Table,
		schema.ForumComment.ID, schema.ForumComment.PostID, schema.ForumComment.AuthorID,
		schema.ForumComment.ParentID, schema.ForumComment.Body,
		schema.ForumComment.CreatedAt, schema.ForumComment.UpdatedAt)

	_, err := repository.db.Exec(context, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.ParentID, comment.Body,
		comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_comment")
	}

	return nil
}

func (repository *PostgresRepository) Update(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1 AND %s = FALSE`,
		schema.ForumComment.Table,
		schema.ForumComment.Body, schema.ForumComment.UpdatedAt,
		schema.ForumComment.ID, schema.ForumComment.IsDeleted)

	_, err := repository.db.Exec(context, query, comment.ID, comment.Body, comment.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "update_comment")
	}

	return nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = NOW() WHERE %s = $1`,
		schema.ForumComment.Table,
		schema.ForumComment.IsDeleted, schema.ForumComment.UpdatedAt,
		schema.ForumComment.ID)

	if _, err := repository.db.Exec(context, query, id); err != nil {
		return dberr.Wrap(err, "soft_delete_comment")
	}

	return nil
}
