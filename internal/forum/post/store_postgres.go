package post

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

func (repository *PostgresRepository) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Post, int, error) {
	where := fmt.Sprintf("p.%s IS NULL", schema.ForumPost.DeletedAt)
	args := []interface{}{}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where += fmt.Sprintf(" AND p.%s = $1", schema.ForumPost.CategoryID)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s p WHERE %s`, schema.ForumPost.Table, where)

	total := 0
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_posts")
	}

	// Pinned posts float above the rest regardless of age.
	listQuery := fmt.Sprintf(`
		SELECT p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, a.%s
		FROM %s p
		JOIN %s a ON p.%s = a.%s
		WHERE %s
		ORDER BY p.%s DESC, p.%s DESC
		LIMIT %d OFFSET %d`,
		schema.ForumPost.ID, schema.ForumPost.AuthorID, schema.ForumPost.CategoryID,
		schema.ForumPost.Title, schema.ForumPost.Slug, schema.ForumPost.Body,
		schema.ForumPost.IsPinned, schema.ForumPost.IsLocked,
		schema.ForumPost.CreatedAt, schema.ForumPost.UpdatedAt,
		schema.UserAccount.Username,
		schema.ForumPost.Table, schema.UserAccount.Table,
		schema.ForumPost.AuthorID, schema.UserAccount.ID,
		where,
		schema.ForumPost.IsPinned, schema.ForumPost.CreatedAt,
		params.Limit, params.Offset())

	rows, err := repository.db.Query(context, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_posts")
	}
	defer rows.Close()

	posts := make([]*Post, 0)
	for rows.Next() {
		p := &Post{}
		err := rows.Scan(
			&p.ID, &p.AuthorID, &p.CategoryID, &p.Title, &p.Slug, &p.Body,
			&p.IsPinned, &p.IsLocked, &p.CreatedAt, &p.UpdatedAt, &p.AuthorUsername,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_post")
		}
		posts = append(posts, p)
	}

	return posts, total, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Post, error) {
	return repository.getByColumn(context, schema.ForumPost.ID, id, "get_post_by_id")
}

func (repository *PostgresRepository) GetBySlug(context context.Context, slug string) (*Post, error) {
	return repository.getByColumn(context, schema.ForumPost.Slug, slug, "get_post_by_slug")
}

func (repository *PostgresRepository) getByColumn(context context.Context, column, value, action string) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, a.%s
		FROM %s p
		JOIN %s a ON p.%s = a.%s
		WHERE p.%s = $1 AND p.%s IS NULL`,
		schema.ForumPost.ID, schema.ForumPost.AuthorID, schema.ForumPost.CategoryID,
		schema.ForumPost.Title, schema.ForumPost.Slug, schema.ForumPost.Body,
		schema.ForumPost.IsPinned, schema.ForumPost.IsLocked,
		schema.ForumPost.CreatedAt, schema.ForumPost.UpdatedAt,
		schema.UserAccount.Username,
		schema.ForumPost.Table, schema.UserAccount.Table,
		schema.ForumPost.AuthorID, schema.UserAccount.ID,
		column, schema.ForumPost.DeletedAt)

	p := &Post{}
	err := repository.db.QueryRow(context, query, value).Scan(
		&p.ID, &p.AuthorID, &p.CategoryID, &p.Title, &p.Slug, &p.Body,
		&p.IsPinned, &p.IsLocked, &p.CreatedAt, &p.UpdatedAt, &p.AuthorUsername,
	)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	return p, nil
}

func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schema.ForumPost.Table,
		schema.ForumPost.ID, schema.ForumPost.AuthorID, schema.ForumPost.CategoryID,
		schema.ForumPost.Title, schema.ForumPost.Slug, schema.ForumPost.Body,
		schema.ForumPost.IsPinned, schema.ForumPost.IsLocked,
		schema.ForumPost.CreatedAt, schema.ForumPost.UpdatedAt)

	_, err := repository.db.Exec(context, query,
		post.ID, post.AuthorID, post.CategoryID, post.Title, post.Slug, post.Body,
		post.IsPinned, post.IsLocked, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "A post with this slug already exists")
	}

	return nil
}

func (repository *PostgresRepository) Update(context context.Context, post *Post) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7
		WHERE %s = $1 AND %s IS NULL`,
		schema.ForumPost.Table,
		schema.ForumPost.Title, schema.ForumPost.Slug, schema.ForumPost.Body,
		schema.ForumPost.IsPinned, schema.ForumPost.IsLocked, schema.ForumPost.UpdatedAt,
		schema.ForumPost.ID, schema.ForumPost.DeletedAt)

	_, err := repository.db.Exec(context, query,
		post.ID, post.Title, post.Slug, post.Body, post.IsPinned, post.IsLocked, post.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "A post with this slug already exists")
	}

	return nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.ForumPost.Table, schema.ForumPost.DeletedAt,
		schema.ForumPost.ID, schema.ForumPost.DeletedAt)

	if _, err := repository.db.Exec(context, query, id); err != nil {
		return dberr.Wrap(err, "soft_delete_post")
	}

	return nil
}
