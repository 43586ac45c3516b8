package category

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baonguyen/agora/internal/platform/database/schema"
	"github.com/baonguyen/agora/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) List(context context.Context) ([]*Category, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s ORDER BY %s ASC, %s ASC`,
		schema.ForumCategory.ID, schema.ForumCategory.Name, schema.ForumCategory.Slug,
		schema.ForumCategory.Description, schema.ForumCategory.SortOrder, schema.ForumCategory.CreatedAt,
		schema.ForumCategory.Table, schema.ForumCategory.SortOrder, schema.ForumCategory.Name)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_categories")
	}
	defer rows.Close()

	categories := make([]*Category, 0)
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_category")
		}
		categories = append(categories, c)
	}

	return categories, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.ForumCategory.ID, schema.ForumCategory.Name, schema.ForumCategory.Slug,
		schema.ForumCategory.Description, schema.ForumCategory.SortOrder, schema.ForumCategory.CreatedAt,
		schema.ForumCategory.Table, schema.ForumCategory.ID)

	c := &Category{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_category_by_id")
	}

	return c, nil
}

func (repository *PostgresRepository) GetBySlug(context context.Context, slug string) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.ForumCategory.ID, schema.ForumCategory.Name, schema.ForumCategory.Slug,
		schema.ForumCategory.Description, schema.ForumCategory.SortOrder, schema.ForumCategory.CreatedAt,
		schema.ForumCategory.Table, schema.ForumCategory.Slug)

	c := &Category{}
	err := repository.db.QueryRow(context, query, slug).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_category_by_slug")
	}

	return c, nil
}

func (repository *PostgresRepository) Create(context context.Context, category *Category) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.ForumCategory.Table,
		schema.ForumCategory.ID, schema.ForumCategory.Name, schema.ForumCategory.Slug,
		schema.ForumCategory.Description, schema.ForumCategory.SortOrder, schema.ForumCategory.CreatedAt)

	_, err := repository.db.Exec(context, query,
		category.ID, category.Name, category.Slug, category.Description, category.SortOrder, category.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "A category with this name already exists")
	}

	return nil
}

func (repository *PostgresRepository) Update(context context.Context, category *Category) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5 WHERE %s = $1`,
		schema.ForumCategory.Table,
		schema.ForumCategory.Name, schema.ForumCategory.Slug,
		schema.ForumCategory.Description, schema.ForumCategory.SortOrder,
		schema.ForumCategory.ID)

	_, err := repository.db.Exec(context, query,
		category.ID, category.Name, category.Slug, category.Description, category.SortOrder)
	if err != nil {
		return dberr.Wrap(err, "A category with this name already exists")
	}

	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.ForumCategory.Table, schema.ForumCategory.ID)

	if _, err := repository.db.Exec(context, query, id); err != nil {
		return dberr.Wrap(err, "delete_category")
	}

	return nil
}
