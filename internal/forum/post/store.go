package post

import (
	"context"

	"github.com/baonguyen/agora/pkg/pagination"
)

type ListFilter struct {
	// CategoryID narrows the listing to a single category when non-empty.
	CategoryID string
}

type Repository interface {
	List(context context.Context, filter ListFilter, params pagination.Params) ([]*Post, int, error)
	GetByID(context context.Context, id string) (*Post, error)
	GetBySlug(context context.Context, slug string) (*Post, error)
	Create(context context.Context, post *Post) error
	Update(context context.Context, post *Post) error
	SoftDelete(context context.Context, id string) error
}
