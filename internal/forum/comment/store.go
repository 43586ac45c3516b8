package comment

import (
	"context"

	"github.com/baonguyen/agora/pkg/pagination"
)

type Repository interface {
	ListByPost(context context.Context, postID string, params pagination.Params) ([]*Comment, int, error)
	GetByID(context context.Context, id string) (*Comment, error)
	Create(context context.Context, comment *Comment) error
	Update(context context.Context, comment *Comment) error
	SoftDelete(context context.Context, id string) error
}
