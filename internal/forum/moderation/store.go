package moderation

import (
	"context"

	"github.com/baonguyen/agora/pkg/pagination"
)

type Repository interface {
	Create(context context.Context, report *Report) error
	GetByID(context context.Context, id string) (*Report, error)
	List(context context.Context, status string, params pagination.Params) ([]*Report, int, error)
	Update(context context.Context, report *Report) error
}
