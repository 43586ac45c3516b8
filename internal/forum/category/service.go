package category

import (
	"context"
	"log/slog"
	"time"

	"github.com/baonguyen/agora/pkg/slug"
	"github.com/baonguyen/agora/pkg/uuidv7"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListCategories(context context.Context) ([]*Category, error) {
	return service.repo.List(context)
}

func (service *Service) GetCategoryBySlug(context context.Context, categorySlug string) (*Category, error) {
	return service.repo.GetBySlug(context, categorySlug)
}

type CreateCategoryInput struct {
	Name        string
	Description *string
	SortOrder   int
}

func (service *Service) CreateCategory(context context.Context, input CreateCategoryInput) (*Category, error) {
	category := &Category{
		ID:          uuidv7.New(),
		Name:        input.Name,
		Slug:        slug.From(input.Name),
		Description: input.Description,
		SortOrder:   input.SortOrder,
		CreatedAt:   time.Now(),
	}

	if err := service.repo.Create(context, category); err != nil {
		return nil, err
	}

	service.logger.Info("forum_category_created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

type UpdateCategoryInput struct {
	Name        *string
	Description *string
	SortOrder   *int
}

func (service *Service) UpdateCategory(context context.Context, id string, input UpdateCategoryInput) (*Category, error) {
	category, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		category.Name = *input.Name
		category.Slug = slug.From(*input.Name)
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}

	if err := service.repo.Update(context, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (service *Service) DeleteCategory(context context.Context, id string) error {
	if _, err := service.repo.GetByID(context, id); err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("forum_category_deleted", slog.String("category_id", id))
	return nil
}
