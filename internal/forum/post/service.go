package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/baonguyen/agora/internal/platform/apperr"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/pkg/pagination"
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

// Actor identifies the authenticated user performing a mutation.
type Actor struct {
	UserID string
	Role   sec.UserRole
}

func (actor Actor) isModerator() bool {
	return actor.Role.AtLeast(sec.RoleModerator)
}

func (service *Service) ListPosts(context context.Context, filter ListFilter, params pagination.Params) ([]*Post, pagination.Meta, error) {
	posts, total, err := service.repo.List(context, filter, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return posts, pagination.NewMeta(params.Page, params.Limit, total), nil
}

func (service *Service) GetPostBySlug(context context.Context, postSlug string) (*Post, error) {
	return service.repo.GetBySlug(context, postSlug)
}

type CreatePostInput struct {
	CategoryID string
	Title      string
	Body       string
}

func (service *Service) CreatePost(context context.Context, actor Actor, input CreatePostInput) (*Post, error) {
	now := time.Now()
	post := &Post{
		ID:         uuidv7.New(),
		AuthorID:   actor.UserID,
		CategoryID: input.CategoryID,
		Title:      input.Title,
		Body:       input.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Slugs carry a short ID suffix so identical titles never collide.
	post.Slug = fmt.Sprintf("%s-%s", slug.From(input.Title), post.ID[len(post.ID)-8:])

	if err := service.repo.Create(context, post); err != nil {
		return nil, err
	}

	service.logger.Info("forum_post_created",
		slog.String("post_id", post.ID),
		slog.String("author_id", actor.UserID),
	)

	return post, nil
}

type UpdatePostInput struct {
	Title *string
	Body  *string
}

func (service *Service) UpdatePost(context context.Context, actor Actor, id string, input UpdatePostInput) (*Post, error) {
	post, err := service.authorizeMutation(context, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		post.Title = *input.Title
		post.Slug = fmt.Sprintf("%s-%s", slug.From(*input.Title), post.ID[len(post.ID)-8:])
	}
	if input.Body != nil {
		post.Body = *input.Body
	}
	post.UpdatedAt = time.Now()

	if err := service.repo.Update(context, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (service *Service) DeletePost(context context.Context, actor Actor, id string) error {
	if _, err := service.authorizeMutation(context, actor, id); err != nil {
		return err
	}

	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Info("forum_post_deleted",
		slog.String("post_id", id),
		slog.String("actor_id", actor.UserID),
	)
	return nil
}

// SetPinned toggles the pinned flag. Moderator only.
func (service *Service) SetPinned(context context.Context, actor Actor, id string, pinned bool) (*Post, error) {
	return service.setModerationFlag(context, actor, id, func(post *Post) { post.IsPinned = pinned })
}

// SetLocked toggles the locked flag. Moderator only. Locked posts reject new
// comments but remain readable.
func (service *Service) SetLocked(context context.Context, actor Actor, id string, locked bool) (*Post, error) {
	return service.setModerationFlag(context, actor, id, func(post *Post) { post.IsLocked = locked })
}

func (service *Service) setModerationFlag(context context.Context, actor Actor, id string, apply func(*Post)) (*Post, error) {
	if !actor.isModerator() {
		return nil, apperr.Forbidden("Moderator role required")
	}

	post, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	apply(post)
	post.UpdatedAt = time.Now()

	if err := service.repo.Update(context, post); err != nil {
		return nil, err
	}

	return post, nil
}

// authorizeMutation loads the post and verifies the actor may change it.
// Authors edit their own posts unless a moderator has locked them.
func (service *Service) authorizeMutation(context context.Context, actor Actor, id string) (*Post, error) {
	post, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if actor.isModerator() {
		return post, nil
	}
	if post.AuthorID != actor.UserID {
		return nil, apperr.Forbidden("You can only modify your own posts")
	}
	if post.IsLocked {
		return nil, apperr.Forbidden("This post has been locked by a moderator")
	}

	return post, nil
}
