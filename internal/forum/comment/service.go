package comment

import (
	"context"
	"log/slog"
	"time"

	"github.com/baonguyen/agora/internal/forum/post"
	"github.com/baonguyen/agora/internal/platform/apperr"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/pkg/pagination"
	"github.com/baonguyen/agora/pkg/uuidv7"
)

// PostResolver is the slice of the post repository comments need to check
// that the thread exists and is not locked.
type PostResolver interface {
	GetByID(context context.Context, id string) (*post.Post, error)
}

type Service struct {
	repo   Repository
	posts  PostResolver
	logger *slog.Logger
}

func NewService(repo Repository, posts PostResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		posts:  posts,
		logger: logger,
	}
}

type Actor struct {
	UserID string
	Role   sec.UserRole
}

func (actor Actor) isModerator() bool {
	return actor.Role.AtLeast(sec.RoleModerator)
}

func (service *Service) ListComments(context context.Context, postID string, params pagination.Params) ([]*Comment, pagination.Meta, error) {
	if _, err := service.posts.GetByID(context, postID); err != nil {
		return nil, pagination.Meta{}, err
	}

	comments, total, err := service.repo.ListByPost(context, postID, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return comments, pagination.NewMeta(params.Page, params.Limit, total), nil
}

type CreateCommentInput struct {
	PostID   string
	ParentID *string
	Body     string
}

func (service *Service) CreateComment(context context.Context, actor Actor, input CreateCommentInput) (*Comment, error) {
	thread, err := service.posts.GetByID(context, input.PostID)
	if err != nil {
		return nil, err
	}
	if thread.IsLocked {
		return nil, apperr.Forbidden("This post has been locked by a moderator")
	}

	if input.ParentID != nil {
		parent, err := service.repo.GetByID(context, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != input.PostID {
			return nil, apperr.Unprocessable("Parent comment belongs to a different post")
		}
	}

	now := time.Now()
	comment := &Comment{
		ID:        uuidv7.New(),
		PostID:    input.PostID,
		AuthorID:  actor.UserID,
		ParentID:  input.ParentID,
		Body:      input.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.repo.Create(context, comment); err != nil {
		return nil, err
	}

	service.logger.Info("forum_comment_created",
		slog.String("comment_id", comment.ID),
		slog.String("post_id", input.PostID),
	)

	return comment, nil
}

func (service *Service) UpdateComment(context context.Context, actor Actor, id string, body string) (*Comment, error) {
	comment, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if comment.IsDeleted {
		return nil, apperr.NotFound("Comment")
	}
	if comment.AuthorID != actor.UserID {
		return nil, apperr.Forbidden("You can only edit your own comments")
	}

	comment.Body = body
	comment.UpdatedAt = time.Now()

	if err := service.repo.Update(context, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// DeleteComment soft-deletes so nested replies keep their anchor in the tree.
func (service *Service) DeleteComment(context context.Context, actor Actor, id string) error {
	comment, err := service.repo.GetByID(context, id)
	if err != nil {
		return err
	}

	if comment.AuthorID != actor.UserID && !actor.isModerator() {
		return apperr.Forbidden("You can only delete your own comments")
	}

	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Info("forum_comment_deleted",
		slog.String("comment_id", id),
		slog.String("actor_id", actor.UserID),
	)
	return nil
}
