package comment_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baonguyen/agora/internal/forum/comment"
	"github.com/baonguyen/agora/internal/forum/post"
	"github.com/baonguyen/agora/internal/platform/apperr"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/pkg/pagination"
)

type memoryCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*comment.Comment
}

func newMemoryCommentRepo() *memoryCommentRepo {
	return &memoryCommentRepo{comments: make(map[string]*comment.Comment)}
}

func (repo *memoryCommentRepo) ListByPost(_ context.Context, postID string, params pagination.Params) ([]*comment.Comment, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	matched := make([]*comment.Comment, 0)
	for _, c := range repo.comments {
		if c.PostID == postID {
			clone := *c
			matched = append(matched, &clone)
		}
	}
	return matched, len(matched), nil
}

func (repo *memoryCommentRepo) GetByID(_ context.Context, id string) (*comment.Comment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	c, ok := repo.comments[id]
	if !ok {
		return nil, apperr.NotFound("Comment")
	}
	clone := *c
	return &clone, nil
}

func (repo *memoryCommentRepo) Create(_ context.Context, c *comment.Comment) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *c
	repo.comments[c.ID] = &clone
	return nil
}

func (repo *memoryCommentRepo) Update(_ context.Context, c *comment.Comment) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *c
	repo.comments[c.ID] = &clone
	return nil
}

func (repo *memoryCommentRepo) SoftDelete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if c, ok := repo.comments[id]; ok {
		c.IsDeleted = true
	}
	return nil
}

// fakePostResolver serves a fixed set of posts.
type fakePostResolver struct {
	posts map[string]*post.Post
}

func (resolver *fakePostResolver) GetByID(_ context.Context, id string) (*post.Post, error) {
	p, ok := resolver.posts[id]
	if !ok {
		return nil, apperr.NotFound("Post")
	}
	clone := *p
	return &clone, nil
}

var (
	author = comment.Actor{UserID: "author-1", Role: sec.RoleMember}
	other  = comment.Actor{UserID: "member-2", Role: sec.RoleMember}
	mod    = comment.Actor{UserID: "mod-1", Role: sec.RoleModerator}
)

func newService() (*comment.Service, *memoryCommentRepo) {
	repo := newMemoryCommentRepo()
	resolver := &fakePostResolver{posts: map[string]*post.Post{
		"post-open":   {ID: "post-open"},
		"post-locked": {ID: "post-locked", IsLocked: true},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return comment.NewService(repo, resolver, logger), repo
}

func TestService_CreateComment(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	created, err := service.CreateComment(ctx, author, comment.CreateCommentInput{
		PostID: "post-open",
		Body:   "First!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Nil(t, created.ParentID)

	// Nested reply under the first comment.
	reply, err := service.CreateComment(ctx, other, comment.CreateCommentInput{
		PostID:   "post-open",
		ParentID: &created.ID,
		Body:     "Welcome",
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, created.ID, *reply.ParentID)

	comments, meta, err := service.ListComments(ctx, "post-open", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, 2, meta.Total)
}

func TestService_CreateComment_LockedPost(t *testing.T) {
	service, _ := newService()

	_, err := service.CreateComment(context.Background(), author, comment.CreateCommentInput{
		PostID: "post-locked",
		Body:   "Am I too late?",
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestService_CreateComment_ParentMismatch(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	onOpen, err := service.CreateComment(ctx, author, comment.CreateCommentInput{
		PostID: "post-open",
		Body:   "root",
	})
	require.NoError(t, err)

	// Replying under a different post than the parent is rejected.
	_, err = service.CreateComment(ctx, other, comment.CreateCommentInput{
		PostID:   "post-locked",
		ParentID: &onOpen.ID,
		Body:     "cross-thread reply",
	})
	require.Error(t, err)
}

func TestService_UpdateComment(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	created, err := service.CreateComment(ctx, author, comment.CreateCommentInput{
		PostID: "post-open",
		Body:   "original",
	})
	require.NoError(t, err)

	_, err = service.UpdateComment(ctx, other, created.ID, "hijacked")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	updated, err := service.UpdateComment(ctx, author, created.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Body)
}

func TestService_DeleteComment(t *testing.T) {
	service, repo := newService()
	ctx := context.Background()

	created, err := service.CreateComment(ctx, author, comment.CreateCommentInput{
		PostID: "post-open",
		Body:   "to be removed",
	})
	require.NoError(t, err)

	// Strangers cannot delete, moderators can.
	require.Error(t, service.DeleteComment(ctx, other, created.ID))
	require.NoError(t, service.DeleteComment(ctx, mod, created.ID))

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)

	// A deleted comment can no longer be edited.
	_, err = service.UpdateComment(ctx, author, created.ID, "necro edit")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
