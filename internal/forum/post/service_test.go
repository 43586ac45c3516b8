package post_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baonguyen/agora/internal/forum/post"
	"github.com/baonguyen/agora/internal/platform/apperr"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/pkg/pagination"
)

type memoryPostRepo struct {
	mu    sync.Mutex
	posts map[string]*post.Post
}

func newMemoryPostRepo() *memoryPostRepo {
	return &memoryPostRepo{posts: make(map[string]*post.Post)}
}

func (repo *memoryPostRepo) List(_ context.Context, filter post.ListFilter, params pagination.Params) ([]*post.Post, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	matched := make([]*post.Post, 0)
	for _, p := range repo.posts {
		if p.DeletedAt != nil {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	return matched, len(matched), nil
}

func (repo *memoryPostRepo) GetByID(_ context.Context, id string) (*post.Post, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	p, ok := repo.posts[id]
	if !ok || p.DeletedAt != nil {
		return nil, apperr.NotFound("Post")
	}
	clone := *p
	return &clone, nil
}

func (repo *memoryPostRepo) GetBySlug(_ context.Context, slug string) (*post.Post, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, p := range repo.posts {
		if p.Slug == slug && p.DeletedAt == nil {
			clone := *p
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Post")
}

func (repo *memoryPostRepo) Create(_ context.Context, p *post.Post) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *p
	repo.posts[p.ID] = &clone
	return nil
}

func (repo *memoryPostRepo) Update(_ context.Context, p *post.Post) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *p
	repo.posts[p.ID] = &clone
	return nil
}

func (repo *memoryPostRepo) SoftDelete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if p, ok := repo.posts[id]; ok {
		now := p.CreatedAt
		p.DeletedAt = &now
	}
	return nil
}

var (
	author = post.Actor{UserID: "author-1", Role: sec.RoleMember}
	other  = post.Actor{UserID: "member-2", Role: sec.RoleMember}
	mod    = post.Actor{UserID: "mod-1", Role: sec.RoleModerator}
)

func newService() (*post.Service, *memoryPostRepo) {
	repo := newMemoryPostRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return post.NewService(repo, logger), repo
}

func createPost(t *testing.T, service *post.Service) *post.Post {
	t.Helper()
	created, err := service.CreatePost(context.Background(), author, post.CreatePostInput{
		CategoryID: "cat-1",
		Title:      "Introducing myself",
		Body:       "Hello everyone",
	})
	require.NoError(t, err)
	return created
}

func TestService_CreatePost_SlugSuffix(t *testing.T) {
	service, _ := newService()

	first := createPost(t, service)
	second := createPost(t, service)

	// Same title must still produce distinct slugs.
	assert.Contains(t, first.Slug, "introducing-myself-")
	assert.NotEqual(t, first.Slug, second.Slug)

	found, err := service.GetPostBySlug(context.Background(), first.Slug)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestService_UpdatePost_Authorization(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	created := createPost(t, service)

	newTitle := "Updated title"

	// A stranger cannot edit.
	_, err := service.UpdatePost(ctx, other, created.ID, post.UpdatePostInput{Title: &newTitle})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// The author can.
	updated, err := service.UpdatePost(ctx, author, created.ID, post.UpdatePostInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Contains(t, updated.Slug, "updated-title-")
}

func TestService_LockedPost_BlocksAuthorEdits(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	created := createPost(t, service)

	// Members cannot lock.
	_, err := service.SetLocked(ctx, author, created.ID, true)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	locked, err := service.SetLocked(ctx, mod, created.ID, true)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)

	// The author is frozen out of a locked post.
	body := "edit attempt"
	_, err = service.UpdatePost(ctx, author, created.ID, post.UpdatePostInput{Body: &body})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// Moderators still can.
	_, err = service.UpdatePost(ctx, mod, created.ID, post.UpdatePostInput{Body: &body})
	require.NoError(t, err)

	unlocked, err := service.SetLocked(ctx, mod, created.ID, false)
	require.NoError(t, err)
	assert.False(t, unlocked.IsLocked)
}

func TestService_DeletePost(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	created := createPost(t, service)

	require.Error(t, service.DeletePost(ctx, other, created.ID))
	require.NoError(t, service.DeletePost(ctx, author, created.ID))

	_, err := service.GetPostBySlug(ctx, created.Slug)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// Deleting again surfaces not found.
	err = service.DeletePost(ctx, mod, created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestService_PinPost(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	created := createPost(t, service)

	pinned, err := service.SetPinned(ctx, mod, created.ID, true)
	require.NoError(t, err)
	assert.True(t, pinned.IsPinned)

	_, err = service.SetPinned(ctx, author, created.ID, true)
	require.Error(t, err)
}
