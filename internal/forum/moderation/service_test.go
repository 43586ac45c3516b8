package moderation_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baonguyen/agora/internal/forum/moderation"
	"github.com/baonguyen/agora/internal/platform/apperr"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/internal/users/auth"
	"github.com/baonguyen/agora/pkg/pagination"
)

type memoryReportRepo struct {
	mu      sync.Mutex
	reports map[string]*moderation.Report
}

func newMemoryReportRepo() *memoryReportRepo {
	return &memoryReportRepo{reports: make(map[string]*moderation.Report)}
}

func (repo *memoryReportRepo) Create(_ context.Context, report *moderation.Report) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *report
	repo.reports[report.ID] = &clone
	return nil
}

func (repo *memoryReportRepo) GetByID(_ context.Context, id string) (*moderation.Report, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	report, ok := repo.reports[id]
	if !ok {
		return nil, apperr.NotFound("Report")
	}
	clone := *report
	return &clone, nil
}

func (repo *memoryReportRepo) List(_ context.Context, status string, params pagination.Params) ([]*moderation.Report, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	matched := make([]*moderation.Report, 0)
	for _, report := range repo.reports {
		if status == "" || report.Status == status {
			clone := *report
			matched = append(matched, &clone)
		}
	}
	return matched, len(matched), nil
}

func (repo *memoryReportRepo) Update(_ context.Context, report *moderation.Report) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *report
	repo.reports[report.ID] = &clone
	return nil
}

type fakeDirectory struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func (dir *fakeDirectory) FindByID(_ context.Context, id string) (*auth.User, error) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	user, ok := dir.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (dir *fakeDirectory) SetActive(_ context.Context, userID string, active bool) error {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	dir.users[userID].IsActive = active
	return nil
}

type fakeAuditor struct {
	mu      sync.Mutex
	actions []string
}

func (auditor *fakeAuditor) RecordFrom(_, action string, _ map[string]interface{}, _ string) {
	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	auditor.actions = append(auditor.actions, action)
}

func newService(t *testing.T) (*moderation.Service, *memoryReportRepo, *fakeDirectory, *fakeAuditor) {
	t.Helper()
	repo := newMemoryReportRepo()
	dir := &fakeDirectory{users: map[string]*auth.User{
		"member-1": {ID: "member-1", Role: sec.RoleMember, IsActive: true},
		"member-2": {ID: "member-2", Role: sec.RoleMember, IsActive: true},
		"mod-1":    {ID: "mod-1", Role: sec.RoleModerator, IsActive: true},
		"admin-1":  {ID: "admin-1", Role: sec.RoleAdmin, IsActive: true},
	}}
	auditor := &fakeAuditor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return moderation.NewService(repo, dir, auditor, logger), repo, dir, auditor
}

func TestService_ReportLifecycle(t *testing.T) {
	service, _, _, auditor := newService(t)
	ctx := context.Background()
	reporter := moderation.Actor{UserID: "member-1", Role: sec.RoleMember}
	mod := moderation.Actor{UserID: "mod-1", Role: sec.RoleModerator}

	report, err := service.CreateReport(ctx, reporter, moderation.CreateReportInput{
		TargetType: moderation.TargetPost,
		TargetID:   "post-1",
		Reason:     "spam",
	})
	require.NoError(t, err)
	assert.Equal(t, moderation.StatusOpen, report.Status)

	open, _, err := service.ListReports(ctx, moderation.StatusOpen, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, open, 1)

	resolved, err := service.ResolveReport(ctx, mod, report.ID, moderation.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, moderation.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "mod-1", *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Contains(t, auditor.actions, "Report resolved")

	// Resolution is terminal.
	_, err = service.ResolveReport(ctx, mod, report.ID, moderation.StatusDismissed)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestService_BanUser(t *testing.T) {
	service, _, dir, auditor := newService(t)
	ctx := context.Background()
	mod := moderation.Actor{UserID: "mod-1", Role: sec.RoleModerator}

	require.NoError(t, service.BanUser(ctx, mod, "member-1"))
	assert.False(t, dir.users["member-1"].IsActive)
	assert.Contains(t, auditor.actions, "User banned")

	// Banning twice conflicts.
	err := service.BanUser(ctx, mod, "member-1")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	require.NoError(t, service.UnbanUser(ctx, mod, "member-1"))
	assert.True(t, dir.users["member-1"].IsActive)
	assert.Contains(t, auditor.actions, "User unbanned")
}

func TestService_BanUser_Guards(t *testing.T) {
	service, _, dir, _ := newService(t)
	ctx := context.Background()
	mod := moderation.Actor{UserID: "mod-1", Role: sec.RoleModerator}

	// Admins are untouchable.
	err := service.BanUser(ctx, mod, "admin-1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.True(t, dir.users["admin-1"].IsActive)

	// Self-ban is rejected.
	err = service.BanUser(ctx, mod, "mod-1")
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	// Unbanning an active user conflicts.
	err = service.UnbanUser(ctx, mod, "member-2")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}
