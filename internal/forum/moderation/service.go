package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/baonguyen/agora/internal/audit"
	"github.com/baonguyen/agora/internal/platform/apperr"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/internal/users/auth"
	"github.com/baonguyen/agora/pkg/pagination"
	"github.com/baonguyen/agora/pkg/uuidv7"
)

// AccountDirectory is the slice of the user repository moderation needs for
// ban and unban.
type AccountDirectory interface {
	FindByID(context context.Context, id string) (*auth.User, error)
	SetActive(context context.Context, userID string, active bool) error
}

// Auditor records moderation actions on the audit trail. Satisfied by
// [audit.Recorder].
type Auditor interface {
	RecordFrom(actorID, action string, metadata map[string]interface{}, ipAddress string)
}

type Service struct {
	repo     Repository
	accounts AccountDirectory
	auditor  Auditor
	logger   *slog.Logger
}

func NewService(repo Repository, accounts AccountDirectory, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		auditor:  auditor,
		logger:   logger,
	}
}

type Actor struct {
	UserID string
	Role   sec.UserRole
}

type CreateReportInput struct {
	TargetType string
	TargetID   string
	Reason     string
}

func (service *Service) CreateReport(context context.Context, actor Actor, input CreateReportInput) (*Report, error) {
	report := &Report{
		ID:         uuidv7.New(),
		ReporterID: actor.UserID,
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		Reason:     input.Reason,
		Status:     StatusOpen,
		CreatedAt:  time.Now(),
	}

	if err := service.repo.Create(context, report); err != nil {
		return nil, err
	}

	service.logger.Info("moderation_report_created",
		slog.String("report_id", report.ID),
		slog.String("target_type", input.TargetType),
		slog.String("target_id", input.TargetID),
	)

	return report, nil
}

func (service *Service) ListReports(context context.Context, status string, params pagination.Params) ([]*Report, pagination.Meta, error) {
	reports, total, err := service.repo.List(context, status, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return reports, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// ResolveReport closes an open report as resolved or dismissed. Resolution is
// terminal, a closed report cannot be reopened.
func (service *Service) ResolveReport(context context.Context, actor Actor, id, status string) (*Report, error) {
	report, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if report.Status != StatusOpen {
		return nil, apperr.Conflict("Report has already been resolved")
	}

	now := time.Now()
	report.Status = status
	report.ResolvedBy = &actor.UserID
	report.ResolvedAt = &now

	if err := service.repo.Update(context, report); err != nil {
		return nil, err
	}

	service.auditor.RecordFrom(actor.UserID, audit.ActionReportResolved, map[string]interface{}{
		"report_id": report.ID,
		"status":    status,
	}, "")

	return report, nil
}

// BanUser deactivates an account. A banned user fails every subsequent login,
// though tokens issued before the ban stay valid until their expiry.
func (service *Service) BanUser(context context.Context, actor Actor, userID string) error {
	if userID == actor.UserID {
		return apperr.Unprocessable("You cannot ban yourself")
	}

	target, err := service.accounts.FindByID(context, userID)
	if err != nil {
		return err
	}
	if target.Role.AtLeast(sec.RoleAdmin) {
		return apperr.Forbidden("Administrators cannot be banned")
	}
	if !target.IsActive {
		return apperr.Conflict("User is already banned")
	}

	if err := service.accounts.SetActive(context, userID, false); err != nil {
		return err
	}

	service.auditor.RecordFrom(actor.UserID, audit.ActionUserBanned, map[string]interface{}{
		"target_user_id": userID,
	}, "")
	service.logger.Warn("user_banned",
		slog.String("target_user_id", userID),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

func (service *Service) UnbanUser(context context.Context, actor Actor, userID string) error {
	target, err := service.accounts.FindByID(context, userID)
	if err != nil {
		return err
	}
	if target.IsActive {
		return apperr.Conflict("User is not banned")
	}

	if err := service.accounts.SetActive(context, userID, true); err != nil {
		return err
	}

	service.auditor.RecordFrom(actor.UserID, audit.ActionUserUnbanned, map[string]interface{}{
		"target_user_id": userID,
	}, "")
	service.logger.Info("user_unbanned",
		slog.String("target_user_id", userID),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}
