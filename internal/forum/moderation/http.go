package moderation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baonguyen/agora/internal/platform/middleware"
	requestutil "github.com/baonguyen/agora/internal/platform/request"
	"github.com/baonguyen/agora/internal/platform/respond"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/internal/platform/validate"
	"github.com/baonguyen/agora/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterReportRoutes mounts report submission for any authenticated member
// (/reports).
func (handler *Handler) RegisterReportRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.createReport)
	})
}

// RegisterAdminRoutes mounts the moderation queue and ban management
// (/admin). Moderator role required.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleModerator))
		r.Get("/reports", handler.listReports)
		r.Post("/reports/{id}/resolve", handler.resolveReport)
		r.Put("/users/{id}/ban", handler.banUser)
		r.Delete("/users/{id}/ban", handler.unbanUser)
	})
}

type createReportRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Reason     string `json:"reason"`
}

type resolveReportRequest struct {
	Status string `json:"status"`
}

func actorFromRequest(request *http.Request) (Actor, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: claims.UserID, Role: sec.UserRole(claims.Role)}, nil
}

func (handler *Handler) createReport(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createReportRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.OneOf("target_type", input.TargetType, TargetPost, TargetComment, TargetUser)
	validator.UUID("target_id", input.TargetID)
	validator.Required("reason", input.Reason)
	validator.MaxLen("reason", input.Reason, 1000)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.service.CreateReport(request.Context(), actor, CreateReportInput{
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		Reason:     input.Reason,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, report)
}

func (handler *Handler) listReports(writer http.ResponseWriter, request *http.Request) {
	status := request.URL.Query().Get("status")
	if status != "" {
		validator := &validate.Validator{}
		validator.OneOf("status", status, StatusOpen, StatusResolved, StatusDismissed)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	reports, meta, err := handler.service.ListReports(request.Context(), status, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, reports, meta)
}

func (handler *Handler) resolveReport(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input resolveReportRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.OneOf("status", input.Status, StatusResolved, StatusDismissed)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.service.ResolveReport(request.Context(), actor, requestutil.ID(request, "id"), input.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

func (handler *Handler) banUser(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.BanUser(request.Context(), actor, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) unbanUser(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UnbanUser(request.Context(), actor, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
