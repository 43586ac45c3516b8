// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package audit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baonguyen/agora/internal/platform/middleware"
	"github.com/baonguyen/agora/internal/platform/respond"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/pkg/pagination"
	"github.com/baonguyen/agora/pkg/slice"
)

// Handler exposes the read-only moderation view over the audit trail.
type Handler struct {
	repository EventRepository
}

// NewHandler constructs a new [Handler] with its repository dependency.
func NewHandler(repository EventRepository) *Handler {
	return &Handler{repository: repository}
}

// Routes returns a [chi.Router] for the admin audit endpoints.
//
// # Endpoints
//   - GET / : Paginated event listing, newest first. Admin only.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleAdmin))
	router.Get("/", handler.list)
	return router
}

// eventResponse is the transport shape of an audit event.
type eventResponse struct {
	ID        string         `json:"id"`
	ActorID   string         `json:"actor_id,omitempty"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	CreatedAt string         `json:"created_at"`
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	events, total, err := handler.repository.List(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload := slice.Map(events, func(event *Event) eventResponse {
		return eventResponse{
			ID:        event.ID,
			ActorID:   event.ActorID,
			Action:    event.Action,
			Metadata:  event.Metadata,
			IPAddress: event.IPAddress,
			CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339),
		}
	})

	respond.Paginated(writer, payload, pagination.NewMeta(params.Page, params.Limit, total))
}
