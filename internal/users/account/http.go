// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baonguyen/agora/internal/platform/middleware"
	requestutil "github.com/baonguyen/agora/internal/platform/request"
	"github.com/baonguyen/agora/internal/platform/respond"
	"github.com/baonguyen/agora/internal/platform/validate"
	"github.com/baonguyen/agora/internal/users/auth"
)

// Handler implements profile-related HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with profile routes.
//
// # Endpoints
//   - GET    /{username} : Public profile resolution.
//   - GET    /me         : Private profile of the authenticated user.
//   - PATCH  /me         : Partial profile update.
//   - DELETE /me         : Soft-deletes the authenticated account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{username}", handler.getPublicProfile)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.getProfile)
		r.Patch("/me", handler.updateProfile)
		r.Delete("/me", handler.deleteAccount)
	})

	return router
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
}

/*
GetPublicProfile resolves a member's public view.

GET /api/v1/users/{username}

Response:
  - 200: PublicProfile
  - 404: ErrNotFound: Unknown username
*/
func (handler *Handler) getPublicProfile(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")

	profile, err := handler.accountService.GetPublicProfile(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
GetProfile returns the authenticated user's private profile.

GET /api/v1/users/me

Response:
  - 200: auth.User
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateProfile applies a partial update to the authenticated profile.

PATCH /api/v1/users/me

Request:
  - Body: updateProfileRequest (DisplayName)

Response:
  - 200: auth.User: Updated profile
  - 400: ErrInvalidJSON: Validation failure
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.DisplayName != nil {
		validator := &validate.Validator{}
		validator.MaxLen(auth.FieldDisplayName, *input.DisplayName, 80)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DeleteAccount soft-deletes the authenticated account.

DELETE /api/v1/users/me

Response:
  - 204: No Content: Account removed
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
