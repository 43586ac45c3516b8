package comment

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

// RegisterPostRoutes mounts the routes scoped under a post
// (/posts/{postID}/comments).
func (handler *Handler) RegisterPostRoutes(router chi.Router) {
	router.Get("/", handler.listComments)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.createComment)
	})
}

// RegisterRoutes mounts the routes addressing a comment directly (/comments).
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Patch("/{id}", handler.updateComment)
		r.Delete("/{id}", handler.deleteComment)
	})
}

type createCommentRequest struct {
	ParentID *string `json:"parent_id"`
	Body     string  `json:"body"`
}

type updateCommentRequest struct {
	Body string `json:"body"`
}

func actorFromRequest(request *http.Request) (Actor, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: claims.UserID, Role: sec.UserRole(claims.Role)}, nil
}

func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.ID(request, "postID")
	params := pagination.FromRequest(request)

	comments, meta, err := handler.service.ListComments(request.Context(), postID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, comments, meta)
}

func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("body", input.Body)
	validator.MaxLen("body", input.Body, 10000)
	if input.ParentID != nil {
		validator.UUID("parent_id", *input.ParentID)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.CreateComment(request.Context(), actor, CreateCommentInput{
		PostID:   requestutil.ID(request, "postID"),
		ParentID: input.ParentID,
		Body:     input.Body,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

func (handler *Handler) updateComment(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("body", input.Body)
	validator.MaxLen("body", input.Body, 10000)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.UpdateComment(request.Context(), actor, requestutil.ID(request, "id"), input.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteComment(request.Context(), actor, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
