package post

import (
	"context"
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

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listPosts)
	router.Get("/by-slug/{slug}", handler.getPostBySlug)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.createPost)
		r.Patch("/{id}", handler.updatePost)
		r.Delete("/{id}", handler.deletePost)
		r.Put("/{id}/pin", handler.pinPost)
		r.Delete("/{id}/pin", handler.unpinPost)
		r.Put("/{id}/lock", handler.lockPost)
		r.Delete("/{id}/lock", handler.unlockPost)
	})
}

type createPostRequest struct {
	CategoryID string `json:"category_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

type updatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func actorFromRequest(request *http.Request) (Actor, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: claims.UserID, Role: sec.UserRole(claims.Role)}, nil
}

func (handler *Handler) listPosts(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := ListFilter{CategoryID: request.URL.Query().Get("category_id")}

	posts, meta, err := handler.service.ListPosts(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, posts, meta)
}

func (handler *Handler) getPostBySlug(writer http.ResponseWriter, request *http.Request) {
	slug := chi.URLParam(request, "slug")

	post, err := handler.service.GetPostBySlug(request.Context(), slug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

func (handler *Handler) createPost(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createPostRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID("category_id", input.CategoryID)
	validator.Required("title", input.Title)
	validator.MaxLen("title", input.Title, 200)
	validator.Required("body", input.Body)
	validator.MaxLen("body", input.Body, 50000)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.CreatePost(request.Context(), actor, CreatePostInput{
		CategoryID: input.CategoryID,
		Title:      input.Title,
		Body:       input.Body,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

func (handler *Handler) updatePost(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updatePostRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Title != nil {
		validator.Required("title", *input.Title)
		validator.MaxLen("title", *input.Title, 200)
	}
	if input.Body != nil {
		validator.Required("body", *input.Body)
		validator.MaxLen("body", *input.Body, 50000)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.UpdatePost(request.Context(), actor, requestutil.ID(request, "id"), UpdatePostInput{
		Title: input.Title,
		Body:  input.Body,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

func (handler *Handler) deletePost(writer http.ResponseWriter, request *http.Request) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeletePost(request.Context(), actor, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) pinPost(writer http.ResponseWriter, request *http.Request) {
	handler.moderate(writer, request, handler.service.SetPinned, true)
}

func (handler *Handler) unpinPost(writer http.ResponseWriter, request *http.Request) {
	handler.moderate(writer, request, handler.service.SetPinned, false)
}

func (handler *Handler) lockPost(writer http.ResponseWriter, request *http.Request) {
	handler.moderate(writer, request, handler.service.SetLocked, true)
}

func (handler *Handler) unlockPost(writer http.ResponseWriter, request *http.Request) {
	handler.moderate(writer, request, handler.service.SetLocked, false)
}

type moderateFunc func(ctx context.Context, actor Actor, id string, value bool) (*Post, error)

func (handler *Handler) moderate(writer http.ResponseWriter, request *http.Request, apply moderateFunc, value bool) {
	actor, err := actorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := apply(request.Context(), actor, requestutil.ID(request, "id"), value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}
