package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baonguyen/agora/internal/platform/middleware"
	requestutil "github.com/baonguyen/agora/internal/platform/request"
	"github.com/baonguyen/agora/internal/platform/respond"
	"github.com/baonguyen/agora/internal/platform/sec"
	"github.com/baonguyen/agora/internal/platform/validate"
	"github.com/baonguyen/agora/pkg/pointer"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listCategories)
	router.Get("/{slug}", handler.getCategoryBySlug)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Post("/", handler.createCategory)
		r.Patch("/{id}", handler.updateCategory)
		r.Delete("/{id}", handler.deleteCategory)
	})
}

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.ListCategories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}

func (handler *Handler) getCategoryBySlug(writer http.ResponseWriter, request *http.Request) {
	slug := chi.URLParam(request, "slug")

	category, err := handler.service.GetCategoryBySlug(request.Context(), slug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input categoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	name := pointer.Val(input.Name)

	validator := &validate.Validator{}
	validator.Required("name", name)
	validator.MaxLen("name", name, 100)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.CreateCategory(request.Context(), CreateCategoryInput{
		Name:        name,
		Description: input.Description,
		SortOrder:   pointer.Val(input.SortOrder),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, category)
}

func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	var input categoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Name != nil {
		validator := &validate.Validator{}
		validator.Required("name", *input.Name)
		validator.MaxLen("name", *input.Name, 100)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	category, err := handler.service.UpdateCategory(request.Context(), id, UpdateCategoryInput{
		Name:        input.Name,
		Description: input.Description,
		SortOrder:   input.SortOrder,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, category)
}

func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	if err := handler.service.DeleteCategory(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
