// AngelaMos | 2026
// handler.go

package category

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts relative to /courses.
func (h *Handler) RegisterRoutes(r chi.Router, g middleware.Guards) {
	r.Get("/categories", h.ListActive)
	r.Get("/categories/{categoryID}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(g.Authenticate, g.Admin)

		r.Post("/categories", h.Create)
		r.Put("/categories/{categoryID}", h.Update)
		r.Delete("/categories/{categoryID}", h.Delete)
	})
}

// RegisterAdminRoutes expects r to be already guarded by admin middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListAll)
		r.Post("/", h.Create)
		r.Get("/{categoryID}", h.Get)
		r.Put("/{categoryID}", h.Update)
		r.Delete("/{categoryID}", h.Delete)
	})
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	categories, err := h.service.List(r.Context(), ListParams{
		ParentID:   core.ParseInt64Query(r, "parent_id"),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCategoryResponseList(categories))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "categoryID")
	if err != nil {
		core.BadRequest(w, "invalid category id")
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCategoryResponse(c))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToCategoryResponse(c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "categoryID")
	if err != nil {
		core.BadRequest(w, "invalid category id")
		return
	}

	var req UpdateCategoryRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCategoryResponse(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "categoryID")
	if err != nil {
		core.BadRequest(w, "invalid category id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrParentNotFound):
		core.JSONError(w, core.BusinessRuleError("parent category does not exist"))
	case errors.Is(err, ErrSelfParent):
		core.JSONError(w, core.BusinessRuleError("a category cannot be its own parent"))
	case errors.Is(err, ErrParentCycle):
		core.JSONError(w, core.BusinessRuleError("parent cannot be a subcategory of this category"))
	case errors.Is(err, ErrInUse):
		core.JSONError(w, core.BusinessRuleError(
			"category has courses or subcategories and cannot be deleted",
		))
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("name"))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "category")
	default:
		core.JSONError(w, err)
	}
}
