// AngelaMos | 2026
// handler.go

package resource

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
	r.With(g.OptionalAuth).Get("/lessons/{lessonID}/resources", h.ListByLesson)
	r.With(g.Authenticate).Get("/resources/{resourceID}/download", h.Download)

	r.Group(func(r chi.Router) {
		r.Use(g.Authenticate, g.Instructor)

		r.Post("/lessons/{lessonID}/resources", h.Create)
		r.Delete("/resources/{resourceID}", h.Delete)
	})
}

func (h *Handler) ListByLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, err := core.ParseID(r, "lessonID")
	if err != nil {
		core.BadRequest(w, "invalid lesson id")
		return
	}

	resources, err := h.service.ListByLesson(r.Context(), middleware.GetActor(r.Context()), lessonID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToResourceResponseList(resources))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	lessonID, err := core.ParseID(r, "lessonID")
	if err != nil {
		core.BadRequest(w, "invalid lesson id")
		return
	}

	var req CreateResourceRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	res, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), lessonID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToResourceResponse(res))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "resourceID")
	if err != nil {
		core.BadRequest(w, "invalid resource id")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetActor(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "resourceID")
	if err != nil {
		core.BadRequest(w, "invalid resource id")
		return
	}

	res, err := h.service.Download(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToResourceResponse(res))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "sign in to access this resource")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not have access to this resource")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "resource")
	default:
		core.JSONError(w, err)
	}
}
