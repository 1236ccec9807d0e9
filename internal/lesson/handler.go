// AngelaMos | 2026
// handler.go

package lesson

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
	r.Group(func(r chi.Router) {
		r.Use(g.OptionalAuth)

		r.Get("/sections/{sectionID}/lessons", h.ListBySection)
		r.Get("/lessons/{lessonID}", h.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(g.Authenticate, g.Instructor)

		r.Post("/sections/{sectionID}/lessons", h.Create)
		r.Put("/lessons/{lessonID}", h.Update)
		r.Delete("/lessons/{lessonID}", h.Delete)
		r.Post("/lessons/{lessonID}/publish", h.Publish)
		r.Post("/lessons/{lessonID}/unpublish", h.Unpublish)
		r.Put("/lessons/{lessonID}/preview", h.SetPreview)
	})
}

func (h *Handler) ListBySection(w http.ResponseWriter, r *http.Request) {
	sectionID, err := core.ParseID(r, "sectionID")
	if err != nil {
		core.BadRequest(w, "invalid section id")
		return
	}

	listing, err := h.service.ListBySection(r.Context(), middleware.GetActor(r.Context()), sectionID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToLessonResponseList(listing.Lessons, listing.Unlocked))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "lessonID")
	if err != nil {
		core.BadRequest(w, "invalid lesson id")
		return
	}

	l, err := h.service.Access(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToLessonResponse(l))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sectionID, err := core.ParseID(r, "sectionID")
	if err != nil {
		core.BadRequest(w, "invalid section id")
		return
	}

	var req CreateLessonRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	l, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), sectionID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToLessonResponse(l))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "lessonID")
	if err != nil {
		core.BadRequest(w, "invalid lesson id")
		return
	}

	var req UpdateLessonRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	l, err := h.service.Update(r.Context(), middleware.GetActor(r.Context()), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToLessonResponse(l))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "lessonID")
	if err != nil {
		core.BadRequest(w, "invalid lesson id")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetActor(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *Handler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	id, err := core.ParseID(r, "lessonID")
	if err != nil {
		core.BadRequest(w, "invalid lesson id")
		return
	}

	l, err := h.service.SetPublished(r.Context(), middleware.GetActor(r.Context()), id, published)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToLessonResponse(l))
}

func (h *Handler) SetPreview(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "lessonID")
	if err != nil {
		core.BadRequest(w, "invalid lesson id")
		return
	}

	var req PreviewRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	l, err := h.service.SetPreview(r.Context(), middleware.GetActor(r.Context()), id, *req.IsPreview)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToLessonResponse(l))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "sign in to open this lesson")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not have access to this lesson")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "lesson")
	default:
		core.JSONError(w, err)
	}
}
