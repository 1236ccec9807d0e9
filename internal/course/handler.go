// AngelaMos | 2026
// handler.go

package course

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

		r.Get("/", h.ListPublished)
		r.Get("/{courseID}", h.GetDetail)
		r.Get("/{courseID}/sections", h.ListSections)
	})

	r.Group(func(r chi.Router) {
		r.Use(g.Authenticate, g.Instructor)

		r.Get("/my-courses", h.MyCourses)
		r.Post("/", h.Create)
		r.Put("/{courseID}", h.Update)
		r.Delete("/{courseID}", h.Delete)
		r.Post("/{courseID}/publish", h.Publish)
		r.Post("/{courseID}/unpublish", h.Unpublish)

		r.Post("/{courseID}/sections", h.CreateSection)
		r.Put("/sections/{sectionID}", h.UpdateSection)
		r.Delete("/sections/{sectionID}", h.DeleteSection)
	})
}

// RegisterAdminRoutes expects r to be already guarded by admin middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListAll)
		r.Post("/{courseID}/publish", h.Publish)
		r.Post("/{courseID}/unpublish", h.Unpublish)
		r.Delete("/{courseID}", h.Delete)
	})
	r.Get("/top-courses", h.TopCourses)
}

func (h *Handler) listParams(r *http.Request) (ListCoursesParams, bool) {
	params := ListCoursesParams{
		ListParams:   core.ListParamsFromRequest(r),
		Search:       r.URL.Query().Get("search"),
		CategoryID:   core.ParseInt64Query(r, "category_id"),
		Difficulty:   r.URL.Query().Get("difficulty"),
		InstructorID: core.ParseInt64Query(r, "instructor_id"),
	}

	switch params.Difficulty {
	case "", DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return params, true
	default:
		return params, false
	}
}

func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	params, ok := h.listParams(r)
	if !ok {
		core.BadRequest(w, "invalid difficulty filter")
		return
	}

	courses, total, err := h.service.ListPublished(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToCourseResponseList(courses), params.Page, params.PageSize, total)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	params, ok := h.listParams(r)
	if !ok {
		core.BadRequest(w, "invalid difficulty filter")
		return
	}
	params.Published = core.ParseBoolQuery(r, "is_published")

	courses, total, err := h.service.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToCourseResponseList(courses), params.Page, params.PageSize, total)
}

func (h *Handler) MyCourses(w http.ResponseWriter, r *http.Request) {
	params := core.ListParamsFromRequest(r)

	courses, total, err := h.service.MyCourses(r.Context(), middleware.GetActor(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToCourseResponseList(courses), params.Page, params.PageSize, total)
}

func (h *Handler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	detail, err := h.service.GetDetail(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCourseDetailResponse(detail))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToCourseResponse(c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	var req UpdateCourseRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	c, err := h.service.Update(r.Context(), middleware.GetActor(r.Context()), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCourseResponse(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
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
	id, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	c, err := h.service.SetPublished(r.Context(), middleware.GetActor(r.Context()), id, published)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCourseResponse(c))
}

func (h *Handler) TopCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.TopCourses(r.Context(), core.ParseIntQuery(r, "count", 10))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToTopCourseResponseList(courses))
}

func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	sections, err := h.service.ListSections(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToSectionResponseList(sections))
}

func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	var req CreateSectionRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	section, err := h.service.CreateSection(r.Context(), middleware.GetActor(r.Context()), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToSectionResponse(section))
}

func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "sectionID")
	if err != nil {
		core.BadRequest(w, "invalid section id")
		return
	}

	var req UpdateSectionRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	section, err := h.service.UpdateSection(r.Context(), middleware.GetActor(r.Context()), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToSectionResponse(section))
}

func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "sectionID")
	if err != nil {
		core.BadRequest(w, "invalid section id")
		return
	}

	if err := h.service.DeleteSection(r.Context(), middleware.GetActor(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNegativePrice):
		core.BadRequest(w, "price cannot be negative")
	case errors.Is(err, ErrCategoryNotFound):
		core.JSONError(w, core.BusinessRuleError("category does not exist"))
	case errors.Is(err, ErrHasPayments):
		core.JSONError(w, core.BusinessRuleError("course has payments and cannot be deleted"))
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not own this course")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "course")
	default:
		core.JSONError(w, err)
	}
}
