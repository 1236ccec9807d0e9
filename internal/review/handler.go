// AngelaMos | 2026
// handler.go

package review

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

// RegisterRoutes mounts relative to /reviews.
func (h *Handler) RegisterRoutes(r chi.Router, g middleware.Guards) {
	r.Group(func(r chi.Router) {
		r.Use(g.OptionalAuth)

		r.Get("/course/{courseID}", h.CourseReviews)
		r.Get("/course/{courseID}/stats", h.Stats)
		r.Get("/{reviewID}", h.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(g.Authenticate)

		r.Post("/", h.Create)
		r.Get("/my-reviews", h.MyReviews)
		r.Get("/course/{courseID}/check-review", h.CheckReview)
		r.Put("/{reviewID}", h.Update)
		r.Delete("/{reviewID}", h.Delete)

		r.Group(func(r chi.Router) {
			r.Use(g.Admin)
			h.registerModeration(r)
		})
	})
}

// RegisterAdminRoutes expects r to be already guarded by admin middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.Pending)
		r.Delete("/{reviewID}", h.Delete)
		h.registerModeration(r)
	})
}

func (h *Handler) registerModeration(r chi.Router) {
	r.Get("/pending", h.Pending)
	r.Post("/{reviewID}/approve", h.Approve)
	r.Post("/{reviewID}/reject", h.Reject)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	rv, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToReviewResponse(rv))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReviewID(w, r)
	if !ok {
		return
	}

	rv, err := h.service.Get(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponse(rv))
}

func (h *Handler) CourseReviews(w http.ResponseWriter, r *http.Request) {
	courseID, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	params := core.ListParamsFromRequest(r)

	reviews, total, err := h.service.CourseReviews(r.Context(), courseID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToReviewResponseList(reviews), params.Page, params.PageSize, total)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	courseID, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	stats, err := h.service.Stats(r.Context(), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToStatsResponse(stats))
}

func (h *Handler) MyReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.MyReviews(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponseList(reviews))
}

func (h *Handler) CheckReview(w http.ResponseWriter, r *http.Request) {
	courseID, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	rv, err := h.service.CheckReview(r.Context(), middleware.GetUserID(r.Context()), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := CheckReviewResponse{HasReviewed: rv != nil}
	if rv != nil {
		out := ToReviewResponse(rv)
		resp.Review = &out
	}
	core.OK(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReviewID(w, r)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	rv, err := h.service.Update(r.Context(), middleware.GetActor(r.Context()), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponse(rv))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReviewID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetActor(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	params := core.ListParamsFromRequest(r)

	reviews, total, err := h.service.Pending(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToReviewResponseList(reviews), params.Page, params.PageSize, total)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReviewID(w, r)
	if !ok {
		return
	}

	rv, err := h.service.Approve(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponse(rv))
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReviewID(w, r)
	if !ok {
		return
	}

	if err := h.service.Reject(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func parseReviewID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := core.ParseID(r, "reviewID")
	if err != nil {
		core.BadRequest(w, "invalid review id")
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAlreadyReviewed):
		core.JSONError(w, core.BusinessRuleError("you have already reviewed this course"))
	case errors.Is(err, ErrNotEnrolled):
		core.Forbidden(w, "you must be enrolled in this course to review it")
	case errors.Is(err, ErrCourseNotFound):
		core.NotFound(w, "course")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not own this review")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "review")
	default:
		core.JSONError(w, err)
	}
}
