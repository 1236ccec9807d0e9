// AngelaMos | 2026
// handler.go

package enrollment

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

// RegisterRoutes mounts relative to /enrollments.
func (h *Handler) RegisterRoutes(r chi.Router, g middleware.Guards) {
	r.Group(func(r chi.Router) {
		r.Use(g.Authenticate)

		r.Post("/", h.Enroll)
		r.Get("/my-enrollments", h.MyEnrollments)
		r.Put("/lessons/progress", h.UpdateProgress)

		r.Route("/course/{courseID}", func(r chi.Router) {
			r.Get("/progress", h.Progress)
			r.Get("/lessons", h.LessonProgress)
			r.Post("/complete", h.Complete)
			r.Delete("/", h.Unenroll)
			r.Get("/check-enrollment", h.CheckEnrollment)
			r.Get("/students", h.Students)
		})

		r.Get("/{enrollmentID}", h.Get)
	})
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	e, err := h.service.Enroll(r.Context(), middleware.GetActor(r.Context()), req.CourseID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToEnrollmentResponse(e))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "enrollmentID")
	if err != nil {
		core.BadRequest(w, "invalid enrollment id")
		return
	}

	e, err := h.service.Get(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToEnrollmentResponse(e))
}

func (h *Handler) MyEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.service.MyEnrollments(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToEnrollmentResponseList(enrollments))
}

func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req UpdateProgressRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	result, err := h.service.UpdateProgress(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ProgressUpdateResponse{
		Lesson:             ToLessonProgressResponse(result.Lesson),
		ProgressPercentage: result.Percentage,
		CompletedLessons:   result.Completed,
		TotalLessons:       result.Total,
	})
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	e, rows, err := h.service.Progress(r.Context(), middleware.GetUserID(r.Context()), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCourseProgressResponse(e, rows))
}

func (h *Handler) LessonProgress(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	progress, err := h.service.LessonProgress(r.Context(), middleware.GetUserID(r.Context()), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToLessonProgressResponseList(progress))
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	e, err := h.service.Complete(r.Context(), middleware.GetUserID(r.Context()), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToEnrollmentResponse(e))
}

func (h *Handler) Unenroll(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Unenroll(r.Context(), middleware.GetUserID(r.Context()), courseID); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) CheckEnrollment(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	enrolled, err := h.service.CheckEnrollment(r.Context(), middleware.GetUserID(r.Context()), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, CheckEnrollmentResponse{IsEnrolled: enrolled})
}

func (h *Handler) Students(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	params := core.ListParamsFromRequest(r)

	enrollments, total, err := h.service.Students(
		r.Context(),
		middleware.GetActor(r.Context()),
		courseID,
		params,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToEnrollmentResponseList(enrollments), params.Page, params.PageSize, total)
}

func parseCourseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAlreadyEnrolled):
		core.JSONError(w, core.BusinessRuleError("already enrolled in this course"))
	case errors.Is(err, ErrOwnCourse):
		core.JSONError(w, core.BusinessRuleError("instructors cannot enroll in their own course"))
	case errors.Is(err, ErrNotEnrolled):
		core.Forbidden(w, "you are not enrolled in this course")
	case errors.Is(err, ErrCourseNotFound):
		core.NotFound(w, "course")
	case errors.Is(err, ErrLessonNotFound):
		core.NotFound(w, "lesson")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not have access to this enrollment")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "enrollment")
	default:
		core.JSONError(w, err)
	}
}
