// AngelaMos | 2026
// handler.go

package instructor

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

// RegisterRoutes mounts relative to /users.
func (h *Handler) RegisterRoutes(r chi.Router, g middleware.Guards) {
	r.Group(func(r chi.Router) {
		r.Use(g.Authenticate)

		r.Post("/apply-instructor", h.Apply)
		r.Get("/my-instructor-applications", h.MyApplications)

		r.Group(func(r chi.Router) {
			r.Use(g.Admin)

			r.Get("/instructor-applications/pending", h.ListPending)
			r.Put("/instructor-applications/{applicationID}/review", h.Review)
		})
	})
}

// RegisterAdminRoutes expects r to be already guarded by admin middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/instructor-applications", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/pending", h.ListPending)
		r.Get("/{applicationID}", h.Get)
		r.Put("/{applicationID}/review", h.Review)
	})
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	app, err := h.service.Apply(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToApplicationResponse(app))
}

func (h *Handler) MyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.MyApplications(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToApplicationResponseList(apps))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected:
	default:
		core.BadRequest(w, "invalid status filter")
		return
	}

	h.list(w, r, status)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, StatusPending)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, status string) {
	params := core.ListParamsFromRequest(r)

	apps, total, err := h.service.List(r.Context(), status, params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToApplicationResponseList(apps), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "applicationID")
	if err != nil {
		core.BadRequest(w, "invalid application id")
		return
	}

	app, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToApplicationResponse(app))
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "applicationID")
	if err != nil {
		core.BadRequest(w, "invalid application id")
		return
	}

	var req ReviewRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	app, err := h.service.Review(r.Context(), middleware.GetActor(r.Context()), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToApplicationResponse(app))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "application")
	case errors.Is(err, ErrNotStudent):
		core.JSONError(w, core.BusinessRuleError("only students can apply to become instructors"))
	case errors.Is(err, ErrPendingExists):
		core.JSONError(w, core.BusinessRuleError("you already have a pending application"))
	case errors.Is(err, ErrNotPending):
		core.JSONError(w, core.BusinessRuleError("application has already been reviewed"))
	default:
		core.JSONError(w, err)
	}
}
