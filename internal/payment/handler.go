// AngelaMos | 2026
// handler.go

package payment

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

// RegisterRoutes mounts relative to /payments.
func (h *Handler) RegisterRoutes(r chi.Router, g middleware.Guards) {
	r.Group(func(r chi.Router) {
		r.Use(g.Authenticate)

		r.Post("/", h.Create)
		r.Get("/my-payments", h.MyPayments)
		r.Get("/course/{courseID}", h.CoursePayments)
		r.With(g.Instructor).Get("/revenue", h.Revenue)

		r.Group(func(r chi.Router) {
			r.Use(g.Admin)

			r.Get("/status/{status}", h.ByStatus)
			r.Get("/revenue-report", h.RevenueReport)
			r.Put("/{paymentID}/status", h.UpdateStatus)
			r.Post("/{paymentID}/process", h.Process)
			r.Post("/{paymentID}/refund", h.Refund)
		})

		r.Get("/{paymentID}", h.Get)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	p, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ToPaymentResponse(p)
	resp.PaymentURL = h.service.PaymentURL(p.ID)
	core.Created(w, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePaymentID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPaymentResponse(p))
}

func (h *Handler) MyPayments(w http.ResponseWriter, r *http.Request) {
	params := core.ListParamsFromRequest(r)

	payments, total, err := h.service.MyPayments(r.Context(), middleware.GetUserID(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToPaymentResponseList(payments), params.Page, params.PageSize, total)
}

func (h *Handler) CoursePayments(w http.ResponseWriter, r *http.Request) {
	courseID, err := core.ParseID(r, "courseID")
	if err != nil {
		core.BadRequest(w, "invalid course id")
		return
	}

	params := core.ListParamsFromRequest(r)

	payments, total, err := h.service.CoursePayments(
		r.Context(),
		middleware.GetActor(r.Context()),
		courseID,
		params,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToPaymentResponseList(payments), params.Page, params.PageSize, total)
}

func (h *Handler) ByStatus(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")
	if !ValidStatus(status) {
		core.BadRequest(w, "invalid payment status")
		return
	}

	params := core.ListParamsFromRequest(r)

	payments, total, err := h.service.ByStatus(r.Context(), status, params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToPaymentResponseList(payments), params.Page, params.PageSize, total)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePaymentID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	p, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPaymentResponse(p))
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePaymentID(w, r)
	if !ok {
		return
	}

	var req ProcessRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	p, err := h.service.Process(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPaymentResponse(p))
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePaymentID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Refund(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPaymentResponse(p))
}

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseRevenueFilter(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	total, err := h.service.Revenue(r.Context(), middleware.GetActor(r.Context()), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, RevenueResponse{Total: total})
}

func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseRevenueFilter(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	payments, err := h.service.RevenueReport(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToRevenueReportResponse(payments))
}

// ParseRevenueFilter reads instructor_id, from and to query parameters.
func ParseRevenueFilter(r *http.Request) (RevenueFilter, error) {
	from, err := core.ParseTimeQuery(r, "from")
	if err != nil {
		return RevenueFilter{}, core.ValidationError("invalid from date")
	}

	to, err := core.ParseTimeQuery(r, "to")
	if err != nil {
		return RevenueFilter{}, core.ValidationError("invalid to date")
	}

	if from != nil && to != nil && to.Before(*from) {
		return RevenueFilter{}, core.ValidationError("to date is before from date")
	}

	return RevenueFilter{
		InstructorID: core.ParseInt64Query(r, "instructor_id"),
		From:         from,
		To:           to,
	}, nil
}

func parsePaymentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := core.ParseID(r, "paymentID")
	if err != nil {
		core.BadRequest(w, "invalid payment id")
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNegativeAmount):
		core.BadRequest(w, "amount cannot be negative")
	case errors.Is(err, ErrMissingAmount):
		core.BadRequest(w, "amount is required")
	case errors.Is(err, ErrNotRefundable):
		core.JSONError(w, core.BusinessRuleError("only completed payments can be refunded"))
	case errors.Is(err, ErrNotProcessable):
		core.JSONError(w, core.BusinessRuleError("payment has already been settled"))
	case errors.Is(err, ErrCourseNotFound):
		core.NotFound(w, "course")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not have access to this payment")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "payment")
	default:
		core.JSONError(w, err)
	}
}
