// AngelaMos | 2026
// handler.go

package user

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

		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/{userID}", h.GetPublicProfile)

		r.Group(func(r chi.Router) {
			r.Use(g.Admin)

			r.Get("/", h.ListUsers)
			r.Get("/role/{role}", h.ListByRole)
			r.Post("/deactivate/{userID}", h.Deactivate)
			r.Post("/activate/{userID}", h.Activate)
		})
	})
}

// RegisterAdminRoutes expects r to be already guarded by admin middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Post("/{userID}/activate", h.Activate)
		r.Post("/{userID}/deactivate", h.Deactivate)
		r.Delete("/{userID}", h.DeleteUser)
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	user, err := h.service.UpdateProfile(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "userID")
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPublicProfileResponse(user))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "userID")
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		ListParams: core.ListParamsFromRequest(r),
		Search:     r.URL.Query().Get("search"),
		Role:       r.URL.Query().Get("role"),
		IsActive:   core.ParseBoolQuery(r, "is_active"),
	}

	h.list(w, r, params)
}

func (h *Handler) ListByRole(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		ListParams: core.ListParamsFromRequest(r),
		Role:       chi.URLParam(r, "role"),
	}

	h.list(w, r, params)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, params ListUsersParams) {
	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToUserResponseList(users), params.Page, params.PageSize, total)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := core.ParseID(r, "userID")
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	user, err := h.service.SetActive(r.Context(), middleware.GetActor(r.Context()), id, active)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "userID")
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	if err := h.service.DeleteUser(r.Context(), middleware.GetActor(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, ErrSelfDelete):
		core.JSONError(w, core.BusinessRuleError("you cannot delete your own account"))
	case errors.Is(err, ErrSelfDeactivate):
		core.JSONError(w, core.BusinessRuleError("you cannot deactivate your own account"))
	case errors.Is(err, ErrUnknownRole):
		core.BadRequest(w, "unknown role")
	case errors.Is(err, core.ErrForeignKey):
		core.JSONError(w, core.BusinessRuleError(
			"user has courses, enrollments or payments and cannot be deleted",
		))
	default:
		core.JSONError(w, err)
	}
}
