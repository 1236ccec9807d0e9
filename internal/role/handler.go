// AngelaMos | 2026
// handler.go

package role

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edustack/edustack-api/internal/core"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterAdminRoutes expects r to be already guarded by admin middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{roleID}", h.Get)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.repo.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	out := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, ToRoleResponse(&roles[i]))
	}

	core.OK(w, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(r, "roleID")
	if err != nil {
		core.BadRequest(w, "invalid role id")
		return
	}

	role, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "role")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToRoleResponse(role))
}
