// AngelaMos | 2026
// entity.go

package role

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type Role struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description *string        `db:"description"`
	Permissions types.JSONText `db:"permissions"`
	CreatedAt   time.Time      `db:"created_at"`
}

type RoleResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Permissions types.JSONText `json:"permissions"`
	CreatedAt   time.Time      `json:"created_at"`
}

func ToRoleResponse(r *Role) RoleResponse {
	perms := r.Permissions
	if len(perms) == 0 {
		perms = types.JSONText("[]")
	}
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
	}
}
