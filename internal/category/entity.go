// AngelaMos | 2026
// entity.go

package category

import (
	"time"
)

type Category struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	ParentID    *int64    `db:"parent_id"`
	IconURL     *string   `db:"icon_url"`
	IsActive    bool      `db:"is_active"`
	CourseCount int       `db:"course_count"`
	CreatedAt   time.Time `db:"created_at"`
}
