// AngelaMos | 2026
// dto.go

package category

import (
	"time"
)

type CreateCategoryRequest struct {
	Name        string  `json:"name"        validate:"required,notblank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ParentID    *int64  `json:"parent_id"   validate:"omitempty,gt=0"`
	IconURL     *string `json:"icon_url"    validate:"omitempty,url,max=500"`
}

// UpdateCategoryRequest replaces only the fields present. Send a
// parent_id of 0 to detach from the current parent.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,notblank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ParentID    *int64  `json:"parent_id"   validate:"omitempty,gte=0"`
	IconURL     *string `json:"icon_url"    validate:"omitempty,url,max=500"`
	IsActive    *bool   `json:"is_active"`
}

type ListParams struct {
	ParentID   *int64
	ActiveOnly bool
}

type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ParentID    *int64    `json:"parent_id"`
	IconURL     *string   `json:"icon_url"`
	IsActive    bool      `json:"is_active"`
	CourseCount int       `json:"course_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToCategoryResponse(c *Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		IconURL:     c.IconURL,
		IsActive:    c.IsActive,
		CourseCount: c.CourseCount,
		CreatedAt:   c.CreatedAt,
	}
}

func ToCategoryResponseList(categories []Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, ToCategoryResponse(&categories[i]))
	}
	return out
}
