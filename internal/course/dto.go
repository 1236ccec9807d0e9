// AngelaMos | 2026
// dto.go

package course

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edustack/edustack-api/internal/core"
)

type CreateCourseRequest struct {
	Title           string          `json:"title"            validate:"required,notblank,max=200"`
	Description     *string         `json:"description"      validate:"omitempty,max=10000"`
	Price           decimal.Decimal `json:"price"`
	CategoryID      int64           `json:"category_id"      validate:"required,gt=0"`
	ThumbnailURL    *string         `json:"thumbnail_url"    validate:"omitempty,url,max=500"`
	DifficultyLevel string          `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	DurationHours   int             `json:"duration_hours"   validate:"gte=0"`
	Language        string          `json:"language"         validate:"omitempty,max=10"`
}

type UpdateCourseRequest struct {
	Title           *string          `json:"title"            validate:"omitempty,notblank,max=200"`
	Description     *string          `json:"description"      validate:"omitempty,max=10000"`
	Price           *decimal.Decimal `json:"price"`
	CategoryID      *int64           `json:"category_id"      validate:"omitempty,gt=0"`
	ThumbnailURL    *string          `json:"thumbnail_url"    validate:"omitempty,url,max=500"`
	DifficultyLevel *string          `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	DurationHours   *int             `json:"duration_hours"   validate:"omitempty,gte=0"`
	Language        *string          `json:"language"         validate:"omitempty,max=10"`
}

type CreateSectionRequest struct {
	Title       string  `json:"title"       validate:"required,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	OrderIndex  int     `json:"order_index" validate:"gte=0"`
}

type UpdateSectionRequest struct {
	Title       *string `json:"title"        validate:"omitempty,notblank,max=200"`
	Description *string `json:"description"  validate:"omitempty,max=5000"`
	OrderIndex  *int    `json:"order_index"  validate:"omitempty,gte=0"`
	IsPublished *bool   `json:"is_published"`
}

type ListCoursesParams struct {
	core.ListParams
	Search       string
	CategoryID   *int64
	Difficulty   string
	InstructorID *int64
	Published    *bool
}

type CourseResponse struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Description     *string         `json:"description"`
	Price           decimal.Decimal `json:"price"`
	InstructorID    int64           `json:"instructor_id"`
	InstructorName  string          `json:"instructor_name"`
	CategoryID      int64           `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	ThumbnailURL    *string         `json:"thumbnail_url"`
	IsPublished     bool            `json:"is_published"`
	DifficultyLevel string          `json:"difficulty_level"`
	DurationHours   int             `json:"duration_hours"`
	Language        string          `json:"language"`
	AverageRating   float64         `json:"average_rating"`
	TotalReviews    int             `json:"total_reviews"`
	TotalStudents   int             `json:"total_students"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type SectionResponse struct {
	ID          int64                   `json:"id"`
	CourseID    int64                   `json:"course_id"`
	Title       string                  `json:"title"`
	Description *string                 `json:"description"`
	OrderIndex  int                     `json:"order_index"`
	IsPublished bool                    `json:"is_published"`
	CreatedAt   time.Time               `json:"created_at"`
	Lessons     []LessonOutlineResponse `json:"lessons,omitempty"`
}

type LessonOutlineResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	LessonType      string `json:"lesson_type"`
	DurationMinutes int    `json:"duration_minutes"`
	OrderIndex      int    `json:"order_index"`
	IsPublished     bool   `json:"is_published"`
	IsPreview       bool   `json:"is_preview"`
}

type CourseDetailResponse struct {
	CourseResponse
	Sections             []SectionResponse `json:"sections"`
	TotalDurationMinutes int               `json:"total_duration_minutes"`
	TotalLessons         int               `json:"total_lessons"`
}

type TopCourseResponse struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	InstructorName string          `json:"instructor_name"`
	Price          decimal.Decimal `json:"price"`
	TotalStudents  int             `json:"total_students"`
	AverageRating  float64         `json:"average_rating"`
}

func ToCourseResponse(c *Course) CourseResponse {
	return CourseResponse{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Price:           c.Price,
		InstructorID:    c.InstructorID,
		InstructorName:  c.InstructorName,
		CategoryID:      c.CategoryID,
		CategoryName:    c.CategoryName,
		ThumbnailURL:    c.ThumbnailURL,
		IsPublished:     c.IsPublished,
		DifficultyLevel: c.DifficultyLevel,
		DurationHours:   c.DurationHours,
		Language:        c.Language,
		AverageRating:   c.AverageRating,
		TotalReviews:    c.TotalReviews,
		TotalStudents:   c.TotalStudents,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func ToCourseResponseList(courses []Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, ToCourseResponse(&courses[i]))
	}
	return out
}

func ToSectionResponse(s *Section) SectionResponse {
	return SectionResponse{
		ID:          s.ID,
		CourseID:    s.CourseID,
		Title:       s.Title,
		Description: s.Description,
		OrderIndex:  s.OrderIndex,
		IsPublished: s.IsPublished,
		CreatedAt:   s.CreatedAt,
	}
}

func ToSectionResponseList(sections []Section) []SectionResponse {
	out := make([]SectionResponse, 0, len(sections))
	for i := range sections {
		out = append(out, ToSectionResponse(&sections[i]))
	}
	return out
}

func ToCourseDetailResponse(d *Detail) CourseDetailResponse {
	resp := CourseDetailResponse{
		CourseResponse:       ToCourseResponse(&d.Course),
		Sections:             make([]SectionResponse, 0, len(d.Sections)),
		TotalDurationMinutes: d.TotalDurationMinutes,
	}

	for i := range d.Sections {
		section := ToSectionResponse(&d.Sections[i].Section)
		section.Lessons = make([]LessonOutlineResponse, 0, len(d.Sections[i].Lessons))
		for _, l := range d.Sections[i].Lessons {
			section.Lessons = append(section.Lessons, LessonOutlineResponse{
				ID:              l.ID,
				Title:           l.Title,
				LessonType:      l.LessonType,
				DurationMinutes: l.DurationMinutes,
				OrderIndex:      l.OrderIndex,
				IsPublished:     l.IsPublished,
				IsPreview:       l.IsPreview,
			})
		}
		resp.TotalLessons += len(section.Lessons)
		resp.Sections = append(resp.Sections, section)
	}

	return resp
}

func ToTopCourseResponseList(courses []TopCourse) []TopCourseResponse {
	out := make([]TopCourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, TopCourseResponse(c))
	}
	return out
}
