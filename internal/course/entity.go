// AngelaMos | 2026
// entity.go

package course

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Course carries its listing aggregates: instructor and category names,
// the mean of approved ratings and the number of active enrollments.
type Course struct {
	ID              int64           `db:"id"`
	Title           string          `db:"title"`
	Description     *string         `db:"description"`
	Price           decimal.Decimal `db:"price"`
	InstructorID    int64           `db:"instructor_id"`
	CategoryID      int64           `db:"category_id"`
	ThumbnailURL    *string         `db:"thumbnail_url"`
	IsPublished     bool            `db:"is_published"`
	DifficultyLevel string          `db:"difficulty_level"`
	DurationHours   int             `db:"duration_hours"`
	Language        string          `db:"language"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`

	InstructorName string  `db:"instructor_name"`
	CategoryName   string  `db:"category_name"`
	AverageRating  float64 `db:"average_rating"`
	TotalReviews   int     `db:"total_reviews"`
	TotalStudents  int     `db:"total_students"`
}

func (c *Course) IsFree() bool {
	return !c.Price.IsPositive()
}

type Section struct {
	ID          int64     `db:"id"`
	CourseID    int64     `db:"course_id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	OrderIndex  int       `db:"order_index"`
	IsPublished bool      `db:"is_published"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// SectionOwner pairs a section with the course it belongs to.
type SectionOwner struct {
	Section
	InstructorID int64 `db:"instructor_id"`
}

// LessonOutline is a lesson as shown in the course curriculum. Content is
// served by the lesson endpoints behind the access check.
type LessonOutline struct {
	ID              int64  `db:"id"`
	SectionID       int64  `db:"section_id"`
	Title           string `db:"title"`
	LessonType      string `db:"lesson_type"`
	DurationMinutes int    `db:"duration_minutes"`
	OrderIndex      int    `db:"order_index"`
	IsPublished     bool   `db:"is_published"`
	IsPreview       bool   `db:"is_preview"`
}

type TopCourse struct {
	ID             int64           `db:"id"`
	Title          string          `db:"title"`
	InstructorName string          `db:"instructor_name"`
	Price          decimal.Decimal `db:"price"`
	TotalStudents  int             `db:"total_students"`
	AverageRating  float64         `db:"average_rating"`
}

type SectionWithLessons struct {
	Section
	Lessons []LessonOutline
}

// Detail is a course with its curriculum. TotalDurationMinutes sums the
// published lessons only.
type Detail struct {
	Course
	Sections             []SectionWithLessons
	TotalDurationMinutes int
}
