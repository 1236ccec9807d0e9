// AngelaMos | 2026
// entity.go

package lesson

import (
	"time"
)

const (
	TypeVideo      = "video"
	TypeText       = "text"
	TypeQuiz       = "quiz"
	TypeAssignment = "assignment"
)

// Lesson is read together with the course it belongs to so that access
// and ownership can be decided without another lookup.
type Lesson struct {
	ID              int64     `db:"id"`
	SectionID       int64     `db:"section_id"`
	Title           string    `db:"title"`
	Description     *string   `db:"description"`
	LessonType      string    `db:"lesson_type"`
	Content         *string   `db:"content"`
	VideoURL        *string   `db:"video_url"`
	FileURL         *string   `db:"file_url"`
	DurationMinutes int       `db:"duration_minutes"`
	OrderIndex      int       `db:"order_index"`
	IsPublished     bool      `db:"is_published"`
	IsPreview       bool      `db:"is_preview"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`

	CourseID         int64 `db:"course_id"`
	InstructorID     int64 `db:"instructor_id"`
	ParentsPublished bool  `db:"parents_published"`
}

// Live reports whether the lesson, its section and its course are all
// published. Only live lessons are visible to non-managers.
func (l *Lesson) Live() bool {
	return l.IsPublished && l.ParentsPublished
}

// Unlocks reports whether the media of l may be shown to a caller whose
// course-level access is unlocked.
func (l *Lesson) Unlocks(unlocked bool) bool {
	return unlocked || l.IsPreview
}

// Placement locates a section within its course.
type Placement struct {
	SectionID    int64 `db:"section_id"`
	CourseID     int64 `db:"course_id"`
	InstructorID int64 `db:"instructor_id"`
}
