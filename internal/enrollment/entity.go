// AngelaMos | 2026
// entity.go

package enrollment

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

type Enrollment struct {
	ID                 int64           `db:"id"`
	StudentID          int64           `db:"student_id"`
	CourseID           int64           `db:"course_id"`
	EnrollmentDate     time.Time       `db:"enrollment_date"`
	ProgressPercentage decimal.Decimal `db:"progress_percentage"`
	CompletionDate     *time.Time      `db:"completion_date"`
	IsActive           bool            `db:"is_active"`
	PaymentStatus      string          `db:"payment_status"`

	StudentName     string  `db:"student_name"`
	StudentEmail    string  `db:"student_email"`
	CourseTitle     string  `db:"course_title"`
	CourseThumbnail *string `db:"course_thumbnail"`
	InstructorID    int64   `db:"instructor_id"`
}

type LessonProgress struct {
	ID                  int64      `db:"id"`
	StudentID           int64      `db:"student_id"`
	LessonID            int64      `db:"lesson_id"`
	IsCompleted         bool       `db:"is_completed"`
	CompletionDate      *time.Time `db:"completion_date"`
	TimeSpentMinutes    int        `db:"time_spent_minutes"`
	LastPositionSeconds int        `db:"last_position_seconds"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// ProgressUpdate holds the partial fields of a lesson-progress write. Nil
// fields keep their stored value.
type ProgressUpdate struct {
	StudentID           int64
	LessonID            int64
	IsCompleted         *bool
	TimeSpentMinutes    *int
	LastPositionSeconds *int
}

// LessonPlacement locates a lesson in its course.
type LessonPlacement struct {
	LessonID    int64 `db:"lesson_id"`
	CourseID    int64 `db:"course_id"`
	IsPublished bool  `db:"is_published"`
}

// CurriculumRow is one published lesson joined with the student's progress.
type CurriculumRow struct {
	SectionID           int64      `db:"section_id"`
	SectionTitle        string     `db:"section_title"`
	SectionOrder        int        `db:"section_order"`
	LessonID            int64      `db:"lesson_id"`
	LessonTitle         string     `db:"lesson_title"`
	LessonType          string     `db:"lesson_type"`
	DurationMinutes     int        `db:"duration_minutes"`
	OrderIndex          int        `db:"order_index"`
	IsPreview           bool       `db:"is_preview"`
	IsCompleted         bool       `db:"is_completed"`
	CompletionDate      *time.Time `db:"completion_date"`
	TimeSpentMinutes    int        `db:"time_spent_minutes"`
	LastPositionSeconds int        `db:"last_position_seconds"`
}

var hundred = decimal.NewFromInt(100)

// Percentage is completed over total lessons on a 0..100 scale, rounded to
// two places. A course without lessons is at 0.
func Percentage(completed, total int) decimal.Decimal {
	if total <= 0 || completed <= 0 {
		return decimal.Zero
	}
	if completed >= total {
		return hundred
	}
	return decimal.NewFromInt(int64(completed)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
