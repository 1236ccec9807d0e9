// AngelaMos | 2026
// entity.go

package review

import (
	"time"
)

type Review struct {
	ID         int64     `db:"id"`
	StudentID  int64     `db:"student_id"`
	CourseID   int64     `db:"course_id"`
	Rating     int       `db:"rating"`
	Comment    *string   `db:"comment"`
	IsApproved bool      `db:"is_approved"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`

	StudentName  string `db:"student_name"`
	CourseTitle  string `db:"course_title"`
	InstructorID int64  `db:"instructor_id"`
}

// Stats summarizes the approved reviews of a course.
type Stats struct {
	AverageRating float64 `db:"average_rating"`
	TotalReviews  int     `db:"total_reviews"`
	Rating5       int     `db:"rating_5"`
	Rating4       int     `db:"rating_4"`
	Rating3       int     `db:"rating_3"`
	Rating2       int     `db:"rating_2"`
	Rating1       int     `db:"rating_1"`
}
