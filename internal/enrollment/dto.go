// AngelaMos | 2026
// dto.go

package enrollment

import (
	"time"

	"github.com/shopspring/decimal"
)

type EnrollRequest struct {
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
}

type UpdateProgressRequest struct {
	LessonID            int64 `json:"lesson_id"             validate:"required,gt=0"`
	IsCompleted         *bool `json:"is_completed"`
	TimeSpentMinutes    *int  `json:"time_spent_minutes"    validate:"omitempty,gte=0"`
	LastPositionSeconds *int  `json:"last_position_seconds" validate:"omitempty,gte=0"`
}

type EnrollmentResponse struct {
	ID                 int64           `json:"id"`
	StudentID          int64           `json:"student_id"`
	StudentName        string          `json:"student_name"`
	StudentEmail       string          `json:"student_email,omitempty"`
	CourseID           int64           `json:"course_id"`
	CourseTitle        string          `json:"course_title"`
	CourseThumbnail    *string         `json:"course_thumbnail"`
	EnrollmentDate     time.Time       `json:"enrollment_date"`
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
	CompletionDate     *time.Time      `json:"completion_date"`
	IsActive           bool            `json:"is_active"`
	PaymentStatus      string          `json:"payment_status"`
}

type LessonProgressResponse struct {
	ID                  int64      `json:"id"`
	LessonID            int64      `json:"lesson_id"`
	IsCompleted         bool       `json:"is_completed"`
	CompletionDate      *time.Time `json:"completion_date"`
	TimeSpentMinutes    int        `json:"time_spent_minutes"`
	LastPositionSeconds int        `json:"last_position_seconds"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type ProgressUpdateResponse struct {
	Lesson             LessonProgressResponse `json:"lesson"`
	ProgressPercentage decimal.Decimal        `json:"progress_percentage"`
	CompletedLessons   int                    `json:"completed_lessons"`
	TotalLessons       int                    `json:"total_lessons"`
}

type LessonStatusResponse struct {
	LessonID            int64      `json:"lesson_id"`
	Title               string     `json:"title"`
	LessonType          string     `json:"lesson_type"`
	DurationMinutes     int        `json:"duration_minutes"`
	OrderIndex          int        `json:"order_index"`
	IsPreview           bool       `json:"is_preview"`
	IsCompleted         bool       `json:"is_completed"`
	CompletionDate      *time.Time `json:"completion_date"`
	TimeSpentMinutes    int        `json:"time_spent_minutes"`
	LastPositionSeconds int        `json:"last_position_seconds"`
}

type SectionProgressResponse struct {
	SectionID        int64                  `json:"section_id"`
	Title            string                 `json:"title"`
	OrderIndex       int                    `json:"order_index"`
	CompletedLessons int                    `json:"completed_lessons"`
	Lessons          []LessonStatusResponse `json:"lessons"`
}

type CourseProgressResponse struct {
	Enrollment       EnrollmentResponse        `json:"enrollment"`
	CompletedLessons int                       `json:"completed_lessons"`
	TotalLessons     int                       `json:"total_lessons"`
	Sections         []SectionProgressResponse `json:"sections"`
}

type CheckEnrollmentResponse struct {
	IsEnrolled bool `json:"is_enrolled"`
}

func ToEnrollmentResponse(e *Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:                 e.ID,
		StudentID:          e.StudentID,
		StudentName:        e.StudentName,
		StudentEmail:       e.StudentEmail,
		CourseID:           e.CourseID,
		CourseTitle:        e.CourseTitle,
		CourseThumbnail:    e.CourseThumbnail,
		EnrollmentDate:     e.EnrollmentDate,
		ProgressPercentage: e.ProgressPercentage,
		CompletionDate:     e.CompletionDate,
		IsActive:           e.IsActive,
		PaymentStatus:      e.PaymentStatus,
	}
}

func ToEnrollmentResponseList(enrollments []Enrollment) []EnrollmentResponse {
	out := make([]EnrollmentResponse, len(enrollments))
	for i := range enrollments {
		out[i] = ToEnrollmentResponse(&enrollments[i])
	}
	return out
}

func ToLessonProgressResponse(p *LessonProgress) LessonProgressResponse {
	return LessonProgressResponse{
		ID:                  p.ID,
		LessonID:            p.LessonID,
		IsCompleted:         p.IsCompleted,
		CompletionDate:      p.CompletionDate,
		TimeSpentMinutes:    p.TimeSpentMinutes,
		LastPositionSeconds: p.LastPositionSeconds,
		UpdatedAt:           p.UpdatedAt,
	}
}

func ToLessonProgressResponseList(progress []LessonProgress) []LessonProgressResponse {
	out := make([]LessonProgressResponse, len(progress))
	for i := range progress {
		out[i] = ToLessonProgressResponse(&progress[i])
	}
	return out
}

// ToCourseProgressResponse groups curriculum rows, already ordered by
// section and lesson, into sections.
func ToCourseProgressResponse(e *Enrollment, rows []CurriculumRow) CourseProgressResponse {
	resp := CourseProgressResponse{
		Enrollment:   ToEnrollmentResponse(e),
		TotalLessons: len(rows),
		Sections:     []SectionProgressResponse{},
	}

	for _, row := range rows {
		n := len(resp.Sections)
		if n == 0 || resp.Sections[n-1].SectionID != row.SectionID {
			resp.Sections = append(resp.Sections, SectionProgressResponse{
				SectionID:  row.SectionID,
				Title:      row.SectionTitle,
				OrderIndex: row.SectionOrder,
				Lessons:    []LessonStatusResponse{},
			})
			n++
		}

		section := &resp.Sections[n-1]
		section.Lessons = append(section.Lessons, LessonStatusResponse{
			LessonID:            row.LessonID,
			Title:               row.LessonTitle,
			LessonType:          row.LessonType,
			DurationMinutes:     row.DurationMinutes,
			OrderIndex:          row.OrderIndex,
			IsPreview:           row.IsPreview,
			IsCompleted:         row.IsCompleted,
			CompletionDate:      row.CompletionDate,
			TimeSpentMinutes:    row.TimeSpentMinutes,
			LastPositionSeconds: row.LastPositionSeconds,
		})
		if row.IsCompleted {
			section.CompletedLessons++
			resp.CompletedLessons++
		}
	}

	return resp
}
