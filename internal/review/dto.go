// AngelaMos | 2026
// dto.go

package review

import (
	"time"
)

type CreateReviewRequest struct {
	CourseID int64   `json:"course_id" validate:"required,gt=0"`
	Rating   int     `json:"rating"    validate:"required,min=1,max=5"`
	Comment  *string `json:"comment"   validate:"omitempty,max=5000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"  validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=5000"`
}

type ReviewResponse struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	StudentName string    `json:"student_name"`
	CourseID    int64     `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	Rating      int       `json:"rating"`
	Comment     *string   `json:"comment"`
	IsApproved  bool      `json:"is_approved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type StatsResponse struct {
	AverageRating float64     `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
	Distribution  map[int]int `json:"distribution"`
}

type CheckReviewResponse struct {
	HasReviewed bool            `json:"has_reviewed"`
	Review      *ReviewResponse `json:"review,omitempty"`
}

func ToReviewResponse(r *Review) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		StudentID:   r.StudentID,
		StudentName: r.StudentName,
		CourseID:    r.CourseID,
		CourseTitle: r.CourseTitle,
		Rating:      r.Rating,
		Comment:     r.Comment,
		IsApproved:  r.IsApproved,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ToReviewResponseList(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		out[i] = ToReviewResponse(&reviews[i])
	}
	return out
}

func ToStatsResponse(s *Stats) StatsResponse {
	return StatsResponse{
		AverageRating: s.AverageRating,
		TotalReviews:  s.TotalReviews,
		Distribution: map[int]int{
			5: s.Rating5,
			4: s.Rating4,
			3: s.Rating3,
			2: s.Rating2,
			1: s.Rating1,
		},
	}
}
