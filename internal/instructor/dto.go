// AngelaMos | 2026
// dto.go

package instructor

import (
	"time"
)

type ApplyRequest struct {
	Qualifications  string  `json:"qualifications"   validate:"required,notblank,max=5000"`
	ExperienceYears int     `json:"experience_years" validate:"gte=0,lte=80"`
	PortfolioURL    *string `json:"portfolio_url"    validate:"omitempty,url,max=500"`
	Motivation      string  `json:"motivation"       validate:"required,notblank,max=5000"`
}

type ReviewRequest struct {
	Status  string  `json:"status"  validate:"required,oneof=approved rejected"`
	Remarks *string `json:"remarks" validate:"omitempty,max=2000"`
}

type ApplicationResponse struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	ApplicantName   string     `json:"applicant_name"`
	ApplicantEmail  string     `json:"applicant_email"`
	Status          string     `json:"application_status"`
	Qualifications  string     `json:"qualifications"`
	ExperienceYears int        `json:"experience_years"`
	PortfolioURL    *string    `json:"portfolio_url"`
	Motivation      string     `json:"motivation"`
	AdminRemarks    *string    `json:"admin_remarks"`
	ReviewedBy      *int64     `json:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func ToApplicationResponse(a *Application) ApplicationResponse {
	return ApplicationResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		ApplicantName:   a.ApplicantName,
		ApplicantEmail:  a.ApplicantEmail,
		Status:          a.Status,
		Qualifications:  a.Qualifications,
		ExperienceYears: a.ExperienceYears,
		PortfolioURL:    a.PortfolioURL,
		Motivation:      a.Motivation,
		AdminRemarks:    a.AdminRemarks,
		ReviewedBy:      a.ReviewedBy,
		ReviewedAt:      a.ReviewedAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func ToApplicationResponseList(apps []Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, ToApplicationResponse(&apps[i]))
	}
	return out
}
