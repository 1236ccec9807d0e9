// AngelaMos | 2026
// entity.go

package instructor

import (
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Application is a Student's request to become an Instructor. Applicant
// name and email are joined from users for listings and notifications.
type Application struct {
	ID              int64      `db:"id"`
	UserID          int64      `db:"user_id"`
	ApplicantName   string     `db:"applicant_name"`
	ApplicantEmail  string     `db:"applicant_email"`
	Status          string     `db:"application_status"`
	Qualifications  string     `db:"qualifications"`
	ExperienceYears int        `db:"experience_years"`
	PortfolioURL    *string    `db:"portfolio_url"`
	Motivation      string     `db:"motivation"`
	AdminRemarks    *string    `db:"admin_remarks"`
	ReviewedBy      *int64     `db:"reviewed_by"`
	ReviewedAt      *time.Time `db:"reviewed_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (a *Application) IsPending() bool {
	return a.Status == StatusPending
}
