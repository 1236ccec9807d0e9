// AngelaMos | 2026
// entity.go

package admin

import (
	"github.com/shopspring/decimal"
)

type Dashboard struct {
	TotalUsers          int             `db:"total_users"`
	TotalStudents       int             `db:"total_students"`
	TotalInstructors    int             `db:"total_instructors"`
	TotalCourses        int             `db:"total_courses"`
	PublishedCourses    int             `db:"published_courses"`
	TotalEnrollments    int             `db:"total_enrollments"`
	TotalRevenue        decimal.Decimal `db:"total_revenue"`
	PendingApplications int             `db:"pending_applications"`
	PendingReviews      int             `db:"pending_reviews"`
}

type TopInstructor struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	Email         string `db:"email"`
	TotalCourses  int    `db:"total_courses"`
	TotalStudents int    `db:"total_students"`
}
