// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	TopInstructors(ctx context.Context, limit int) ([]TopInstructor, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Dashboard(ctx context.Context) (*Dashboard, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users u JOIN roles ro ON ro.id = u.role_id
			 WHERE ro.name = $1) AS total_students,
			(SELECT COUNT(*) FROM users u JOIN roles ro ON ro.id = u.role_id
			 WHERE ro.name = $2) AS total_instructors,
			(SELECT COUNT(*) FROM courses) AS total_courses,
			(SELECT COUNT(*) FROM courses WHERE is_published) AS published_courses,
			(SELECT COUNT(*) FROM enrollments) AS total_enrollments,
			(SELECT COALESCE(SUM(amount), 0) FROM payments
			 WHERE payment_status = 'completed') AS total_revenue,
			(SELECT COUNT(*) FROM instructor_applications
			 WHERE application_status = 'pending') AS pending_applications,
			(SELECT COUNT(*) FROM reviews WHERE NOT is_approved) AS pending_reviews`

	var d Dashboard
	if err := r.db.GetContext(ctx, &d, query, core.RoleStudent, core.RoleInstructor); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	return &d, nil
}

// TopInstructors ranks instructors by course count, then active students.
func (r *repository) TopInstructors(ctx context.Context, limit int) ([]TopInstructor, error) {
	query := `
		SELECT u.id, u.name, u.email,
		       COUNT(DISTINCT c.id) AS total_courses,
		       COUNT(e.id) FILTER (WHERE e.is_active) AS total_students
		FROM users u
		JOIN courses c ON c.instructor_id = u.id
		LEFT JOIN enrollments e ON e.course_id = c.id
		GROUP BY u.id, u.name, u.email
		ORDER BY total_courses DESC, total_students DESC, u.id
		LIMIT $1`

	instructors := []TopInstructor{}
	if err := r.db.SelectContext(ctx, &instructors, query, limit); err != nil {
		return nil, fmt.Errorf("top instructors: %w", err)
	}

	return instructors, nil
}
