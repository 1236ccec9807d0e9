// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/course"
)

var (
	ErrAlreadyReviewed = errors.New("already reviewed")
	ErrNotEnrolled     = errors.New("not enrolled")
	ErrCourseNotFound  = errors.New("course not found")
)

type CourseReader interface {
	GetByID(ctx context.Context, id int64) (*course.Course, error)
}

type EnrollmentChecker interface {
	IsActivelyEnrolled(ctx context.Context, studentID, courseID int64) (bool, error)
}

type Service struct {
	repo        Repository
	courses     CourseReader
	enrollments EnrollmentChecker
}

func NewService(repo Repository, courses CourseReader, enrollments EnrollmentChecker) *Service {
	return &Service{repo: repo, courses: courses, enrollments: enrollments}
}

// Create stores an unapproved review from an enrolled student.
func (s *Service) Create(ctx context.Context, actor core.Actor, req CreateReviewRequest) (*Review, error) {
	if err := s.courseExists(ctx, req.CourseID); err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.IsActivelyEnrolled(ctx, actor.UserID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	rv := &Review{
		StudentID: actor.UserID,
		CourseID:  req.CourseID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	core.AddSpanEvent(ctx, "review.created",
		attribute.Int64("review.id", rv.ID),
		attribute.Int("review.rating", rv.Rating),
	)

	return s.repo.GetByID(ctx, rv.ID)
}

// Get hides unapproved reviews from everyone but their author and admins.
func (s *Service) Get(ctx context.Context, actor core.Actor, id int64) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !rv.IsApproved && !actor.CanManage(rv.StudentID) {
		return nil, fmt.Errorf("review %d: %w", id, core.ErrNotFound)
	}

	return rv, nil
}

func (s *Service) CourseReviews(
	ctx context.Context,
	courseID int64,
	params core.ListParams,
) ([]Review, int, error) {
	return s.repo.ListByCourse(ctx, courseID, params)
}

func (s *Service) Stats(ctx context.Context, courseID int64) (*Stats, error) {
	if err := s.courseExists(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, courseID)
}

func (s *Service) MyReviews(ctx context.Context, studentID int64) ([]Review, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *Service) Update(
	ctx context.Context,
	actor core.Actor,
	id int64,
	req UpdateReviewRequest,
) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.StudentID != actor.UserID {
		return nil, fmt.Errorf("review %d: %w", id, core.ErrForbidden)
	}

	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	if req.Comment != nil {
		rv.Comment = req.Comment
	}

	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}

	return rv, nil
}

func (s *Service) Delete(ctx context.Context, actor core.Actor, id int64) error {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(rv.StudentID) {
		return fmt.Errorf("review %d: %w", id, core.ErrForbidden)
	}

	return s.repo.Delete(ctx, id)
}

// CheckReview returns the caller's review of a course, or nil.
func (s *Service) CheckReview(ctx context.Context, studentID, courseID int64) (*Review, error) {
	rv, err := s.repo.GetByStudentCourse(ctx, studentID, courseID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return rv, err
}

func (s *Service) Pending(ctx context.Context, params core.ListParams) ([]Review, int, error) {
	return s.repo.ListPending(ctx, params)
}

func (s *Service) Approve(ctx context.Context, id int64) (*Review, error) {
	if err := s.repo.Approve(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Reject removes the review so the student may write a new one.
func (s *Service) Reject(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) courseExists(ctx context.Context, id int64) error {
	_, err := s.courses.GetByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return ErrCourseNotFound
	}
	return err
}
