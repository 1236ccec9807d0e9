// AngelaMos | 2026
// service.go

package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/course"
)

var (
	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrOwnCourse       = errors.New("cannot enroll in own course")
	ErrNotEnrolled     = errors.New("not enrolled")
	ErrCourseNotFound  = errors.New("course not found")
	ErrLessonNotFound  = errors.New("lesson not found")
)

type CourseReader interface {
	GetByID(ctx context.Context, id int64) (*course.Course, error)
}

type Notifier interface {
	SendEnrollmentConfirmation(
		ctx context.Context,
		to mail.Address,
		courseID int64,
		courseTitle string,
	) error
}

type Service struct {
	db       core.TxBeginner
	repo     Repository
	courses  CourseReader
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	db core.TxBeginner,
	repo Repository,
	courses CourseReader,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		db:       db,
		repo:     repo,
		courses:  courses,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// IsActivelyEnrolled gates lesson and resource access.
func (s *Service) IsActivelyEnrolled(ctx context.Context, studentID, courseID int64) (bool, error) {
	return s.repo.IsActivelyEnrolled(ctx, studentID, courseID)
}

// Enroll registers the actor in a published course. Free courses are
// settled immediately, paid ones wait for a payment.
func (s *Service) Enroll(ctx context.Context, actor core.Actor, courseID int64) (*Enrollment, error) {
	ctx, span := core.StartSpan(ctx, "enrollment.enroll",
		attribute.Int64("user.id", actor.UserID),
		attribute.Int64("course.id", courseID),
	)
	defer span.End()

	c, err := s.publishedCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c.InstructorID == actor.UserID {
		return nil, ErrOwnCourse
	}

	e := &Enrollment{
		StudentID:     actor.UserID,
		CourseID:      courseID,
		PaymentStatus: PaymentPending,
	}
	if c.IsFree() {
		e.PaymentStatus = PaymentCompleted
	}

	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrAlreadyEnrolled
		}
		core.SetSpanError(ctx, err)
		return nil, err
	}

	core.AddSpanEvent(ctx, "enrollment.created",
		attribute.Int64("enrollment.id", e.ID),
		attribute.String("enrollment.payment_status", e.PaymentStatus),
	)

	enrolled, err := s.repo.GetByID(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	s.notifyEnrolled(ctx, enrolled)

	return enrolled, nil
}

func (s *Service) notifyEnrolled(ctx context.Context, e *Enrollment) {
	if s.notifier == nil {
		return
	}

	to := mail.Address{Name: e.StudentName, Address: e.StudentEmail}
	if err := s.notifier.SendEnrollmentConfirmation(ctx, to, e.CourseID, e.CourseTitle); err != nil {
		s.logger.WarnContext(ctx, "enrollment confirmation email failed",
			"enrollment_id", e.ID, "error", err)
	}
}

func (s *Service) Get(ctx context.Context, actor core.Actor, id int64) (*Enrollment, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if e.StudentID != actor.UserID && !actor.CanManage(e.InstructorID) {
		return nil, fmt.Errorf("enrollment %d: %w", id, core.ErrForbidden)
	}

	return e, nil
}

func (s *Service) MyEnrollments(ctx context.Context, studentID int64) ([]Enrollment, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// Progress returns the caller's enrollment with every published lesson of
// the course and its completion state.
func (s *Service) Progress(
	ctx context.Context,
	studentID, courseID int64,
) (*Enrollment, []CurriculumRow, error) {
	e, err := s.enrollmentFor(ctx, s.repo, studentID, courseID)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.repo.Curriculum(ctx, studentID, courseID)
	if err != nil {
		return nil, nil, err
	}

	return e, rows, nil
}

type ProgressResult struct {
	Lesson     *LessonProgress
	Percentage decimal.Decimal
	Completed  int
	Total      int
}

// UpdateProgress upserts the lesson row and recomputes the course
// percentage in one transaction. Reaching 100 stamps the enrollment
// completion date; dropping below clears it.
func (s *Service) UpdateProgress(
	ctx context.Context,
	actor core.Actor,
	req UpdateProgressRequest,
) (*ProgressResult, error) {
	ctx, span := core.StartSpan(ctx, "enrollment.update_progress",
		attribute.Int64("user.id", actor.UserID),
		attribute.Int64("lesson.id", req.LessonID),
	)
	defer span.End()

	var result *ProgressResult
	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		placement, err := repo.PlaceLesson(ctx, req.LessonID)
		if errors.Is(err, core.ErrNotFound) {
			return ErrLessonNotFound
		}
		if err != nil {
			return err
		}
		if !placement.IsPublished {
			return ErrLessonNotFound
		}

		e, err := s.enrollmentFor(ctx, repo, actor.UserID, placement.CourseID)
		if err != nil {
			return err
		}
		if !e.IsActive {
			return ErrNotEnrolled
		}

		progress, err := repo.UpsertProgress(ctx, ProgressUpdate{
			StudentID:           actor.UserID,
			LessonID:            req.LessonID,
			IsCompleted:         req.IsCompleted,
			TimeSpentMinutes:    req.TimeSpentMinutes,
			LastPositionSeconds: req.LastPositionSeconds,
		})
		if err != nil {
			return err
		}

		completed, total, err := repo.CountCompleted(ctx, actor.UserID, placement.CourseID)
		if err != nil {
			return err
		}

		pct := Percentage(completed, total)

		var completedAt *time.Time
		if pct.Equal(hundred) {
			completedAt = e.CompletionDate
			if completedAt == nil {
				now := s.now()
				completedAt = &now
			}
		}

		if err := repo.SetProgress(ctx, e.ID, pct, completedAt); err != nil {
			return err
		}

		result = &ProgressResult{
			Lesson:     progress,
			Percentage: pct,
			Completed:  completed,
			Total:      total,
		}
		return nil
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	core.AddSpanEvent(ctx, "enrollment.progress_recomputed",
		attribute.Int("lessons.completed", result.Completed),
		attribute.Int("lessons.total", result.Total),
		attribute.String("progress.percentage", result.Percentage.String()),
	)

	return result, nil
}

func (s *Service) LessonProgress(
	ctx context.Context,
	studentID, courseID int64,
) ([]LessonProgress, error) {
	if _, err := s.enrollmentFor(ctx, s.repo, studentID, courseID); err != nil {
		return nil, err
	}

	return s.repo.ListProgress(ctx, studentID, courseID)
}

// Complete marks the whole course as finished regardless of lesson rows.
func (s *Service) Complete(ctx context.Context, studentID, courseID int64) (*Enrollment, error) {
	e, err := s.enrollmentFor(ctx, s.repo, studentID, courseID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.SetProgress(ctx, e.ID, hundred, &now); err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "enrollment.completed", attribute.Int64("enrollment.id", e.ID))

	return s.repo.GetByID(ctx, e.ID)
}

// Unenroll removes the enrollment and the student's progress for the course.
func (s *Service) Unenroll(ctx context.Context, studentID, courseID int64) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		e, err := s.enrollmentFor(ctx, repo, studentID, courseID)
		if err != nil {
			return err
		}

		if err := repo.DeleteProgress(ctx, studentID, courseID); err != nil {
			return err
		}

		return repo.Delete(ctx, e.ID)
	})
}

func (s *Service) CheckEnrollment(ctx context.Context, studentID, courseID int64) (bool, error) {
	return s.repo.IsActivelyEnrolled(ctx, studentID, courseID)
}

// Students lists a course's enrollments for its owner or an admin.
func (s *Service) Students(
	ctx context.Context,
	actor core.Actor,
	courseID int64,
	params core.ListParams,
) ([]Enrollment, int, error) {
	c, err := s.courses.GetByID(ctx, courseID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, 0, ErrCourseNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	if !actor.CanManage(c.InstructorID) {
		return nil, 0, fmt.Errorf("course %d students: %w", courseID, core.ErrForbidden)
	}

	return s.repo.ListByCourse(ctx, courseID, params)
}

func (s *Service) publishedCourse(ctx context.Context, id int64) (*course.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	if !c.IsPublished {
		return nil, ErrCourseNotFound
	}

	return c, nil
}

func (s *Service) enrollmentFor(
	ctx context.Context,
	repo Repository,
	studentID, courseID int64,
) (*Enrollment, error) {
	e, err := repo.GetByStudentCourse(ctx, studentID, courseID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrNotEnrolled
	}
	return e, err
}
