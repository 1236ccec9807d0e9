// AngelaMos | 2026
// service.go

package lesson

import (
	"context"
	"fmt"
	"strings"

	"github.com/edustack/edustack-api/internal/core"
)

// EnrollmentChecker answers whether a student holds an active enrollment.
type EnrollmentChecker interface {
	IsActivelyEnrolled(ctx context.Context, studentID, courseID int64) (bool, error)
}

type Service struct {
	repo        Repository
	enrollments EnrollmentChecker
}

func NewService(repo Repository, enrollments EnrollmentChecker) *Service {
	return &Service{repo: repo, enrollments: enrollments}
}

// Access returns a lesson the actor may open: a live preview, any live
// lesson of a course the actor is actively enrolled in, or any lesson of a
// course the actor manages. A lesson is live when it, its section and its
// course are published; anything else is ErrNotFound to non-managers.
// Anonymous callers get ErrUnauthorized for non-preview lessons so clients
// know to sign in.
func (s *Service) Access(ctx context.Context, actor core.Actor, id int64) (*Lesson, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.CanManage(l.InstructorID) {
		return l, nil
	}

	if !l.Live() {
		return nil, fmt.Errorf("lesson %d: %w", id, core.ErrNotFound)
	}

	if l.IsPreview {
		return l, nil
	}

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("lesson %d: %w", id, core.ErrUnauthorized)
	}

	enrolled, err := s.enrollments.IsActivelyEnrolled(ctx, actor.UserID, l.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, fmt.Errorf("lesson %d: %w", id, core.ErrForbidden)
	}

	return l, nil
}

// Owned returns a lesson only when the actor manages its course.
func (s *Service) Owned(ctx context.Context, actor core.Actor, id int64) (*Lesson, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanManage(l.InstructorID) {
		return nil, fmt.Errorf("lesson %d: %w", id, core.ErrForbidden)
	}

	return l, nil
}

// SectionListing is a section's lessons plus whether the caller may see
// their media. Unlocked is false for callers who neither manage the course
// nor hold an active enrollment; only previews show media to them.
type SectionListing struct {
	Lessons  []Lesson
	Unlocked bool
}

func (s *Service) ListBySection(
	ctx context.Context,
	actor core.Actor,
	sectionID int64,
) (*SectionListing, error) {
	p, err := s.repo.PlaceSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	manager := actor.CanManage(p.InstructorID)

	lessons, err := s.repo.ListBySection(ctx, sectionID, !manager)
	if err != nil {
		return nil, err
	}

	unlocked := manager
	if !unlocked && !actor.IsAnonymous() && len(lessons) > 0 {
		unlocked, err = s.enrollments.IsActivelyEnrolled(ctx, actor.UserID, p.CourseID)
		if err != nil {
			return nil, err
		}
	}

	return &SectionListing{Lessons: lessons, Unlocked: unlocked}, nil
}

func (s *Service) Create(
	ctx context.Context,
	actor core.Actor,
	sectionID int64,
	req CreateLessonRequest,
) (*Lesson, error) {
	p, err := s.repo.PlaceSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	if !actor.CanManage(p.InstructorID) {
		return nil, fmt.Errorf("section %d: %w", sectionID, core.ErrForbidden)
	}

	l := &Lesson{
		SectionID:       sectionID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		LessonType:      req.LessonType,
		Content:         req.Content,
		VideoURL:        req.VideoURL,
		FileURL:         req.FileURL,
		DurationMinutes: req.DurationMinutes,
		OrderIndex:      req.OrderIndex,
		IsPreview:       req.IsPreview,
		CourseID:        p.CourseID,
		InstructorID:    p.InstructorID,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor core.Actor,
	id int64,
	req UpdateLessonRequest,
) (*Lesson, error) {
	l, err := s.Owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		l.Description = req.Description
	}
	if req.LessonType != nil {
		l.LessonType = *req.LessonType
	}
	if req.Content != nil {
		l.Content = req.Content
	}
	if req.VideoURL != nil {
		l.VideoURL = req.VideoURL
	}
	if req.FileURL != nil {
		l.FileURL = req.FileURL
	}
	if req.DurationMinutes != nil {
		l.DurationMinutes = *req.DurationMinutes
	}
	if req.OrderIndex != nil {
		l.OrderIndex = *req.OrderIndex
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) SetPublished(
	ctx context.Context,
	actor core.Actor,
	id int64,
	published bool,
) (*Lesson, error) {
	l, err := s.Owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetPublished(ctx, id, published); err != nil {
		return nil, err
	}

	l.IsPublished = published
	return l, nil
}

func (s *Service) SetPreview(
	ctx context.Context,
	actor core.Actor,
	id int64,
	preview bool,
) (*Lesson, error) {
	l, err := s.Owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetPreview(ctx, id, preview); err != nil {
		return nil, err
	}

	l.IsPreview = preview
	return l, nil
}

func (s *Service) Delete(ctx context.Context, actor core.Actor, id int64) error {
	if _, err := s.Owned(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
