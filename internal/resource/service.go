// AngelaMos | 2026
// service.go

package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/lesson"
)

// LessonGate decides who may read or manage a lesson. Resources inherit
// the decision of the lesson they are attached to.
type LessonGate interface {
	Access(ctx context.Context, actor core.Actor, lessonID int64) (*lesson.Lesson, error)
	Owned(ctx context.Context, actor core.Actor, lessonID int64) (*lesson.Lesson, error)
}

type Service struct {
	repo    Repository
	lessons LessonGate
}

func NewService(repo Repository, lessons LessonGate) *Service {
	return &Service{repo: repo, lessons: lessons}
}

func (s *Service) Create(
	ctx context.Context,
	actor core.Actor,
	lessonID int64,
	req CreateResourceRequest,
) (*Resource, error) {
	if _, err := s.lessons.Owned(ctx, actor, lessonID); err != nil {
		return nil, err
	}

	res := &Resource{
		LessonID: lessonID,
		FileName: strings.TrimSpace(req.FileName),
		FileURL:  req.FileURL,
		FileType: req.FileType,
		FileSize: req.FileSize,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *Service) ListByLesson(
	ctx context.Context,
	actor core.Actor,
	lessonID int64,
) ([]Resource, error) {
	if _, err := s.lessons.Access(ctx, actor, lessonID); err != nil {
		return nil, err
	}

	return s.repo.ListByLesson(ctx, lessonID)
}

func (s *Service) Delete(ctx context.Context, actor core.Actor, id int64) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.lessons.Owned(ctx, actor, res.LessonID); err != nil {
		return fmt.Errorf("resource %d: %w", id, err)
	}

	return s.repo.Delete(ctx, id)
}

// Download checks lesson access and counts the download.
func (s *Service) Download(ctx context.Context, actor core.Actor, id int64) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.lessons.Access(ctx, actor, res.LessonID); err != nil {
		return nil, fmt.Errorf("resource %d: %w", id, err)
	}

	return s.repo.IncrementDownloads(ctx, id)
}
