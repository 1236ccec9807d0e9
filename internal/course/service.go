// AngelaMos | 2026
// service.go

package course

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edustack/edustack-api/internal/category"
	"github.com/edustack/edustack-api/internal/core"
)

var (
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrCategoryNotFound = errors.New("category not found")
	ErrHasPayments      = errors.New("course has payments")
)

type CategoryReader interface {
	GetByID(ctx context.Context, id int64) (*category.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryReader
}

func NewService(repo Repository, categories CategoryReader) *Service {
	return &Service{repo: repo, categories: categories}
}

// ListPublished is the public catalogue; the published filter is forced.
func (s *Service) ListPublished(
	ctx context.Context,
	params ListCoursesParams,
) ([]Course, int, error) {
	published := true
	params.Published = &published
	return s.repo.List(ctx, params)
}

func (s *Service) List(ctx context.Context, params ListCoursesParams) ([]Course, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) MyCourses(
	ctx context.Context,
	actor core.Actor,
	params core.ListParams,
) ([]Course, int, error) {
	return s.repo.List(ctx, ListCoursesParams{
		ListParams:   params,
		InstructorID: &actor.UserID,
	})
}

// Get returns a course visible to the actor. Unpublished courses are
// reported as missing to everyone but the owner and admins.
func (s *Service) Get(ctx context.Context, actor core.Actor, id int64) (*Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !c.IsPublished && !actor.CanManage(c.InstructorID) {
		return nil, fmt.Errorf("get course %d: %w", id, core.ErrNotFound)
	}

	return c, nil
}

func (s *Service) GetDetail(ctx context.Context, actor core.Actor, id int64) (*Detail, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	publishedOnly := !actor.CanManage(c.InstructorID)

	sections, err := s.repo.ListSections(ctx, id, publishedOnly)
	if err != nil {
		return nil, err
	}

	lessons, err := s.repo.ListOutline(ctx, id, publishedOnly)
	if err != nil {
		return nil, err
	}

	detail := &Detail{
		Course:   *c,
		Sections: make([]SectionWithLessons, len(sections)),
	}

	index := make(map[int64]int, len(sections))
	for i := range sections {
		detail.Sections[i].Section = sections[i]
		detail.Sections[i].Lessons = []LessonOutline{}
		index[sections[i].ID] = i
	}

	for _, l := range lessons {
		if l.IsPublished {
			detail.TotalDurationMinutes += l.DurationMinutes
		}
		if i, ok := index[l.SectionID]; ok {
			detail.Sections[i].Lessons = append(detail.Sections[i].Lessons, l)
		}
	}

	return detail, nil
}

func (s *Service) Create(
	ctx context.Context,
	actor core.Actor,
	req CreateCourseRequest,
) (*Course, error) {
	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	c := &Course{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Price:           req.Price,
		InstructorID:    actor.UserID,
		CategoryID:      req.CategoryID,
		ThumbnailURL:    req.ThumbnailURL,
		DifficultyLevel: req.DifficultyLevel,
		DurationHours:   req.DurationHours,
		Language:        req.Language,
	}
	if c.DifficultyLevel == "" {
		c.DifficultyLevel = DifficultyBeginner
	}
	if c.Language == "" {
		c.Language = "en"
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, c.ID)
}

func (s *Service) Update(
	ctx context.Context,
	actor core.Actor,
	id int64,
	req UpdateCourseRequest,
) (*Course, error) {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		c.Price = *req.Price
	}
	if req.CategoryID != nil && *req.CategoryID != c.CategoryID {
		if err := s.checkCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		c.CategoryID = *req.CategoryID
	}
	if req.ThumbnailURL != nil {
		c.ThumbnailURL = req.ThumbnailURL
	}
	if req.DifficultyLevel != nil {
		c.DifficultyLevel = *req.DifficultyLevel
	}
	if req.DurationHours != nil {
		c.DurationHours = *req.DurationHours
	}
	if req.Language != nil {
		c.Language = *req.Language
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) SetPublished(
	ctx context.Context,
	actor core.Actor,
	id int64,
	published bool,
) (*Course, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	if err := s.repo.SetPublished(ctx, id, published); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Delete removes a course with its curriculum, enrollments and reviews.
// Payments reference courses with ON DELETE RESTRICT, so a course that
// has been paid for stays.
func (s *Service) Delete(ctx context.Context, actor core.Actor, id int64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, core.ErrForeignKey) {
		return fmt.Errorf("delete course %d: %w", id, ErrHasPayments)
	}
	return err
}

func (s *Service) TopCourses(ctx context.Context, limit int) ([]TopCourse, error) {
	if limit < 1 || limit > core.MaxPageSize {
		limit = 10
	}
	return s.repo.TopCourses(ctx, limit)
}

func (s *Service) ListSections(
	ctx context.Context,
	actor core.Actor,
	courseID int64,
) ([]Section, error) {
	c, err := s.Get(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListSections(ctx, courseID, !actor.CanManage(c.InstructorID))
}

func (s *Service) CreateSection(
	ctx context.Context,
	actor core.Actor,
	courseID int64,
	req CreateSectionRequest,
) (*Section, error) {
	if _, err := s.owned(ctx, actor, courseID); err != nil {
		return nil, err
	}

	section := &Section{
		CourseID:    courseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		OrderIndex:  req.OrderIndex,
	}

	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, err
	}

	return section, nil
}

func (s *Service) UpdateSection(
	ctx context.Context,
	actor core.Actor,
	id int64,
	req UpdateSectionRequest,
) (*Section, error) {
	owned, err := s.ownedSection(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	section := owned.Section
	if req.Title != nil {
		section.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		section.Description = req.Description
	}
	if req.OrderIndex != nil {
		section.OrderIndex = *req.OrderIndex
	}
	if req.IsPublished != nil {
		section.IsPublished = *req.IsPublished
	}

	if err := s.repo.UpdateSection(ctx, &section); err != nil {
		return nil, err
	}

	return &section, nil
}

func (s *Service) DeleteSection(ctx context.Context, actor core.Actor, id int64) error {
	if _, err := s.ownedSection(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.DeleteSection(ctx, id)
}

func (s *Service) owned(ctx context.Context, actor core.Actor, id int64) (*Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanManage(c.InstructorID) {
		return nil, fmt.Errorf("course %d: %w", id, core.ErrForbidden)
	}

	return c, nil
}

func (s *Service) ownedSection(
	ctx context.Context,
	actor core.Actor,
	id int64,
) (*SectionOwner, error) {
	section, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanManage(section.InstructorID) {
		return nil, fmt.Errorf("section %d: %w", id, core.ErrForbidden)
	}

	return section, nil
}

func (s *Service) checkCategory(ctx context.Context, id int64) error {
	c, err := s.categories.GetByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) || (err == nil && !c.IsActive) {
		return fmt.Errorf("category %d: %w", id, ErrCategoryNotFound)
	}
	return err
}
