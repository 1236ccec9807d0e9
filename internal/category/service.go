// AngelaMos | 2026
// service.go

package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edustack/edustack-api/internal/core"
)

var (
	ErrParentNotFound = errors.New("parent category not found")
	ErrSelfParent     = errors.New("category cannot be its own parent")
	ErrParentCycle    = errors.New("parent would create a cycle")
	ErrInUse          = errors.New("category is in use")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Category, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if req.ParentID != nil {
		if err := s.checkParentExists(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	c := &Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ParentID:    req.ParentID,
		IconURL:     req.IconURL,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateCategoryRequest,
) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.IconURL != nil {
		c.IconURL = req.IconURL
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if req.ParentID != nil {
		parentID := *req.ParentID
		switch {
		case parentID == 0:
			c.ParentID = nil
		case parentID == id:
			return nil, ErrSelfParent
		default:
			if err := s.checkParentExists(ctx, parentID); err != nil {
				return nil, err
			}
			below, err := s.repo.IsDescendant(ctx, id, parentID)
			if err != nil {
				return nil, err
			}
			if below {
				return nil, ErrParentCycle
			}
			c.ParentID = &parentID
		}
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Delete removes a category. Courses and child categories reference it
// with ON DELETE RESTRICT, which surfaces here as ErrInUse.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if err != nil && errors.Is(err, core.ErrForeignKey) {
		return fmt.Errorf("delete category %d: %w", id, ErrInUse)
	}
	return err
}

func (s *Service) checkParentExists(ctx context.Context, parentID int64) error {
	if _, err := s.repo.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("parent %d: %w", parentID, ErrParentNotFound)
		}
		return err
	}
	return nil
}
