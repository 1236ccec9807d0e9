// AngelaMos | 2026
// service.go

package admin

import (
	"context"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/payment"
)

const defaultTopCount = 10

type RevenueReporter interface {
	RevenueReport(ctx context.Context, filter payment.RevenueFilter) ([]payment.Payment, error)
}

type Service struct {
	repo     Repository
	payments RevenueReporter
}

func NewService(repo Repository, payments RevenueReporter) *Service {
	return &Service{repo: repo, payments: payments}
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	return s.repo.Dashboard(ctx)
}

func (s *Service) TopInstructors(ctx context.Context, count int) ([]TopInstructor, error) {
	if count < 1 || count > core.MaxPageSize {
		count = defaultTopCount
	}
	return s.repo.TopInstructors(ctx, count)
}

// RevenueReport covers every instructor's completed payments in the range.
func (s *Service) RevenueReport(
	ctx context.Context,
	filter payment.RevenueFilter,
) ([]payment.Payment, error) {
	return s.payments.RevenueReport(ctx, filter)
}
