// AngelaMos | 2026
// service.go

package instructor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/role"
	"github.com/edustack/edustack-api/internal/user"
)

var (
	ErrNotStudent    = errors.New("only students can apply")
	ErrPendingExists = errors.New("pending application exists")
	ErrNotPending    = errors.New("application already reviewed")
)

type Notifier interface {
	SendApplicationDecision(
		ctx context.Context,
		to mail.Address,
		approved bool,
		remarks string,
	) error
}

type Service struct {
	db       core.TxBeginner
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

func NewService(
	db core.TxBeginner,
	repo Repository,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		db:       db,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) Apply(
	ctx context.Context,
	actor core.Actor,
	req ApplyRequest,
) (*Application, error) {
	if actor.Role != core.RoleStudent {
		return nil, ErrNotStudent
	}

	pending, err := s.repo.HasPending(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrPendingExists
	}

	app := &Application{
		UserID:          actor.UserID,
		Qualifications:  req.Qualifications,
		ExperienceYears: req.ExperienceYears,
		PortfolioURL:    req.PortfolioURL,
		Motivation:      req.Motivation,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrPendingExists
		}
		return nil, err
	}

	return s.repo.GetByID(ctx, app.ID)
}

func (s *Service) MyApplications(ctx context.Context, userID int64) ([]Application, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Application, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	status string,
	params core.ListParams,
) ([]Application, int, error) {
	return s.repo.List(ctx, status, params)
}

// Review decides a pending application. Approval promotes the applicant to
// Instructor in the same transaction as the status change.
func (s *Service) Review(
	ctx context.Context,
	actor core.Actor,
	id int64,
	req ReviewRequest,
) (*Application, error) {
	ctx, span := core.StartSpan(ctx, "instructor.review",
		attribute.Int64("application.id", id),
		attribute.String("application.decision", req.Status),
	)
	defer span.End()

	var reviewed *Application
	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		app, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !app.IsPending() {
			return fmt.Errorf("review application %d: %w", id, ErrNotPending)
		}

		if err := repo.Review(ctx, id, req.Status, req.Remarks, actor.UserID); err != nil {
			return err
		}

		if req.Status == StatusApproved {
			instructorRole, err := role.NewRepository(tx).GetByName(ctx, core.RoleInstructor)
			if err != nil {
				return err
			}
			if err := user.NewRepository(tx).UpdateRole(ctx, app.UserID, instructorRole.ID); err != nil {
				return err
			}
		}

		reviewed, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.notifyDecision(ctx, reviewed)

	return reviewed, nil
}

func (s *Service) notifyDecision(ctx context.Context, app *Application) {
	if s.notifier == nil {
		return
	}

	var remarks string
	if app.AdminRemarks != nil {
		remarks = *app.AdminRemarks
	}

	to := mail.Address{Name: app.ApplicantName, Address: app.ApplicantEmail}
	if err := s.notifier.SendApplicationDecision(ctx, to, app.Status == StatusApproved, remarks); err != nil {
		s.logger.WarnContext(ctx, "application decision email failed",
			"application_id", app.ID, "error", err)
	}
}
