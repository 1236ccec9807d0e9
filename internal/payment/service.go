// AngelaMos | 2026
// service.go

package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/course"
	"github.com/edustack/edustack-api/internal/enrollment"
)

var (
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrMissingAmount  = errors.New("amount is required")
	ErrCourseNotFound = errors.New("course not found")
	ErrNotRefundable  = errors.New("only completed payments can be refunded")
	ErrNotProcessable = errors.New("payment is already settled")
)

type CourseReader interface {
	GetByID(ctx context.Context, id int64) (*course.Course, error)
}

type Notifier interface {
	SendPaymentReceipt(
		ctx context.Context,
		to mail.Address,
		courseTitle string,
		amount decimal.Decimal,
		currency, transactionID string,
	) error
}

type Options struct {
	GatewayURL      string
	DefaultCurrency string
}

type Service struct {
	db       core.TxBeginner
	repo     Repository
	courses  CourseReader
	notifier Notifier
	opts     Options
	logger   *slog.Logger
}

func NewService(
	db core.TxBeginner,
	repo Repository,
	courses CourseReader,
	notifier Notifier,
	opts Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "USD"
	}
	opts.GatewayURL = strings.TrimRight(opts.GatewayURL, "/")

	return &Service{
		db:       db,
		repo:     repo,
		courses:  courses,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// PaymentURL is where the client completes a pending payment.
func (s *Service) PaymentURL(id int64) string {
	return s.opts.GatewayURL + "/" + strconv.FormatInt(id, 10)
}

func (s *Service) Create(
	ctx context.Context,
	actor core.Actor,
	req CreatePaymentRequest,
) (*Payment, error) {
	if req.Amount == nil {
		return nil, ErrMissingAmount
	}
	if req.Amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	if _, err := s.courses.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	p := &Payment{
		UserID:        actor.UserID,
		CourseID:      req.CourseID,
		Amount:        *req.Amount,
		Currency:      strings.ToUpper(req.Currency),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
	}
	if p.Currency == "" {
		p.Currency = s.opts.DefaultCurrency
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "payment.created",
		attribute.Int64("payment.id", p.ID),
		attribute.Int64("course.id", p.CourseID),
	)

	return s.repo.GetByID(ctx, p.ID)
}

func (s *Service) Get(ctx context.Context, actor core.Actor, id int64) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("payment %d: %w", id, core.ErrForbidden)
	}

	return p, nil
}

func (s *Service) MyPayments(
	ctx context.Context,
	userID int64,
	params core.ListParams,
) ([]Payment, int, error) {
	return s.repo.ListByUser(ctx, userID, params)
}

func (s *Service) CoursePayments(
	ctx context.Context,
	actor core.Actor,
	courseID int64,
	params core.ListParams,
) ([]Payment, int, error) {
	c, err := s.courses.GetByID(ctx, courseID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, 0, ErrCourseNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	if !actor.CanManage(c.InstructorID) {
		return nil, 0, fmt.Errorf("course %d payments: %w", courseID, core.ErrForbidden)
	}

	return s.repo.ListByCourse(ctx, courseID, params)
}

func (s *Service) ByStatus(
	ctx context.Context,
	status string,
	params core.ListParams,
) ([]Payment, int, error) {
	return s.repo.ListByStatus(ctx, status, params)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*Payment, error) {
	return s.transition(ctx, id, req.PaymentStatus, req.TransactionID, req.GatewayResponse, nil)
}

// Process settles a pending or failed payment with the gateway's reference.
func (s *Service) Process(ctx context.Context, id int64, req ProcessRequest) (*Payment, error) {
	transactionID := strings.TrimSpace(req.TransactionID)
	return s.transition(ctx, id, StatusCompleted, &transactionID, req.GatewayResponse,
		func(p *Payment) error {
			if p.PaymentStatus == StatusCompleted || p.PaymentStatus == StatusRefunded {
				return ErrNotProcessable
			}
			return nil
		})
}

func (s *Service) Refund(ctx context.Context, id int64) (*Payment, error) {
	return s.transition(ctx, id, StatusRefunded, nil, nil,
		func(p *Payment) error {
			if p.PaymentStatus != StatusCompleted {
				return ErrNotRefundable
			}
			return nil
		})
}

// transition writes the payment status in one transaction and, for
// completed and refunded, mirrors it onto the student's enrollment. A move
// into completed sends a receipt.
func (s *Service) transition(
	ctx context.Context,
	id int64,
	status string,
	transactionID, gatewayResponse *string,
	check func(*Payment) error,
) (*Payment, error) {
	ctx, span := core.StartSpan(ctx, "payment.transition",
		attribute.Int64("payment.id", id),
		attribute.String("payment.status", status),
	)
	defer span.End()

	var before, after *Payment
	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		var err error
		before, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(before); err != nil {
				return fmt.Errorf("payment %d: %w", id, err)
			}
		}

		if err := repo.UpdateStatus(ctx, id, status, transactionID, gatewayResponse); err != nil {
			return err
		}

		if SettlesEnrollment(status) {
			linked, err := enrollment.NewRepository(tx).
				SetPaymentStatus(ctx, before.UserID, before.CourseID, status)
			if err != nil {
				return err
			}
			if linked {
				core.AddSpanEvent(ctx, "payment.enrollment_synced")
			}
		}

		after, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	if status == StatusCompleted && before.PaymentStatus != StatusCompleted {
		s.sendReceipt(ctx, after)
	}

	return after, nil
}

func (s *Service) sendReceipt(ctx context.Context, p *Payment) {
	if s.notifier == nil {
		return
	}

	var transactionID string
	if p.TransactionID != nil {
		transactionID = *p.TransactionID
	}

	to := mail.Address{Name: p.UserName, Address: p.UserEmail}
	err := s.notifier.SendPaymentReceipt(ctx, to, p.CourseTitle, p.Amount, p.Currency, transactionID)
	if err != nil {
		s.logger.WarnContext(ctx, "payment receipt email failed",
			"payment_id", p.ID, "error", err)
	}
}

// Revenue sums completed payments. Instructors only ever see their own.
func (s *Service) Revenue(
	ctx context.Context,
	actor core.Actor,
	filter RevenueFilter,
) (decimal.Decimal, error) {
	if !actor.IsAdmin() {
		id := actor.UserID
		filter.InstructorID = &id
	}

	return s.repo.TotalRevenue(ctx, filter)
}

func (s *Service) RevenueReport(ctx context.Context, filter RevenueFilter) ([]Payment, error) {
	return s.repo.RevenueReport(ctx, filter)
}
