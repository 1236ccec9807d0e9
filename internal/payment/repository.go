// AngelaMos | 2026
// repository.go

package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/edustack/edustack-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	ListByUser(ctx context.Context, userID int64, params core.ListParams) ([]Payment, int, error)
	ListByCourse(ctx context.Context, courseID int64, params core.ListParams) ([]Payment, int, error)
	ListByStatus(ctx context.Context, status string, params core.ListParams) ([]Payment, int, error)
	UpdateStatus(ctx context.Context, id int64, status string, transactionID, gatewayResponse *string) error
	TotalRevenue(ctx context.Context, filter RevenueFilter) (decimal.Decimal, error)
	RevenueReport(ctx context.Context, filter RevenueFilter) ([]Payment, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectPayment = `
	SELECT p.id, p.user_id, p.course_id, p.amount, p.currency, p.payment_method,
	       p.payment_status, p.transaction_id, p.gateway_response, p.created_at,
	       p.updated_at, u.name AS user_name, u.email AS user_email,
	       c.title AS course_title, c.instructor_id
	FROM payments p
	JOIN users u ON u.id = p.user_id
	JOIN courses c ON c.id = p.course_id`

func (r *repository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (user_id, course_id, amount, currency, payment_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, payment_status, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.UserID,
		p.CourseID,
		p.Amount,
		p.Currency,
		p.PaymentMethod,
	).Scan(&p.ID, &p.PaymentStatus, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return core.WrapDBError("create payment", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, selectPayment+` WHERE p.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get payment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return &p, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID int64,
	params core.ListParams,
) ([]Payment, int, error) {
	var where core.WhereBuilder
	where.Add("p.user_id = ?", userID)
	return r.list(ctx, "list user payments", where, params)
}

func (r *repository) ListByCourse(
	ctx context.Context,
	courseID int64,
	params core.ListParams,
) ([]Payment, int, error) {
	var where core.WhereBuilder
	where.Add("p.course_id = ?", courseID)
	return r.list(ctx, "list course payments", where, params)
}

func (r *repository) ListByStatus(
	ctx context.Context,
	status string,
	params core.ListParams,
) ([]Payment, int, error) {
	var where core.WhereBuilder
	where.Add("p.payment_status = ?", status)
	return r.list(ctx, "list payments by status", where, params)
}

func (r *repository) list(
	ctx context.Context,
	op string,
	where core.WhereBuilder,
	params core.ListParams,
) ([]Payment, int, error) {
	params.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM payments p WHERE ` + where.Clause()
	if err := r.db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	next := where.Next()
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d`, selectPayment, where.Clause(), next, next+1)

	payments := []Payment{}
	args := append(where.Args(), params.PageSize, params.Offset())
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return payments, total, nil
}

// UpdateStatus sets the status. Nil transaction or gateway fields keep
// their stored value.
func (r *repository) UpdateStatus(
	ctx context.Context,
	id int64,
	status string,
	transactionID, gatewayResponse *string,
) error {
	query := `
		UPDATE payments
		SET payment_status = $2,
		    transaction_id = COALESCE($3, transaction_id),
		    gateway_response = COALESCE($4, gateway_response),
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, transactionID, gatewayResponse)
	if err != nil {
		return core.WrapDBError("update payment status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update payment status: %w", core.ErrNotFound)
	}

	return nil
}

func revenueWhere(filter RevenueFilter) core.WhereBuilder {
	var where core.WhereBuilder
	where.Add("p.payment_status = ?", StatusCompleted)
	if filter.InstructorID != nil {
		where.Add("c.instructor_id = ?", *filter.InstructorID)
	}
	if filter.From != nil {
		where.Add("p.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		where.Add("p.created_at <= ?", *filter.To)
	}
	return where
}

func (r *repository) TotalRevenue(ctx context.Context, filter RevenueFilter) (decimal.Decimal, error) {
	where := revenueWhere(filter)
	query := `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN courses c ON c.id = p.course_id
		WHERE ` + where.Clause()

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, where.Args()...); err != nil {
		return decimal.Zero, fmt.Errorf("total revenue: %w", err)
	}

	return total, nil
}

func (r *repository) RevenueReport(ctx context.Context, filter RevenueFilter) ([]Payment, error) {
	where := revenueWhere(filter)
	query := selectPayment + `
		WHERE ` + where.Clause() + `
		ORDER BY p.created_at DESC, p.id DESC`

	payments := []Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, where.Args()...); err != nil {
		return nil, fmt.Errorf("revenue report: %w", err)
	}

	return payments, nil
}
