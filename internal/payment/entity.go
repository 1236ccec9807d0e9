// AngelaMos | 2026
// entity.go

package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edustack/edustack-api/internal/enrollment"
)

const (
	StatusPending   = enrollment.PaymentPending
	StatusCompleted = enrollment.PaymentCompleted
	StatusFailed    = enrollment.PaymentFailed
	StatusRefunded  = enrollment.PaymentRefunded
)

// SettlesEnrollment reports whether moving a payment into status is copied
// onto the matching enrollment. Pending and failed never touch it.
func SettlesEnrollment(status string) bool {
	return status == StatusCompleted || status == StatusRefunded
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

type Payment struct {
	ID              int64           `db:"id"`
	UserID          int64           `db:"user_id"`
	CourseID        int64           `db:"course_id"`
	Amount          decimal.Decimal `db:"amount"`
	Currency        string          `db:"currency"`
	PaymentMethod   string          `db:"payment_method"`
	PaymentStatus   string          `db:"payment_status"`
	TransactionID   *string         `db:"transaction_id"`
	GatewayResponse *string         `db:"gateway_response"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`

	UserName     string `db:"user_name"`
	UserEmail    string `db:"user_email"`
	CourseTitle  string `db:"course_title"`
	InstructorID int64  `db:"instructor_id"`
}

// RevenueFilter narrows completed payments. Nil fields do not filter.
type RevenueFilter struct {
	InstructorID *int64
	From         *time.Time
	To           *time.Time
}
