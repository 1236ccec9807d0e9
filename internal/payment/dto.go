// AngelaMos | 2026
// dto.go

package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	CourseID      int64            `json:"course_id"      validate:"required,gt=0"`
	Amount        *decimal.Decimal `json:"amount"         validate:"required"`
	Currency      string           `json:"currency"       validate:"omitempty,len=3,alpha"`
	PaymentMethod string           `json:"payment_method" validate:"required,notblank,max=50"`
}

type UpdateStatusRequest struct {
	PaymentStatus   string  `json:"payment_status"   validate:"required,oneof=pending completed failed refunded"`
	TransactionID   *string `json:"transaction_id"   validate:"omitempty,max=255"`
	GatewayResponse *string `json:"gateway_response" validate:"omitempty,max=10000"`
}

type ProcessRequest struct {
	TransactionID   string  `json:"transaction_id"   validate:"required,notblank,max=255"`
	GatewayResponse *string `json:"gateway_response" validate:"omitempty,max=10000"`
}

type PaymentResponse struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	UserName        string          `json:"user_name"`
	CourseID        int64           `json:"course_id"`
	CourseTitle     string          `json:"course_title"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	TransactionID   *string         `json:"transaction_id"`
	GatewayResponse *string         `json:"gateway_response"`
	PaymentURL      string          `json:"payment_url,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type RevenueResponse struct {
	Total decimal.Decimal `json:"total"`
}

type RevenueReportResponse struct {
	Total    decimal.Decimal   `json:"total"`
	Count    int               `json:"count"`
	Payments []PaymentResponse `json:"payments"`
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		UserName:        p.UserName,
		CourseID:        p.CourseID,
		CourseTitle:     p.CourseTitle,
		Amount:          p.Amount,
		Currency:        p.Currency,
		PaymentMethod:   p.PaymentMethod,
		PaymentStatus:   p.PaymentStatus,
		TransactionID:   p.TransactionID,
		GatewayResponse: p.GatewayResponse,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func ToPaymentResponseList(payments []Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// ToRevenueReportResponse totals the listed payments.
func ToRevenueReportResponse(payments []Payment) RevenueReportResponse {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}

	return RevenueReportResponse{
		Total:    total,
		Count:    len(payments),
		Payments: ToPaymentResponseList(payments),
	}
}
