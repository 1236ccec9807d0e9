// AngelaMos | 2026
// mailer.go

package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	texttmpl "text/template"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

const (
	tmplVerificationCode       = "verification_code"
	tmplPasswordReset          = "password_reset"
	tmplWelcome                = "welcome"
	tmplEnrollmentConfirmation = "enrollment_confirmation"
	tmplApplicationDecision    = "application_decision"
	tmplPaymentReceipt         = "payment_receipt"
)

type templatePair struct {
	html *htmltmpl.Template
	text *texttmpl.Template
}

// Mailer renders the platform's transactional messages and hands them to a
// Sender.
type Mailer struct {
	sender      Sender
	appName     string
	frontendURL string
	logger      *slog.Logger
	templates   map[string]templatePair
}

func NewMailer(sender Sender, appName, frontendURL string, logger *slog.Logger) (*Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	names := []string{
		tmplVerificationCode,
		tmplPasswordReset,
		tmplWelcome,
		tmplEnrollmentConfirmation,
		tmplApplicationDecision,
		tmplPaymentReceipt,
	}

	templates := make(map[string]templatePair, len(names))
	for _, name := range names {
		html, err := htmltmpl.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s html template: %w", name, err)
		}
		text, err := texttmpl.ParseFS(templateFS, "templates/"+name+".txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s text template: %w", name, err)
		}
		templates[name] = templatePair{html: html, text: text}
	}

	return &Mailer{
		sender:      sender,
		appName:     appName,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
		templates:   templates,
	}, nil
}

type templateData struct {
	AppName       string
	Name          string
	Code          string
	TTL           string
	Link          string
	CourseTitle   string
	Approved      bool
	Remarks       string
	Amount        string
	Currency      string
	TransactionID string
}

func (m *Mailer) send(
	ctx context.Context,
	tmpl string,
	to mail.Address,
	subject string,
	data templateData,
) error {
	pair, ok := m.templates[tmpl]
	if !ok {
		return fmt.Errorf("unknown email template %q", tmpl)
	}

	data.AppName = m.appName
	data.Name = to.Name

	var html, text bytes.Buffer
	if err := pair.html.ExecuteTemplate(&html, "layout", data); err != nil {
		return fmt.Errorf("render %s html: %w", tmpl, err)
	}
	if err := pair.text.ExecuteTemplate(&text, tmpl+".txt", data); err != nil {
		return fmt.Errorf("render %s text: %w", tmpl, err)
	}

	msg := Message{
		To:      to,
		Subject: fmt.Sprintf("[%s] %s", m.appName, subject),
		Text:    text.String(),
		HTML:    html.String(),
	}

	if err := m.sender.Send(ctx, msg); err != nil {
		m.logger.ErrorContext(ctx, "email delivery failed",
			"template", tmpl,
			"to", to.Address,
			"error", err,
		)
		return fmt.Errorf("send %s email: %w", tmpl, err)
	}

	m.logger.DebugContext(ctx, "email sent", "template", tmpl, "to", to.Address)
	return nil
}

func (m *Mailer) SendVerificationCode(
	ctx context.Context,
	to mail.Address,
	code string,
	ttl time.Duration,
) error {
	return m.send(ctx, tmplVerificationCode, to, "Verify your email", templateData{
		Code: code,
		TTL:  humanDuration(ttl),
	})
}

func (m *Mailer) SendPasswordReset(
	ctx context.Context,
	to mail.Address,
	token string,
	ttl time.Duration,
) error {
	link := m.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
	return m.send(ctx, tmplPasswordReset, to, "Reset your password", templateData{
		Link: link,
		TTL:  humanDuration(ttl),
	})
}

func (m *Mailer) SendWelcome(ctx context.Context, to mail.Address) error {
	return m.send(ctx, tmplWelcome, to, "Welcome aboard", templateData{
		Link: m.frontendURL,
	})
}

func (m *Mailer) SendEnrollmentConfirmation(
	ctx context.Context,
	to mail.Address,
	courseID int64,
	courseTitle string,
) error {
	return m.send(ctx, tmplEnrollmentConfirmation, to, "Enrollment confirmed", templateData{
		CourseTitle: courseTitle,
		Link:        fmt.Sprintf("%s/courses/%d", m.frontendURL, courseID),
	})
}

func (m *Mailer) SendApplicationDecision(
	ctx context.Context,
	to mail.Address,
	approved bool,
	remarks string,
) error {
	subject := "Your instructor application was not approved"
	if approved {
		subject = "Your instructor application was approved"
	}
	return m.send(ctx, tmplApplicationDecision, to, subject, templateData{
		Approved: approved,
		Remarks:  remarks,
	})
}

func (m *Mailer) SendPaymentReceipt(
	ctx context.Context,
	to mail.Address,
	courseTitle string,
	amount decimal.Decimal,
	currency, transactionID string,
) error {
	return m.send(ctx, tmplPaymentReceipt, to, "Payment receipt", templateData{
		CourseTitle:   courseTitle,
		Amount:        amount.StringFixed(2),
		Currency:      currency,
		TransactionID: transactionID,
	})
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d >= time.Minute && d%time.Minute == 0:
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	default:
		return d.String()
	}
}
