// AngelaMos | 2026
// sender.go

package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sync"

	"github.com/edustack/edustack-api/internal/config"
)

type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks the provider configured under email.provider.
func NewSender(cfg config.EmailConfig, logger *slog.Logger) (Sender, error) {
	from := mail.Address{Name: cfg.FromName, Address: cfg.FromAddress}

	switch cfg.Provider {
	case config.EmailProviderSMTP:
		return newSMTPSender(cfg, from), nil
	case config.EmailProviderSendgrid:
		return newSendgridSender(cfg.SendgridAPIKey, from), nil
	case config.EmailProviderLog, "":
		return NewLogSender(logger, from), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
	from   mail.Address
}

func NewLogSender(logger *slog.Logger, from mail.Address) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger, from: from}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email not delivered (log provider)",
		"from", s.from.String(),
		"to", msg.To.String(),
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}

// MemorySender keeps every message in memory. Used by tests and local tooling.
type MemorySender struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (s *MemorySender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *MemorySender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *MemorySender) Last() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sent) == 0 {
		return Message{}, false
	}
	return s.sent[len(s.sent)-1], true
}
