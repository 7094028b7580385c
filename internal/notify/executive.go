// Package notify emails the sales executive a copy of every booking handoff.
package notify

import (
	"context"
	"errors"
	netmail "net/mail"
	"strings"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

const defaultFromName = "Unravel Experience"

// Mailbox is an email address with an optional display name.
type Mailbox struct {
	Name    string
	Address string
}

func (m Mailbox) empty() bool { return strings.TrimSpace(m.Address) == "" }

// String renders the mailbox as an RFC 5322 address.
func (m Mailbox) String() string {
	return (&netmail.Address{Name: m.Name, Address: m.Address}).String()
}

// Letter is one rendered handoff email.
type Letter struct {
	To Mailbox
	// ReplyTo is the customer, when they shared an email address.
	ReplyTo Mailbox
	Subject string
	Text    string
}

// Transport delivers a letter and returns the provider's message id, if any.
type Transport interface {
	Deliver(ctx context.Context, l Letter) (string, error)
}

// ExecutiveMailer emails handoff summaries to the sales executive.
type ExecutiveMailer struct {
	transport Transport
	to        Mailbox
	logger    *logging.Logger
}

// NewExecutiveMailer returns nil when either the transport or the address is missing.
func NewExecutiveMailer(transport Transport, to Mailbox, logger *logging.Logger) *ExecutiveMailer {
	to.Address = strings.TrimSpace(to.Address)
	if transport == nil || to.empty() {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ExecutiveMailer{transport: transport, to: to, logger: logger}
}

var _ conversation.ExecutiveNotifier = (*ExecutiveMailer)(nil)

// NotifyExecutive sends the plain text handoff summary.
func (m *ExecutiveMailer) NotifyExecutive(ctx context.Context, h conversation.Handoff) error {
	if m == nil || m.transport == nil {
		return errors.New("notify: executive mailer not configured")
	}
	letter := handoffLetter(m.to, h)
	id, err := m.transport.Deliver(ctx, letter)
	if err != nil {
		m.logger.Error("executive email failed", "error", err, "to", redactEmail(m.to.Address))
		return err
	}
	m.logger.Info("executive email sent",
		"to", redactEmail(m.to.Address),
		"reply_to", redactEmail(letter.ReplyTo.Address),
		"message_id", id,
	)
	return nil
}

func handoffLetter(to Mailbox, h conversation.Handoff) Letter {
	s := h.Summary
	letter := Letter{To: to, Subject: handoffSubject(h), Text: h.Text}
	if addr := strings.TrimSpace(s.Email); addr != "" {
		letter.ReplyTo = Mailbox{Name: s.Name, Address: addr}
	}
	return letter
}

// handoffSubject names the customer and the trip, e.g.
// "Booking request from Asha Verma: Bali Bliss (vendor quotes)".
func handoffSubject(h conversation.Handoff) string {
	s := h.Summary
	who := strings.TrimSpace(s.Name)
	if who == "" {
		who = s.Phone
	}
	subject := "Booking request from " + who
	trip := strings.TrimSpace(s.Package)
	if trip == "" {
		trip = strings.TrimSpace(s.Destination)
	}
	if trip != "" {
		subject += ": " + trip
	}
	if h.WithQuotes {
		subject += " (vendor quotes)"
	}
	return subject
}

// LogTransport only logs; EMAIL_PROVIDER=stub uses it.
type LogTransport struct {
	logger *logging.Logger
}

func NewLogTransport(logger *logging.Logger) *LogTransport {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Deliver(_ context.Context, l Letter) (string, error) {
	t.logger.Info("email delivery skipped", "to", redactEmail(l.To.Address), "subject", l.Subject)
	return "", nil
}

func redactEmail(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at <= 1 {
		return addr
	}
	return addr[:1] + "***" + addr[at:]
}
