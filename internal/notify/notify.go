// Package notify delivers low stock alerts raised when parts consumption leaves
// a model's stock at or below its minimum threshold.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nadmax/servicetime/internal/inventory"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrEmptyAlert = errors.New("alert has no low stock parts")

type Alert struct {
	Model     string                `json:"model"`
	Levels    []inventory.PartLevel `json:"low_stock"`
	CreatedAt time.Time             `json:"created_at"`
}

func NewLowStockAlert(result inventory.ConsumeResult) Alert {
	return Alert{
		Model:     result.Model,
		Levels:    result.Levels,
		CreatedAt: time.Now(),
	}
}

func (a Alert) Subject() string {
	return fmt.Sprintf("Low stock alert: %s (%d parts)", a.Model, len(a.Levels))
}

func (a Alert) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following parts for %s are at or below their minimum threshold:\n\n", a.Model)
	for _, l := range a.Levels {
		fmt.Fprintf(&b, "- %s: %d left (minimum %d)\n", l.Part, l.Quantity, l.MinThreshold)
	}
	fmt.Fprintf(&b, "\nRaised at %s.\n", a.CreatedAt.Format(time.RFC3339))

	return b.String()
}

type Sender interface {
	Send(ctx context.Context, alert Alert) error
}

type mailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridSender struct {
	client mailClient
	from   *mail.Email
	to     *mail.Email
}

func NewSendGridSender(apiKey, fromName, fromAddress, to string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
		to:     mail.NewEmail("", to),
	}
}

func (s *SendGridSender) Send(_ context.Context, alert Alert) error {
	if len(alert.Levels) == 0 {
		return ErrEmptyAlert
	}

	body := alert.Body()
	email := mail.NewSingleEmail(s.from, alert.Subject(), s.to, body, strings.ReplaceAll(body, "\n", "<br>"))
	response, err := s.client.Send(email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}

	log.Printf("Low stock alert for %s sent to %s (status: %d)", alert.Model, s.to.Address, response.StatusCode)
	return nil
}

// LogSender writes alerts to the process log when no mail provider is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, alert Alert) error {
	if len(alert.Levels) == 0 {
		return ErrEmptyAlert
	}

	parts := make([]string, 0, len(alert.Levels))
	for _, l := range alert.Levels {
		parts = append(parts, fmt.Sprintf("%s=%d/%d", l.Part, l.Quantity, l.MinThreshold))
	}
	log.Printf("low stock alert for %s: %s", alert.Model, strings.Join(parts, ", "))

	return nil
}
