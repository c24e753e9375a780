package notify

import (
	"context"
	"fmt"

	"github.com/prospectly/billing-service/pkg/email"
)

// Config holds notification addressing.
type Config struct {
	AdminEmail string `env:"ADMIN_ALERT_EMAIL,required"`
	SiteURL    string `env:"SITE_URL" envDefault:"https://app.prospectly.com"`
}

// Notifier decides which transactional email to trigger for each billing
// lifecycle transition. All sends are best-effort from the caller's
// perspective: failures are returned for logging but never roll back state.
type Notifier interface {
	Welcome(ctx context.Context, to, firstName string, foundingMember bool) error
	Cancellation(ctx context.Context, to, firstName string) error
	PlanTransition(ctx context.Context, to, firstName string) error
	PaymentReceipt(ctx context.Context, to string, amountCents int64, receiptURL string) error
	PaymentFailed(ctx context.Context, to string, amountCents int64) error
	AdminAlert(ctx context.Context, eventID, eventType string, retries int, failure string) error
}

type notifier struct {
	sender email.EmailSender
	cfg    Config
}

// New creates a Notifier backed by the given email sender.
func New(sender email.EmailSender, cfg Config) Notifier {
	return &notifier{sender: sender, cfg: cfg}
}

func (n *notifier) Welcome(ctx context.Context, to, firstName string, foundingMember bool) error {
	subject := "Welcome to Prospectly"
	tag := "welcome"
	body := welcomeBody(firstName, n.cfg.SiteURL)
	if foundingMember {
		subject = "Welcome, Founding Member!"
		tag = "welcome-founding-member"
		body = foundingWelcomeBody(firstName, n.cfg.SiteURL)
	}

	return n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyHTML: body,
		Tag:      tag,
	})
}

func (n *notifier) Cancellation(ctx context.Context, to, firstName string) error {
	return n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  "Your subscription has been cancelled",
		BodyHTML: cancellationBody(firstName, n.cfg.SiteURL),
		Tag:      "subscription-cancelled",
	})
}

func (n *notifier) PlanTransition(ctx context.Context, to, firstName string) error {
	return n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  "Your founding member period has ended",
		BodyHTML: planTransitionBody(firstName, n.cfg.SiteURL),
		Tag:      "plan-transition",
	})
}

func (n *notifier) PaymentReceipt(ctx context.Context, to string, amountCents int64, receiptURL string) error {
	return n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  fmt.Sprintf("Payment received: %s", formatAmount(amountCents)),
		BodyHTML: paymentReceiptBody(amountCents, receiptURL),
		Tag:      "payment-confirmation",
	})
}

func (n *notifier) PaymentFailed(ctx context.Context, to string, amountCents int64) error {
	return n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  "Payment failed: action required",
		BodyHTML: paymentFailedBody(amountCents, n.cfg.SiteURL),
		Tag:      "payment-failed",
	})
}

func (n *notifier) AdminAlert(ctx context.Context, eventID, eventType string, retries int, failure string) error {
	return n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   n.cfg.AdminEmail,
		Subject:  fmt.Sprintf("[billing] webhook processing failed: %s", eventType),
		BodyHTML: adminAlertBody(eventID, eventType, retries, failure),
		Tag:      "admin-alert",
	})
}
