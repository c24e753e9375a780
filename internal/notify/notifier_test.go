package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospectly/billing-service/internal/notify"
	"github.com/prospectly/billing-service/pkg/email"
)

// capturingSender records every email instead of sending it.
type capturingSender struct {
	sent []email.SendEmailParams
}

func (c *capturingSender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	c.sent = append(c.sent, params)
	return nil
}

func newTestNotifier() (*capturingSender, notify.Notifier) {
	sender := &capturingSender{}
	n := notify.New(sender, notify.Config{
		AdminEmail: "alerts@prospectly.com",
		SiteURL:    "https://app.prospectly.com",
	})
	return sender, n
}

func TestNotifier_Welcome(t *testing.T) {
	t.Parallel()

	t.Run("founding member variant", func(t *testing.T) {
		t.Parallel()
		sender, n := newTestNotifier()

		require.NoError(t, n.Welcome(context.Background(), "jane@example.com", "Jane", true))
		require.Len(t, sender.sent, 1)

		msg := sender.sent[0]
		assert.Equal(t, "jane@example.com", msg.SendTo)
		assert.Equal(t, "welcome-founding-member", msg.Tag)
		assert.Contains(t, msg.BodyHTML, "Founding Member")
		assert.Contains(t, msg.BodyHTML, "Hi Jane,")
	})

	t.Run("regular variant", func(t *testing.T) {
		t.Parallel()
		sender, n := newTestNotifier()

		require.NoError(t, n.Welcome(context.Background(), "joe@example.com", "", false))
		require.Len(t, sender.sent, 1)

		msg := sender.sent[0]
		assert.Equal(t, "welcome", msg.Tag)
		assert.Contains(t, msg.BodyHTML, "Hi there,")
		assert.NotContains(t, msg.BodyHTML, "Founding Member")
	})
}

func TestNotifier_PaymentEmails(t *testing.T) {
	t.Parallel()

	t.Run("receipt includes amount and link", func(t *testing.T) {
		t.Parallel()
		sender, n := newTestNotifier()

		require.NoError(t, n.PaymentReceipt(context.Background(), "jane@example.com", 7500, "https://pay.example.com/receipt/1"))
		require.Len(t, sender.sent, 1)

		msg := sender.sent[0]
		assert.Equal(t, "payment-confirmation", msg.Tag)
		assert.Contains(t, msg.Subject, "$75.00")
		assert.Contains(t, msg.BodyHTML, "https://pay.example.com/receipt/1")
	})

	t.Run("failed payment prompts payment method update", func(t *testing.T) {
		t.Parallel()
		sender, n := newTestNotifier()

		require.NoError(t, n.PaymentFailed(context.Background(), "jane@example.com", 7500))
		require.Len(t, sender.sent, 1)

		msg := sender.sent[0]
		assert.Equal(t, "payment-failed", msg.Tag)
		assert.Contains(t, msg.BodyHTML, "update your payment method")
	})
}

func TestNotifier_AdminAlert(t *testing.T) {
	t.Parallel()

	sender, n := newTestNotifier()

	require.NoError(t, n.AdminAlert(context.Background(), "evt_1", "invoice.payment_failed", 3, "store unavailable"))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "alerts@prospectly.com", msg.SendTo)
	assert.Equal(t, "admin-alert", msg.Tag)
	assert.Contains(t, msg.BodyHTML, "evt_1")
	assert.Contains(t, msg.BodyHTML, "store unavailable")
}
