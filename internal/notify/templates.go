package notify

import (
	"fmt"
	"html"
)

// Bodies are deliberately plain HTML built in code. The product's marketing
// emails live in the email provider's template editor; these transactional
// notices only need to be legible and correct.

func greeting(firstName string) string {
	if firstName == "" {
		return "Hi there,"
	}
	return fmt.Sprintf("Hi %s,", html.EscapeString(firstName))
}

func welcomeBody(firstName, siteURL string) string {
	return fmt.Sprintf(`
		<h2>Welcome to Prospectly</h2>
		<p>%s</p>
		<p>Your subscription is active. Head over to your <a href="%s/dashboard">dashboard</a> to get started.</p>`,
		greeting(firstName), siteURL)
}

func foundingWelcomeBody(firstName, siteURL string) string {
	return fmt.Sprintf(`
		<h2>Welcome, Founding Member!</h2>
		<p>%s</p>
		<p>Thank you for joining as a founding member. Your discounted introductory
		period is active for your first billing cycle, after which standard pricing applies.</p>
		<p>Jump into your <a href="%s/dashboard">dashboard</a> to get started.</p>`,
		greeting(firstName), siteURL)
}

func cancellationBody(firstName, siteURL string) string {
	return fmt.Sprintf(`
		<h2>Subscription cancelled</h2>
		<p>%s</p>
		<p>Your subscription has been cancelled. You keep access until the end of
		your current billing period.</p>
		<p>Changed your mind? You can resubscribe any time from <a href="%s/pricing">our pricing page</a>.</p>`,
		greeting(firstName), siteURL)
}

func planTransitionBody(firstName, siteURL string) string {
	return fmt.Sprintf(`
		<h2>Your founding member period has ended</h2>
		<p>%s</p>
		<p>Your discounted founding-member period is complete and your subscription
		has moved to standard monthly billing. Nothing else changes. Thanks for
		being with us from the start.</p>
		<p>Manage your subscription from your <a href="%s/dashboard/billing">billing settings</a>.</p>`,
		greeting(firstName), siteURL)
}

func paymentReceiptBody(amountCents int64, receiptURL string) string {
	body := fmt.Sprintf(`
		<h2>Payment received</h2>
		<p>We've received your payment of <strong>%s</strong>.</p>`,
		formatAmount(amountCents))
	if receiptURL != "" {
		body += fmt.Sprintf(`<p><a href="%s">View your receipt</a></p>`, receiptURL)
	}
	return body
}

func paymentFailedBody(amountCents int64, siteURL string) string {
	return fmt.Sprintf(`
		<h2>Payment failed</h2>
		<p>We couldn't collect your payment of <strong>%s</strong>.</p>
		<p>Please <a href="%s/dashboard/billing">update your payment method</a> to keep your subscription active.</p>`,
		formatAmount(amountCents), siteURL)
}

func adminAlertBody(eventID, eventType string, retries int, failure string) string {
	return fmt.Sprintf(`
		<h2>Webhook processing failed</h2>
		<p>Event <code>%s</code> (<code>%s</code>) failed after %d retries.</p>
		<p>Last error:</p>
		<pre>%s</pre>
		<p>The event is marked unprocessed in the audit log; the provider will redeliver.</p>`,
		html.EscapeString(eventID), html.EscapeString(eventType), retries, html.EscapeString(failure))
}

func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
