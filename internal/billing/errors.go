package billing

import "errors"

var (
	ErrMissingAPIKey         = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret  = errors.New("billing provider webhook secret is required")
	ErrSignatureVerification = errors.New("webhook signature verification failed")
	ErrMalformedEvent        = errors.New("malformed webhook event payload")
	ErrMissingCustomerEmail  = errors.New("customer email is required")
	ErrNoCheckoutURL         = errors.New("no checkout URL returned from provider")
)
