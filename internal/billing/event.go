package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// EventKind enumerates the webhook event types the processor acts on.
// Anything outside this set decodes to KindUnknown, which handlers treat as a
// successful no-op.
type EventKind string

const (
	KindCheckoutCompleted    EventKind = "checkout_completed"
	KindSubscriptionCreated  EventKind = "subscription_created"
	KindSubscriptionUpdated  EventKind = "subscription_updated"
	KindSubscriptionDeleted  EventKind = "subscription_deleted"
	KindScheduleReleased     EventKind = "schedule_released"
	KindInvoicePaid          EventKind = "invoice_paid"
	KindInvoicePaymentFailed EventKind = "invoice_payment_failed"
	KindCustomerUpdated      EventKind = "customer_updated"
	KindUnknown              EventKind = "unknown"
)

// Event is a decoded webhook event. Exactly one payload field is set,
// matching Kind; KindUnknown carries only the raw payload.
type Event struct {
	ID   string
	Type string // provider's original event type
	Kind EventKind

	CheckoutSession *stripe.CheckoutSession
	Subscription    *stripe.Subscription
	Schedule        *stripe.SubscriptionSchedule
	Invoice         *stripe.Invoice
	Customer        *stripe.Customer

	Raw json.RawMessage // full event payload for the audit log
}

// DecodeEvent converts a verified provider event envelope into a typed Event.
func DecodeEvent(ev stripe.Event, raw []byte) (*Event, error) {
	out := &Event{
		ID:   ev.ID,
		Type: string(ev.Type),
		Kind: kindOf(string(ev.Type)),
		Raw:  raw,
	}

	var target any
	switch out.Kind {
	case KindCheckoutCompleted:
		out.CheckoutSession = &stripe.CheckoutSession{}
		target = out.CheckoutSession
	case KindSubscriptionCreated, KindSubscriptionUpdated, KindSubscriptionDeleted:
		out.Subscription = &stripe.Subscription{}
		target = out.Subscription
	case KindScheduleReleased:
		out.Schedule = &stripe.SubscriptionSchedule{}
		target = out.Schedule
	case KindInvoicePaid, KindInvoicePaymentFailed:
		out.Invoice = &stripe.Invoice{}
		target = out.Invoice
	case KindCustomerUpdated:
		out.Customer = &stripe.Customer{}
		target = out.Customer
	case KindUnknown:
		return out, nil
	}

	if err := json.Unmarshal(ev.Data.Raw, target); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedEvent, ev.Type, err)
	}

	return out, nil
}

func kindOf(eventType string) EventKind {
	switch eventType {
	case "checkout.session.completed":
		return KindCheckoutCompleted
	case "customer.subscription.created":
		return KindSubscriptionCreated
	case "customer.subscription.updated":
		return KindSubscriptionUpdated
	case "customer.subscription.deleted":
		return KindSubscriptionDeleted
	case "subscription_schedule.released":
		return KindScheduleReleased
	case "invoice.payment_succeeded":
		return KindInvoicePaid
	case "invoice.payment_failed":
		return KindInvoicePaymentFailed
	case "customer.updated":
		return KindCustomerUpdated
	default:
		return KindUnknown
	}
}

// Verifier authenticates raw webhook payloads against the provider signature
// header before any processing happens.
type Verifier struct {
	secret string
}

// NewVerifier creates a Verifier with the server-held signing secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrMissingWebhookSecret
	}
	return &Verifier{secret: secret}, nil
}

// Verify checks the signature header against the raw body and decodes the
// event. A missing or invalid signature returns ErrSignatureVerification;
// callers must not touch the payload in that case.
func (v *Verifier) Verify(payload []byte, sigHeader string) (*Event, error) {
	if sigHeader == "" {
		return nil, fmt.Errorf("%w: missing signature header", ErrSignatureVerification)
	}

	// Events created under older dashboard API versions would otherwise be
	// rejected on the version mismatch alone.
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Join(ErrSignatureVerification, err)
	}

	return DecodeEvent(ev, payload)
}
