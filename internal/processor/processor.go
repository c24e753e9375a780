package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v76"

	"github.com/prospectly/billing-service/internal/billing"
	"github.com/prospectly/billing-service/internal/notify"
	"github.com/prospectly/billing-service/internal/store"
	"github.com/prospectly/billing-service/pkg/backoff"
)

// EventVerifier authenticates and decodes a raw webhook payload.
type EventVerifier interface {
	Verify(payload []byte, sigHeader string) (*billing.Event, error)
}

// BillingAPI is the slice of the provider client the handlers need: webhook
// payloads carry ids, not expanded objects, so handlers fetch the customer
// and subscription when an event requires their details.
type BillingAPI interface {
	GetCustomer(ctx context.Context, id string) (*stripe.Customer, error)
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
}

// Result reports the outcome of processing one webhook delivery.
type Result struct {
	EventID   string
	EventType string
	Processed bool
}

// Processor is the authoritative state-transition engine for the subscription
// lifecycle. Each delivery is handled by an independent stateless invocation;
// idempotency under at-least-once delivery comes from the audit table's
// uniqueness on the provider event id, not from in-process locking.
type Processor struct {
	verifier   EventVerifier
	api        BillingAPI
	catalog    *billing.Catalog
	users      store.UserStore
	events     store.EventStore
	deliveries store.DeliveryStore
	notifier   notify.Notifier
	log        *slog.Logger

	maxRetries int
	backoff    backoff.Strategy
}

// New creates a webhook processor. All dependencies are required; options
// adjust the retry policy.
func New(
	verifier EventVerifier,
	api BillingAPI,
	catalog *billing.Catalog,
	users store.UserStore,
	events store.EventStore,
	deliveries store.DeliveryStore,
	notifier notify.Notifier,
	log *slog.Logger,
	opts ...Option,
) *Processor {
	p := &Processor{
		verifier:   verifier,
		api:        api,
		catalog:    catalog,
		users:      users,
		events:     events,
		deliveries: deliveries,
		notifier:   notifier,
		log:        log,
		maxRetries: 3,
		backoff:    backoff.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the full pipeline for one delivery: verify, record, dispatch
// with bounded retry. An unverifiable payload is rejected with no side
// effects at all, since its origin cannot be trusted.
func (p *Processor) Process(ctx context.Context, payload []byte, sigHeader string) (*Result, error) {
	ev, err := p.verifier.Verify(payload, sigHeader)
	if err != nil {
		return nil, err
	}

	log := p.log.With("event_id", ev.ID, "event_type", ev.Type)

	// The delivery log is monitoring, not the consistency anchor; a failure
	// here must not block processing the event itself.
	if err := p.deliveries.Record(ctx, &store.Delivery{
		EventID:   ev.ID,
		EventType: ev.Type,
		Status:    store.DeliveryDelivered,
	}); err != nil {
		log.ErrorContext(ctx, "failed to record webhook delivery", "error", err)
	}

	inserted, alreadyProcessed, err := p.events.Insert(ctx, &store.BillingEvent{
		EventID:   ev.ID,
		EventType: ev.Type,
		Payload:   ev.Raw,
	})
	if err != nil {
		return nil, errors.Join(ErrAuditWriteFailed, err)
	}
	if !inserted && alreadyProcessed {
		// Duplicate delivery of a completed event: the unique constraint on
		// the event id already did the work. Success, no second processing.
		log.InfoContext(ctx, "duplicate webhook delivery ignored")
		return &Result{EventID: ev.ID, EventType: ev.Type, Processed: true}, nil
	}

	return p.dispatchWithRetry(ctx, ev, log)
}

// dispatchWithRetry wraps the per-event handler in a bounded retry loop.
// Attempt 0 is the initial try; each retry updates the audit row's retry
// counter first, then waits out the backoff delay.
func (p *Processor) dispatchWithRetry(ctx context.Context, ev *billing.Event, log *slog.Logger) (*Result, error) {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			if err := p.events.SetRetryCount(ctx, ev.ID, attempt); err != nil {
				log.ErrorContext(ctx, "failed to update audit retry count", "error", err)
			}
			if err := p.deliveries.UpdateStatus(ctx, ev.ID, store.DeliveryRetrying, attempt, lastErr.Error()); err != nil {
				log.ErrorContext(ctx, "failed to update delivery status", "error", err)
			}

			delay := p.backoff.NextInterval(attempt)
			log.WarnContext(ctx, "retrying webhook handler", "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := p.dispatch(ctx, ev); err != nil {
			lastErr = err
			continue
		}

		if err := p.events.MarkProcessed(ctx, ev.ID); err != nil {
			log.ErrorContext(ctx, "failed to mark audit row processed", "error", err)
		}
		// Always written on success: the delivery row may still carry a
		// retrying or failed status from an earlier delivery of this event.
		if err := p.deliveries.UpdateStatus(ctx, ev.ID, store.DeliveryDelivered, attempt, ""); err != nil {
			log.ErrorContext(ctx, "failed to update delivery status", "error", err)
		}

		log.InfoContext(ctx, "webhook event processed", "attempts", attempt+1)
		return &Result{EventID: ev.ID, EventType: ev.Type, Processed: true}, nil
	}

	// Retries exhausted: leave a permanent unprocessed mark, flag the
	// delivery, and alert an administrator. The HTTP response still reports
	// failure so the provider redelivers.
	if err := p.events.MarkFailed(ctx, ev.ID, lastErr.Error()); err != nil {
		log.ErrorContext(ctx, "failed to mark audit row failed", "error", err)
	}
	if err := p.deliveries.UpdateStatus(ctx, ev.ID, store.DeliveryFailed, p.maxRetries, lastErr.Error()); err != nil {
		log.ErrorContext(ctx, "failed to update delivery status", "error", err)
	}
	if err := p.notifier.AdminAlert(ctx, ev.ID, ev.Type, p.maxRetries, lastErr.Error()); err != nil {
		log.ErrorContext(ctx, "failed to send admin alert", "error", err)
	}

	log.ErrorContext(ctx, "webhook event failed permanently", "retries", p.maxRetries, "error", lastErr)
	return nil, fmt.Errorf("%w after %d retries: %w", ErrProcessingFailed, p.maxRetries, lastErr)
}

// dispatch routes a decoded event to its handler. Unknown kinds are a
// successful no-op so that new provider event types never break processing.
func (p *Processor) dispatch(ctx context.Context, ev *billing.Event) error {
	switch ev.Kind {
	case billing.KindCheckoutCompleted:
		return p.handleCheckoutCompleted(ctx, ev.CheckoutSession)
	case billing.KindSubscriptionCreated, billing.KindSubscriptionUpdated:
		return p.handleSubscriptionChanged(ctx, ev.Subscription)
	case billing.KindSubscriptionDeleted:
		return p.handleSubscriptionDeleted(ctx, ev.Subscription)
	case billing.KindScheduleReleased:
		return p.handleScheduleReleased(ctx, ev.Schedule)
	case billing.KindInvoicePaid:
		return p.handleInvoicePaid(ctx, ev.Invoice)
	case billing.KindInvoicePaymentFailed:
		return p.handleInvoicePaymentFailed(ctx, ev.Invoice)
	case billing.KindCustomerUpdated:
		return p.handleCustomerUpdated(ctx, ev.Customer)
	default:
		p.log.DebugContext(ctx, "ignoring unhandled webhook event type", "event_type", ev.Type)
		return nil
	}
}
