package store

import "context"

// UserStore persists account/billing records. All lookups are by unique keys
// so concurrent webhook handlers naturally partition without application
// level locks.
type UserStore interface {
	// FindByEmail returns ErrUserNotFound if no row matches.
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByCustomerID(ctx context.Context, customerID string) (*User, error)
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*User, error)
	FindByScheduleID(ctx context.Context, scheduleID string) (*User, error)

	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error

	// UpdateBillingContact propagates billing-contact fields to every user
	// sharing the billing customer id and returns the number of rows touched.
	UpdateBillingContact(ctx context.Context, customerID string, contact BillingContact) (int64, error)
}

// EventStore is the append-only webhook audit log.
type EventStore interface {
	// Insert records the event payload. A conflict on the provider event id
	// is not an error: inserted reports whether a new row was created and
	// alreadyProcessed whether the existing row finished processing.
	Insert(ctx context.Context, ev *BillingEvent) (inserted bool, alreadyProcessed bool, err error)

	// MarkProcessed sets processed=true with a timestamp and clears any
	// prior error message.
	MarkProcessed(ctx context.Context, eventID string) error

	// MarkFailed records the final error after retries are exhausted.
	MarkFailed(ctx context.Context, eventID string, errMsg string) error

	// SetRetryCount updates the retry counter before each retry attempt.
	SetRetryCount(ctx context.Context, eventID string, count int) error
}

// DeliveryStore tracks per-delivery processing outcome for monitoring.
type DeliveryStore interface {
	Record(ctx context.Context, d *Delivery) error
	UpdateStatus(ctx context.Context, eventID string, status DeliveryStatus, retryCount int, errMsg string) error

	// ListUnresolved returns retrying/failed deliveries for the admin
	// health view, most recent first.
	ListUnresolved(ctx context.Context, limit int) ([]Delivery, error)
}
