package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/prospectly/billing-service/internal/billing"
)

// AccountStatus tracks the account lifecycle independent of billing state.
type AccountStatus string

const (
	AccountPending AccountStatus = "pending"
	AccountActive  AccountStatus = "active"
)

// User is the account/billing record. Account-contact fields and
// billing-contact fields are kept separate: billing fields default to the
// account contact but once set by the provider they are authoritative for
// invoicing and must not be overwritten by account edits.
type User struct {
	ID        uuid.UUID
	Email     string // natural key for lookups and merges
	AuthID    *string
	FirstName string
	LastName  string
	Phone     string
	Status    AccountStatus

	BillingCustomerID     *string
	BillingSubscriptionID *string
	BillingScheduleID     *string
	CheckoutSessionID     *string

	Plan               billing.PlanName
	SubscriptionStatus billing.SubscriptionStatus
	SubscriptionType   billing.SubscriptionType
	FoundingMember     bool

	PromoActive    bool
	PromoType      *string
	PromoExpiresAt *time.Time

	BillingName    *string
	BillingEmail   *string
	BillingPhone   *string
	BillingAddress *string

	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
	TrialEnd           *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BillingContact carries the invoicing contact fields propagated from the
// provider's customer record.
type BillingContact struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// BillingEvent is the append-only audit record of a received webhook payload.
// EventID is the provider's event id and is unique; a duplicate delivery must
// not create a second row.
type BillingEvent struct {
	ID          int64
	EventID     string
	EventType   string
	Payload     []byte
	Processed   bool
	ProcessedAt *time.Time
	Error       *string
	RetryCount  int
	CreatedAt   time.Time
}

// DeliveryStatus is the outcome of one webhook delivery over its retries.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRetrying  DeliveryStatus = "retrying"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Delivery is the monitoring record for one webhook delivery, distinct from
// BillingEvent: it tracks processing outcome, not the payload archive.
type Delivery struct {
	ID         int64
	EventID    string
	EventType  string
	Status     DeliveryStatus
	RetryCount int
	Error      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
