package schedule

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v76"

	"github.com/prospectly/billing-service/internal/billing"
	"github.com/prospectly/billing-service/internal/store"
)

// BillingAPI is the slice of the provider client the creator needs.
type BillingAPI interface {
	EnsureCustomer(ctx context.Context, p billing.CustomerParams) (*stripe.Customer, error)
	CreateFoundingSchedule(ctx context.Context, customerID string) (*stripe.SubscriptionSchedule, error)
	CreateCheckoutSession(ctx context.Context, p billing.CheckoutParams) (*stripe.CheckoutSession, error)
}

// Request is a signup form submission.
type Request struct {
	Email      string
	SuccessURL string
	CancelURL  string
	FirstName  string
	LastName   string
	Phone      string
}

// Validate fails fast before any provider call is made.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return ErrMissingEmail
	}
	if r.SuccessURL == "" || r.CancelURL == "" {
		return ErrMissingRedirectURL
	}
	return nil
}

// Result carries everything the caller needs to redirect the user and
// correlate the eventual webhooks. UserID is empty when the user write was
// skipped by a store failure; the webhook processor repairs the record after
// payment.
type Result struct {
	URL        string
	ScheduleID string
	CustomerID string
	SessionID  string
	UserID     string
}

// Creator turns a signup into a hosted checkout session backed by the
// two-phase founding-member subscription schedule.
type Creator struct {
	api          BillingAPI
	users        store.UserStore
	introPriceID string
	log          *slog.Logger
}

// New creates a schedule creator. introPriceID is the discounted first-phase
// price the checkout session charges.
func New(api BillingAPI, users store.UserStore, introPriceID string, log *slog.Logger) *Creator {
	return &Creator{
		api:          api,
		users:        users,
		introPriceID: introPriceID,
		log:          log,
	}
}

// Create provisions the billing customer, subscription schedule, and checkout
// session for a founding-member signup. The whole operation is safe to retry:
// the customer lookup-or-create is idempotent by email, and abandoned
// schedules never bill anyone.
func (c *Creator) Create(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cust, err := c.api.EnsureCustomer(ctx, billing.CustomerParams{
		Email: req.Email,
		Name:  strings.TrimSpace(req.FirstName + " " + req.LastName),
		Phone: req.Phone,
		Metadata: map[string]string{
			"first_name": req.FirstName,
			"last_name":  req.LastName,
		},
	})
	if err != nil {
		return nil, err
	}

	// A store outage must not block payment: the checkout-completed webhook
	// recreates the record from the billing customer afterwards.
	user := c.upsertUser(ctx, req, cust.ID)

	sched, err := c.api.CreateFoundingSchedule(ctx, cust.ID)
	if err != nil {
		return nil, err
	}

	var userID string
	if user != nil {
		userID = user.ID.String()
	}

	session, err := c.api.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID: cust.ID,
		PriceID:    c.introPriceID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		Metadata: map[string]string{
			"schedule_id":     sched.ID,
			"user_id":         userID,
			"founding_member": "true",
		},
	})
	if err != nil {
		return nil, err
	}

	if user != nil {
		user.BillingScheduleID = &sched.ID
		user.CheckoutSessionID = &session.ID
		if err := c.users.Update(ctx, user); err != nil {
			c.log.ErrorContext(ctx, "failed to persist schedule ids on user",
				"email", req.Email, "schedule_id", sched.ID, "error", err)
		}
	}

	return &Result{
		URL:        session.URL,
		ScheduleID: sched.ID,
		CustomerID: cust.ID,
		SessionID:  session.ID,
		UserID:     userID,
	}, nil
}

// upsertUser writes the pending user record keyed by email. Returns nil when
// the write failed; the failure is logged, never propagated.
func (c *Creator) upsertUser(ctx context.Context, req Request, customerID string) *store.User {
	user, err := c.users.FindByEmail(ctx, req.Email)
	isNew := errors.Is(err, store.ErrUserNotFound)
	if err != nil && !isNew {
		c.log.ErrorContext(ctx, "failed to look up user for signup", "email", req.Email, "error", err)
		return nil
	}
	if isNew {
		user = &store.User{Email: req.Email}
	}

	// Newly supplied contact details replace existing values; empty input
	// never blanks out what is already there.
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}

	user.BillingCustomerID = &customerID
	user.Status = store.AccountPending
	user.Plan = billing.PlanProspector
	user.SubscriptionStatus = billing.StatusInactive
	user.SubscriptionType = billing.TypeFoundingMemberSchedule
	user.FoundingMember = true

	if isNew {
		err = c.users.Create(ctx, user)
	} else {
		err = c.users.Update(ctx, user)
	}
	if err != nil {
		c.log.ErrorContext(ctx, "failed to write pending user for signup", "email", req.Email, "error", err)
		return nil
	}
	return user
}
