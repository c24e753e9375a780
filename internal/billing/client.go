package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Client wraps the Stripe SDK with the handful of operations the billing
// service needs. It is constructed once at startup and injected into the
// schedule creator and webhook processor.
type Client struct {
	api     *client.API
	catalog *Catalog
	cfg     Config
}

// NewClient creates a Stripe-backed billing client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &Client{
		api:     api,
		catalog: NewCatalog(cfg),
		cfg:     cfg,
	}, nil
}

// Catalog exposes the price-to-plan mapping.
func (c *Client) Catalog() *Catalog {
	return c.catalog
}

// CustomerParams describes the contact details attached to a new customer.
type CustomerParams struct {
	Email    string
	Name     string
	Phone    string
	Metadata map[string]string
}

// FindCustomerByEmail returns the first customer matching the email, or nil
// if none exists. Email is the natural key used to keep repeated signups
// idempotent.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*stripe.Customer, error) {
	if email == "" {
		return nil, ErrMissingCustomerEmail
	}

	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := c.api.Customers.List(params)
	for iter.Next() {
		return iter.Customer(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to look up customer by email: %w", err)
	}
	return nil, nil
}

// EnsureCustomer looks up a customer by email, creating one with the supplied
// contact details if it does not exist.
func (c *Client) EnsureCustomer(ctx context.Context, p CustomerParams) (*stripe.Customer, error) {
	existing, err := c.FindCustomerByEmail(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	params := &stripe.CustomerParams{Email: stripe.String(p.Email)}
	params.Context = ctx
	if p.Name != "" {
		params.Name = stripe.String(p.Name)
	}
	if p.Phone != "" {
		params.Phone = stripe.String(p.Phone)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	cust, err := c.api.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return cust, nil
}

// GetCustomer fetches a customer by its provider id.
func (c *Client) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := c.api.Customers.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer %s: %w", id, err)
	}
	return cust, nil
}

// GetSubscription fetches a subscription by its provider id. Webhook payloads
// carry only the subscription id, so handlers fetch the full object when they
// need the price for plan resolution.
func (c *Client) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription %s: %w", id, err)
	}
	return sub, nil
}

// CreateFoundingSchedule provisions the two-phase founding-member schedule:
// one billing iteration at the discounted introductory price, then the
// standard price indefinitely. The provider emits "subscription_schedule.released"
// when the introductory phase ends, which is the processor's signal to move
// the user onto regular monthly billing.
func (c *Client) CreateFoundingSchedule(ctx context.Context, customerID string) (*stripe.SubscriptionSchedule, error) {
	params := &stripe.SubscriptionScheduleParams{
		Customer:    stripe.String(customerID),
		StartDate:   stripe.Int64(time.Now().Unix()),
		EndBehavior: stripe.String(string(stripe.SubscriptionScheduleEndBehaviorRelease)),
		Phases: []*stripe.SubscriptionSchedulePhaseParams{
			{
				Items: []*stripe.SubscriptionSchedulePhaseItemParams{
					{
						Price:    stripe.String(c.cfg.FoundingIntroPriceID),
						Quantity: stripe.Int64(1),
					},
				},
				Iterations: stripe.Int64(1),
			},
			{
				Items: []*stripe.SubscriptionSchedulePhaseItemParams{
					{
						Price:    stripe.String(c.cfg.FoundingStandardPriceID),
						Quantity: stripe.Int64(1),
					},
				},
			},
		},
	}
	params.Context = ctx

	schedule, err := c.api.SubscriptionSchedules.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription schedule: %w", err)
	}
	return schedule, nil
}

// CheckoutParams describes a hosted checkout session request.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CreateCheckoutSession creates a hosted checkout session for the given price
// with promotion codes allowed.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(p.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:          stripe.String(p.SuccessURL),
		CancelURL:           stripe.String(p.CancelURL),
		AllowPromotionCodes: stripe.Bool(true),
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if session.URL == "" {
		return nil, ErrNoCheckoutURL
	}
	return session, nil
}
