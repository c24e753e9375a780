package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"

	"github.com/prospectly/billing-service/internal/billing"
	"github.com/prospectly/billing-service/internal/store"
)

// foundingPromoMonths is the length of the founding-member promo window,
// counted from checkout completion.
const foundingPromoMonths = 3

// handleCheckoutCompleted converts a completed checkout into an active user
// record. The user is matched by the billing customer's email, so the handler
// repairs the record even when the schedule creator's user write failed.
func (p *Processor) handleCheckoutCompleted(ctx context.Context, cs *stripe.CheckoutSession) error {
	if cs.Customer == nil || cs.Customer.ID == "" {
		return fmt.Errorf("%w: checkout session %s", ErrMissingCustomer, cs.ID)
	}

	cust, err := p.api.GetCustomer(ctx, cs.Customer.ID)
	if err != nil {
		return err
	}

	foundingMember := cs.Metadata["founding_member"] == "true"

	// The session payload does not expand line items; the subscription holds
	// the price the customer actually subscribed to.
	var sub *stripe.Subscription
	if cs.Subscription != nil && cs.Subscription.ID != "" {
		sub, err = p.api.GetSubscription(ctx, cs.Subscription.ID)
		if err != nil {
			return err
		}
	}
	plan := p.catalog.ResolvePlan(firstPriceID(sub))

	user, err := p.users.FindByEmail(ctx, cust.Email)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		user = &store.User{Email: cust.Email}
	case err != nil:
		return err
	}

	// Account contact comes from the metadata attached at customer creation;
	// never blank out values the user already has.
	overlayIfEmpty(&user.FirstName, cust.Metadata["first_name"])
	overlayIfEmpty(&user.LastName, cust.Metadata["last_name"])
	overlayIfEmpty(&user.Phone, cust.Phone)

	// Billing contact comes from the billing customer record, which is
	// authoritative for invoicing.
	user.BillingName = nilIfEmpty(cust.Name)
	user.BillingEmail = nilIfEmpty(cust.Email)
	user.BillingPhone = nilIfEmpty(cust.Phone)
	user.BillingAddress = nilIfEmpty(formatAddress(cust.Address))

	user.BillingCustomerID = nilIfEmpty(cust.ID)
	user.CheckoutSessionID = nilIfEmpty(cs.ID)
	if scheduleID := cs.Metadata["schedule_id"]; scheduleID != "" {
		user.BillingScheduleID = &scheduleID
	}

	user.Status = store.AccountActive
	user.Plan = plan
	user.FoundingMember = foundingMember
	if foundingMember {
		user.SubscriptionType = billing.TypeFoundingMemberSchedule
		promoType := "founding_member"
		promoExpires := time.Now().UTC().AddDate(0, foundingPromoMonths, 0)
		user.PromoActive = true
		user.PromoType = &promoType
		user.PromoExpiresAt = &promoExpires
	} else {
		user.SubscriptionType = billing.TypeRegularMonthly
	}

	if sub != nil {
		user.BillingSubscriptionID = nilIfEmpty(sub.ID)
		user.SubscriptionStatus = billing.MapStatus(sub.Status)
		applyPeriod(user, sub)
	} else {
		user.SubscriptionStatus = billing.StatusActive
	}

	if err := p.saveUser(ctx, user); err != nil {
		return err
	}
	p.log.InfoContext(ctx, "checkout completed",
		"email", user.Email, "plan", billing.Info(plan).DisplayName, "founding_member", foundingMember)

	if err := p.notifier.Welcome(ctx, user.Email, user.FirstName, foundingMember); err != nil {
		p.log.ErrorContext(ctx, "failed to send welcome email", "email", user.Email, "error", err)
	}
	return nil
}

// handleSubscriptionChanged recomputes the full subscription state from the
// event payload rather than diffing against assumed prior state, which keeps
// it safe under redelivery and reordering.
func (p *Processor) handleSubscriptionChanged(ctx context.Context, sub *stripe.Subscription) error {
	user, err := p.users.FindBySubscriptionID(ctx, sub.ID)
	if errors.Is(err, store.ErrUserNotFound) {
		// The user row is created by checkout completion; a subscription
		// event racing ahead of it has nothing to update yet.
		p.log.InfoContext(ctx, "no user for subscription, skipping", "subscription_id", sub.ID)
		return nil
	}
	if err != nil {
		return err
	}

	user.Plan = p.catalog.ResolvePlan(firstPriceID(sub))
	user.SubscriptionStatus = billing.MapStatus(sub.Status)
	applyPeriod(user, sub)

	return p.users.Update(ctx, user)
}

func (p *Processor) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	user, err := p.users.FindBySubscriptionID(ctx, sub.ID)
	if errors.Is(err, store.ErrUserNotFound) {
		p.log.InfoContext(ctx, "no user for deleted subscription, skipping", "subscription_id", sub.ID)
		return nil
	}
	if err != nil {
		return err
	}

	user.SubscriptionStatus = billing.StatusCancelled
	user.CancelAtPeriodEnd = true
	if err := p.users.Update(ctx, user); err != nil {
		return err
	}

	if err := p.notifier.Cancellation(ctx, user.Email, user.FirstName); err != nil {
		p.log.ErrorContext(ctx, "failed to send cancellation email", "email", user.Email, "error", err)
	}
	return nil
}

// handleScheduleReleased moves a founding member onto regular monthly billing
// once the introductory phase ends. A schedule with no matching user belongs
// to a test or orphaned record and is skipped.
func (p *Processor) handleScheduleReleased(ctx context.Context, schedule *stripe.SubscriptionSchedule) error {
	user, err := p.users.FindByScheduleID(ctx, schedule.ID)
	if errors.Is(err, store.ErrUserNotFound) {
		p.log.InfoContext(ctx, "no user for released schedule, skipping", "schedule_id", schedule.ID)
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.SubscriptionType = billing.TypeRegularMonthly
	user.SubscriptionStatus = billing.StatusActive
	user.PromoActive = false
	user.PromoExpiresAt = &now
	if schedule.Subscription != nil && schedule.Subscription.ID != "" {
		user.BillingSubscriptionID = &schedule.Subscription.ID
	}

	if err := p.users.Update(ctx, user); err != nil {
		return err
	}

	if err := p.notifier.PlanTransition(ctx, user.Email, user.FirstName); err != nil {
		p.log.ErrorContext(ctx, "failed to send plan transition email", "email", user.Email, "error", err)
	}
	return nil
}

func (p *Processor) handleInvoicePaid(ctx context.Context, inv *stripe.Invoice) error {
	if inv.Customer == nil || inv.Customer.ID == "" {
		return fmt.Errorf("%w: invoice %s", ErrMissingCustomer, inv.ID)
	}

	user, err := p.users.FindByCustomerID(ctx, inv.Customer.ID)
	if errors.Is(err, store.ErrUserNotFound) {
		p.log.InfoContext(ctx, "no user for paid invoice, skipping", "customer_id", inv.Customer.ID)
		return nil
	}
	if err != nil {
		return err
	}

	user.SubscriptionStatus = billing.StatusActive
	if err := p.users.Update(ctx, user); err != nil {
		return err
	}

	if err := p.notifier.PaymentReceipt(ctx, user.Email, inv.AmountPaid, inv.HostedInvoiceURL); err != nil {
		p.log.ErrorContext(ctx, "failed to send payment receipt", "email", user.Email, "error", err)
	}
	return nil
}

func (p *Processor) handleInvoicePaymentFailed(ctx context.Context, inv *stripe.Invoice) error {
	if inv.Customer == nil || inv.Customer.ID == "" {
		return fmt.Errorf("%w: invoice %s", ErrMissingCustomer, inv.ID)
	}

	user, err := p.users.FindByCustomerID(ctx, inv.Customer.ID)
	if errors.Is(err, store.ErrUserNotFound) {
		p.log.InfoContext(ctx, "no user for failed invoice, skipping", "customer_id", inv.Customer.ID)
		return nil
	}
	if err != nil {
		return err
	}

	user.SubscriptionStatus = billing.StatusPastDue
	if err := p.users.Update(ctx, user); err != nil {
		return err
	}

	if err := p.notifier.PaymentFailed(ctx, user.Email, inv.AmountDue); err != nil {
		p.log.ErrorContext(ctx, "failed to send payment failed email", "email", user.Email, "error", err)
	}
	return nil
}

// handleCustomerUpdated propagates billing-contact fields to every user row
// sharing the billing customer id. Account-contact fields are untouched:
// billing contact is authoritative for invoicing only.
func (p *Processor) handleCustomerUpdated(ctx context.Context, cust *stripe.Customer) error {
	contact := store.BillingContact{
		Name:    nilIfEmpty(cust.Name),
		Email:   nilIfEmpty(cust.Email),
		Phone:   nilIfEmpty(cust.Phone),
		Address: nilIfEmpty(formatAddress(cust.Address)),
	}

	n, err := p.users.UpdateBillingContact(ctx, cust.ID, contact)
	if err != nil {
		return err
	}
	if n > 1 {
		// A billing customer is expected to map to exactly one user.
		p.log.WarnContext(ctx, "billing customer shared by multiple users", "customer_id", cust.ID, "rows", n)
	}
	return nil
}

func (p *Processor) saveUser(ctx context.Context, user *store.User) error {
	if user.ID == uuid.Nil {
		return p.users.Create(ctx, user)
	}
	return p.users.Update(ctx, user)
}

func applyPeriod(user *store.User, sub *stripe.Subscription) {
	user.CurrentPeriodStart = unixTime(sub.CurrentPeriodStart)
	user.CurrentPeriodEnd = unixTime(sub.CurrentPeriodEnd)
	user.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
	user.TrialEnd = unixTime(sub.TrialEnd)
}

func firstPriceID(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	if price := sub.Items.Data[0].Price; price != nil {
		return price.ID
	}
	return ""
}

func unixTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func overlayIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

func formatAddress(addr *stripe.Address) string {
	if addr == nil {
		return ""
	}
	parts := make([]string, 0, 6)
	for _, part := range []string{addr.Line1, addr.Line2, addr.City, addr.State, addr.PostalCode, addr.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
