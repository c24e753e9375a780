package processor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/prospectly/billing-service/internal/billing"
	"github.com/prospectly/billing-service/internal/store"
)

func TestCheckoutCompleted(t *testing.T) {
	t.Parallel()

	t.Run("founding member creates active user with promo window", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		f.api.customers["cus_9"] = &stripe.Customer{
			ID:    "cus_9",
			Email: "founder@example.com",
			Name:  "Acme LLC",
			Phone: "+15550100",
			Address: &stripe.Address{
				Line1:      "1 Main St",
				City:       "Portland",
				State:      "OR",
				PostalCode: "97201",
				Country:    "US",
			},
			Metadata: map[string]string{"first_name": "Jane", "last_name": "Doe"},
		}
		f.api.subscriptions["sub_9"] = &stripe.Subscription{
			ID:     "sub_9",
			Status: stripe.SubscriptionStatusActive,
			Items: &stripe.SubscriptionItemList{
				Data: []*stripe.SubscriptionItem{
					{Price: &stripe.Price{ID: "price_founding_intro"}},
				},
			},
			CurrentPeriodStart: time.Now().Unix(),
			CurrentPeriodEnd:   time.Now().AddDate(0, 1, 0).Unix(),
		}

		payload, header := signedPayload(t, "evt_checkout", "checkout.session.completed", map[string]any{
			"id":           "cs_9",
			"customer":     "cus_9",
			"subscription": "sub_9",
			"metadata": map[string]string{
				"founding_member": "true",
				"schedule_id":     "sub_sched_9",
			},
		})

		res, err := f.proc.Process(context.Background(), payload, header)
		require.NoError(t, err)
		assert.True(t, res.Processed)

		user := f.users.byEmail(t, "founder@example.com")
		assert.Equal(t, store.AccountActive, user.Status)
		assert.Equal(t, "Jane", user.FirstName)
		assert.Equal(t, "Doe", user.LastName)
		assert.Equal(t, billing.PlanFoundingMember, user.Plan)
		assert.Equal(t, billing.TypeFoundingMemberSchedule, user.SubscriptionType)
		assert.Equal(t, billing.StatusActive, user.SubscriptionStatus)
		assert.True(t, user.FoundingMember)

		assert.True(t, user.PromoActive)
		require.NotNil(t, user.PromoType)
		assert.Equal(t, "founding_member", *user.PromoType)
		require.NotNil(t, user.PromoExpiresAt)
		assert.WithinDuration(t, time.Now().AddDate(0, 3, 0), *user.PromoExpiresAt, time.Minute)

		require.NotNil(t, user.BillingCustomerID)
		assert.Equal(t, "cus_9", *user.BillingCustomerID)
		require.NotNil(t, user.BillingSubscriptionID)
		assert.Equal(t, "sub_9", *user.BillingSubscriptionID)
		require.NotNil(t, user.BillingScheduleID)
		assert.Equal(t, "sub_sched_9", *user.BillingScheduleID)
		require.NotNil(t, user.CheckoutSessionID)
		assert.Equal(t, "cs_9", *user.CheckoutSessionID)

		require.NotNil(t, user.BillingName)
		assert.Equal(t, "Acme LLC", *user.BillingName)
		require.NotNil(t, user.BillingAddress)
		assert.Equal(t, "1 Main St, Portland, OR, 97201, US", *user.BillingAddress)
		require.NotNil(t, user.CurrentPeriodEnd)

		assert.Equal(t, []string{"welcome-founding:founder@example.com"}, f.notifier.recorded())
	})

	t.Run("regular checkout keeps existing account contact", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.users.add(&store.User{
			Email:     "amy@example.com",
			FirstName: "Amy",
			Status:    store.AccountPending,
			Plan:      billing.PlanFree,
		})

		f.api.customers["cus_2"] = &stripe.Customer{
			ID:       "cus_2",
			Email:    "amy@example.com",
			Metadata: map[string]string{"first_name": "Amelia"},
		}
		f.api.subscriptions["sub_2"] = &stripe.Subscription{
			ID:     "sub_2",
			Status: stripe.SubscriptionStatusActive,
			Items: &stripe.SubscriptionItemList{
				Data: []*stripe.SubscriptionItem{
					{Price: &stripe.Price{ID: "price_networker"}},
				},
			},
		}

		payload, header := signedPayload(t, "evt_checkout2", "checkout.session.completed", map[string]any{
			"id":           "cs_2",
			"customer":     "cus_2",
			"subscription": "sub_2",
		})

		_, err := f.proc.Process(context.Background(), payload, header)
		require.NoError(t, err)

		user := f.users.byEmail(t, "amy@example.com")
		assert.Equal(t, "Amy", user.FirstName, "existing account contact must not be overwritten")
		assert.Equal(t, store.AccountActive, user.Status)
		assert.Equal(t, billing.PlanNetworker, user.Plan)
		assert.Equal(t, billing.TypeRegularMonthly, user.SubscriptionType)
		assert.False(t, user.FoundingMember)
		assert.False(t, user.PromoActive)
		assert.Equal(t, []string{"welcome:amy@example.com"}, f.notifier.recorded())
	})

	t.Run("session without customer fails", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		payload, header := signedPayload(t, "evt_checkout3", "checkout.session.completed", map[string]any{
			"id": "cs_3",
		})

		_, err := f.proc.Process(context.Background(), payload, header)
		require.Error(t, err)
		assert.False(t, f.events.row(t, "evt_checkout3").Processed)
	})
}

func TestSubscriptionChanged(t *testing.T) {
	t.Parallel()

	t.Run("recomputes plan and period from payload", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.seedActiveUser("jane@example.com", "cus_1", "sub_1")

		periodEnd := time.Now().AddDate(0, 1, 0).Unix()
		payload, header := signedPayload(t, "evt_subup", "customer.subscription.updated", map[string]any{
			"id":                   "sub_1",
			"status":               "active",
			"cancel_at_period_end": true,
			"current_period_end":   periodEnd,
			"items": map[string]any{
				"data": []map[string]any{
					{"price": map[string]any{"id": "price_rainmaker"}},
				},
			},
		})

		_, err := f.proc.Process(context.Background(), payload, header)
		require.NoError(t, err)

		user := f.users.byEmail(t, "jane@example.com")
		assert.Equal(t, billing.PlanRainmaker, user.Plan)
		assert.Equal(t, billing.StatusActive, user.SubscriptionStatus)
		assert.True(t, user.CancelAtPeriodEnd)
		require.NotNil(t, user.CurrentPeriodEnd)
		assert.Equal(t, periodEnd, user.CurrentPeriodEnd.Unix())
	})

	t.Run("unknown subscription is skipped", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		payload, header := signedPayload(t, "evt_subup2", "customer.subscription.updated", map[string]any{
			"id":     "sub_missing",
			"status": "active",
		})

		res, err := f.proc.Process(context.Background(), payload, header)
		require.NoError(t, err)
		assert.True(t, res.Processed)
	})
}

func TestSubscriptionDeleted(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedActiveUser("jane@example.com", "cus_1", "sub_1")

	payload, header := signedPayload(t, "evt_subdel", "customer.subscription.deleted", map[string]any{
		"id":     "sub_1",
		"status": "canceled",
	})

	_, err := f.proc.Process(context.Background(), payload, header)
	require.NoError(t, err)

	user := f.users.byEmail(t, "jane@example.com")
	assert.Equal(t, billing.StatusCancelled, user.SubscriptionStatus)
	assert.True(t, user.CancelAtPeriodEnd)
	assert.Equal(t, []string{"cancellation:jane@example.com"}, f.notifier.recorded())
}

func TestScheduleReleased(t *testing.T) {
	t.Parallel()

	t.Run("founding member moves to regular billing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		scheduleID := "sub_sched_1"
		customerID := "cus_1"
		oldSubID := "sub_old"
		promoType := "founding_member"
		f.users.add(&store.User{
			Email:                 "founder@example.com",
			FirstName:             "Jane",
			Status:                store.AccountActive,
			BillingCustomerID:     &customerID,
			BillingSubscriptionID: &oldSubID,
			BillingScheduleID:     &scheduleID,
			Plan:                  billing.PlanFoundingMember,
			SubscriptionStatus:    billing.StatusActive,
			SubscriptionType:      billing.TypeFoundingMemberSchedule,
			FoundingMember:        true,
			PromoActive:           true,
			PromoType:             &promoType,
		})

		payload, header := signedPayload(t, "evt_released", "subscription_schedule.released", map[string]any{
			"id":           "sub_sched_1",
			"subscription": "sub_new",
		})

		_, err := f.proc.Process(context.Background(), payload, header)
		require.NoError(t, err)

		user := f.users.byEmail(t, "founder@example.com")
		assert.Equal(t, billing.TypeRegularMonthly, user.SubscriptionType)
		assert.Equal(t, billing.StatusActive, user.SubscriptionStatus)
		assert.False(t, user.PromoActive)
		require.NotNil(t, user.PromoExpiresAt)
		assert.WithinDuration(t, time.Now(), *user.PromoExpiresAt, time.Minute)
		require.NotNil(t, user.BillingSubscriptionID)
		assert.Equal(t, "sub_new", *user.BillingSubscriptionID)
		assert.True(t, user.FoundingMember, "founding badge survives the transition")

		assert.Equal(t, []string{"plan-transition:founder@example.com"}, f.notifier.recorded())
	})

	t.Run("release with no matching user is a no-op", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		payload, header := signedPayload(t, "evt_released2", "subscription_schedule.released", map[string]any{
			"id": "sub_sched_orphan",
		})

		res, err := f.proc.Process(context.Background(), payload, header)
		require.NoError(t, err)
		assert.True(t, res.Processed)
		assert.Empty(t, f.notifier.recorded())
	})
}

func TestInvoicePaymentFailed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedActiveUser("jane@example.com", "cus_1", "sub_1")

	payload, header := signedPayload(t, "evt_invfail", "invoice.payment_failed", map[string]any{
		"id":         "in_1",
		"customer":   "cus_1",
		"amount_due": 7500,
	})

	_, err := f.proc.Process(context.Background(), payload, header)
	require.NoError(t, err)

	user := f.users.byEmail(t, "jane@example.com")
	assert.Equal(t, billing.StatusPastDue, user.SubscriptionStatus)
	assert.Equal(t, []string{"payment-failed:jane@example.com:7500"}, f.notifier.recorded())
}

func TestCustomerUpdated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedActiveUser("jane@example.com", "cus_1", "sub_1")

	payload, header := signedPayload(t, "evt_custup", "customer.updated", map[string]any{
		"id":    "cus_1",
		"name":  "Jane Doe Consulting",
		"email": "billing@janedoe.com",
		"address": map[string]any{
			"line1":   "500 Oak Ave",
			"city":    "Austin",
			"state":   "TX",
			"country": "US",
		},
	})

	_, err := f.proc.Process(context.Background(), payload, header)
	require.NoError(t, err)

	user := f.users.byEmail(t, "jane@example.com")
	require.NotNil(t, user.BillingName)
	assert.Equal(t, "Jane Doe Consulting", *user.BillingName)
	require.NotNil(t, user.BillingEmail)
	assert.Equal(t, "billing@janedoe.com", *user.BillingEmail)
	require.NotNil(t, user.BillingAddress)
	assert.Equal(t, "500 Oak Ave, Austin, TX, US", *user.BillingAddress)

	// Account contact stays separate from billing contact.
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
}
