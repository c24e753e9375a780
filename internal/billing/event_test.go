package billing_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/prospectly/billing-service/internal/billing"
)

const testWebhookSecret = "whsec_test_secret"

// signedPayload builds a provider event envelope with a valid signature
// header, mirroring what the provider sends in production.
func signedPayload(t *testing.T, eventID, eventType string, object map[string]any) ([]byte, string) {
	t.Helper()

	data, err := json.Marshal(map[string]any{
		"id":   eventID,
		"type": eventType,
		"data": map[string]any{"object": object},
	})
	require.NoError(t, err)

	now := time.Now()
	sig := webhook.ComputeSignature(now, data, testWebhookSecret)
	header := fmt.Sprintf("t=%d,v1=%x", now.Unix(), sig)
	return data, header
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	verifier, err := billing.NewVerifier(testWebhookSecret)
	require.NoError(t, err)

	t.Run("accepts correctly signed payload", func(t *testing.T) {
		t.Parallel()
		payload, header := signedPayload(t, "evt_1", "invoice.payment_failed", map[string]any{
			"id":         "in_1",
			"customer":   "cus_1",
			"amount_due": 7500,
		})

		ev, err := verifier.Verify(payload, header)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", ev.ID)
		assert.Equal(t, billing.KindInvoicePaymentFailed, ev.Kind)
		require.NotNil(t, ev.Invoice)
		assert.Equal(t, "cus_1", ev.Invoice.Customer.ID)
		assert.Equal(t, int64(7500), ev.Invoice.AmountDue)
	})

	t.Run("rejects missing signature header", func(t *testing.T) {
		t.Parallel()
		payload, _ := signedPayload(t, "evt_2", "customer.updated", map[string]any{"id": "cus_2"})

		_, err := verifier.Verify(payload, "")
		assert.ErrorIs(t, err, billing.ErrSignatureVerification)
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		t.Parallel()
		payload, header := signedPayload(t, "evt_3", "customer.updated", map[string]any{"id": "cus_3"})
		payload[len(payload)-2] = 'X'

		_, err := verifier.Verify(payload, header)
		assert.ErrorIs(t, err, billing.ErrSignatureVerification)
	})

	t.Run("rejects signature from a different secret", func(t *testing.T) {
		t.Parallel()
		data := []byte(`{"id":"evt_4","type":"customer.updated","data":{"object":{}}}`)
		now := time.Now()
		sig := webhook.ComputeSignature(now, data, "whsec_other")
		header := fmt.Sprintf("t=%d,v1=%x", now.Unix(), sig)

		_, err := verifier.Verify(data, header)
		assert.ErrorIs(t, err, billing.ErrSignatureVerification)
	})
}

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, eventType string, object map[string]any) *billing.Event {
		t.Helper()
		raw, err := json.Marshal(object)
		require.NoError(t, err)
		ev, err := billing.DecodeEvent(stripe.Event{
			ID:   "evt_decode",
			Type: stripe.EventType(eventType),
			Data: &stripe.EventData{Raw: raw},
		}, raw)
		require.NoError(t, err)
		return ev
	}

	t.Run("checkout session", func(t *testing.T) {
		t.Parallel()
		ev := decode(t, "checkout.session.completed", map[string]any{
			"id":       "cs_1",
			"customer": "cus_1",
			"metadata": map[string]string{"schedule_id": "sub_sched_1"},
		})
		assert.Equal(t, billing.KindCheckoutCompleted, ev.Kind)
		require.NotNil(t, ev.CheckoutSession)
		assert.Equal(t, "cs_1", ev.CheckoutSession.ID)
		assert.Equal(t, "sub_sched_1", ev.CheckoutSession.Metadata["schedule_id"])
	})

	t.Run("subscription variants", func(t *testing.T) {
		t.Parallel()
		for _, typ := range []string{
			"customer.subscription.created",
			"customer.subscription.updated",
			"customer.subscription.deleted",
		} {
			ev := decode(t, typ, map[string]any{"id": "sub_1", "status": "active"})
			require.NotNil(t, ev.Subscription, typ)
			assert.Equal(t, "sub_1", ev.Subscription.ID)
		}
	})

	t.Run("schedule released", func(t *testing.T) {
		t.Parallel()
		ev := decode(t, "subscription_schedule.released", map[string]any{"id": "sub_sched_9"})
		assert.Equal(t, billing.KindScheduleReleased, ev.Kind)
		require.NotNil(t, ev.Schedule)
		assert.Equal(t, "sub_sched_9", ev.Schedule.ID)
	})

	t.Run("unknown type is preserved without payload", func(t *testing.T) {
		t.Parallel()
		ev := decode(t, "charge.refunded", map[string]any{"id": "ch_1"})
		assert.Equal(t, billing.KindUnknown, ev.Kind)
		assert.Nil(t, ev.CheckoutSession)
		assert.Nil(t, ev.Subscription)
		assert.Nil(t, ev.Invoice)
	})

	t.Run("malformed payload fails", func(t *testing.T) {
		t.Parallel()
		_, err := billing.DecodeEvent(stripe.Event{
			ID:   "evt_bad",
			Type: "customer.updated",
			Data: &stripe.EventData{Raw: []byte(`"not an object"`)},
		}, nil)
		assert.ErrorIs(t, err, billing.ErrMalformedEvent)
	})
}
