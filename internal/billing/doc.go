// Package billing wraps the Stripe SDK: customer lookup and creation,
// two-phase subscription schedules, hosted checkout sessions, webhook
// signature verification, and the price-to-plan catalog.
package billing
