// Package schedule turns a signup form submission into a live checkout
// session backed by a two-phase subscription schedule: one discounted
// introductory billing iteration, then the standard price indefinitely.
//
// The pending user record written here is a convenience, not a requirement:
// the webhook processor rebuilds it from the billing customer once payment
// completes, so a store outage never blocks checkout.
package schedule
