// Package processor is the authoritative state-transition engine for the
// subscription lifecycle. It verifies each webhook delivery's signature,
// archives the payload, and dispatches to a per-event-type handler under a
// bounded retry policy.
//
// Idempotency under at-least-once delivery rests on the audit table's unique
// provider event id: duplicate deliveries of a processed event short-circuit,
// while redeliveries of an unprocessed event run again. Handlers recompute
// state from each event's own payload, so reordering and redelivery are safe.
package processor
