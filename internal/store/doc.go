// Package store defines the persistence model for users, the webhook audit
// log, and delivery monitoring records, with PostgreSQL implementations
// backed by pgx.
package store
