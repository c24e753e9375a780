// Package pg provides PostgreSQL plumbing built on pgx/v5: connection pool
// bootstrap with retry, goose schema migrations, a healthcheck closure, and
// helpers for classifying common Postgres errors.
package pg
