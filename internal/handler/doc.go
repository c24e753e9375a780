// Package handler exposes the billing service over HTTP: the provider
// webhook endpoint, the founding-member checkout endpoint, a healthcheck,
// and an operator view of unresolved webhook deliveries.
package handler
