// Package email provides a transactional email sender interface with a
// Postmark-backed production implementation and a file-based development
// implementation.
package email
