// Package backoff provides retry delay strategies where the delay is a pure
// function of the attempt number.
package backoff
