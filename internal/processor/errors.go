package processor

import "errors"

var (
	ErrProcessingFailed = errors.New("webhook event processing failed")
	ErrAuditWriteFailed = errors.New("failed to write billing event audit record")
	ErrMissingCustomer  = errors.New("event payload has no customer reference")
)
