package schedule

import "errors"

var (
	ErrMissingEmail       = errors.New("customer email is required")
	ErrMissingRedirectURL = errors.New("success and cancel redirect urls are required")
)
