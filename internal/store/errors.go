package store

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDeliveryNotFound = errors.New("webhook delivery not found")
	ErrEventNotFound    = errors.New("billing event not found")
)
