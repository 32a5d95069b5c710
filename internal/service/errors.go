package service

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrProductInUse        = errors.New("product has ledger entries")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamFetch       = errors.New("product feed unavailable")
)
