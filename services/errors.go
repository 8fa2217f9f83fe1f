package services

import "errors"

// Checkout error taxonomy. Catalog, inventory and session-lifecycle
// errors are returned to the caller verbatim; storage and cache errors
// outside the session path are absorbed and logged.
var (
	ErrValidation                = errors.New("invalid checkout input")
	ErrProductNotFound           = errors.New("product not found")
	ErrProductUnavailable        = errors.New("product unavailable")
	ErrInsufficientInventory     = errors.New("insufficient inventory")
	ErrPaymentInitiationFailed   = errors.New("payment initiation failed")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrSessionExpiredOrNotFound  = errors.New("checkout session expired or not found")
	ErrStorageUnavailable        = errors.New("storage unavailable")
)
