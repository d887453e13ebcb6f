package dispensing

import "github.com/medisync/backend/internal/domain/shared"

// Dispensing-specific domain errors. Validation errors are always resolved
// client-side before any storage call and never partially mutate the cart.
var (
	ErrNoStockAvailable    = shared.NewDomainError("NO_STOCK_AVAILABLE", "No batch with sellable stock for this medicine")
	ErrOverrideNotPermitted = shared.NewDomainError("OVERRIDE_NOT_PERMITTED", "Manual override is not allowed for this role; earliest expiry must be selected")
	ErrExpiredBatchBlocked  = shared.NewDomainError("EXPIRED_BATCH_BLOCKED", "This batch is expired; dispensing is blocked")
	ErrInvalidQuantity      = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive whole number")
	ErrExceedsAvailable     = shared.NewDomainError("EXCEEDS_AVAILABLE", "Requested quantity exceeds available stock for this batch")
	ErrEmptyCart            = shared.NewDomainError("EMPTY_CART", "Cart has no lines to commit")
	ErrTransportFailure     = shared.NewDomainError("TRANSPORT_FAILURE", "Stock update could not be completed")
)
