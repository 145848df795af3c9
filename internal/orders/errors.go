package orders

import pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"

var (
	ErrMissingFields    = pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields")
	ErrMultipleSellers  = pkgerrors.New(pkgerrors.CodeValidation, "All items in an order must come from the same seller")
	ErrTotalMismatch    = pkgerrors.New(pkgerrors.CodeValidation, "Order total does not match item prices")
	ErrOrderNotFound    = pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	ErrOrderForbidden   = pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to access this order")
	ErrStatusConflict   = pkgerrors.New(pkgerrors.CodeStateConflict, "Order status changed concurrently")
	ErrOrderCancelled   = pkgerrors.New(pkgerrors.CodeStateConflict, "Order has been cancelled")
	ErrInvalidPayStatus = pkgerrors.New(pkgerrors.CodeValidation, "Payment status must be paid or failed")
)
