package coupons

import pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"

var (
	ErrCouponNotFound          = pkgerrors.New(pkgerrors.CodeNotFound, "Invalid or expired coupon")
	ErrUsageLimitExceeded      = pkgerrors.New(pkgerrors.CodeValidation, "Coupon usage limit exceeded")
	ErrMinimumOrderNotMet      = pkgerrors.New(pkgerrors.CodeValidation, "Minimum order amount not met")
	ErrInvalidDateRange        = pkgerrors.New(pkgerrors.CodeValidation, "End date must be after start date")
	ErrCodeImmutable           = pkgerrors.New(pkgerrors.CodeValidation, "Coupon code cannot be changed")
	ErrCodeGenerationExhausted = pkgerrors.New(pkgerrors.CodeValidation, "Unable to generate unique coupon code")
	ErrCouponNotApplicable     = pkgerrors.New(pkgerrors.CodeValidation, "Coupon does not apply to any item in this order")
	ErrConflictingClear        = pkgerrors.New(pkgerrors.CodeValidation, "A field cannot be set and cleared in the same update")
	ErrCodeRequired            = pkgerrors.New(pkgerrors.CodeValidation, "Coupon code is required")
)
