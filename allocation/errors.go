package allocation

import "github.com/bitfsorg/libcrowdsale-go/fault"

var (
	// ErrPercentSum indicates the allocation percentages do not total 100.
	ErrPercentSum = fault.New(fault.ErrValidation, "allocation", "percentages must sum to 100")

	// ErrZeroICOPercent indicates the public sale share is zero.
	ErrZeroICOPercent = fault.New(fault.ErrValidation, "allocation", "ico percent must be positive")

	// ErrZeroRecipient indicates an allocation entry with a null address.
	ErrZeroRecipient = fault.New(fault.ErrValidation, "allocation", "null recipient")

	// ErrDistributionMismatch indicates a distribution disagrees with the plan.
	ErrDistributionMismatch = fault.New(fault.ErrInvariant, "allocation", "distribution mismatch")
)
