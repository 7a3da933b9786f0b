package settlement

import "github.com/bitfsorg/libcrowdsale-go/fault"

var (
	// ErrInvalidRecipient indicates a payment to the null address.
	ErrInvalidRecipient = fault.New(fault.ErrValidation, "settlement", "invalid recipient")

	// ErrInvalidAmount indicates a zero payment.
	ErrInvalidAmount = fault.New(fault.ErrValidation, "settlement", "amount must be positive")

	// ErrAmountTooLarge indicates a payment that does not fit in a 64-bit satoshi value.
	ErrAmountTooLarge = fault.New(fault.ErrCapacity, "settlement", "amount exceeds output range")

	// ErrNoPayments indicates a payout transaction was requested with nothing pending.
	ErrNoPayments = fault.New(fault.ErrValidation, "settlement", "no payments")

	// ErrScriptBuild indicates a locking script could not be built.
	ErrScriptBuild = fault.New(fault.ErrValidation, "settlement", "script build failed")
)
