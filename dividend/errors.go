package dividend

import "github.com/bitfsorg/libcrowdsale-go/fault"

var (
	// ErrNothingToDistribute indicates a deposit while no tokens are outstanding.
	ErrNothingToDistribute = fault.New(fault.ErrValidation, "dividend", "no supply to distribute to")

	// ErrInvalidAmount indicates a zero deposit.
	ErrInvalidAmount = fault.New(fault.ErrValidation, "dividend", "amount must be positive")

	// ErrDepositCap indicates cumulative deposits would exceed the accumulator range.
	ErrDepositCap = fault.New(fault.ErrCapacity, "dividend", "cumulative deposit cap exceeded")

	// ErrPayoutInFlight indicates the holder already has an outbound payment pending.
	ErrPayoutInFlight = fault.New(fault.ErrTiming, "dividend", "payout already in flight")

	// ErrNegativeClaim indicates a holder has withdrawn more than its entitlement.
	ErrNegativeClaim = fault.New(fault.ErrInvariant, "dividend", "withdrawn exceeds entitlement")

	// ErrConservation indicates deposits are not fully accounted for.
	ErrConservation = fault.New(fault.ErrInvariant, "dividend", "conservation violated")

	// ErrNilPayer indicates a payout was requested without a payment channel.
	ErrNilPayer = fault.New(fault.ErrValidation, "dividend", "nil payer")
)
