package units

import "github.com/bitfsorg/libcrowdsale-go/fault"

var (
	// ErrOverflow indicates a result does not fit in 256 bits.
	ErrOverflow = fault.New(fault.ErrCapacity, "units", "256-bit overflow")

	// ErrUnderflow indicates a subtraction would go below zero.
	ErrUnderflow = fault.New(fault.ErrInvariant, "units", "underflow")

	// ErrDivisionByZero indicates a zero divisor.
	ErrDivisionByZero = fault.New(fault.ErrValidation, "units", "division by zero")

	// ErrInvalidAmount indicates a decimal amount string could not be parsed.
	ErrInvalidAmount = fault.New(fault.ErrValidation, "units", "invalid amount")

	// ErrInvalidPercent indicates a percentage outside [0, 100).
	ErrInvalidPercent = fault.New(fault.ErrValidation, "units", "invalid percent")
)
