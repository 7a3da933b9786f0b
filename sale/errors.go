package sale

import "github.com/bitfsorg/libcrowdsale-go/fault"

var (
	// ErrBeforeWindow indicates a purchase before the sale start.
	ErrBeforeWindow = fault.New(fault.ErrTiming, "sale", "sale has not started")

	// ErrSaleClosed indicates a purchase after the sale end.
	ErrSaleClosed = fault.New(fault.ErrTiming, "sale", "sale window closed")

	// ErrTooEarly indicates finalization before the end time while tokens remain.
	ErrTooEarly = fault.New(fault.ErrTiming, "sale", "too early to finalize")

	// ErrAlreadyFinalized indicates an operation after finalization.
	ErrAlreadyFinalized = fault.New(fault.ErrTiming, "sale", "already finalized")

	// ErrNotRefundable indicates a refund claim on a sale that did not fail.
	ErrNotRefundable = fault.New(fault.ErrTiming, "sale", "refunds not available")

	// ErrCapReached indicates no tokens remain for ordinary purchases.
	ErrCapReached = fault.New(fault.ErrCapacity, "sale", "token cap reached")

	// ErrBatchTooLarge indicates more than MaxBatch mint entries.
	ErrBatchTooLarge = fault.New(fault.ErrCapacity, "sale", "batch too large")

	// ErrBelowMinimum indicates a purchase quoting fewer tokens than the minimum.
	ErrBelowMinimum = fault.New(fault.ErrValidation, "sale", "below minimum purchase")

	// ErrInvalidRecipient indicates the null address as a recipient.
	ErrInvalidRecipient = fault.New(fault.ErrValidation, "sale", "invalid recipient")

	// ErrInvalidAmount indicates a zero contribution or mint amount.
	ErrInvalidAmount = fault.New(fault.ErrValidation, "sale", "amount must be positive")

	// ErrEmptyBatch indicates a mint batch with no entries.
	ErrEmptyBatch = fault.New(fault.ErrValidation, "sale", "empty batch")

	// ErrArityMismatch indicates recipient and amount lists of different length.
	ErrArityMismatch = fault.New(fault.ErrValidation, "sale", "recipients and amounts differ in length")

	// ErrEndTimeEarlier indicates an attempt to move the end time backward.
	ErrEndTimeEarlier = fault.New(fault.ErrValidation, "sale", "end time cannot move earlier")

	// ErrInvalidParams indicates inconsistent sale parameters.
	ErrInvalidParams = fault.New(fault.ErrValidation, "sale", "invalid parameters")

	// ErrInvalidPhases indicates a malformed phase table.
	ErrInvalidPhases = fault.New(fault.ErrValidation, "sale", "invalid phase table")

	// ErrUnknownPhase indicates a phase index outside the table.
	ErrUnknownPhase = fault.New(fault.ErrValidation, "sale", "unknown phase")

	// ErrUnauthorized indicates the caller lacks the required role.
	ErrUnauthorized = fault.New(fault.ErrAuthorization, "sale", "unauthorized")

	// ErrEscrowInconsistent indicates a multi-step commit that failed after
	// its first side effect; token and escrow state need reconciliation.
	ErrEscrowInconsistent = fault.New(fault.ErrInvariant, "sale", "partial commit")
)
