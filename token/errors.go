package token

import (
	"errors"

	"github.com/bitfsorg/libcrowdsale-go/fault"
)

var (
	// ErrUnauthorized indicates the caller is not the token owner.
	ErrUnauthorized = fault.New(fault.ErrAuthorization, "token", "caller is not the owner")

	// ErrMintingFinished indicates minting after the latch was set.
	ErrMintingFinished = fault.New(fault.ErrTiming, "token", "minting finished")

	// ErrTransfersDisabled indicates a transfer before minting finished.
	ErrTransfersDisabled = fault.New(fault.ErrTiming, "token", "transfers disabled until minting finishes")

	// ErrInvalidRecipient indicates the null address as a recipient.
	ErrInvalidRecipient = fault.New(fault.ErrValidation, "token", "invalid recipient")

	// ErrInvalidAmount indicates a zero mint.
	ErrInvalidAmount = fault.New(fault.ErrValidation, "token", "amount must be positive")

	// ErrInsufficientBalance indicates a transfer larger than the sender's balance.
	ErrInsufficientBalance = fault.New(fault.ErrValidation, "token", "insufficient balance")

	// ErrInsufficientAllowance indicates a delegated transfer beyond the approved amount.
	ErrInsufficientAllowance = fault.New(fault.ErrAuthorization, "token", "insufficient allowance")

	// ErrSupplyMismatch indicates balances do not sum to the total supply.
	ErrSupplyMismatch = fault.New(fault.ErrInvariant, "token", "balances do not sum to supply")

	// ErrPayoutFailed indicates the outbound payment was rejected; no value moved.
	ErrPayoutFailed = errors.New("token: payout failed")
)
