package vault

import (
	"errors"

	"github.com/bitfsorg/libcrowdsale-go/fault"
)

var (
	// ErrNotActive indicates a deposit or close outside the Active state.
	ErrNotActive = fault.New(fault.ErrTiming, "vault", "vault is not active")

	// ErrNotRefunding indicates a refund before refunds were enabled.
	ErrNotRefunding = fault.New(fault.ErrTiming, "vault", "refunds are not enabled")

	// ErrNothingToRefund indicates the investor has no escrowed value.
	ErrNothingToRefund = fault.New(fault.ErrValidation, "vault", "nothing to refund")

	// ErrExceedsDeposit indicates a reversal larger than the investor's escrow.
	ErrExceedsDeposit = fault.New(fault.ErrInvariant, "vault", "reversal exceeds deposit")

	// ErrInvalidAmount indicates a zero deposit.
	ErrInvalidAmount = fault.New(fault.ErrValidation, "vault", "amount must be positive")

	// ErrInvalidWallet indicates a null release wallet.
	ErrInvalidWallet = fault.New(fault.ErrValidation, "vault", "invalid wallet")

	// ErrPaymentFailed indicates an outbound payment was rejected; no value moved.
	ErrPaymentFailed = errors.New("vault: payment failed")
)
