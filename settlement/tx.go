package settlement

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	"github.com/bitfsorg/libcrowdsale-go/address"
)

// BuildOutput creates a P2PKH output paying satoshis to the address.
func BuildOutput(to address.Address, satoshis uint64, mainnet bool) (*transaction.TransactionOutput, error) {
	addr, err := script.NewAddressFromPublicKeyHash(to[:], mainnet)
	if err != nil {
		return nil, fmt.Errorf("%w: address from hash: %w", ErrScriptBuild, err)
	}
	lockScript, err := p2pkh.Lock(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock: %w", ErrScriptBuild, err)
	}
	return &transaction.TransactionOutput{
		Satoshis:      satoshis,
		LockingScript: lockScript,
	}, nil
}

// Aggregate sums payments per recipient, ordered by address bytes.
func Aggregate(payments []Payment) ([]Payment, error) {
	totals := make(map[address.Address]uint64)
	for _, p := range payments {
		if totals[p.To] > math.MaxUint64-p.Amount {
			return nil, fmt.Errorf("%w: total to %s", ErrAmountTooLarge, p.To)
		}
		totals[p.To] += p.Amount
	}
	out := make([]Payment, 0, len(totals))
	for to, amount := range totals {
		out = append(out, Payment{To: to, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].To[:], out[j].To[:]) < 0 })
	return out, nil
}

// BuildPayoutTx builds an unsigned transaction with one P2PKH output per
// recipient. Inputs and change are left to the funding wallet.
func BuildPayoutTx(payments []Payment, mainnet bool) (*transaction.Transaction, error) {
	if len(payments) == 0 {
		return nil, ErrNoPayments
	}
	merged, err := Aggregate(payments)
	if err != nil {
		return nil, err
	}
	sdkTx := transaction.NewTransaction()
	for _, p := range merged {
		out, err := BuildOutput(p.To, p.Amount, mainnet)
		if err != nil {
			return nil, err
		}
		sdkTx.AddOutput(out)
	}
	return sdkTx, nil
}

// Total returns the satoshi sum of payments.
func Total(payments []Payment) (uint64, error) {
	var total uint64
	for _, p := range payments {
		if total > math.MaxUint64-p.Amount {
			return 0, ErrAmountTooLarge
		}
		total += p.Amount
	}
	return total, nil
}
