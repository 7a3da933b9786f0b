package dividend

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// FuzzConservation drives random mint, transfer, deposit and withdraw
// sequences and checks that deposits are always fully accounted for.
func FuzzConservation(f *testing.F) {
	f.Add([]byte{0, 0, 5, 0, 1, 3, 0, 2, 2, 2, 0, 1, 3, 0, 0})
	f.Add([]byte{0, 0, 99, 2, 0, 255, 1, 0, 7, 2, 1, 1, 3, 1, 0, 3, 0, 0})
	f.Add([]byte{2, 0, 1, 0, 3, 1, 2, 0, 1, 2, 0, 1, 2, 0, 1})

	holders := []address.Address{makeAddr(1), makeAddr(2), makeAddr(3), makeAddr(4)}

	f.Fuzz(func(t *testing.T, ops []byte) {
		b := newBook()
		for i := 0; i+2 < len(ops); i += 3 {
			who := holders[int(ops[i+1])%len(holders)]
			n := uint64(ops[i+2])
			switch ops[i] % 4 {
			case 0:
				if n > 0 {
					b.mint(t, who, units.U(n))
				}
			case 1:
				other := holders[(int(ops[i+1])+1)%len(holders)]
				amt := units.Min(units.U(n), b.BalanceOf(who))
				b.transfer(t, who, other, amt)
			case 2:
				if n > 0 && !b.supply.IsZero() {
					require.NoError(t, b.l.Deposit(units.U(n)))
				}
			case 3:
				b.withdraw(t, who)
			}

			require.NoError(t, b.l.Audit())
			reserved, err := b.l.Reserved()
			require.NoError(t, err)
			sum := new(uint256.Int).Add(reserved, b.l.TotalWithdrawn())
			for _, h := range holders {
				c, err := b.l.Claimable(h)
				require.NoError(t, err)
				sum.Add(sum, c)
			}
			require.Equal(t, b.l.TotalDeposited().Dec(), sum.Dec())
		}
	})
}
