package sale

import (
	"context"

	"github.com/bitfsorg/libcrowdsale-go/address"
)

// Desk forwards contributions into the sale with an extra bonus.
type Desk struct {
	sale  *Crowdsale
	addr  address.Address
	bonus uint64
}

// NewDesk returns a desk at addr. The sale owner must register addr with
// SetDesk before the desk can buy.
func NewDesk(sale *Crowdsale, addr address.Address, bonusPercent uint64) *Desk {
	return &Desk{sale: sale, addr: addr, bonus: bonusPercent}
}

// Address returns the desk address.
func (d *Desk) Address() address.Address { return d.addr }

// Bonus returns the desk's extra bonus percent.
func (d *Desk) Bonus() uint64 { return d.bonus }

// Buy forwards o to the sale. An empty beneficiary defaults to the sender.
func (d *Desk) Buy(ctx context.Context, o Order) (Purchase, error) {
	if o.Beneficiary.IsZero() {
		o.Beneficiary = o.Sender
	}
	return d.sale.BuyOnBehalf(ctx, d.addr, o, d.bonus)
}
