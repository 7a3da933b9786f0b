package allocation

import (
	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
)

// Percents is the whole-percent split of the final supply.
type Percents struct {
	ICO    uint64 `json:"ico"`
	Team   uint64 `json:"team"`
	Bounty uint64 `json:"bounty"`
	RnD    uint64 `json:"rnd"`
}

// Entry is one non-public allocation recipient.
type Entry struct {
	Address address.Address
	Percent uint64
}

// Plan binds the percentages to their recipients.
type Plan struct {
	Percents Percents
	Team     address.Address
	Bounty   address.Address
	RnD      address.Address
}

// Entries returns the non-public recipients in team, bounty, rnd order.
func (p Plan) Entries() []Entry {
	return []Entry{
		{Address: p.Team, Percent: p.Percents.Team},
		{Address: p.Bounty, Percent: p.Percents.Bounty},
		{Address: p.RnD, Percent: p.Percents.RnD},
	}
}

// Distribution is a single allocation mint.
type Distribution struct {
	Address address.Address
	Amount  *uint256.Int
}
