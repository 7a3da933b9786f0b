package sale

import (
	"fmt"
	"time"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/event"
)

// SetEndTime extends the sale. The end time never moves earlier and is
// fixed once the sale is finalized.
func (c *Crowdsale) SetEndTime(caller address.Address, end time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.params.Owner {
		return ErrUnauthorized
	}
	if c.stage != Active {
		return ErrAlreadyFinalized
	}
	if end.Before(c.end) {
		return fmt.Errorf("%w: %s before %s", ErrEndTimeEarlier, end, c.end)
	}
	prev := c.end
	c.end = end
	c.emit(event.Event{Kind: event.EndTimeChanged, From: caller, Detail: end.UTC().Format(time.RFC3339)})
	c.logger.Info("end time changed", "from", prev, "to", end)
	return nil
}

// SetMinter delegates administrative minting to minter.
func (c *Crowdsale) SetMinter(caller, minter address.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.params.Owner {
		return ErrUnauthorized
	}
	if minter.IsZero() {
		return ErrInvalidRecipient
	}
	c.minter = minter
	c.emit(event.Event{Kind: event.MinterChanged, From: caller, To: minter})
	c.logger.Info("minter changed", "minter", minter)
	return nil
}

// SetDesk registers the forwarding entry point. The null address disables it.
func (c *Crowdsale) SetDesk(caller, desk address.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.params.Owner {
		return ErrUnauthorized
	}
	c.desk = desk
	c.logger.Info("desk changed", "desk", desk)
	return nil
}

// Minter returns the delegated minter, or the null address.
func (c *Crowdsale) Minter() address.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minter
}

// EndTime returns the current end time.
func (c *Crowdsale) EndTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.end
}
