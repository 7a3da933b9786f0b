package sale

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/units"
)

// Phase is a pricing tier active from Activation until the next phase.
type Phase struct {
	Activation time.Time `json:"activation"`
	Discount   uint64    `json:"discount"`
}

// PhaseTable is an immutable pricing schedule.
type PhaseTable struct {
	phases         []Phase
	bonusPercent   uint64
	bonusThreshold *uint256.Int
}

// NewPhaseTable validates and copies phases. Activations must be strictly
// increasing and discounts below 100.
func NewPhaseTable(phases []Phase, bonusPercent uint64, bonusThreshold *uint256.Int) (*PhaseTable, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: no phases", ErrInvalidPhases)
	}
	for i, p := range phases {
		if p.Discount >= 100 {
			return nil, fmt.Errorf("%w: phase %d discount %d", ErrInvalidPhases, i, p.Discount)
		}
		if i > 0 && !p.Activation.After(phases[i-1].Activation) {
			return nil, fmt.Errorf("%w: phase %d does not start after phase %d", ErrInvalidPhases, i, i-1)
		}
	}
	return &PhaseTable{
		phases:         append([]Phase(nil), phases...),
		bonusPercent:   bonusPercent,
		bonusThreshold: units.Or(bonusThreshold).Clone(),
	}, nil
}

// Len returns the number of phases.
func (t *PhaseTable) Len() int { return len(t.phases) }

// Current returns the highest phase index whose activation is at or before
// now. Before the first activation it returns 0.
func (t *PhaseTable) Current(now time.Time) int {
	idx := 0
	for i, p := range t.phases {
		if p.Activation.After(now) {
			break
		}
		idx = i
	}
	return idx
}

// Date returns the activation time of phase i.
func (t *PhaseTable) Date(i int) (time.Time, error) {
	if i < 0 || i >= len(t.phases) {
		return time.Time{}, fmt.Errorf("%w: %d", ErrUnknownPhase, i)
	}
	return t.phases[i].Activation, nil
}

// Discount returns the discount percent of phase i.
func (t *PhaseTable) Discount(i int) (uint64, error) {
	if i < 0 || i >= len(t.phases) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownPhase, i)
	}
	return t.phases[i].Discount, nil
}

// Phases returns a copy of the schedule.
func (t *PhaseTable) Phases() []Phase { return append([]Phase(nil), t.phases...) }

// BonusPercent returns the large-purchase bonus percent.
func (t *PhaseTable) BonusPercent() uint64 { return t.bonusPercent }

// BonusThreshold returns the contribution above which the bonus applies.
func (t *PhaseTable) BonusThreshold() *uint256.Int { return t.bonusThreshold.Clone() }

// Quote converts a contribution into tokens at time now:
//
//	base  = floor(contribution * rate * 100 / (100 - discount))
//	bonus = floor(base * bonusPercent / 100)  phase >= 1 and contribution > threshold
//	extra = floor(base * extraPercent / 100)  phase >= 1
//
// The cap and minimum purchase are not applied here.
func (t *PhaseTable) Quote(contribution, rate *uint256.Int, now time.Time, extraPercent uint64) (*uint256.Int, int, error) {
	phase := t.Current(now)
	discount := t.phases[phase].Discount

	priced, err := units.Mul(contribution, rate)
	if err != nil {
		return nil, phase, err
	}
	base, err := units.MulDiv(priced, units.U(100), units.U(100-discount))
	if err != nil {
		return nil, phase, err
	}
	if phase == 0 {
		return base, phase, nil
	}

	total := base.Clone()
	if contribution.Gt(t.bonusThreshold) && t.bonusPercent > 0 {
		bonus, err := units.Percent(base, t.bonusPercent)
		if err != nil {
			return nil, phase, err
		}
		if total, err = units.Add(total, bonus); err != nil {
			return nil, phase, err
		}
	}
	if extraPercent > 0 {
		extra, err := units.Percent(base, extraPercent)
		if err != nil {
			return nil, phase, err
		}
		if total, err = units.Add(total, extra); err != nil {
			return nil, phase, err
		}
	}
	return total, phase, nil
}
