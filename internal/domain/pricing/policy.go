// Package pricing implements the estimation engine: a pure formula turning a
// normalized service cart plus site access facts into a priced range with a
// reproducible breakdown.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNoActivePolicy is returned when no active pricing configuration exists.
// A missing policy is a configuration error, never a zero price.
var ErrNoActivePolicy = errors.New("no active pricing policy")

// Tier selects the turnaround priority multiplier applied to the entire
// pre-discount subtotal.
type Tier string

const (
	TierEconomy  Tier = "ECONOMY"
	TierStandard Tier = "STANDARD"
	TierExpress  Tier = "EXPRESS"
)

// Addon is a fixed-price extra service selectable on any booking.
type Addon string

const (
	AddonPacking               Addon = "PACKING"
	AddonDismantleAssemble     Addon = "DISMANTLE_ASSEMBLE"
	AddonOldKitchenDisposal    Addon = "OLD_KITCHEN_DISPOSAL"
	AddonBasementAtticClearing Addon = "BASEMENT_ATTIC_CLEARING"
)

// Policy is the active pricing configuration: base fees, per-volume rates,
// surcharge tables, tier multipliers, and minimum-order floors. It is loaded
// once per request and treated as an immutable snapshot for both estimation
// passes. All monetary values are net cents.
type Policy struct {
	Currency string

	MovingBaseFeeCents   int64
	DisposalBaseFeeCents int64
	MontageBaseFeeCents  int64

	PerM3MovingCents   int64
	PerM3DisposalCents int64
	PerKmCents         int64
	MinDriveCents      int64

	HeavyItemSurchargeCents           int64
	StairsSurchargePerFloorCents      int64
	CarryDistanceSurchargePer25mCents int64
	ParkingSurchargeMediumCents       int64
	ParkingSurchargeHardCents         int64
	ElevatorDiscountSmallCents        int64
	ElevatorDiscountLargeCents        int64

	// UncertaintyPercent is the symmetric spread around the total used to
	// present a range instead of a single figure. Clamped to [0, 30].
	UncertaintyPercent decimal.Decimal

	EconomyMultiplier  decimal.Decimal
	StandardMultiplier decimal.Decimal
	ExpressMultiplier  decimal.Decimal

	MontageMinimumOrderCents    int64
	EntsorgungMinimumOrderCents int64

	AddonSurchargeCents map[Addon]int64
}

// DefaultAddonSurcharges returns the stock addon price table.
func DefaultAddonSurcharges() map[Addon]int64 {
	return map[Addon]int64{
		AddonPacking:               2500,
		AddonDismantleAssemble:     3500,
		AddonOldKitchenDisposal:    6000,
		AddonBasementAtticClearing: 4000,
	}
}

// TierMultiplier returns the multiplier for the given tier, defaulting to
// the standard multiplier for unknown values.
func (p Policy) TierMultiplier(tier Tier) decimal.Decimal {
	switch tier {
	case TierEconomy:
		return p.EconomyMultiplier
	case TierExpress:
		return p.ExpressMultiplier
	default:
		return p.StandardMultiplier
	}
}

// GrossCents derives a gross amount from a net amount at the given VAT
// percentage. The engine itself reports net figures only; this helper lives
// with the policy so the rate can change without touching pricing logic.
func GrossCents(netCents int64, vatPercent decimal.Decimal) int64 {
	net := decimal.NewFromInt(netCents)
	factor := decimal.NewFromInt(1).Add(vatPercent.Div(decimal.NewFromInt(100)))
	return net.Mul(factor).Round(0).IntPart()
}
