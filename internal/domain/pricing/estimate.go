package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/umzugwerk/booking-api/internal/distance"
	"github.com/umzugwerk/booking-api/internal/domain/booking"
	"github.com/umzugwerk/booking-api/internal/domain/promo"
)

var (
	hundred        = decimal.NewFromInt(100)
	maxUncertainty = decimal.NewFromInt(30)
)

// Input is everything one estimation pass consumes. Every optional field
// (access profiles, distance, promo) has a zero-contribution default; the
// engine never fails on absent inputs, only on structurally incomplete
// policy data.
type Input struct {
	Cart        []booking.CartItem
	ServiceType booking.ServiceType
	Context     booking.Context

	MoveVolumeM3     float64
	DisposalVolumeM3 float64

	Access []booking.AccessProfile

	Addons          []Addon
	SelectedOptions []SelectedOption

	Distance *distance.Result
	Tier     Tier
	Promo    *promo.Rule
}

// ServiceLine is the priced base cost of one cart line.
type ServiceLine struct {
	Kind             booking.ServiceKind
	ModuleSlug       booking.ModuleSlug
	Title            string
	BaseFeeCents     int64
	VolumeCents      int64
	DriveChargeCents int64
	TotalCents       int64
}

// Breakdown is the full reproducible price decomposition of one estimation
// pass. All monetary figures are net cents; min <= total <= max always holds.
type Breakdown struct {
	Currency string

	Lines []ServiceLine

	MoveVolumeM3     float64
	DisposalVolumeM3 float64
	TotalVolumeM3    float64

	DistanceKm       float64
	DistanceSource   distance.Source
	DriveChargeCents int64

	FloorSurchargeCents     int64
	ParkingSurchargeCents   int64
	CarrySurchargeCents     int64
	HeavyItemSurchargeCents int64
	ElevatorDiscountCents   int64

	ServiceOptionsCents int64
	AddonsCents         int64

	SubtotalCents int64

	Tier                   Tier
	TierMultiplier         decimal.Decimal
	PackageAdjustmentCents int64

	MinimumOrderAppliedCents int64

	PromoCode     string
	DiscountCents int64

	TotalCents    int64
	PriceMinCents int64
	PriceMaxCents int64

	HeavyItemCount int
	BaseMinutes    int
	ItemMinutes    int
	AccessMinutes  int
	LaborMinutes   int
	LaborHours     float64
}

// Engine prices bookings against an immutable policy and option catalog
// snapshot. It holds no mutable state and is safe for concurrent use; a
// request runs it twice (baseline pass, then discount-aware pass) with no
// side effects between calls.
type Engine struct {
	policy  Policy
	options map[string]ServiceOption
}

// NewEngine creates an Engine over the given policy and catalog snapshot.
func NewEngine(policy Policy, options []ServiceOption) *Engine {
	index := make(map[string]ServiceOption, len(options))
	for _, o := range options {
		if _, ok := index[o.Code]; ok {
			continue
		}
		index[o.Code] = o
	}
	return &Engine{policy: policy, options: index}
}

// Estimate runs one pricing pass: per-line base costs, additive surcharges,
// option and addon line items, the tier multiplier over the whole subtotal,
// the module minimum-order floor, the (optional) promo discount, and the
// uncertainty range. Applying the floor is idempotent; the discount is
// applied strictly after the floor.
func (e *Engine) Estimate(in Input) (*Breakdown, error) {
	module := booking.ContextModule(in.Cart, in.Context)

	b := &Breakdown{
		Currency:         e.policy.Currency,
		MoveVolumeM3:     in.MoveVolumeM3,
		DisposalVolumeM3: in.DisposalVolumeM3,
		TotalVolumeM3:    in.MoveVolumeM3 + in.DisposalVolumeM3,
		Tier:             in.Tier,
	}

	e.priceServiceLines(in, b)
	e.priceAccess(in.Access, b)

	optionsCents, heavyCount, optionMinutes, err := e.priceSelectedOptions(in.SelectedOptions, module)
	if err != nil {
		return nil, err
	}
	b.ServiceOptionsCents = optionsCents
	b.HeavyItemCount = heavyCount
	b.HeavyItemSurchargeCents = int64(heavyCount) * e.policy.HeavyItemSurchargeCents

	for _, addon := range in.Addons {
		b.AddonsCents += e.policy.AddonSurchargeCents[addon]
	}

	// The elevator discount never turns the surcharge block negative.
	positive := b.FloorSurchargeCents + b.ParkingSurchargeCents +
		b.CarrySurchargeCents + b.HeavyItemSurchargeCents
	if b.ElevatorDiscountCents > positive {
		b.ElevatorDiscountCents = positive
	}

	subtotal := b.AddonsCents + b.ServiceOptionsCents - b.ElevatorDiscountCents + positive
	for _, line := range b.Lines {
		subtotal += line.TotalCents
	}
	if subtotal < 0 {
		subtotal = 0
	}
	b.SubtotalCents = subtotal

	// Tier multiplier over the entire pre-discount subtotal: turnaround
	// priority, not service scope.
	mult := e.policy.TierMultiplier(in.Tier)
	b.TierMultiplier = mult
	tiered := decimal.NewFromInt(subtotal).Mul(mult).Round(0).IntPart()
	b.PackageAdjustmentCents = tiered - subtotal

	// Module minimum-order floor, after tier multiplier and before discount.
	floor := e.minimumOrderCents(module)
	floored := tiered
	if floored < floor {
		floored = floor
	}
	b.MinimumOrderAppliedCents = floored - tiered

	total := floored - e.discountCents(in.Promo, floored, b)
	if total < 0 {
		total = 0
	}
	b.TotalCents = total

	spread := e.uncertaintySpread(total)
	b.PriceMinCents = total - spread
	if b.PriceMinCents < 0 {
		b.PriceMinCents = 0
	}
	b.PriceMaxCents = total + spread

	e.estimateLabor(in, optionMinutes, heavyCount, b)

	return b, nil
}

// priceServiceLines computes the base cost of each cart line. The distance
// term belongs to the moving line and is zero when no distance was resolved;
// an unresolved distance is input absence, never an error.
func (e *Engine) priceServiceLines(in Input, b *Breakdown) {
	drive := e.driveChargeCents(in)
	if in.Distance != nil {
		b.DistanceKm = in.Distance.Km
		b.DistanceSource = in.Distance.Source
	}

	for _, item := range in.Cart {
		line := ServiceLine{Kind: item.Kind, ModuleSlug: item.ModuleSlug, Title: item.Title}
		switch item.Kind {
		case booking.KindUmzug:
			line.BaseFeeCents = e.policy.MovingBaseFeeCents
			line.VolumeCents = mulVolume(in.MoveVolumeM3, e.policy.PerM3MovingCents)
			line.DriveChargeCents = drive
			b.DriveChargeCents = drive
		case booking.KindEntsorgung:
			line.BaseFeeCents = e.policy.DisposalBaseFeeCents
			line.VolumeCents = mulVolume(in.DisposalVolumeM3, e.policy.PerM3DisposalCents)
		case booking.KindMontage, booking.KindSpecial:
			// One flat base regardless of selected option count; options add
			// their own line items.
			line.BaseFeeCents = e.policy.MontageBaseFeeCents
		}
		line.TotalCents = line.BaseFeeCents + line.VolumeCents + line.DriveChargeCents
		b.Lines = append(b.Lines, line)
	}
}

// driveChargeCents computes the distance term for carts carrying a moving
// line. The per-km cost is floored at the minimum drive charge.
func (e *Engine) driveChargeCents(in Input) int64 {
	if in.Distance == nil || in.Distance.Km <= 0 {
		return 0
	}
	hasMoving := false
	for _, item := range in.Cart {
		if item.Kind == booking.KindUmzug {
			hasMoving = true
			break
		}
	}
	if !hasMoving {
		return 0
	}
	byDistance := mulVolume(in.Distance.Km, e.policy.PerKmCents)
	if byDistance < e.policy.MinDriveCents {
		return e.policy.MinDriveCents
	}
	return byDistance
}

// priceAccess accumulates the per-site surcharges. Each surcharge is
// independently additive and zero unless its condition holds.
func (e *Engine) priceAccess(profiles []booking.AccessProfile, b *Breakdown) {
	for _, a := range profiles {
		if a.Elevator == booking.ElevatorNone && a.Floor > 0 {
			b.FloorSurchargeCents += int64(a.Floor) * e.policy.StairsSurchargePerFloorCents
		}

		switch a.Parking {
		case booking.ParkingMedium:
			b.ParkingSurchargeCents += e.policy.ParkingSurchargeMediumCents
		case booking.ParkingHard:
			b.ParkingSurchargeCents += e.policy.ParkingSurchargeHardCents
		}
		if a.NeedNoParkingZone {
			b.ParkingSurchargeCents += e.policy.ParkingSurchargeHardCents
		}

		b.CarrySurchargeCents += int64(carryBlocks(a.CarryDistanceM)) * e.policy.CarryDistanceSurchargePer25mCents

		switch a.Elevator {
		case booking.ElevatorSmall:
			b.ElevatorDiscountCents += e.policy.ElevatorDiscountSmallCents
		case booking.ElevatorLarge:
			b.ElevatorDiscountCents += e.policy.ElevatorDiscountLargeCents
		}
	}
}

// priceSelectedOptions resolves each selected option against the catalog.
// Options scoped to a different module than the booking's context are
// skipped; an unknown code is a configuration error.
func (e *Engine) priceSelectedOptions(selected []SelectedOption, module booking.ModuleSlug) (cents int64, heavy, minutes int, err error) {
	for _, sel := range selected {
		option, ok := e.options[sel.Code]
		if !ok {
			return 0, 0, 0, &UnknownOptionError{Code: sel.Code}
		}
		if module != "" && option.ModuleSlug != module {
			continue
		}

		qty := option.effectiveQty(sel.Qty)
		switch option.PricingType {
		case PricingFlat:
			cents += option.DefaultPriceCents
		case PricingPerUnit, PricingPerM3, PricingPerHour:
			cents += option.DefaultPriceCents * qty
		default:
			return 0, 0, 0, errors.Errorf("unsupported pricing type %q for option %q", option.PricingType, option.Code)
		}

		if option.IsHeavy {
			heavy += int(qty)
		}
		minutes += option.DefaultLaborMinutes * int(qty)
	}
	return cents, heavy, minutes, nil
}

// discountCents computes the promo discount against the floored subtotal.
// The rule's minimum-order threshold is checked here, on the pre-discount
// subtotal of this specific pass, and the configured cap always wins.
func (e *Engine) discountCents(rule *promo.Rule, flooredCents int64, b *Breakdown) int64 {
	if rule == nil {
		return 0
	}
	if flooredCents < rule.MinOrderCents {
		return 0
	}

	var raw int64
	switch rule.DiscountType {
	case promo.DiscountPercent:
		pct := clampDecimal(rule.DiscountValue, decimal.Zero, hundred)
		raw = decimal.NewFromInt(flooredCents).Mul(pct).Div(hundred).Round(0).IntPart()
	case promo.DiscountFlatCents:
		raw = rule.DiscountValue.Round(0).IntPart()
		if raw < 0 {
			raw = 0
		}
	}

	if rule.MaxDiscountCents != nil && raw > *rule.MaxDiscountCents {
		raw = *rule.MaxDiscountCents
	}
	if raw < 0 {
		raw = 0
	}

	b.PromoCode = promo.NormalizeCode(rule.Code)
	b.DiscountCents = raw
	return raw
}

// minimumOrderCents returns the module's minimum-order floor. MONTAGE and
// SPECIAL share one floor; plain moving carts have none.
func (e *Engine) minimumOrderCents(module booking.ModuleSlug) int64 {
	var floor int64
	switch module {
	case booking.ModuleMontage, booking.ModuleSpecial:
		floor = e.policy.MontageMinimumOrderCents
	case booking.ModuleEntsorgung:
		floor = e.policy.EntsorgungMinimumOrderCents
	}
	if floor < 0 {
		floor = 0
	}
	return floor
}

// uncertaintySpread computes the symmetric range band around the total.
func (e *Engine) uncertaintySpread(totalCents int64) int64 {
	pct := clampDecimal(e.policy.UncertaintyPercent, decimal.Zero, maxUncertainty)
	return decimal.NewFromInt(totalCents).Mul(pct).Div(hundred).Round(0).IntPart()
}

// estimateLabor fills the informational crew-planning figures. Labor time
// is reported in the breakdown but never priced.
func (e *Engine) estimateLabor(in Input, optionMinutes, heavyCount int, b *Breakdown) {
	switch in.ServiceType {
	case booking.ServiceDisposal:
		b.BaseMinutes = 25
	case booking.ServiceBoth:
		b.BaseMinutes = 45
	default:
		b.BaseMinutes = 30
	}

	b.ItemMinutes = optionMinutes

	for _, a := range in.Access {
		switch a.Parking {
		case booking.ParkingHard:
			b.AccessMinutes += 20
		case booking.ParkingMedium:
			b.AccessMinutes += 10
		}
		switch a.Stairs {
		case booking.StairsMany:
			b.AccessMinutes += 20
		case booking.StairsFew:
			b.AccessMinutes += 10
		}
		if a.Elevator == booking.ElevatorNone {
			switch {
			case a.Floor > 0:
				b.AccessMinutes += a.Floor * 6
			case a.Floor < 0:
				b.AccessMinutes += -a.Floor * 4
			}
		}
		b.AccessMinutes += carryBlocks(a.CarryDistanceM) * 5
	}
	b.AccessMinutes += heavyCount * 8

	b.LaborMinutes = b.BaseMinutes + b.ItemMinutes + b.AccessMinutes

	// Quarter-hour rounding with a one-hour minimum.
	hours := float64(b.LaborMinutes) / 60
	quarters := decimal.NewFromFloat(hours * 4).Round(0).IntPart()
	b.LaborHours = float64(quarters) / 4
	if b.LaborHours < 1 {
		b.LaborHours = 1
	}
}

// carryBlocks converts a carry distance into rounded 25 m blocks, clamping
// the distance into [0, 200].
func carryBlocks(carryDistanceM int) int {
	if carryDistanceM < 0 {
		carryDistanceM = 0
	}
	if carryDistanceM > 200 {
		carryDistanceM = 200
	}
	return int(decimal.NewFromInt(int64(carryDistanceM)).Div(decimal.NewFromInt(25)).Round(0).IntPart())
}

// mulVolume multiplies a fractional quantity by a cent rate and rounds to
// whole cents, half away from zero.
func mulVolume(qty float64, rateCents int64) int64 {
	return decimal.NewFromFloat(qty).Mul(decimal.NewFromInt(rateCents)).Round(0).IntPart()
}

func clampDecimal(d, min, max decimal.Decimal) decimal.Decimal {
	if d.LessThan(min) {
		return min
	}
	if d.GreaterThan(max) {
		return max
	}
	return d
}
