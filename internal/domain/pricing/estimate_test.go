package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umzugwerk/booking-api/internal/distance"
	"github.com/umzugwerk/booking-api/internal/domain/booking"
	"github.com/umzugwerk/booking-api/internal/domain/promo"
)

func testPolicy() Policy {
	return Policy{
		Currency: "EUR",

		MovingBaseFeeCents:   19000,
		DisposalBaseFeeCents: 14900,
		MontageBaseFeeCents:  8900,

		PerM3MovingCents:   3400,
		PerM3DisposalCents: 4900,
		PerKmCents:         150,
		MinDriveCents:      4900,

		HeavyItemSurchargeCents:           4500,
		StairsSurchargePerFloorCents:      2500,
		CarryDistanceSurchargePer25mCents: 1500,
		ParkingSurchargeMediumCents:       1500,
		ParkingSurchargeHardCents:         3000,
		ElevatorDiscountSmallCents:        1500,
		ElevatorDiscountLargeCents:        3500,

		UncertaintyPercent: decimal.NewFromInt(12),
		EconomyMultiplier:  decimal.RequireFromString("0.96"),
		StandardMultiplier: decimal.NewFromInt(1),
		ExpressMultiplier:  decimal.RequireFromString("1.2"),

		MontageMinimumOrderCents:    12000,
		EntsorgungMinimumOrderCents: 9900,

		AddonSurchargeCents: DefaultAddonSurcharges(),
	}
}

func testOptions() []ServiceOption {
	return []ServiceOption{
		{Code: "PIANO_TRANSPORT", ModuleSlug: "UMZUG", PricingType: PricingFlat, DefaultPriceCents: 15000, DefaultLaborMinutes: 60, IsHeavy: true},
		{Code: "MOVING_BOXES", ModuleSlug: "UMZUG", PricingType: PricingPerUnit, DefaultPriceCents: 350, DefaultLaborMinutes: 2, RequiresQuantity: true},
		{Code: "KITCHEN_ASSEMBLY", ModuleSlug: booking.ModuleMontage, PricingType: PricingPerHour, DefaultPriceCents: 6500, DefaultLaborMinutes: 60, RequiresQuantity: true},
	}
}

func movingCart() []booking.CartItem {
	return []booking.CartItem{{Kind: booking.KindUmzug, Qty: 1}}
}

func TestEngine_Estimate_MovingBaseline(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	b, err := engine.Estimate(Input{
		Cart:         movingCart(),
		ServiceType:  booking.ServiceMoving,
		MoveVolumeM3: 12,
		Tier:         TierStandard,
	})
	require.NoError(t, err)

	// 19000 base + 12 * 3400 volume.
	assert.Equal(t, int64(59800), b.SubtotalCents)
	assert.Equal(t, int64(59800), b.TotalCents)
	assert.Equal(t, int64(0), b.DiscountCents)
	// 12% symmetric spread: 7176.
	assert.Equal(t, int64(52624), b.PriceMinCents)
	assert.Equal(t, int64(66976), b.PriceMaxCents)

	require.Len(t, b.Lines, 1)
	assert.Equal(t, int64(19000), b.Lines[0].BaseFeeCents)
	assert.Equal(t, int64(40800), b.Lines[0].VolumeCents)
}

func TestEngine_Estimate_PercentPromo(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	rule := &promo.Rule{
		Code:          "WELCOME10",
		DiscountType:  promo.DiscountPercent,
		DiscountValue: decimal.NewFromInt(10),
	}

	b, err := engine.Estimate(Input{
		Cart:         movingCart(),
		ServiceType:  booking.ServiceMoving,
		MoveVolumeM3: 12,
		Tier:         TierStandard,
		Promo:        rule,
	})
	require.NoError(t, err)

	assert.Equal(t, "WELCOME10", b.PromoCode)
	assert.Equal(t, int64(5980), b.DiscountCents)
	assert.Equal(t, int64(53820), b.TotalCents)
	// The range always brackets the discounted total.
	assert.LessOrEqual(t, b.PriceMinCents, b.TotalCents)
	assert.GreaterOrEqual(t, b.PriceMaxCents, b.TotalCents)
}

func TestEngine_Estimate_PromoCapAndMinOrder(t *testing.T) {
	policy := testPolicy()
	engine := NewEngine(policy, testOptions())
	cap := int64(2000)

	tests := []struct {
		name         string
		rule         *promo.Rule
		wantDiscount int64
	}{
		{
			name: "cap limits percent discount",
			rule: &promo.Rule{
				Code:             "CAPPED",
				DiscountType:     promo.DiscountPercent,
				DiscountValue:    decimal.NewFromInt(10),
				MaxDiscountCents: &cap,
			},
			wantDiscount: 2000,
		},
		{
			name: "min order not reached yields zero discount",
			rule: &promo.Rule{
				Code:          "BIGONLY",
				DiscountType:  promo.DiscountPercent,
				DiscountValue: decimal.NewFromInt(10),
				MinOrderCents: 100_000,
			},
			wantDiscount: 0,
		},
		{
			name: "flat discount subtracts fixed cents",
			rule: &promo.Rule{
				Code:          "FLAT25",
				DiscountType:  promo.DiscountFlatCents,
				DiscountValue: decimal.NewFromInt(2500),
			},
			wantDiscount: 2500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := engine.Estimate(Input{
				Cart:         movingCart(),
				ServiceType:  booking.ServiceMoving,
				MoveVolumeM3: 12,
				Tier:         TierStandard,
				Promo:        tt.rule,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantDiscount, b.DiscountCents)
			assert.Equal(t, int64(59800)-tt.wantDiscount, b.TotalCents)
		})
	}
}

func TestEngine_Estimate_TierMultiplier(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	tests := []struct {
		tier      Tier
		wantTotal int64
	}{
		{TierEconomy, 57408},  // 59800 * 0.96
		{TierStandard, 59800}, // 59800 * 1.0
		{TierExpress, 71760},  // 59800 * 1.2
		{Tier(""), 59800},     // unknown -> standard
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			b, err := engine.Estimate(Input{
				Cart:         movingCart(),
				ServiceType:  booking.ServiceMoving,
				MoveVolumeM3: 12,
				Tier:         tt.tier,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, b.TotalCents)
			assert.Equal(t, tt.wantTotal-b.SubtotalCents, b.PackageAdjustmentCents)
		})
	}
}

func TestEngine_Estimate_DriveCharge(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	t.Run("per km above minimum", func(t *testing.T) {
		b, err := engine.Estimate(Input{
			Cart:         movingCart(),
			ServiceType:  booking.ServiceMoving,
			MoveVolumeM3: 10,
			Distance:     &distance.Result{Km: 60, Source: distance.SourceLive},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(9000), b.DriveChargeCents)
		assert.Equal(t, distance.SourceLive, b.DistanceSource)
	})

	t.Run("short distance floored at minimum drive charge", func(t *testing.T) {
		b, err := engine.Estimate(Input{
			Cart:         movingCart(),
			ServiceType:  booking.ServiceMoving,
			MoveVolumeM3: 10,
			Distance:     &distance.Result{Km: 5, Source: distance.SourceApprox},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4900), b.DriveChargeCents)
	})

	t.Run("no distance means no drive charge", func(t *testing.T) {
		b, err := engine.Estimate(Input{
			Cart:         movingCart(),
			ServiceType:  booking.ServiceMoving,
			MoveVolumeM3: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), b.DriveChargeCents)
	})

	t.Run("disposal-only cart has no drive charge", func(t *testing.T) {
		b, err := engine.Estimate(Input{
			Cart:             []booking.CartItem{{Kind: booking.KindEntsorgung, Qty: 1, ModuleSlug: booking.ModuleEntsorgung}},
			ServiceType:      booking.ServiceDisposal,
			DisposalVolumeM3: 4,
			Distance:         &distance.Result{Km: 60, Source: distance.SourceLive},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), b.DriveChargeCents)
	})
}

func TestEngine_Estimate_AccessSurcharges(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	b, err := engine.Estimate(Input{
		Cart:         movingCart(),
		ServiceType:  booking.ServiceMoving,
		MoveVolumeM3: 10,
		Access: []booking.AccessProfile{
			{Floor: 3, Elevator: booking.ElevatorNone, Parking: booking.ParkingMedium, CarryDistanceM: 60},
			{Floor: 2, Elevator: booking.ElevatorLarge, Parking: booking.ParkingHard},
		},
	})
	require.NoError(t, err)

	// Only the elevator-less site pays per-floor stairs surcharge.
	assert.Equal(t, int64(3*2500), b.FloorSurchargeCents)
	assert.Equal(t, int64(1500+3000), b.ParkingSurchargeCents)
	// 60 m -> 2 blocks of 25 m.
	assert.Equal(t, int64(2*1500), b.CarrySurchargeCents)
	assert.Equal(t, int64(3500), b.ElevatorDiscountCents)
}

func TestEngine_Estimate_ElevatorDiscountClamped(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	// Two large elevators but no surcharges at all: the discount must not
	// push the surcharge block negative.
	b, err := engine.Estimate(Input{
		Cart:         movingCart(),
		ServiceType:  booking.ServiceMoving,
		MoveVolumeM3: 10,
		Access: []booking.AccessProfile{
			{Elevator: booking.ElevatorLarge},
			{Elevator: booking.ElevatorLarge},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), b.ElevatorDiscountCents)
	assert.Equal(t, int64(19000+34000), b.SubtotalCents)
}

func TestEngine_Estimate_Options(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	t.Run("flat option priced once regardless of qty", func(t *testing.T) {
		b, err := engine.Estimate(Input{
			Cart:            movingCart(),
			ServiceType:     booking.ServiceMoving,
			MoveVolumeM3:    10,
			SelectedOptions: []SelectedOption{{Code: "PIANO_TRANSPORT", Qty: 5}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(15000), b.ServiceOptionsCents)
		// Heavy count follows the clamped unit quantity.
		assert.Equal(t, 1, b.HeavyItemCount)
		assert.Equal(t, int64(4500), b.HeavyItemSurchargeCents)
	})

	t.Run("per unit option multiplies", func(t *testing.T) {
		b, err := engine.Estimate(Input{
			Cart:            movingCart(),
			ServiceType:     booking.ServiceMoving,
			MoveVolumeM3:    10,
			SelectedOptions: []SelectedOption{{Code: "MOVING_BOXES", Qty: 20}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(20*350), b.ServiceOptionsCents)
	})

	t.Run("unknown option is a config error", func(t *testing.T) {
		_, err := engine.Estimate(Input{
			Cart:            movingCart(),
			ServiceType:     booking.ServiceMoving,
			SelectedOptions: []SelectedOption{{Code: "NO_SUCH_OPTION"}},
		})
		var unknown *UnknownOptionError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "NO_SUCH_OPTION", unknown.Code)
	})

	t.Run("foreign module option skipped in module context", func(t *testing.T) {
		b, err := engine.Estimate(Input{
			Cart:            []booking.CartItem{{Kind: booking.KindMontage, Qty: 1, ModuleSlug: booking.ModuleMontage}},
			Context:         booking.ContextMontage,
			SelectedOptions: []SelectedOption{{Code: "MOVING_BOXES", Qty: 10}, {Code: "KITCHEN_ASSEMBLY", Qty: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2*6500), b.ServiceOptionsCents)
	})
}

func TestEngine_Estimate_MinimumOrderFloor(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	b, err := engine.Estimate(Input{
		Cart:    []booking.CartItem{{Kind: booking.KindMontage, Qty: 1, ModuleSlug: booking.ModuleMontage}},
		Context: booking.ContextMontage,
	})
	require.NoError(t, err)

	// Montage base of 8900 is below the 12000 floor.
	assert.Equal(t, int64(8900), b.SubtotalCents)
	assert.Equal(t, int64(3100), b.MinimumOrderAppliedCents)
	assert.Equal(t, int64(12000), b.TotalCents)
}

func TestEngine_Estimate_DiscountAppliedAfterFloor(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	rule := &promo.Rule{
		Code:          "MONTAGE10",
		DiscountType:  promo.DiscountPercent,
		DiscountValue: decimal.NewFromInt(10),
	}

	b, err := engine.Estimate(Input{
		Cart:    []booking.CartItem{{Kind: booking.KindMontage, Qty: 1, ModuleSlug: booking.ModuleMontage}},
		Context: booking.ContextMontage,
		Promo:   rule,
	})
	require.NoError(t, err)

	// Discount computed on the floored 12000, not on the raw 8900, and the
	// total may drop below the floor afterwards.
	assert.Equal(t, int64(1200), b.DiscountCents)
	assert.Equal(t, int64(10800), b.TotalCents)
}

func TestEngine_Estimate_Addons(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	b, err := engine.Estimate(Input{
		Cart:         movingCart(),
		ServiceType:  booking.ServiceMoving,
		MoveVolumeM3: 10,
		Addons:       []Addon{AddonPacking, AddonOldKitchenDisposal},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2500+6000), b.AddonsCents)
}

func TestEngine_Estimate_UncertaintyClamped(t *testing.T) {
	policy := testPolicy()
	policy.UncertaintyPercent = decimal.NewFromInt(80)
	engine := NewEngine(policy, testOptions())

	b, err := engine.Estimate(Input{
		Cart:         movingCart(),
		ServiceType:  booking.ServiceMoving,
		MoveVolumeM3: 10,
	})
	require.NoError(t, err)

	// Clamped to 30%.
	spread := b.PriceMaxCents - b.TotalCents
	assert.Equal(t, decimal.NewFromInt(b.TotalCents).Mul(decimal.NewFromInt(30)).Div(decimal.NewFromInt(100)).Round(0).IntPart(), spread)
	assert.Equal(t, b.TotalCents-spread, b.PriceMinCents)
}

func TestEngine_Estimate_LaborInformational(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	withLabor, err := engine.Estimate(Input{
		Cart:            movingCart(),
		ServiceType:     booking.ServiceMoving,
		MoveVolumeM3:    10,
		SelectedOptions: []SelectedOption{{Code: "PIANO_TRANSPORT"}},
		Access:          []booking.AccessProfile{{Floor: 4, Elevator: booking.ElevatorNone, Stairs: booking.StairsMany}},
	})
	require.NoError(t, err)

	assert.Positive(t, withLabor.LaborMinutes)
	assert.Positive(t, withLabor.LaborHours)
	// Labor is reported, never priced: the heavy surcharge and option price
	// fully explain the cost delta against a bare estimate.
	bare, err := engine.Estimate(Input{
		Cart:         movingCart(),
		ServiceType:  booking.ServiceMoving,
		MoveVolumeM3: 10,
		Access:       []booking.AccessProfile{{Floor: 4, Elevator: booking.ElevatorNone, Stairs: booking.StairsMany}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15000+4500), withLabor.TotalCents-bare.TotalCents)
}

func TestEngine_Estimate_RangeInvariant(t *testing.T) {
	engine := NewEngine(testPolicy(), testOptions())

	inputs := []Input{
		{Cart: movingCart(), ServiceType: booking.ServiceMoving, MoveVolumeM3: 0.5},
		{Cart: movingCart(), ServiceType: booking.ServiceMoving, MoveVolumeM3: 80, Tier: TierExpress},
		{Cart: []booking.CartItem{{Kind: booking.KindEntsorgung, Qty: 1, ModuleSlug: booking.ModuleEntsorgung}}, ServiceType: booking.ServiceDisposal, DisposalVolumeM3: 1},
		{Cart: []booking.CartItem{{Kind: booking.KindSpecial, Qty: 1, ModuleSlug: booking.ModuleSpecial}}, Context: booking.ContextSpecial},
	}

	for _, in := range inputs {
		b, err := engine.Estimate(in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.TotalCents, int64(0))
		assert.LessOrEqual(t, b.PriceMinCents, b.TotalCents)
		assert.GreaterOrEqual(t, b.PriceMaxCents, b.TotalCents)
		assert.GreaterOrEqual(t, b.PriceMinCents, int64(0))
	}
}
