package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/umzugwerk/booking-api/internal/domain/order"
	"github.com/umzugwerk/booking-api/internal/domain/pricing"
)

const activePolicySQL = `SELECT currency,
		moving_base_fee_cents, disposal_base_fee_cents, montage_base_fee_cents,
		per_m3_moving_cents, per_m3_disposal_cents, per_km_cents, min_drive_cents,
		heavy_item_surcharge_cents, stairs_surcharge_per_floor_cents,
		carry_distance_surcharge_per_25m_cents,
		parking_surcharge_medium_cents, parking_surcharge_hard_cents,
		elevator_discount_small_cents, elevator_discount_large_cents,
		uncertainty_percent, economy_multiplier, standard_multiplier, express_multiplier,
		montage_minimum_order_cents, entsorgung_minimum_order_cents,
		addon_surcharges
	FROM pricing_policies WHERE active = TRUE
	ORDER BY updated_at DESC LIMIT 1`

var _ order.PolicySource = (*PolicyRepository)(nil)

// PolicyRepository loads the active pricing policy from PostgreSQL.
type PolicyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository returns a PolicyRepository that uses the given pool.
func NewPolicyRepository(pool *pgxpool.Pool) *PolicyRepository {
	return &PolicyRepository{pool: pool}
}

// ActivePolicy returns the most recently updated active pricing policy.
// Returns pricing.ErrNoActivePolicy when none is configured.
func (r *PolicyRepository) ActivePolicy(ctx context.Context) (pricing.Policy, error) {
	rows, err := r.pool.Query(ctx, activePolicySQL)
	if err != nil {
		return pricing.Policy{}, fmt.Errorf("loading pricing policy: %w", err)
	}

	policy, err := pgx.CollectExactlyOneRow(rows, scanPolicy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Policy{}, pricing.ErrNoActivePolicy
		}
		return pricing.Policy{}, fmt.Errorf("loading pricing policy: %w", err)
	}
	return policy, nil
}

func scanPolicy(row pgx.CollectableRow) (pricing.Policy, error) {
	var (
		p          pricing.Policy
		addonsJSON []byte
	)
	err := row.Scan(
		&p.Currency,
		&p.MovingBaseFeeCents, &p.DisposalBaseFeeCents, &p.MontageBaseFeeCents,
		&p.PerM3MovingCents, &p.PerM3DisposalCents, &p.PerKmCents, &p.MinDriveCents,
		&p.HeavyItemSurchargeCents, &p.StairsSurchargePerFloorCents,
		&p.CarryDistanceSurchargePer25mCents,
		&p.ParkingSurchargeMediumCents, &p.ParkingSurchargeHardCents,
		&p.ElevatorDiscountSmallCents, &p.ElevatorDiscountLargeCents,
		&p.UncertaintyPercent, &p.EconomyMultiplier, &p.StandardMultiplier, &p.ExpressMultiplier,
		&p.MontageMinimumOrderCents, &p.EntsorgungMinimumOrderCents,
		&addonsJSON,
	)
	if err != nil {
		return pricing.Policy{}, err
	}

	p.AddonSurchargeCents = pricing.DefaultAddonSurcharges()
	if len(addonsJSON) > 0 {
		overrides := make(map[pricing.Addon]int64)
		if err := json.Unmarshal(addonsJSON, &overrides); err != nil {
			return pricing.Policy{}, fmt.Errorf("decoding addon surcharges: %w", err)
		}
		for addon, cents := range overrides {
			p.AddonSurchargeCents[addon] = cents
		}
	}
	return p, nil
}
