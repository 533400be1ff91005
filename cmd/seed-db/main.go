// Command seed-db creates the schema and loads a default pricing policy,
// the service option catalog, and a handful of promo rules. Safe to re-run:
// everything is keyed on stable identifiers and upserted.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/umzugwerk/booking-api/internal/repository"
)

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedPolicy(ctx, pool); err != nil {
		return errors.Wrap(err, "seed pricing policy")
	}
	if err := seedServiceOptions(ctx, pool); err != nil {
		return errors.Wrap(err, "seed service options")
	}
	if err := seedPromoRules(ctx, pool); err != nil {
		return errors.Wrap(err, "seed promo rules")
	}

	return nil
}

const upsertPolicySQL = `
INSERT INTO pricing_policies (
    id, active, currency,
    moving_base_fee_cents, disposal_base_fee_cents, montage_base_fee_cents,
    per_m3_moving_cents, per_m3_disposal_cents, per_km_cents, min_drive_cents,
    heavy_item_surcharge_cents, stairs_surcharge_per_floor_cents,
    carry_distance_surcharge_per_25m_cents,
    parking_surcharge_medium_cents, parking_surcharge_hard_cents,
    elevator_discount_small_cents, elevator_discount_large_cents,
    uncertainty_percent, economy_multiplier, standard_multiplier, express_multiplier,
    montage_minimum_order_cents, entsorgung_minimum_order_cents
) VALUES (
    '00000000-0000-0000-0000-000000000001', TRUE, 'EUR',
    19000, 14900, 8900,
    3400, 4900, 150, 4900,
    4500, 2500,
    1500,
    1500, 3000,
    1500, 3500,
    12, 0.96, 1.0, 1.2,
    12000, 9900
)
ON CONFLICT (id) DO UPDATE SET
    active = EXCLUDED.active,
    updated_at = NOW()
`

func seedPolicy(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("upserting default pricing policy")

	if _, err := pool.Exec(ctx, upsertPolicySQL); err != nil {
		return errors.Wrap(err, "upsert policy")
	}

	return nil
}

const upsertServiceOptionSQL = `
INSERT INTO service_options (
    id, code, module_slug, pricing_type, default_price_cents,
    default_labor_minutes, is_heavy, requires_quantity, sort_order
) VALUES (
    gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8
)
ON CONFLICT (code) DO UPDATE SET
    module_slug = EXCLUDED.module_slug,
    pricing_type = EXCLUDED.pricing_type,
    default_price_cents = EXCLUDED.default_price_cents,
    default_labor_minutes = EXCLUDED.default_labor_minutes,
    is_heavy = EXCLUDED.is_heavy,
    requires_quantity = EXCLUDED.requires_quantity,
    sort_order = EXCLUDED.sort_order,
    active = TRUE,
    deleted_at = NULL
`

type optionSeed struct {
	code         string
	moduleSlug   string
	pricingType  string
	priceCents   int64
	laborMinutes int32
	isHeavy      bool
	requiresQty  bool
}

func seedServiceOptions(ctx context.Context, pool *pgxpool.Pool) error {
	options := []optionSeed{
		{code: "PIANO_TRANSPORT", moduleSlug: "UMZUG", pricingType: "FLAT", priceCents: 15000, laborMinutes: 60, isHeavy: true},
		{code: "SAFE_TRANSPORT", moduleSlug: "UMZUG", pricingType: "FLAT", priceCents: 12000, laborMinutes: 45, isHeavy: true},
		{code: "MOVING_BOXES", moduleSlug: "UMZUG", pricingType: "PER_UNIT", priceCents: 350, laborMinutes: 2, requiresQty: true},
		{code: "WARDROBE_BOXES", moduleSlug: "UMZUG", pricingType: "PER_UNIT", priceCents: 900, laborMinutes: 5, requiresQty: true},
		{code: "KITCHEN_ASSEMBLY", moduleSlug: "MONTAGE", pricingType: "PER_HOUR", priceCents: 6500, laborMinutes: 60, requiresQty: true},
		{code: "FURNITURE_ASSEMBLY", moduleSlug: "MONTAGE", pricingType: "PER_UNIT", priceCents: 4500, laborMinutes: 40, requiresQty: true},
		{code: "ELECTRO_DISPOSAL", moduleSlug: "ENTSORGUNG", pricingType: "PER_UNIT", priceCents: 2500, laborMinutes: 10, requiresQty: true},
		{code: "BULKY_WASTE", moduleSlug: "ENTSORGUNG", pricingType: "PER_M3", priceCents: 3900, laborMinutes: 15, requiresQty: true},
	}

	slog.Info("upserting service options", slog.Int("count", len(options)))

	for i, o := range options {
		if _, err := pool.Exec(ctx, upsertServiceOptionSQL,
			o.code, o.moduleSlug, o.pricingType, o.priceCents,
			o.laborMinutes, o.isHeavy, o.requiresQty, int32(i),
		); err != nil {
			return errors.Wrapf(err, "upsert option %s", o.code)
		}

		slog.Info("upserted option", slog.String("code", o.code))
	}

	return nil
}

const insertPromoRuleSQL = `
INSERT INTO promo_rules (
    id, code, module_slug, service_type_scope, discount_type, discount_value,
    min_order_cents, max_discount_cents
)
SELECT gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7
WHERE NOT EXISTS (
    SELECT 1 FROM promo_rules WHERE UPPER(code) = UPPER($1) AND active = TRUE
)
`

type promoSeed struct {
	code             string
	moduleSlug       *string
	serviceTypeScope *string
	discountType     string
	discountValue    string
	minOrderCents    int64
	maxDiscountCents *int64
}

func seedPromoRules(ctx context.Context, pool *pgxpool.Pool) error {
	montage := "MONTAGE"
	entsorgung := "ENTSORGUNG"
	moving := "MOVING"
	cap5000 := int64(5000)

	rules := []promoSeed{
		{code: "WELCOME10", discountType: "PERCENT", discountValue: "10"},
		{code: "SOMMER25", discountType: "FLAT_CENTS", discountValue: "2500", minOrderCents: 50000},
		{code: "UMZUG15", serviceTypeScope: &moving, discountType: "PERCENT", discountValue: "15", maxDiscountCents: &cap5000},
		{code: "MONTAGE10", moduleSlug: &montage, discountType: "PERCENT", discountValue: "10"},
		{code: "GRUEN5", moduleSlug: &entsorgung, discountType: "PERCENT", discountValue: "5"},
	}

	slog.Info("seeding promo rules", slog.Int("count", len(rules)))

	for _, r := range rules {
		if _, err := pool.Exec(ctx, insertPromoRuleSQL,
			r.code, r.moduleSlug, r.serviceTypeScope, r.discountType,
			r.discountValue, r.minOrderCents, r.maxDiscountCents,
		); err != nil {
			return errors.Wrapf(err, "insert promo rule %s", r.code)
		}

		slog.Info("seeded promo rule", slog.String("code", r.code))
	}

	return nil
}
