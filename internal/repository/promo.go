package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/umzugwerk/booking-api/internal/domain/booking"
	"github.com/umzugwerk/booking-api/internal/domain/order"
	"github.com/umzugwerk/booking-api/internal/domain/promo"
)

const activePromoRulesSQL = `SELECT id, code, module_slug, service_type_scope,
		discount_type, discount_value, min_order_cents, max_discount_cents,
		valid_from, valid_to
	FROM promo_rules
	WHERE active = TRUE AND deleted_at IS NULL
	ORDER BY created_at, code`

var _ order.PromoSource = (*PromoRepository)(nil)

// PromoRepository loads promo rules from PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// ActivePromoRules returns all active, non-deleted rules in creation order.
// The resolver's first-match tie-break relies on this ordering being stable.
func (r *PromoRepository) ActivePromoRules(ctx context.Context) ([]promo.Rule, error) {
	rows, err := r.pool.Query(ctx, activePromoRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing promo rules: %w", err)
	}
	return pgx.CollectRows(rows, scanPromoRule)
}

func scanPromoRule(row pgx.CollectableRow) (promo.Rule, error) {
	var (
		rule             promo.Rule
		moduleSlug       *string
		serviceTypeScope *string
		discountValue    decimal.Decimal
		maxDiscount      *int64
		validFrom        *time.Time
		validTo          *time.Time
	)
	err := row.Scan(
		&rule.ID, &rule.Code, &moduleSlug, &serviceTypeScope,
		&rule.DiscountType, &discountValue, &rule.MinOrderCents, &maxDiscount,
		&validFrom, &validTo,
	)
	if err != nil {
		return promo.Rule{}, err
	}

	if moduleSlug != nil {
		rule.ModuleSlug = booking.ModuleSlug(*moduleSlug)
	}
	if serviceTypeScope != nil {
		rule.ServiceTypeScope = booking.ServiceType(*serviceTypeScope)
	}
	rule.DiscountValue = discountValue
	rule.MaxDiscountCents = maxDiscount
	rule.ValidFrom = validFrom
	rule.ValidTo = validTo
	return rule, nil
}
