package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/umzugwerk/booking-api/internal/domain/order"
	"github.com/umzugwerk/booking-api/internal/domain/pricing"
)

const activeServiceOptionsSQL = `SELECT code, module_slug, pricing_type,
		default_price_cents, default_labor_minutes, is_heavy, requires_quantity
	FROM service_options
	WHERE active = TRUE AND deleted_at IS NULL
	ORDER BY sort_order, code`

var _ order.CatalogSource = (*CatalogRepository)(nil)

// CatalogRepository loads the active service option catalog from PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ActiveServiceOptions returns all active, non-deleted catalog entries.
func (r *CatalogRepository) ActiveServiceOptions(ctx context.Context) ([]pricing.ServiceOption, error) {
	rows, err := r.pool.Query(ctx, activeServiceOptionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing service options: %w", err)
	}
	return pgx.CollectRows(rows, scanServiceOption)
}

func scanServiceOption(row pgx.CollectableRow) (pricing.ServiceOption, error) {
	var o pricing.ServiceOption
	err := row.Scan(
		&o.Code, &o.ModuleSlug, &o.PricingType,
		&o.DefaultPriceCents, &o.DefaultLaborMinutes, &o.IsHeavy, &o.RequiresQuantity,
	)
	return o, err
}
