package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/umzugwerk/booking-api/internal/domain/order"
)

const createBookingSQL = `INSERT INTO bookings
	(id, order_no, offer_no, service_type, booking_context, cart, breakdown,
	 promo_code, total_cents, price_min_cents, price_max_cents,
	 customer_name, customer_email, customer_phone, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

var _ order.Repository = (*BookingRepository)(nil)

// BookingRepository implements order.Repository backed by PostgreSQL.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository returns a BookingRepository that uses the given pool.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create persists a committed booking. The cart and the full price breakdown
// are serialized to JSON for storage in JSONB columns; the breakdown is the
// reproducible audit record of how the price was computed.
func (r *BookingRepository) Create(ctx context.Context, b *order.Booking) error {
	cartJSON, err := json.Marshal(b.Cart)
	if err != nil {
		return fmt.Errorf("marshaling booking cart: %w", err)
	}
	breakdownJSON, err := json.Marshal(b.Breakdown)
	if err != nil {
		return fmt.Errorf("marshaling price breakdown: %w", err)
	}

	_, err = r.pool.Exec(ctx, createBookingSQL,
		b.ID, b.OrderNo, b.OfferNo, string(b.ServiceType), string(b.Context),
		cartJSON, breakdownJSON,
		b.PromoCode, b.Breakdown.TotalCents, b.Breakdown.PriceMinCents, b.Breakdown.PriceMaxCents,
		b.Customer.Name, b.Customer.Email, b.Customer.Phone, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating booking %q: %w", b.OrderNo, err)
	}

	return nil
}
